package faregen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-forecast-backend/internal/dataset"
)

func TestGenerateOnceFormats(t *testing.T) {
	for _, name := range []string{"fares.db", "fares.csv", "fares.xlsx"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "nested", name)
			n, err := GenerateOnce(Options{OutputPath: out, Samples: 40, Seed: 9})
			require.NoError(t, err)
			assert.Equal(t, 40, n)

			entries, err := os.ReadDir(filepath.Dir(out))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file left behind")

			recs, _, err := dataset.LoadFares(out)
			require.NoError(t, err)
			require.Len(t, recs, 40)

			want, err := dataset.Synthetic(dataset.SyntheticOptions{Samples: 40, Seed: 9})
			require.NoError(t, err)
			first, err := dataset.FromRecord(recs[0])
			require.NoError(t, err)
			assert.Equal(t, want.Examples[0].Price, first.Price)
			assert.Equal(t, want.Examples[0].Features.Airline, first.Features.Airline)
			assert.Equal(t, want.Examples[0].Features.TotalStops, first.Features.TotalStops)
			assert.Equal(t, want.Examples[0].Features.DaysUntilDeparture, first.Features.DaysUntilDeparture)
		})
	}
}

func TestGenerateOnceDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := GenerateOnce(Options{OutputPath: dir, Samples: 5, Seed: 1})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "fares.db"))
}

func TestGenerateOnceErrors(t *testing.T) {
	_, err := GenerateOnce(Options{OutputPath: filepath.Join(t.TempDir(), "fares.json"), Samples: 5})
	assert.ErrorIs(t, err, dataset.ErrUnsupportedFormat)

	_, err = GenerateOnce(Options{OutputPath: "", Samples: 5})
	assert.Error(t, err)

	_, err = GenerateOnce(Options{OutputPath: filepath.Join(t.TempDir(), "fares.csv"), Samples: 0})
	assert.ErrorIs(t, err, dataset.ErrNoRows)
}

func TestExecute(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fares.csv")
	require.NoError(t, Execute([]string{"-output", out, "-samples", "12", "-seed", "3"}, nil))
	recs, _, err := dataset.LoadFares(out)
	require.NoError(t, err)
	assert.Len(t, recs, 12)

	assert.Error(t, Execute([]string{"-unknown"}, nil))
}
