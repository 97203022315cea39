package predictor

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flight-forecast-backend/internal/features"
	"flight-forecast-backend/internal/forest"
)

// artifact file names inside the model directory
const (
	ForestFile  = "forest.gob"
	EncoderFile = "encoders.json"
	ScalerFile  = "scaler.json"
)

type forestArtifact struct {
	RunID     string
	TrainedAt time.Time
	Source    string
	Rows      int
	Eval      Evaluation
	Forest    *forest.Forest
}

type encoderArtifact struct {
	RunID  string            `json:"run_id"`
	Tables *features.Encoder `json:"tables"`
}

type scalerArtifact struct {
	RunID   string                 `json:"run_id"`
	Columns []string               `json:"columns"`
	Scaler  *forest.StandardScaler `json:"scaler"`
}

// Save writes the three artifacts to dir, each through a temp file renamed
// into place.
func (m *TrainedModel) Save(dir string) error {
	if m == nil {
		return ErrNotTrained
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	fa := forestArtifact{RunID: m.runID, TrainedAt: m.trainedAt, Source: m.source, Rows: m.rows, Eval: m.eval, Forest: m.forest}
	if err := writeAtomic(filepath.Join(dir, ForestFile), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(&fa)
	}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, EncoderFile), encoderArtifact{RunID: m.runID, Tables: m.encoder}); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ScalerFile), scalerArtifact{RunID: m.runID, Columns: features.Columns, Scaler: m.scaler})
}

// Load reads all three artifacts from dir. Any missing or unreadable file, or
// artifacts from different runs, fails the whole load.
func Load(dir string, opts Options) (*TrainedModel, error) {
	var fa forestArtifact
	if err := readFile(filepath.Join(dir, ForestFile), func(f *os.File) error {
		return gob.NewDecoder(f).Decode(&fa)
	}); err != nil {
		return nil, err
	}
	var ea encoderArtifact
	if err := readJSON(filepath.Join(dir, EncoderFile), &ea); err != nil {
		return nil, err
	}
	var sa scalerArtifact
	if err := readJSON(filepath.Join(dir, ScalerFile), &sa); err != nil {
		return nil, err
	}

	if fa.RunID == "" || fa.RunID != ea.RunID || fa.RunID != sa.RunID {
		return nil, fmt.Errorf("%w: forest=%q encoders=%q scaler=%q", ErrArtifactMismatch, fa.RunID, ea.RunID, sa.RunID)
	}
	if fa.Forest == nil {
		return nil, fmt.Errorf("%s: empty forest", ForestFile)
	}
	if err := fa.Forest.Validate(len(features.Columns)); err != nil {
		return nil, fmt.Errorf("%s: %w", ForestFile, err)
	}
	if ea.Tables == nil {
		return nil, fmt.Errorf("%s: missing code tables", EncoderFile)
	}
	if err := ea.Tables.Restore(); err != nil {
		return nil, fmt.Errorf("%s: %w", EncoderFile, err)
	}
	if sa.Scaler == nil || len(sa.Scaler.Mean) != len(features.Columns) || len(sa.Scaler.Scale) != len(features.Columns) {
		return nil, fmt.Errorf("%s: scaler does not match %d feature columns", ScalerFile, len(features.Columns))
	}

	return &TrainedModel{
		runID:     fa.RunID,
		trainedAt: fa.TrainedAt,
		source:    fa.Source,
		rows:      fa.Rows,
		forest:    fa.Forest,
		encoder:   ea.Tables,
		scaler:    sa.Scaler,
		eval:      fa.Eval,
		now:       opts.clock(),
	}, nil
}

func writeJSON(path string, v any) error {
	return writeAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	return readFile(path, func(f *os.File) error {
		return json.NewDecoder(f).Decode(v)
	})
}

func readFile(path string, read func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
