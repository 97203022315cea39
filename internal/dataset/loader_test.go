package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/pkg/faredb"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadCSVAliasesAndBOM(t *testing.T) {
	p := writeFile(t, "fares.csv", "\ufeffAirline,source,destination,departure_time_bucket,stops_label,duration,days_left,price\n"+
		"IndiGo,Delhi,Mumbai,Morning,zero,2.17,1,5953\n"+
		"SpiceJet, Goa,Pune\n")

	recs, _, err := LoadFares(p)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, model.FareRecord{
		Airline: "IndiGo", SourceCity: "Delhi", DestinationCity: "Mumbai",
		DepartureTime: "Morning", Stops: "zero", Duration: "2.17", DaysLeft: "1", Price: "5953",
	}, recs[0])
	assert.Equal(t, "Goa", recs[1].SourceCity)
	assert.Empty(t, recs[1].Price)
}

func TestLoadCSVSkipsMalformedLine(t *testing.T) {
	p := writeFile(t, "fares.csv", "airline,source_city,destination_city,departure_time,stops,duration,days_left,price\n"+
		"IndiGo,Delhi,Mumbai,Morning,zero,2.17,1,5953\n"+
		"SpiceJet,Delhi,Goa,Ev\"ening,one,2.5,10,5000\n"+
		"Vistara,Chennai,Kolkata,Night,one,3.0,40,7100\n")

	recs, skipped, err := LoadFares(p)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, recs, 2)
	assert.Equal(t, "IndiGo", recs[0].Airline)
	assert.Equal(t, "Vistara", recs[1].Airline)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	p := writeFile(t, "fares.csv", "airline,source_city,price\nIndiGo,Delhi,5000\n")
	_, _, err := LoadFares(p)
	assert.ErrorContains(t, err, "destination_city")
}

func TestLoadUnsupported(t *testing.T) {
	_, _, err := LoadFares(filepath.Join(t.TempDir(), "fares.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"airline", "source_city", "destination_city", "stops", "price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Vistara", "Chennai", "Kolkata", "one", "7400"}))
	p := filepath.Join(t.TempDir(), "fares.xlsx")
	require.NoError(t, f.SaveAs(p))

	recs, _, err := LoadFares(p)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Vistara", recs[0].Airline)
	assert.Equal(t, "one", recs[0].Stops)
	assert.Equal(t, "7400", recs[0].Price)
	assert.Empty(t, recs[0].Duration)
}

func writeSQLiteFares(t *testing.T, records []model.FareRecord) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fares.db")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(p)))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, faredb.EnsureSchema(db))
	tx, err := db.Begin()
	require.NoError(t, err)
	n, err := faredb.Insert(tx, records)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.Equal(t, len(records), n)
	return p
}

func TestLoadSQLite(t *testing.T) {
	p := writeSQLiteFares(t, []model.FareRecord{
		{Airline: "Air India", SourceCity: "Delhi", DestinationCity: "Chennai", DepartureTime: "Night", Stops: "two", Duration: "3.5", DaysLeft: "20", Price: "8100"},
		{Airline: "IndiGo", SourceCity: "Pune", DestinationCity: "Goa"},
	})

	recs, skipped, err := LoadFares(p)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, recs, 2)
	assert.Equal(t, "Air India", recs[0].Airline)
	assert.Equal(t, "3.5", recs[0].Duration)
	assert.Equal(t, "20", recs[0].DaysLeft)
	assert.Equal(t, "8100", recs[0].Price)
	assert.Empty(t, recs[1].Price)

	ex, err := FromRecord(recs[1])
	require.NoError(t, err)
	assert.Equal(t, defaultPrice, ex.Price)
}
