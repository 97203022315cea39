package faregen

import (
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/dataset"
	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/pkg/faredb"
)

// Header column order for csv and xlsx exports
var Header = []string{"airline", "source_city", "destination_city", "departure_time", "stops", "duration", "days_left", "price"}

// Options export settings
type Options struct {
	OutputPath string
	Samples    int
	Seed       int64
}

// Execute parses args and writes one export.
func Execute(args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("datasetgen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts Options
	fs.StringVar(&opts.OutputPath, "output", "data/fares.db", "")
	fs.IntVar(&opts.Samples, "samples", dataset.DefaultSyntheticSamples, "")
	fs.Int64Var(&opts.Seed, "seed", dataset.DefaultSyntheticSeed, "")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rows, err := GenerateOnce(opts)
	if err != nil {
		return err
	}
	logger.Info("fare table written", zap.String("output", opts.OutputPath), zap.Int("rows", rows), zap.Int64("seed", opts.Seed))
	return nil
}

// GenerateOnce draws the synthetic dataset and writes it in the historical
// table shape. The format follows the output extension (.db/.sqlite, .csv,
// .xlsx); a bare directory gets fares.db.
func GenerateOnce(opts Options) (int, error) {
	out := faredb.ResolvePath(opts.OutputPath)
	if out == "" {
		return 0, fmt.Errorf("output path is required")
	}
	ds, err := dataset.Synthetic(dataset.SyntheticOptions{Samples: opts.Samples, Seed: opts.Seed})
	if err != nil {
		return 0, err
	}
	records := make([]model.FareRecord, len(ds.Examples))
	for i, ex := range ds.Examples {
		records[i] = dataset.ToRecord(ex)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}
	ext := filepath.Ext(out)
	tmp := strings.TrimSuffix(out, ext) + ".tmp" + ext
	_ = os.Remove(tmp)

	var n int
	switch strings.ToLower(ext) {
	case ".db", ".sqlite", ".sqlite3":
		n, err = writeSQLite(tmp, records)
	case ".csv":
		n, err = writeCSV(tmp, records)
	case ".xlsx":
		n, err = writeXLSX(tmp, records)
	default:
		return 0, fmt.Errorf("%w: %s", dataset.ErrUnsupportedFormat, out)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, out); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}
	return n, nil
}

func writeSQLite(path string, records []model.FareRecord) (int, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(path)))
	if err != nil {
		return 0, err
	}
	defer db.Close()
	if _, err := db.Exec("PRAGMA journal_mode=OFF"); err != nil {
		return 0, err
	}
	if err := faredb.EnsureSchema(db); err != nil {
		return 0, err
	}
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	n, err := faredb.Insert(tx, records)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

func writeCSV(path string, records []model.FareRecord) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return 0, err
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return len(records), f.Close()
}

func writeXLSX(path string, records []model.FareRecord) (int, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, err
	}
	if err := sw.SetRow("A1", cells(Header)); err != nil {
		return 0, err
	}
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, cells(row(r))); err != nil {
			return 0, err
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if err := f.SaveAs(path); err != nil {
		return 0, err
	}
	return len(records), nil
}

func row(r model.FareRecord) []string {
	return []string{r.Airline, r.SourceCity, r.DestinationCity, r.DepartureTime, r.Stops, r.Duration, r.DaysLeft, r.Price}
}

func cells(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
