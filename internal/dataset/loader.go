package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"flight-forecast-backend/internal/model"
	"flight-forecast-backend/pkg/faredb"
)

var (
	ErrNoRows            = errors.New("fare source yielded no usable rows")
	ErrUnsupportedFormat = errors.New("unsupported fare table format")
)

// column aliases accepted in table headers
var columnAliases = map[string][]string{
	"airline":          {"airline"},
	"source_city":      {"source_city", "source"},
	"destination_city": {"destination_city", "destination"},
	"departure_time":   {"departure_time", "departure_time_bucket"},
	"stops":            {"stops", "stops_label"},
	"duration":         {"duration"},
	"days_left":        {"days_left"},
	"price":            {"price"},
}

var requiredColumns = []string{"airline", "source_city", "destination_city"}

// LoadFares reads a historical fare table; the format follows the extension
// (.csv, .xlsx, .db/.sqlite). Lines that cannot be parsed are dropped and
// counted in skipped.
func LoadFares(path string) (records []model.FareRecord, skipped int, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		records, err = loadXLSX(path)
		return records, 0, err
	case ".db", ".sqlite", ".sqlite3":
		return faredb.ReadAll(path)
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func loadCSV(path string) ([]model.FareRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	var rows [][]string
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	records, err := tableRecords(header, rows)
	return records, skipped, err
}

func loadXLSX(path string) ([]model.FareRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	return tableRecords(rows[0], rows[1:])
}

// tableRecords maps header names onto FareRecord fields. Short rows leave the
// missing cells empty.
func tableRecords(header []string, rows [][]string) ([]model.FareRecord, error) {
	pos := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for col, aliases := range columnAliases {
			for _, a := range aliases {
				if h == a {
					if _, seen := pos[col]; !seen {
						pos[col] = i
					}
				}
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("fare table missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := pos[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := make([]model.FareRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.FareRecord{
			Airline:         cell(row, "airline"),
			SourceCity:      cell(row, "source_city"),
			DestinationCity: cell(row, "destination_city"),
			DepartureTime:   cell(row, "departure_time"),
			Stops:           cell(row, "stops"),
			Duration:        cell(row, "duration"),
			DaysLeft:        cell(row, "days_left"),
			Price:           cell(row, "price"),
		})
	}
	return out, nil
}
