package faredb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"flight-forecast-backend/internal/model"

	_ "modernc.org/sqlite"
)

const DefaultDBFileName = "fares.db"

// ResolvePath appends DefaultDBFileName when p names a directory.
func ResolvePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if filepath.Ext(p) == "" {
		return filepath.Join(p, DefaultDBFileName)
	}
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return filepath.Join(p, DefaultDBFileName)
	}
	return p
}

func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fares (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airline TEXT,
			source_city TEXT,
			destination_city TEXT,
			departure_time TEXT,
			stops TEXT,
			duration REAL,
			days_left INTEGER,
			price INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fares_route ON fares(source_city, destination_city);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Insert writes records through one prepared statement inside tx.
func Insert(tx *sql.Tx, records []model.FareRecord) (int, error) {
	stmt, err := tx.Prepare(`
INSERT INTO fares(
  airline, source_city, destination_city, departure_time, stops, duration, days_left, price
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for _, r := range records {
		if _, err := stmt.Exec(
			r.Airline,
			r.SourceCity,
			r.DestinationCity,
			r.DepartureTime,
			r.Stops,
			nullable(r.Duration),
			nullable(r.DaysLeft),
			nullable(r.Price),
		); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// ReadAll loads every fare row in insertion order. NULL columns read as "".
// Rows that fail to scan are dropped and counted in skipped.
func ReadAll(dbPath string) (records []model.FareRecord, skipped int, err error) {
	dbPath = ResolvePath(dbPath)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, 0, err
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", filepath.ToSlash(dbPath)))
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	rows, err := db.Query(`
SELECT airline, source_city, destination_city, departure_time, stops, duration, days_left, price
FROM fares
ORDER BY id ASC
`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.FareRecord, 0, 1024)
	for rows.Next() {
		var cols [8]sql.NullString
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5], &cols[6], &cols[7]); err != nil {
			skipped++
			continue
		}
		out = append(out, model.FareRecord{
			Airline:         cols[0].String,
			SourceCity:      cols[1].String,
			DestinationCity: cols[2].String,
			DepartureTime:   cols[3].String,
			Stops:           cols[4].String,
			Duration:        cols[5].String,
			DaysLeft:        cols[6].String,
			Price:           cols[7].String,
		})
	}
	if err := rows.Err(); err != nil {
		return out, skipped, err
	}
	return out, skipped, nil
}
