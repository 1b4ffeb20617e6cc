// Package storage keeps the local index of processed filings in sqlite,
// so repeated runs over the same date range skip work already done.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS filings (
  doc_id        TEXT PRIMARY KEY,
  edinet_code   TEXT NOT NULL,
  sec_code      TEXT,
  filer_name    TEXT,
  doc_type      TEXT NOT NULL,
  submitted_at  TEXT NOT NULL,
  period_start  TEXT,
  period_end    TEXT,
  found_items   INTEGER NOT NULL DEFAULT 0,
  total_items   INTEGER NOT NULL DEFAULT 0,
  success_rate  REAL NOT NULL DEFAULT 0,
  json_path     TEXT,
  csv_path      TEXT,
  processed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_filings_edinet ON filings(edinet_code, submitted_at);
CREATE INDEX IF NOT EXISTS idx_filings_type ON filings(doc_type);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ProcessedFiling is one row of the filing index.
type ProcessedFiling struct {
	DocID       string    `json:"doc_id"`
	EdinetCode  string    `json:"edinet_code"`
	SecCode     string    `json:"sec_code"`
	FilerName   string    `json:"filer_name"`
	DocType     string    `json:"doc_type"`
	SubmittedAt string    `json:"submitted_at"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	FoundItems  int       `json:"found_items"`
	TotalItems  int       `json:"total_items"`
	SuccessRate float64   `json:"success_rate"`
	JSONPath    string    `json:"json_path"`
	CSVPath     string    `json:"csv_path"`
	ProcessedAt time.Time `json:"processed_at"`
}

// IsProcessed reports whether a filing has already been extracted.
func (d *DB) IsProcessed(ctx context.Context, docID string) (bool, error) {
	var one int
	err := d.sql.QueryRowContext(ctx, "SELECT 1 FROM filings WHERE doc_id = ?", docID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed records a completed extraction. Reprocessing the same
// doc_id replaces the previous row.
func (d *DB) MarkProcessed(ctx context.Context, f ProcessedFiling) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO filings(doc_id, edinet_code, sec_code, filer_name, doc_type, submitted_at, period_start, period_end, found_items, total_items, success_rate, json_path, csv_path, processed_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(doc_id) DO UPDATE SET
  found_items = excluded.found_items,
  total_items = excluded.total_items,
  success_rate = excluded.success_rate,
  json_path = excluded.json_path,
  csv_path = excluded.csv_path,
  processed_at = CURRENT_TIMESTAMP`,
		f.DocID, f.EdinetCode, nullIfEmpty(f.SecCode), nullIfEmpty(f.FilerName), f.DocType,
		f.SubmittedAt, nullIfEmpty(f.PeriodStart), nullIfEmpty(f.PeriodEnd),
		f.FoundItems, f.TotalItems, f.SuccessRate, nullIfEmpty(f.JSONPath), nullIfEmpty(f.CSVPath))
	return err
}

// ListProcessed returns the index rows for one issuer, newest first. An
// empty edinetCode lists everything.
func (d *DB) ListProcessed(ctx context.Context, edinetCode string) ([]ProcessedFiling, error) {
	query := "SELECT doc_id, edinet_code, sec_code, filer_name, doc_type, submitted_at, period_start, period_end, found_items, total_items, success_rate, json_path, csv_path, processed_at FROM filings"
	args := []any{}
	if edinetCode != "" {
		query += " WHERE edinet_code = ?"
		args = append(args, edinetCode)
	}
	query += " ORDER BY submitted_at DESC, doc_id"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProcessedFiling
	for rows.Next() {
		var (
			f                               ProcessedFiling
			sec, filer, ps, pe, jsonP, csvP sql.NullString
		)
		if err := rows.Scan(&f.DocID, &f.EdinetCode, &sec, &filer, &f.DocType, &f.SubmittedAt,
			&ps, &pe, &f.FoundItems, &f.TotalItems, &f.SuccessRate, &jsonP, &csvP, &f.ProcessedAt); err != nil {
			return nil, err
		}
		f.SecCode, f.FilerName = sec.String, filer.String
		f.PeriodStart, f.PeriodEnd = ps.String, pe.String
		f.JSONPath, f.CSVPath = jsonP.String, csvP.String
		out = append(out, f)
	}
	return out, rows.Err()
}

// TypeCount is one line of the per-document-type statistics.
type TypeCount struct {
	DocType string  `json:"doc_type"`
	Count   int     `json:"count"`
	AvgRate float64 `json:"avg_success_rate"`
}

// Stats returns per-document-type counts and average success rates,
// ordered by count descending.
func (d *DB) Stats(ctx context.Context) ([]TypeCount, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT doc_type, COUNT(*), AVG(success_rate)
FROM filings GROUP BY doc_type ORDER BY COUNT(*) DESC, doc_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.DocType, &tc.Count, &tc.AvgRate); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
