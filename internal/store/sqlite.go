package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Daily bar cache
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(symbol, date)
	);
	CREATE INDEX IF NOT EXISTS idx_bars_symbol_date ON bars(symbol, date);

	-- Completed screening runs
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at DATETIME NOT NULL,
		universe INTEGER NOT NULL,
		candidates INTEGER NOT NULL,
		matches TEXT NOT NULL
	);

	-- Completed parameter searches
	CREATE TABLE IF NOT EXISTS tuning_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at DATETIME NOT NULL,
		params TEXT NOT NULL,
		best_avg REAL NOT NULL,
		iterations INTEGER NOT NULL,
		reason TEXT NOT NULL,
		match_count INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveBars upserts bars for a symbol.
func (s *SQLiteStore) SaveBars(ctx context.Context, symbol string, bars []models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Date.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetBars returns bars for a symbol in [from, to], ordered by date.
func (s *SQLiteStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume FROM bars
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []models.Bar
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// LastBarDate returns the most recent cached bar date for a symbol, or the
// zero time when nothing is cached.
func (s *SQLiteStore) LastBarDate(ctx context.Context, symbol string) (time.Time, error) {
	var raw sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM bars WHERE symbol = ?`, symbol).Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	return raw.Time, nil
}

// SaveScan persists one screening run.
func (s *SQLiteStore) SaveScan(ctx context.Context, scan *ScanRecord) error {
	matches, err := json.Marshal(scan.Matches)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scans (ran_at, universe, candidates, matches)
		VALUES (?, ?, ?, ?)`,
		scan.RanAt.UTC(), scan.Universe, scan.Candidates, string(matches))
	if err != nil {
		return err
	}
	scan.ID, _ = res.LastInsertId()
	return nil
}

// RecentScans returns the most recent screening runs, newest first.
func (s *SQLiteStore) RecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ran_at, universe, candidates, matches FROM scans
		ORDER BY ran_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var matches string
		if err := rows.Scan(&rec.ID, &rec.RanAt, &rec.Universe, &rec.Candidates, &matches); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matches), &rec.Matches); err != nil {
			return nil, err
		}
		scans = append(scans, rec)
	}
	return scans, rows.Err()
}

// SaveTuningRun persists one parameter search.
func (s *SQLiteStore) SaveTuningRun(ctx context.Context, run *TuningRecord) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tuning_runs (ran_at, params, best_avg, iterations, reason, match_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.RanAt.UTC(), run.ParamsJSON, run.BestAvg, run.Iterations, run.Reason, run.MatchCount)
	if err != nil {
		return err
	}
	run.ID, _ = res.LastInsertId()
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
