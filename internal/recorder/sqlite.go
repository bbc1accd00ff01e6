package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"LeverageGauge/internal/logger"

	_ "modernc.org/sqlite"
)

// DefaultListLimit caps ListScores when no positive limit is given.
const DefaultListLimit = 100

// SQLiteRecorder persists score history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS score_history (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id        TEXT,
			timestamp       INTEGER NOT NULL,
			score           INTEGER NOT NULL,
			raw             INTEGER NOT NULL,
			safety_warning  INTEGER NOT NULL,
			price           REAL,
			trend_average   REAL,
			rsi             REAL,
			volatility      REAL,
			breadth         REAL,
			valuation_ratio REAL,
			synthetic       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_ts ON score_history(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScore(rec *ScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO score_history
		(cycle_id, timestamp, score, raw, safety_warning,
		 price, trend_average, rsi, volatility, breadth, valuation_ratio, synthetic)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.CycleID, ts.Unix(), rec.Score, rec.Raw, boolInt(rec.SafetyWarning),
		rec.Price, rec.TrendAverage, rec.RSI, rec.Volatility, rec.Breadth,
		rec.ValuationRatio, boolInt(rec.Synthetic),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) ListScores(limit int) ([]ScoreRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT cycle_id, timestamp, score, raw, safety_warning,
		price, trend_average, rsi, volatility, breadth, valuation_ratio, synthetic
		FROM score_history ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := []ScoreRecord{}
	for rows.Next() {
		var (
			rec            ScoreRecord
			ts             int64
			warning, synth int
		)
		if err := rows.Scan(&rec.CycleID, &ts, &rec.Score, &rec.Raw, &warning,
			&rec.Price, &rec.TrendAverage, &rec.RSI, &rec.Volatility, &rec.Breadth,
			&rec.ValuationRatio, &synth); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		rec.Timestamp = time.Unix(ts, 0).UTC()
		rec.SafetyWarning = warning != 0
		rec.Synthetic = synth != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	logger.Infof("closing sqlite recorder")
	return r.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
