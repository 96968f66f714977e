package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the render log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			cycle_id     TEXT NOT NULL,
			ticker       TEXT NOT NULL,
			time_range   TEXT,
			metric_view  TEXT,
			source       TEXT,
			bars         INTEGER,
			latest_price REAL,
			total_return REAL,
			ok           INTEGER NOT NULL,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_render_ts ON render_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_render_ticker ON render_events(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps undefined metrics to SQL NULL.
func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func (r *SQLiteRecorder) RecordRender(evt *RenderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	ok := 0
	if evt.OK {
		ok = 1
	}
	_, err := r.db.Exec(`INSERT INTO render_events
		(timestamp, cycle_id, ticker, time_range, metric_view, source, bars, latest_price, total_return, ok, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ts.UnixMilli(), evt.CycleID, evt.Ticker, evt.TimeRange, evt.MetricView, evt.Source,
		evt.Bars, nullable(evt.LatestPrice), nullable(evt.TotalReturn), ok, evt.Error,
	)
	return err
}

// RecentRenders returns up to limit events, newest first.
func (r *SQLiteRecorder) RecentRenders(limit int) ([]RenderEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`SELECT timestamp, cycle_id, ticker, time_range, metric_view, source,
		bars, latest_price, total_return, ok, error
		FROM render_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query render events: %w", err)
	}
	defer rows.Close()

	var out []RenderEvent
	for rows.Next() {
		var (
			evt         RenderEvent
			ts          int64
			price, tret sql.NullFloat64
			ok          int
		)
		if err := rows.Scan(&ts, &evt.CycleID, &evt.Ticker, &evt.TimeRange, &evt.MetricView, &evt.Source,
			&evt.Bars, &price, &tret, &ok, &evt.Error); err != nil {
			return nil, fmt.Errorf("scan render event: %w", err)
		}
		evt.Timestamp = time.UnixMilli(ts)
		evt.LatestPrice = math.NaN()
		if price.Valid {
			evt.LatestPrice = price.Float64
		}
		evt.TotalReturn = math.NaN()
		if tret.Valid {
			evt.TotalReturn = tret.Float64
		}
		evt.OK = ok == 1
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
