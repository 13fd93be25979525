package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"roboquant/pkg/timeframe"
	"roboquant/pkg/timeseries"
)

// SQLiteLogger persists metrics to a SQLite file so a backtest's history
// survives the process. Its Open/migrate/schema_version lifecycle is
// modeled directly on stadam23-Eve-flipper's internal/db.DB: the same
// WAL/busy_timeout/foreign_keys pragma string, the same incremental
// schema_version-guarded migration, one row per observation rather than
// this package's in-memory loggers' accumulated slices.
type SQLiteLogger struct {
	db *sql.DB

	mu      sync.Mutex
	lastRun string
}

// OpenSQLiteLogger opens (or creates) the database at path and runs
// migrations.
func OpenSQLiteLogger(path string) (*SQLiteLogger, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("journal: ping db: %w", err)
	}
	l := &SQLiteLogger{db: sqlDB}
	if err := l.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("journal: migrate db: %w", err)
	}
	return l, nil
}

// Close releases the underlying connection pool.
func (l *SQLiteLogger) Close() error { return l.db.Close() }

func (l *SQLiteLogger) migrate() error {
	var version int
	l.db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)

	if version < 1 {
		if _, err := l.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				name       TEXT PRIMARY KEY,
				started_at TEXT NOT NULL,
				ended_at   TEXT
			);

			CREATE TABLE IF NOT EXISTS metrics (
				run  TEXT NOT NULL,
				name TEXT NOT NULL,
				time TEXT NOT NULL,
				value REAL NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_metrics_run_name_time ON metrics(run, name, time);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`); err != nil {
			return err
		}
	}
	return nil
}

func (l *SQLiteLogger) Start(run string, _ timeframe.Timeframe) {
	l.mu.Lock()
	l.lastRun = run
	l.mu.Unlock()
	l.db.Exec(`INSERT OR IGNORE INTO runs (name, started_at) VALUES (?, ?)`, run, time.Now().UTC().Format(time.RFC3339Nano))
}

func (l *SQLiteLogger) End(run string) {
	l.db.Exec(`UPDATE runs SET ended_at = ? WHERE name = ?`, time.Now().UTC().Format(time.RFC3339Nano), run)
}

func (l *SQLiteLogger) Log(metrics map[string]float64, at time.Time, run string) {
	l.mu.Lock()
	l.lastRun = run
	l.mu.Unlock()

	tx, err := l.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare(`INSERT INTO metrics (run, name, time, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return
	}
	ts := at.UTC().Format(time.RFC3339Nano)
	for name, value := range metrics {
		stmt.Exec(run, name, ts, value)
	}
	stmt.Close()
	tx.Commit()
}

func (l *SQLiteLogger) GetMetric(name string, run ...string) timeseries.TimeSeries {
	r := l.resolveRun(run)
	rows, err := l.db.Query(`SELECT time, value FROM metrics WHERE run = ? AND name = ? ORDER BY time ASC`, r, name)
	if err != nil {
		return timeseries.New(nil, nil)
	}
	defer rows.Close()

	var times timeframe.Timeline
	var values []float64
	for rows.Next() {
		var ts string
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			continue
		}
		if len(times) > 0 && !t.After(times[len(times)-1]) {
			continue // duplicate/out-of-order timestamp for this metric; keep the first
		}
		times = append(times, t)
		values = append(values, value)
	}
	return timeseries.New(times, values)
}

func (l *SQLiteLogger) resolveRun(run []string) string {
	if len(run) > 0 {
		return run[0]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastRun
}

func (l *SQLiteLogger) GetMetricNames() []string {
	rows, err := l.db.Query(`SELECT DISTINCT name FROM metrics ORDER BY name`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			out = append(out, name)
		}
	}
	return out
}

func (l *SQLiteLogger) Runs() []string {
	rows, err := l.db.Query(`SELECT name FROM runs ORDER BY started_at`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			out = append(out, name)
		}
	}
	return out
}
