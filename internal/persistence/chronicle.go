// Package persistence writes run records for offline analysis: a SQLite
// chronicle of runs, yearly statistics, events and endings, and a compressed
// JSONL event log. Neither is ever loaded back into a simulation.
package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/populace/internal/ending"
	"github.com/talgya/populace/internal/engine"
	"github.com/talgya/populace/internal/stats"
)

// eventFlushSize is how many buffered events trigger a write.
const eventFlushSize = 256

// Chronicle wraps a SQLite connection holding run records.
type Chronicle struct {
	conn *sqlx.DB

	mu      sync.Mutex
	run     uuid.UUID
	pending []engine.Event
	err     error // first deferred write error
}

// Open opens or creates a chronicle at the given path.
func Open(path string) (*Chronicle, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open chronicle: %w", err)
	}

	c := &Chronicle{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return c, nil
}

// Close flushes buffered events and closes the connection.
func (c *Chronicle) Close() error {
	flushErr := c.Flush()
	if err := c.conn.Close(); err != nil {
		return err
	}
	return flushErr
}

func (c *Chronicle) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		population INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		ended_tick INTEGER,
		ending TEXT,
		grade TEXT,
		score REAL,
		narrative TEXT
	);

	CREATE TABLE IF NOT EXISTS years (
		run_id TEXT NOT NULL REFERENCES runs(id),
		year INTEGER NOT NULL,
		population INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		avg_age REAL NOT NULL,
		avg_health REAL NOT NULL,
		avg_education REAL NOT NULL,
		food REAL NOT NULL,
		housing REAL NOT NULL,
		medicine REAL NOT NULL,
		education REAL NOT NULL,
		money REAL NOT NULL,
		PRIMARY KEY (run_id, year)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// BeginRun records a new run and makes it the target of buffered events.
func (c *Chronicle) BeginRun(run uuid.UUID, seed int64, population int, started time.Time) error {
	if err := c.Flush(); err != nil {
		return err
	}
	_, err := c.conn.Exec(
		"INSERT INTO runs (id, seed, population, started_at) VALUES (?, ?, ?, ?)",
		run.String(), seed, population, started.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	c.mu.Lock()
	c.run = run
	c.mu.Unlock()
	slog.Info("chronicle run started", "run", run)
	return nil
}

// RecordYear stores one history entry for the current run.
func (c *Chronicle) RecordYear(rec stats.YearRecord) error {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	_, err := c.conn.NamedExec(`INSERT INTO years
		(run_id, year, population, births, deaths, avg_age, avg_health, avg_education,
		 food, housing, medicine, education, money)
		VALUES (:run_id, :year, :population, :births, :deaths, :avg_age, :avg_health, :avg_education,
		 :food, :housing, :medicine, :education, :money)`,
		map[string]any{
			"run_id":        run.String(),
			"year":          rec.Year,
			"population":    rec.Population,
			"births":        rec.Births,
			"deaths":        rec.Deaths,
			"avg_age":       rec.AvgAge,
			"avg_health":    rec.AvgHealth,
			"avg_education": rec.AvgEducation,
			"food":          rec.Resources.Food,
			"housing":       rec.Resources.Housing,
			"medicine":      rec.Resources.Medicine,
			"education":     rec.Resources.Education,
			"money":         rec.Resources.Money,
		})
	if err != nil {
		return fmt.Errorf("record year %d: %w", rec.Year, err)
	}
	return nil
}

// Publish buffers an event for the current run. It satisfies engine.Sink;
// write failures are logged and reported by Flush or Close.
func (c *Chronicle) Publish(e engine.Event) {
	c.mu.Lock()
	c.pending = append(c.pending, e)
	full := len(c.pending) >= eventFlushSize
	c.mu.Unlock()
	if full {
		if err := c.Flush(); err != nil {
			slog.Warn("chronicle flush failed", "error", err)
		}
	}
}

// Flush writes buffered events in one transaction.
func (c *Chronicle) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return c.err
	}

	err := c.saveEvents(c.run, c.pending)
	c.pending = c.pending[:0]
	if err != nil && c.err == nil {
		c.err = err
	}
	return c.err
}

func (c *Chronicle) saveEvents(run uuid.UUID, events []engine.Event) error {
	tx, err := c.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events (run_id, tick, kind, category, description)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(run.String(), e.Tick, string(e.Kind), e.Category, e.Description); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
	}
	return tx.Commit()
}

// EndRun flushes events and stores the outcome on the run row.
func (c *Chronicle) EndRun(out ending.Outcome) error {
	if err := c.Flush(); err != nil {
		return err
	}
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	_, err := c.conn.Exec(
		"UPDATE runs SET ended_tick = ?, ending = ?, grade = ?, score = ?, narrative = ? WHERE id = ?",
		out.Tick, string(out.Kind), out.Grade, out.Score.Total, out.Narrative, run.String(),
	)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	slog.Info("chronicle run closed", "run", run, "ending", out.Kind)
	return nil
}

// RunRow is one runs table row.
type RunRow struct {
	ID         string          `db:"id"`
	Seed       int64           `db:"seed"`
	Population int             `db:"population"`
	StartedAt  string          `db:"started_at"`
	EndedTick  sql.NullInt64   `db:"ended_tick"`
	Ending     sql.NullString  `db:"ending"`
	Grade      sql.NullString  `db:"grade"`
	Score      sql.NullFloat64 `db:"score"`
	Narrative  sql.NullString  `db:"narrative"`
}

// Runs lists recorded runs, oldest first.
func (c *Chronicle) Runs() ([]RunRow, error) {
	var rows []RunRow
	err := c.conn.Select(&rows,
		"SELECT id, seed, population, started_at, ended_tick, ending, grade, score, narrative FROM runs ORDER BY started_at, id")
	return rows, err
}

// Years returns the history series of one run.
func (c *Chronicle) Years(run uuid.UUID) ([]stats.YearRecord, error) {
	var recs []stats.YearRecord
	err := c.conn.Select(&recs,
		`SELECT year, population, births, deaths, avg_age, avg_health, avg_education,
		        food AS "resources.food", housing AS "resources.housing",
		        medicine AS "resources.medicine", education AS "resources.education",
		        money AS "resources.money"
		 FROM years WHERE run_id = ? ORDER BY year`,
		run.String(),
	)
	return recs, err
}

// EventCounts returns how many events of each kind a run recorded.
func (c *Chronicle) EventCounts(run uuid.UUID) (map[string]int, error) {
	var rows []struct {
		Kind  string `db:"kind"`
		Count int    `db:"n"`
	}
	err := c.conn.Select(&rows,
		"SELECT kind, COUNT(*) AS n FROM events WHERE run_id = ? GROUP BY kind",
		run.String(),
	)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Kind] = r.Count
	}
	return out, nil
}
