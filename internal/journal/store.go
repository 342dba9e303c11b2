// Package journal keeps an append-only history of plan mutations in
// SQLite. Plan files stay the source of truth; the journal only answers
// "what happened to this plan and when".
package journal

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/HendryAvila/planmcp/internal/plans"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is replaced in tests to pin created_at.
var timeNow = time.Now

// ─── Types ───────────────────────────────────────────────────────────────────

// Kind identifies what happened to a plan.
type Kind string

const (
	KindCreated      Kind = "created"
	KindStatusChange Kind = "status_changed"
	KindActivated    Kind = "activated"
	KindDeleted      Kind = "deleted"
)

// Event is one recorded plan mutation.
type Event struct {
	ID         int64  `json:"id"`
	PlanID     string `json:"plan_id"`
	PlanName   string `json:"plan_name"`
	Kind       Kind   `json:"kind"`
	TaskID     string `json:"task_id,omitempty"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	CreatedAt  string `json:"created_at"`
}

// Config holds journal configuration.
type Config struct {
	DataDir string
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed journal. It implements plans.Observer.
type Store struct {
	db *sql.DB
}

var _ plans.Observer = (*Store)(nil)

// New creates the data directory if needed, opens SQLite with WAL mode
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "journal.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plan_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id     TEXT    NOT NULL,
			plan_name   TEXT    NOT NULL,
			kind        TEXT    NOT NULL,
			task_id     TEXT,
			from_status TEXT,
			to_status   TEXT,
			completed   INTEGER NOT NULL DEFAULT 0,
			total       INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_plan_events_plan ON plan_events(plan_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Record appends an event and returns its ID. CreatedAt is filled in when
// empty.
func (s *Store) Record(e Event) (int64, error) {
	if e.PlanID == "" {
		return 0, fmt.Errorf("journal: plan id is required")
	}
	if e.CreatedAt == "" {
		e.CreatedAt = Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO plan_events (plan_id, plan_name, kind, task_id, from_status, to_status, completed, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.PlanID, e.PlanName, string(e.Kind),
		nullableString(e.TaskID), nullableString(e.FromStatus), nullableString(e.ToStatus),
		e.Completed, e.Total, e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("journal: insert event: %w", err)
	}
	return res.LastInsertId()
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// History returns up to limit events, newest first. An empty planID
// returns events across all plans.
func (s *Store) History(planID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, plan_id, plan_name, kind, task_id, from_status, to_status, completed, total, created_at
		FROM plan_events
		WHERE 1=1
	`
	args := []any{}
	if planID != "" {
		query += " AND plan_id = ?"
		args = append(args, planID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var (
			e                Event
			kind             string
			taskID, from, to sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.PlanID, &e.PlanName, &kind, &taskID, &from, &to, &e.Completed, &e.Total, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		e.Kind = Kind(kind)
		e.TaskID, e.FromStatus, e.ToStatus = taskID.String, from.String, to.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind returns how many events of each kind were recorded for
// planID, or across all plans when planID is empty.
func (s *Store) CountByKind(planID string) (map[Kind]int, error) {
	query := `SELECT kind, COUNT(*) FROM plan_events`
	args := []any{}
	if planID != "" {
		query += " WHERE plan_id = ?"
		args = append(args, planID)
	}
	query += " GROUP BY kind"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: count events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("journal: scan count: %w", err)
		}
		counts[Kind(kind)] = n
	}
	return counts, rows.Err()
}

// ─── plans.Observer ──────────────────────────────────────────────────────────

// These are best-effort: a journal failure is logged and never fails the
// plan mutation that triggered it.

func (s *Store) OnPlanCreated(p plans.Plan) {
	s.recordPlan(p, Event{Kind: KindCreated})
}

func (s *Store) OnTaskStatusChanged(p plans.Plan, taskID string, from, to plans.TaskStatus) {
	s.recordPlan(p, Event{
		Kind:       KindStatusChange,
		TaskID:     taskID,
		FromStatus: string(from),
		ToStatus:   string(to),
	})
}

func (s *Store) OnPlanActivated(p plans.Plan) {
	s.recordPlan(p, Event{Kind: KindActivated})
}

func (s *Store) OnPlanDeleted(p plans.Plan) {
	s.recordPlan(p, Event{Kind: KindDeleted})
}

func (s *Store) recordPlan(p plans.Plan, e Event) {
	e.PlanID = p.ID
	e.PlanName = p.Name
	e.Completed = p.CompletedCount()
	e.Total = len(p.Tasks)
	if _, err := s.Record(e); err != nil {
		log.Printf("WARNING: journal: record %s for %q: %v", e.Kind, p.ID, err)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Now returns the current time formatted for SQLite.
func Now() string {
	return timeNow().UTC().Format("2006-01-02 15:04:05")
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
