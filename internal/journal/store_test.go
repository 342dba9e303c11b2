package journal

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HendryAvila/planmcp/internal/filestore"
	"github.com/HendryAvila/planmcp/internal/plans"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan() plans.Plan {
	return plans.Plan{
		ID:   "plan-abc",
		Name: "Release",
		Tasks: []plans.Task{
			{ID: "task-1", Title: "a", Status: plans.TaskCompleted, Order: 1},
			{ID: "task-2", Title: "b", Status: plans.TaskPending, Order: 2},
		},
	}
}

func TestNew_CreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "journal.db")); err != nil {
		t.Errorf("journal.db not created: %v", err)
	}
}

func TestNew_OpenError(t *testing.T) {
	orig := openDB
	openDB = func(driver, dsn string) (*sql.DB, error) { return nil, errors.New("no driver") }
	t.Cleanup(func() { openDB = orig })

	if _, err := New(Config{DataDir: t.TempDir()}); err == nil {
		t.Fatal("expected error from failing openDB")
	}
}

func TestNew_ReopenKeepsEvents(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(Event{PlanID: "p1", PlanName: "One", Kind: KindCreated}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	events, err := s2.History("p1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("events after reopen = %d, want 1", len(events))
	}
}

func TestRecord_RequiresPlanID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Record(Event{Kind: KindCreated}); err == nil {
		t.Error("expected error for empty plan id")
	}
}

func TestObserver_RecordsEvents(t *testing.T) {
	orig := timeNow
	timeNow = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	t.Cleanup(func() { timeNow = orig })

	s := newTestStore(t)
	p := samplePlan()

	s.OnPlanCreated(p)
	s.OnTaskStatusChanged(p, "task-2", plans.TaskPending, plans.TaskInProgress)
	s.OnPlanActivated(p)
	s.OnPlanDeleted(p)

	events, err := s.History(p.ID, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("got %d events, want 4", len(events))
	}

	wantKinds := []Kind{KindDeleted, KindActivated, KindStatusChange, KindCreated}
	for i, e := range events {
		if e.Kind != wantKinds[i] {
			t.Errorf("event %d kind = %q, want %q", i, e.Kind, wantKinds[i])
		}
		if e.PlanName != "Release" || e.Completed != 1 || e.Total != 2 {
			t.Errorf("event %d = %+v", i, e)
		}
		if e.CreatedAt != "2026-02-03 04:05:06" {
			t.Errorf("event %d created_at = %q", i, e.CreatedAt)
		}
	}

	change := events[2]
	if change.TaskID != "task-2" || change.FromStatus != "pending" || change.ToStatus != "in_progress" {
		t.Errorf("status change = %+v", change)
	}
	if events[3].TaskID != "" || events[3].FromStatus != "" {
		t.Errorf("created event should have no task fields: %+v", events[3])
	}
}

func TestHistory_FilterAndLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.Record(Event{PlanID: "a", PlanName: "A", Kind: KindActivated}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Record(Event{PlanID: "b", PlanName: "B", Kind: KindCreated}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		planID string
		limit  int
		want   int
	}{
		{"one plan", "a", 10, 5},
		{"limited", "a", 2, 2},
		{"all plans", "", 10, 6},
		{"default limit", "", 0, 6},
		{"unknown plan", "zzz", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.History(tt.planID, tt.limit)
			if err != nil {
				t.Fatalf("History: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}

	latest, err := s.History("", 1)
	if err != nil {
		t.Fatal(err)
	}
	if latest[0].PlanID != "b" {
		t.Errorf("newest event = %+v, want plan b", latest[0])
	}
}

func TestCountByKind(t *testing.T) {
	s := newTestStore(t)
	p := samplePlan()

	s.OnPlanCreated(p)
	s.OnTaskStatusChanged(p, "task-1", plans.TaskPending, plans.TaskCompleted)
	s.OnTaskStatusChanged(p, "task-2", plans.TaskPending, plans.TaskInProgress)
	if _, err := s.Record(Event{PlanID: "other", PlanName: "O", Kind: KindCreated}); err != nil {
		t.Fatal(err)
	}

	counts, err := s.CountByKind(p.ID)
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	if counts[KindCreated] != 1 || counts[KindStatusChange] != 2 || counts[KindDeleted] != 0 {
		t.Errorf("counts = %v", counts)
	}

	all, err := s.CountByKind("")
	if err != nil {
		t.Fatal(err)
	}
	if all[KindCreated] != 2 {
		t.Errorf("all created = %d, want 2", all[KindCreated])
	}
}

func TestObserver_WithRepository(t *testing.T) {
	s := newTestStore(t)
	repo := plans.NewRepository(filestore.NewOSStore(), filepath.Join(t.TempDir(), "plans"))
	repo.SetObserver(s)

	p, err := repo.CreatePlan("Wired", "", []string{"one", "two"})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if _, err := repo.UpdateTaskStatus(p.ID, "task-1", plans.TaskCompleted); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	events, err := s.History(p.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Kind != KindStatusChange || events[0].Completed != 1 || events[0].Total != 2 {
		t.Errorf("latest event = %+v", events[0])
	}
}
