package plans

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func samplePlan() Plan {
	return Plan{
		ID:          "plan-1a2b3c4d",
		Name:        "Ship release",
		Description: "Cut and publish v1.",
		CreatedAt:   time.Date(2026, 3, 4, 9, 5, 7, 0, time.Local),
		Status:      PlanStatusInProgress,
		IsActive:    true,
		Tasks: []Task{
			{ID: "task-1", Title: "Tag the build", Status: TaskCompleted, Order: 1},
			{ID: "task-2", Title: "Write notes", Status: TaskInProgress, Order: 2},
			{ID: "task-3", Title: "Announce", Status: TaskPending, Order: 3},
			{ID: "task-4", Title: "Old idea", Status: TaskCancelled, Order: 4},
		},
	}
}

func TestEncode_Layout(t *testing.T) {
	want := "# Plan: Ship release\n\n" +
		"**Created:** 2026-03-04 09:05:07\n" +
		"**ID:** plan-1a2b3c4d\n" +
		"**Status:** In progress\n" +
		"**Active:** true\n\n" +
		"## Description\n" +
		"Cut and publish v1.\n\n" +
		"## Tasks\n" +
		"- [x] task-1: Tag the build (completed)\n" +
		"- [→] task-2: Write notes (in_progress)\n" +
		"- [ ] task-3: Announce (pending)\n" +
		"- [c] task-4: Old idea (cancelled)\n"

	if got := Encode(samplePlan()); got != want {
		t.Errorf("Encode() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	in := samplePlan()
	in.Description = "line one\nline two"

	out, err := Decode(Encode(in), "/plans/x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if out.ID != in.ID || out.Name != in.Name || out.Status != in.Status || out.IsActive != in.IsActive {
		t.Errorf("header mismatch: got %+v", out)
	}
	if out.Description != in.Description {
		t.Errorf("Description = %q, want %q", out.Description, in.Description)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
	if out.FilePath != "/plans/x.md" {
		t.Errorf("FilePath = %q", out.FilePath)
	}
	if len(out.Tasks) != len(in.Tasks) {
		t.Fatalf("got %d tasks, want %d", len(out.Tasks), len(in.Tasks))
	}
	for i := range in.Tasks {
		if out.Tasks[i] != in.Tasks[i] {
			t.Errorf("task %d = %+v, want %+v", i, out.Tasks[i], in.Tasks[i])
		}
	}
}

func TestDecode_EmptyStatus(t *testing.T) {
	in := samplePlan()
	in.Status = ""

	out, err := Decode(Encode(in), "x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Status != "" {
		t.Errorf("Status = %q, want empty", out.Status)
	}
}

func TestDecode_RenumbersOrder(t *testing.T) {
	in := samplePlan()
	in.Tasks[0].Order = 10
	in.Tasks[1].Order = 3

	out, err := Decode(Encode(in), "x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, task := range out.Tasks {
		if task.Order != i+1 {
			t.Errorf("task %s order = %d, want %d", task.ID, task.Order, i+1)
		}
	}
}

func TestDecode_TaskStatusResolution(t *testing.T) {
	tests := []struct {
		line string
		want TaskStatus
	}{
		{"- [ ] task-1: Foo (completed)", TaskCompleted},
		{"- [x] task-1: Foo (pending)", TaskPending},
		{"- [x] task-1: Foo", TaskCompleted},
		{"- [X] task-1: Foo", TaskCompleted},
		{"- [→] task-1: Foo", TaskInProgress},
		{"- [c] task-1: Foo", TaskCancelled},
		{"- [ ] task-1: Foo", TaskPending},
		{"- [x] task-1: Foo (weird)", TaskCompleted},
		{"- [?] task-1: Foo (bogus)", TaskPending},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			content := minimalHeader() + tt.line + "\n"
			p, err := Decode(content, "x.md")
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if p.Tasks[0].Status != tt.want {
				t.Errorf("status = %q, want %q", p.Tasks[0].Status, tt.want)
			}
			if p.Tasks[0].Title != "Foo" {
				t.Errorf("title = %q, want Foo", p.Tasks[0].Title)
			}
		})
	}
}

func TestDecode_ActiveIsOptional(t *testing.T) {
	content := strings.Replace(minimalHeader(), "**Active:** true\n", "", 1) + "- [ ] task-1: Foo (pending)\n"
	p, err := Decode(content, "x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.IsActive {
		t.Error("plan without an Active line should be inactive")
	}
}

func TestDecode_ToleratesCRLFAndIndent(t *testing.T) {
	content := strings.ReplaceAll(minimalHeader()+"   - [x] task-1: Foo (completed)  \n", "\n", "\r\n")
	p, err := Decode(content, "x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Name != "Demo" || p.Tasks[0].Status != TaskCompleted {
		t.Errorf("unexpected plan: %+v", p)
	}
}

func TestDecode_SkipsNonTaskLines(t *testing.T) {
	content := minimalHeader() +
		"Some notes\n" +
		"- [ ] task-1: First (pending)\n" +
		"\n" +
		"- not a task\n" +
		"- [x] task-2: Second (completed)\n"
	p, err := Decode(content, "x.md")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(p.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(p.Tasks))
	}
	if p.Tasks[1].ID != "task-2" || p.Tasks[1].Order != 2 {
		t.Errorf("second task = %+v", p.Tasks[1])
	}
}

func TestDecode_Failures(t *testing.T) {
	full := minimalHeader() + "- [ ] task-1: Foo (pending)\n"
	tasksFirst := "# Plan: Demo\n**Created:** 2026-01-02 03:04:05\n**ID:** plan-demo\n**Status:** In progress\n\n" +
		"## Tasks\n- [ ] task-1: Foo (pending)\n\n## Description\ndesc\n"

	tests := []struct {
		name    string
		content string
		kind    ParseErrorKind
	}{
		{"missing title", strings.Replace(full, "# Plan: Demo\n", "", 1), MissingField},
		{"missing created", strings.Replace(full, "**Created:** 2026-01-02 03:04:05\n", "", 1), MissingField},
		{"missing id", strings.Replace(full, "**ID:** plan-demo\n", "", 1), MissingField},
		{"missing status", strings.Replace(full, "**Status:** In progress\n", "", 1), MissingField},
		{"bad date", strings.Replace(full, "2026-01-02 03:04:05", "yesterday", 1), BadDate},
		{"missing description", strings.Replace(full, "## Description\n", "", 1), MissingSection},
		{"missing tasks heading", strings.Replace(full, "## Tasks\n", "", 1), MissingSection},
		{"tasks before description", tasksFirst, MissingSection},
		{"no tasks", minimalHeader(), NoTasks},
		{"empty file", "", MissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.content, "bad.md")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrParse) {
				t.Errorf("error should match ErrParse: %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error is not *ParseError: %T", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", pe.Kind, tt.kind)
			}
			if pe.Path != "bad.md" {
				t.Errorf("path = %q", pe.Path)
			}
		})
	}
}

func minimalHeader() string {
	return "# Plan: Demo\n\n" +
		"**Created:** 2026-01-02 03:04:05\n" +
		"**ID:** plan-demo\n" +
		"**Status:** In progress\n" +
		"**Active:** true\n\n" +
		"## Description\n" +
		"desc\n\n" +
		"## Tasks\n"
}
