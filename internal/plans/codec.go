package plans

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the on-disk form of Plan.CreatedAt: second precision,
// no timezone. Values are interpreted in the local zone.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	titleRe        = regexp.MustCompile(`^#\s+Plan:\s+(.+)$`)
	createdRe      = regexp.MustCompile(`^\*\*Created:\*\*\s+(.+)$`)
	idRe           = regexp.MustCompile(`^\*\*ID:\*\*\s+(.+)$`)
	statusRe       = regexp.MustCompile(`^\*\*Status:\*\*\s*(.*)$`)
	activeRe       = regexp.MustCompile(`^\*\*Active:\*\*\s+(.+)$`)
	descriptionRe  = regexp.MustCompile(`^##\s+Description$`)
	tasksHeadingRe = regexp.MustCompile(`^##\s+Tasks$`)
	taskLineRe     = regexp.MustCompile(`^-\s+\[(.+?)\]\s+([^:]+):\s+(.+?)(?:\s+\(([^)]+)\))?$`)
)

// Encode renders a plan as markdown. Tasks are written in slice order.
func Encode(p Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Plan: %s\n\n", p.Name)

	fmt.Fprintf(&b, "**Created:** %s\n", p.CreatedAt.Format(TimestampLayout))
	fmt.Fprintf(&b, "**ID:** %s\n", p.ID)
	fmt.Fprintf(&b, "**Status:** %s\n", p.Status)
	fmt.Fprintf(&b, "**Active:** %t\n\n", p.IsActive)

	b.WriteString("## Description\n")
	b.WriteString(p.Description)
	b.WriteString("\n\n")

	b.WriteString("## Tasks\n")
	for _, t := range p.Tasks {
		fmt.Fprintf(&b, "- [%s] %s: %s (%s)\n", t.Status.Checkbox(), t.ID, t.Title, t.Status)
	}

	return b.String()
}

// Decode parses markdown produced by Encode (or edited by hand) back into
// a Plan. Task order is renumbered 1..N in line order. Every failure is a
// *ParseError.
func Decode(content, filePath string) (*Plan, error) {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}

	fail := func(kind ParseErrorKind, format string, args ...any) (*Plan, error) {
		return nil, &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...), Path: filePath}
	}

	name, ok := findField(lines, titleRe)
	if !ok {
		return fail(MissingField, "plan title line (# Plan: ...) not found")
	}
	created, ok := findField(lines, createdRe)
	if !ok {
		return fail(MissingField, "**Created:** not found")
	}
	id, ok := findField(lines, idRe)
	if !ok {
		return fail(MissingField, "**ID:** not found")
	}
	status, ok := findField(lines, statusRe)
	if !ok {
		return fail(MissingField, "**Status:** not found")
	}
	// Active is optional: files written before the flag existed are inactive.
	active := false
	if v, ok := findField(lines, activeRe); ok {
		active = strings.EqualFold(v, "true")
	}

	createdAt, err := time.ParseInLocation(TimestampLayout, created, time.Local)
	if err != nil {
		return fail(BadDate, "invalid created date %q", created)
	}

	descIdx := indexOf(lines, descriptionRe)
	if descIdx < 0 {
		return fail(MissingSection, "## Description section not found")
	}
	tasksIdx := indexOf(lines, tasksHeadingRe)
	if tasksIdx < 0 {
		return fail(MissingSection, "## Tasks section not found")
	}
	if tasksIdx < descIdx {
		return fail(MissingSection, "## Description must precede ## Tasks")
	}

	var descLines []string
	for _, l := range lines[descIdx+1 : tasksIdx] {
		if l != "" {
			descLines = append(descLines, l)
		}
	}

	var tasks []Task
	for _, l := range lines[tasksIdx+1:] {
		m := taskLineRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		tasks = append(tasks, Task{
			ID:     strings.TrimSpace(m[2]),
			Title:  strings.TrimSpace(m[3]),
			Status: resolveStatus(m[1], m[4]),
			Order:  len(tasks) + 1,
		})
	}
	if len(tasks) == 0 {
		return fail(NoTasks, "no task lines under ## Tasks")
	}

	return &Plan{
		ID:          id,
		Name:        name,
		Description: strings.Join(descLines, "\n"),
		CreatedAt:   createdAt,
		Status:      status,
		IsActive:    active,
		Tasks:       tasks,
		FilePath:    filePath,
	}, nil
}

// resolveStatus prefers the parenthesised raw status and falls back to
// the checkbox symbol when it is absent or unrecognised.
func resolveStatus(checkbox, raw string) TaskStatus {
	if s := TaskStatus(strings.TrimSpace(raw)); s.Valid() {
		return s
	}
	return statusFromCheckbox(checkbox)
}

// findField returns the trimmed first capture of the first line matching re.
func findField(lines []string, re *regexp.Regexp) (string, bool) {
	for _, l := range lines {
		if m := re.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func indexOf(lines []string, re *regexp.Regexp) int {
	for i, l := range lines {
		if re.MatchString(l) {
			return i
		}
	}
	return -1
}
