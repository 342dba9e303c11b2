package plans

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HendryAvila/planmcp/internal/filestore"
)

// Service is the plan API consumed by the MCP tools and the terminal UI.
type Service interface {
	CreatePlan(name, description string, taskTitles []string) (*Plan, error)
	// GetActivePlan returns nil (not an error) when no plan is active.
	GetActivePlan() (*Plan, error)
	GetPlan(planID string) (*Plan, error)
	UpdateTaskStatus(planID, taskID string, status TaskStatus) (*Plan, error)
	ListAllPlans() ([]Plan, error)
	DeletePlan(planID string) error
	SetActivePlan(planID string) (*Plan, error)
}

// Observer is notified after a mutation has been written to disk.
// It's an optional dependency: the repository works with a nil observer.
type Observer interface {
	OnPlanCreated(plan Plan)
	OnTaskStatusChanged(plan Plan, taskID string, from, to TaskStatus)
	OnPlanActivated(plan Plan)
	OnPlanDeleted(plan Plan)
}

// WriteHook is called with the exact bytes right before each plan file
// write. The watcher uses it to recognise its own process's writes.
type WriteHook func(path, content string)

// Repository implements Service over a directory of markdown files, one
// file per plan. It keeps no cache: every call re-reads the directory.
//
// Mutations are serialised by a mutex, which keeps the single-active
// invariant within one process. Two processes writing the same directory
// can still race (both deactivate, both activate) and the last writer wins.
type Repository struct {
	files filestore.Store
	dir   string

	mu        sync.Mutex
	observer  Observer
	writeHook WriteHook
}

var _ Service = (*Repository)(nil)

// NewRepository creates a repository rooted at dir. A relative dir is made
// absolute so FilePath matches what later reads return.
func NewRepository(files filestore.Store, dir string) *Repository {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Repository{files: files, dir: dir}
}

// Dir returns the plans directory.
func (r *Repository) Dir() string {
	return r.dir
}

// SetObserver wires an optional mutation observer.
func (r *Repository) SetObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = o
}

// SetWriteHook wires an optional pre-write callback.
func (r *Repository) SetWriteHook(h WriteHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeHook = h
}

// FileName returns plan-<yyyyMMdd-HHmmss>-<id>.md for p.
func FileName(p Plan) string {
	return fmt.Sprintf("plan-%s-%s.md", p.CreatedAt.Format("20060102-150405"), p.ID)
}

// CreatePlan writes a new active plan and deactivates every other plan.
func (r *Repository) CreatePlan(name, description string, taskTitles []string) (*Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: plan name is required", ErrInvalidInput)
	}
	if err := singleLine("plan name", name); err != nil {
		return nil, err
	}
	description, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}
	if len(taskTitles) == 0 {
		return nil, fmt.Errorf("%w: a plan needs at least one task", ErrInvalidInput)
	}

	tasks := make([]Task, len(taskTitles))
	for i, title := range taskTitles {
		title = strings.TrimSpace(title)
		if title == "" {
			return nil, fmt.Errorf("%w: task %d has an empty title", ErrInvalidInput, i+1)
		}
		if err := singleLine(fmt.Sprintf("task %d title", i+1), title); err != nil {
			return nil, err
		}
		tasks[i] = Task{
			ID:     fmt.Sprintf("task-%d", i+1),
			Title:  title,
			Status: TaskPending,
			Order:  i + 1,
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.files.DirectoryExists(r.dir) {
		if err := r.files.CreateDirectory(r.dir); err != nil {
			return nil, fmt.Errorf("creating plans directory: %w", err)
		}
	}

	if err := r.deactivateAll(); err != nil {
		return nil, fmt.Errorf("deactivating existing plans: %w", err)
	}

	plan := Plan{
		ID:          newPlanID(),
		Name:        name,
		Description: description,
		CreatedAt:   timeNow().Truncate(time.Second),
		Status:      PlanStatusInProgress,
		IsActive:    true,
		Tasks:       tasks,
	}
	plan.FilePath = filepath.Join(r.dir, FileName(plan))

	if err := r.write(plan); err != nil {
		return nil, fmt.Errorf("writing plan file: %w", err)
	}

	if r.observer != nil {
		r.observer.OnPlanCreated(plan.Clone())
	}
	return &plan, nil
}

// singleLine rejects values that would spill onto extra lines of the plan file.
func singleLine(field, v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%w: %s must be a single line", ErrInvalidInput, field)
	}
	return nil
}

// normalizeDescription trims every line and drops blank ones, the form
// Decode reads back. A line that would read back as a section heading is
// rejected.
func normalizeDescription(desc string) (string, error) {
	var kept []string
	for _, l := range strings.Split(strings.ReplaceAll(desc, "\r\n", "\n"), "\n") {
		l = strings.TrimSpace(strings.TrimRight(l, "\r"))
		if l == "" {
			continue
		}
		if descriptionRe.MatchString(l) || tasksHeadingRe.MatchString(l) {
			return "", fmt.Errorf("%w: description line %q collides with a section heading", ErrInvalidInput, l)
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n"), nil
}

// GetActivePlan returns the first active plan in filename order.
func (r *Repository) GetActivePlan() (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.listAll()
	if err != nil {
		return nil, fmt.Errorf("loading plans: %w", err)
	}
	for i := range all {
		if all[i].IsActive {
			return &all[i], nil
		}
	}
	return nil, nil
}

// GetPlan returns the plan with the given ID.
func (r *Repository) GetPlan(planID string) (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(planID)
}

// UpdateTaskStatus replaces one task's status and rewrites the plan file.
// Any transition is accepted. When every task ends up completed the plan
// status becomes PlanStatusCompleted.
func (r *Repository) UpdateTaskStatus(planID, taskID string, status TaskStatus) (*Plan, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.find(planID)
	if err != nil {
		return nil, err
	}

	idx := current.FindTask(taskID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q in plan %q", ErrTaskNotFound, taskID, planID)
	}

	updated := current.Clone()
	from := updated.Tasks[idx].Status
	updated.Tasks[idx].Status = status
	if updated.IsCompleted() {
		updated.Status = PlanStatusCompleted
	}

	if err := r.write(updated); err != nil {
		return nil, fmt.Errorf("updating plan file: %w", err)
	}

	if r.observer != nil {
		r.observer.OnTaskStatusChanged(updated.Clone(), taskID, from, status)
	}
	return &updated, nil
}

// ListAllPlans decodes every .md file in the plans directory. A missing
// directory yields an empty list. Files that cannot be read or parsed are
// logged and skipped.
func (r *Repository) ListAllPlans() ([]Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listAll()
}

// DeletePlan removes the plan's backing file.
func (r *Repository) DeletePlan(planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, err := r.find(planID)
	if err != nil {
		return err
	}
	if err := r.files.DeleteFile(plan.FilePath); err != nil {
		return fmt.Errorf("deleting plan file: %w", err)
	}

	if r.observer != nil {
		r.observer.OnPlanDeleted(plan.Clone())
	}
	return nil
}

// SetActivePlan marks planID active and every other plan inactive. Plans
// whose flag is already right are not rewritten. The first failed write
// aborts; files written before it keep their new state.
func (r *Repository) SetActivePlan(planID string) (*Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.listAll()
	if err != nil {
		return nil, fmt.Errorf("loading plans: %w", err)
	}

	var target *Plan
	for i := range all {
		if all[i].ID == planID {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, planID)
	}

	for i := range all {
		want := all[i].ID == planID
		if all[i].IsActive == want {
			continue
		}
		all[i].IsActive = want
		if err := r.write(all[i]); err != nil {
			return nil, fmt.Errorf("updating plan file %s: %w", all[i].FilePath, err)
		}
	}

	activated := target.Clone()
	if r.observer != nil {
		r.observer.OnPlanActivated(activated.Clone())
	}
	return &activated, nil
}

// --- internals (callers hold r.mu) ---

func (r *Repository) listAll() ([]Plan, error) {
	if !r.files.DirectoryExists(r.dir) {
		return []Plan{}, nil
	}

	files, err := r.files.ListFiles(r.dir)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return []Plan{}, nil
		}
		return nil, fmt.Errorf("listing plan files: %w", err)
	}
	sort.Strings(files)

	plans := make([]Plan, 0, len(files))
	for _, path := range files {
		if !strings.HasSuffix(path, ".md") {
			continue
		}
		content, err := r.files.ReadFile(path)
		if err != nil {
			log.Printf("WARNING: plans: skipping unreadable file %s: %v", path, err)
			continue
		}
		plan, err := Decode(content, path)
		if err != nil {
			log.Printf("WARNING: plans: skipping %v", err)
			continue
		}
		plans = append(plans, *plan)
	}
	return plans, nil
}

func (r *Repository) find(planID string) (*Plan, error) {
	all, err := r.listAll()
	if err != nil {
		return nil, fmt.Errorf("loading plans: %w", err)
	}
	for i := range all {
		if all[i].ID == planID {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, planID)
}

func (r *Repository) deactivateAll() error {
	all, err := r.listAll()
	if err != nil {
		return err
	}
	for _, p := range all {
		if !p.IsActive {
			continue
		}
		p.IsActive = false
		if err := r.write(p); err != nil {
			return fmt.Errorf("deactivating plan %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *Repository) write(p Plan) error {
	content := Encode(p)
	if r.writeHook != nil {
		r.writeHook(p.FilePath, content)
	}
	return r.files.WriteFile(p.FilePath, content)
}
