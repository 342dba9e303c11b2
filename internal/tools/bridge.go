package tools

import (
	"log"

	"github.com/HendryAvila/planmcp/internal/plans"
)

// Observers fans plan mutations out to several plans.Observer values.
// Nil entries are skipped, so optional observers (a disabled journal) can
// be passed as-is.
type Observers []plans.Observer

var _ plans.Observer = Observers(nil)

// NewObservers builds a fan-out from the non-nil observers in obs.
// Returns nil when none remain so the repository skips notification.
func NewObservers(obs ...plans.Observer) plans.Observer {
	var out Observers
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (obs Observers) OnPlanCreated(p plans.Plan) {
	for _, o := range obs {
		o.OnPlanCreated(p.Clone())
	}
}

func (obs Observers) OnTaskStatusChanged(p plans.Plan, taskID string, from, to plans.TaskStatus) {
	for _, o := range obs {
		o.OnTaskStatusChanged(p.Clone(), taskID, from, to)
	}
}

func (obs Observers) OnPlanActivated(p plans.Plan) {
	for _, o := range obs {
		o.OnPlanActivated(p.Clone())
	}
}

func (obs Observers) OnPlanDeleted(p plans.Plan) {
	for _, o := range obs {
		o.OnPlanDeleted(p.Clone())
	}
}

// LogObserver writes one log line per plan mutation.
type LogObserver struct{}

var _ plans.Observer = LogObserver{}

func (LogObserver) OnPlanCreated(p plans.Plan) {
	log.Printf("plans: created %s %q (%d tasks)", p.ID, p.Name, len(p.Tasks))
}

func (LogObserver) OnTaskStatusChanged(p plans.Plan, taskID string, from, to plans.TaskStatus) {
	log.Printf("plans: %s %s %s -> %s (%d/%d completed)", p.ID, taskID, from, to, p.CompletedCount(), len(p.Tasks))
}

func (LogObserver) OnPlanActivated(p plans.Plan) {
	log.Printf("plans: activated %s %q", p.ID, p.Name)
}

func (LogObserver) OnPlanDeleted(p plans.Plan) {
	log.Printf("plans: deleted %s %q", p.ID, p.Name)
}
