/*
registry.go - One active advance workflow per user

PURPOSE:
  Enforces the concurrency contract: all workflow transitions for one user
  are sequential, and a second request while one is suspended awaiting
  step-up authentication is rejected with ErrWorkflowAlreadyActive, not
  queued or merged.

LIFECYCLE:
  Begin() hands back the user's workflow. A workflow parked in Draft
  (after a cancellation) is resumed so the preserved amount survives;
  terminal workflows (Completed/Failed) are replaced with a fresh Draft.

SEE ALSO:
  - workflow.go: The state machine itself
*/
package advance

import (
	"sync"

	"github.com/payquick/wage-engine/engine"
)

type Registry struct {
	mu        sync.Mutex
	workflows map[engine.UserID]*Workflow
	cfg       Config
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		workflows: make(map[engine.UserID]*Workflow),
		cfg:       cfg,
	}
}

// Begin returns the user's advance workflow, creating one if needed.
// Returns ErrWorkflowAlreadyActive while a previous workflow is suspended
// in PendingAuth or Authorizing.
func (r *Registry) Begin(user engine.User, employer engine.Employer) (*Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.workflows[user.ID]; ok {
		if existing.Active() {
			return nil, engine.ErrWorkflowAlreadyActive
		}
		// A Draft survives cancellation with its amount preserved.
		if existing.State() == StateDraft {
			return existing, nil
		}
	}

	w := New(user, employer, r.cfg)
	r.workflows[user.ID] = w
	return w, nil
}

// Get returns the user's current workflow, if any.
func (r *Registry) Get(userID engine.UserID) (*Workflow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workflows[userID]
	return w, ok
}

// Drop discards the user's workflow. Called at session teardown; an
// in-flight authorization is cancelled first.
func (r *Registry) Drop(userID engine.UserID) {
	r.mu.Lock()
	w, ok := r.workflows[userID]
	delete(r.workflows, userID)
	r.mu.Unlock()

	if ok && w.State() == StateAuthorizing {
		_ = w.Cancel()
	}
}
