package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mirror/internal/logger"
)

// Task is a long-running unit of work that honors context cancellation.
type Task func(ctx context.Context) error

// Status is the queryable lifecycle state of a named task.
type Status struct {
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type entry struct {
	status Status
}

// Registry tracks named background tasks with an explicit lifecycle, so no
// shared state about who is running hides in package-level variables.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Run registers the task under name and executes it synchronously, keeping
// its status queryable for the whole lifetime. Returns the task's error.
// A name can only run once at a time.
func (r *Registry) Run(ctx context.Context, name string, task Task) error {
	if task == nil {
		return fmt.Errorf("task %q is nil", name)
	}
	r.mu.Lock()
	if e, ok := r.entries[name]; ok && e.status.Running {
		r.mu.Unlock()
		return fmt.Errorf("task %q already running", name)
	}
	e := &entry{status: Status{Name: name, Running: true, StartedAt: time.Now().UTC()}}
	r.entries[name] = e
	r.mu.Unlock()

	logger.Infof("registry: task started name=%s", name)
	err := task(ctx)

	now := time.Now().UTC()
	r.mu.Lock()
	e.status.Running = false
	e.status.StoppedAt = &now
	if err != nil && ctx.Err() == nil {
		e.status.Error = err.Error()
	}
	r.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		logger.Errorf("registry: task failed name=%s err=%v", name, err)
	} else {
		logger.Infof("registry: task stopped name=%s", name)
	}
	return err
}

// Statuses returns a snapshot of every known task.
func (r *Registry) Statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.status)
	}
	return out
}

// Lookup returns the status of one task.
func (r *Registry) Lookup(name string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return Status{}, false
	}
	return e.status, true
}
