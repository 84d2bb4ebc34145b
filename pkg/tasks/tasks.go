package tasks

import (
	"sync"
	"time"

	"github.com/konsumhq/konsum/pkg/logger"
)

// Task states. A task moves running -> complete | failed, never back.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

type Status struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry tracks fire-and-forget background work so its outcome stays
// observable after the triggering request has been acknowledged.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]Status
	latest string
}

func NewRegistry() *Registry {
	return &Registry{tasks: map[string]Status{}}
}

// Start launches run in the background under the given id and records its
// result. The caller gets control back immediately.
func (r *Registry) Start(id string, message string, run func() error) {
	r.set(Status{ID: id, Status: StatusRunning, Message: message, UpdatedAt: time.Now()})

	go func() {
		if err := run(); err != nil {
			logger.Error(err)
			r.set(Status{ID: id, Status: StatusFailed, Message: err.Error(), UpdatedAt: time.Now()})
			return
		}
		r.set(Status{ID: id, Status: StatusComplete, Message: message, UpdatedAt: time.Now()})
	}()
}

func (r *Registry) set(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[status.ID] = status
	r.latest = status.ID
}

func (r *Registry) Get(id string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.tasks[id]
	return status, ok
}

// Latest returns the most recently started task.
func (r *Registry) Latest() (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.tasks[r.latest]
	return status, ok
}
