package hooks

import (
	"context"
	"sync"

	"tonearm/internal/task"
)

// EventType names one observable moment in an import run.
type EventType string

const (
	EventImportBegin    EventType = "import_begin"
	EventTaskApplied    EventType = "task_applied"
	EventTaskSkipped    EventType = "task_skipped"
	EventTaskFailed     EventType = "task_failed"
	EventImportComplete EventType = "import_complete"
)

// Event carries the context of one emission. Task is nil for the
// run-level begin and complete events.
type Event struct {
	Type EventType
	Task *task.Task

	// Payload carries event-specific extras, e.g. the run summary on
	// import_complete. May be nil.
	Payload any
}

// Handler observes events. Handlers run synchronously on the emitting
// goroutine and must not block for long.
type Handler func(ctx context.Context, event Event)

type binding struct {
	event EventType
	fn    Handler
}

// Registry is a stack of subscription layers. Subscribe attaches to the
// top layer; Push/Pop scope a batch of subscriptions so a caller can
// cleanly remove everything it registered.
type Registry struct {
	mu     sync.Mutex
	layers [][]binding
}

// NewRegistry returns a registry with a single base layer.
func NewRegistry() *Registry {
	return &Registry{layers: [][]binding{nil}}
}

// Subscribe registers a handler for one event type on the top layer.
func (r *Registry) Subscribe(event EventType, fn Handler) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	top := len(r.layers) - 1
	r.layers[top] = append(r.layers[top], binding{event: event, fn: fn})
}

// Push opens a new subscription layer.
func (r *Registry) Push() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers = append(r.layers, nil)
}

// Pop discards the top layer and every handler subscribed on it. The
// base layer cannot be popped.
func (r *Registry) Pop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.layers) > 1 {
		r.layers = r.layers[:len(r.layers)-1]
	}
}

// Emit invokes every matching handler, oldest layer first, in
// registration order within each layer.
func (r *Registry) Emit(ctx context.Context, event Event) {
	r.mu.Lock()
	var matched []Handler
	for _, layer := range r.layers {
		for _, b := range layer {
			if b.event == event.Type {
				matched = append(matched, b.fn)
			}
		}
	}
	r.mu.Unlock()

	for _, fn := range matched {
		fn(ctx, event)
	}
}
