package events

import (
	"context"
	"sync"

	"github.com/mcoot/plyr-settlement/internal/model"
)

// DefaultRecorderCapacity bounds the in-memory event history
const DefaultRecorderCapacity = 1024

// Recorder keeps the most recent events in memory
type Recorder struct {
	mu       sync.RWMutex
	capacity int
	events   []model.Event
}

// NewRecorder creates a Recorder holding at most capacity events
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultRecorderCapacity
	}
	return &Recorder{capacity: capacity}
}

func (r *Recorder) Publish(ctx context.Context, evts []model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	if over := len(r.events) - r.capacity; over > 0 {
		r.events = append([]model.Event(nil), r.events[over:]...)
	}
	return nil
}

// Recent returns up to limit of the newest events, oldest first. A limit of
// zero returns everything held.
func (r *Recorder) Recent(limit int) []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(r.events) {
		start = len(r.events) - limit
	}
	return append([]model.Event(nil), r.events[start:]...)
}

// OfType returns every held event of the given type
func (r *Recorder) OfType(t model.EventType) []model.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops all held events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
