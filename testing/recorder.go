// Package testing provides test helpers: an embedded NATS server and a
// recording notification emitter.
//
// Import it with an alias to avoid clashing with the standard library:
//
//	testutil "github.com/Black-Forest-Community/slotlist-reboot/testing"
package testing

import (
	"context"
	"sync"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Recorder implements types.NotificationEmitter by capturing events in
// memory. It is safe for concurrent use; pair the accessors with
// require.Eventually since the engine dispatches asynchronously.
type Recorder struct {
	mu     sync.Mutex
	events []types.Event
}

// Compile-time assertion that Recorder implements NotificationEmitter.
var _ types.NotificationEmitter = (*Recorder)(nil)

// NewRecorder creates an empty event recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records the event.
func (r *Recorder) Emit(_ context.Context, event types.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

// Events returns a copy of all recorded events in dispatch order.
func (r *Recorder) Events() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Event, len(r.events))
	copy(out, r.events)

	return out
}

// CountKind returns the number of recorded events of the given kind.
func (r *Recorder) CountKind(kind types.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}

	return n
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
