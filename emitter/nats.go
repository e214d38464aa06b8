package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is the subject prefix used when none is configured.
const DefaultSubjectPrefix = "slotlist.events"

// NATS implements types.NotificationEmitter by publishing events as JSON
// messages on a NATS subject hierarchy.
//
// Each event is published to "<prefix>.<kind>.<slotUid>" (kind lowercased),
// e.g. "slotlist.events.assigned.3f9a...". Subscribers can filter by kind
// with "<prefix>.assigned.>" or follow a single slot with
// "<prefix>.*.<slotUid>".
//
// Delivery is at-most-once core NATS publish; the engine treats notification
// as best-effort and logs emit failures.
type NATS struct {
	conn   *nats.Conn
	prefix string
}

// Compile-time assertion that NATS implements NotificationEmitter.
var _ types.NotificationEmitter = (*NATS)(nil)

// NewNATS creates a NATS-backed notification emitter.
//
// Parameters:
//   - conn: Established NATS connection (not closed by the emitter)
//   - prefix: Subject prefix (DefaultSubjectPrefix if empty)
//
// Returns:
//   - *NATS: A new emitter instance
//   - error: types.ErrInvalidConfig if conn is nil
func NewNATS(conn *nats.Conn, prefix string) (*NATS, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: NATS connection is required", types.ErrInvalidConfig)
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &NATS{conn: conn, prefix: prefix}, nil
}

// Emit publishes the event to its kind- and slot-scoped subject.
//
// Parameters:
//   - ctx: Unused by core NATS publish; present for interface compliance
//   - event: Committed transition to publish
//
// Returns:
//   - error: Marshal or publish failure
func (e *NATS) Emit(_ context.Context, event types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := e.subjectFor(event)
	if err := e.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish event to %s: %w", subject, err)
	}

	return nil
}

// subjectFor builds the subject for an event.
func (e *NATS) subjectFor(event types.Event) string {
	kind := strings.ToLower(event.Kind.String())
	if event.SlotUID == "" {
		return fmt.Sprintf("%s.%s", e.prefix, kind)
	}

	return fmt.Sprintf("%s.%s.%s", e.prefix, kind, event.SlotUID)
}
