package types

import (
	"context"
	"time"
)

// EventKind identifies the transition an Event reports.
type EventKind int

const (
	// EventRegistered indicates a new pending registration was created.
	EventRegistered EventKind = iota

	// EventAssigned indicates a slot gained a registration-based assignee.
	EventAssigned

	// EventUnassigned indicates a slot lost its assignee.
	EventUnassigned

	// EventRejected indicates an editor rejected a pending registration.
	EventRejected

	// EventWithdrawn indicates a registrant withdrew their registration.
	EventWithdrawn
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventRegistered:
		return "Registered"
	case EventAssigned:
		return "Assigned"
	case EventUnassigned:
		return "Unassigned"
	case EventRejected:
		return "Rejected"
	case EventWithdrawn:
		return "Withdrawn"
	default:
		return "Unknown"
	}
}

// Event describes a committed slot transition.
//
// Events are handed to the NotificationEmitter after the originating slot's
// critical section has been released. Delivery and ordering guarantees beyond
// that point are the emitter's responsibility.
type Event struct {
	// Kind identifies the transition.
	Kind EventKind `json:"kind"`

	// MissionUID, GroupUID and SlotUID locate the affected slot.
	MissionUID string `json:"missionUid"`
	GroupUID   string `json:"groupUid"`
	SlotUID    string `json:"slotUid"`

	// UserUID is the affected user ("" for transitions without one, e.g.
	// unassignment caused by blocking an external assignee change).
	UserUID string `json:"userUid"`

	// RegistrationUID is the affected registration ("" if not applicable).
	RegistrationUID string `json:"registrationUid"`

	// OccurredAt is the commit timestamp of the transition.
	OccurredAt time.Time `json:"occurredAt"`
}

// NotificationEmitter receives committed transition events.
//
// Implementations deliver notifications to interested parties (users, audit
// trails, message brokers). Emit is called from the engine's dispatch
// goroutine, outside any slot critical section; a slow emitter delays other
// notifications but never slot throughput. Errors are logged by the engine
// and never surfaced to the operation caller: notification is best-effort.
type NotificationEmitter interface {
	// Emit delivers a single committed event.
	Emit(ctx context.Context, event Event) error
}
