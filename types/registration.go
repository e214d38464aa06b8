package types

import "time"

// Registration represents a user's registration for a mission slot.
//
// Registrations are created by users, transitioned by the engine
// (auto-assignment) or by editors (manual assignment, rejection), and
// terminated by withdrawal, rejection or deletion of the parent slot.
type Registration struct {
	// UID uniquely identifies the registration.
	UID string `json:"uid" yaml:"uid"`

	// SlotUID references the parent slot.
	SlotUID string `json:"slotUid" yaml:"slotUid"`

	// UserUID references the registering user.
	UserUID string `json:"userUid" yaml:"userUid"`

	// Comment is the registrant's free-text comment.
	Comment string `json:"comment" yaml:"comment"`

	// Confirmed reports whether the registration has been confirmed,
	// i.e. the registrant holds the slot (Status == RegistrationAssigned).
	Confirmed bool `json:"confirmed" yaml:"confirmed"`

	// Status is the registration lifecycle status.
	Status RegistrationStatus `json:"status" yaml:"status"`

	// CreatedAt defines the registration's position in the slot queue.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	// Seq is a monotonically increasing sequence number assigned at enqueue
	// time. It breaks ties between registrations sharing a creation
	// timestamp (clock resolution collisions).
	Seq uint64 `json:"seq" yaml:"seq"`
}

// Active reports whether the registration occupies queue capacity
// (pending or assigned).
func (r Registration) Active() bool {
	return r.Status == RegistrationPending || r.Status == RegistrationAssigned
}

// RegistrationStatus represents the lifecycle status of a registration.
type RegistrationStatus int

const (
	// RegistrationPending indicates the registration is queued and awaiting
	// assignment.
	RegistrationPending RegistrationStatus = iota

	// RegistrationAssigned indicates the registrant holds the slot.
	RegistrationAssigned

	// RegistrationRejected indicates an editor rejected the registration.
	RegistrationRejected

	// RegistrationWithdrawn indicates the registrant withdrew.
	RegistrationWithdrawn
)

// String returns the string representation of the registration status.
func (s RegistrationStatus) String() string {
	switch s {
	case RegistrationPending:
		return "Pending"
	case RegistrationAssigned:
		return "Assigned"
	case RegistrationRejected:
		return "Rejected"
	case RegistrationWithdrawn:
		return "Withdrawn"
	default:
		return "Unknown"
	}
}
