package slotter

import (
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Type aliases re-exporting the core domain types at the module root, so
// embedding applications can use the library through a single import.
type (
	// Mission represents a mission whose slots are managed by the engine.
	Mission = types.Mission

	// SlotGroup is an ordered container of slots within a mission.
	SlotGroup = types.SlotGroup

	// Slot is a single assignable position within a slot group.
	Slot = types.Slot

	// SlotState represents the assignment state of a slot.
	SlotState = types.SlotState

	// Registration represents a user's registration for a mission slot.
	Registration = types.Registration

	// RegistrationStatus represents the lifecycle status of a registration.
	RegistrationStatus = types.RegistrationStatus

	// Event describes a committed slot transition.
	Event = types.Event

	// EventKind identifies the transition an Event reports.
	EventKind = types.EventKind

	// UserProfile carries the user attributes the eligibility checker consumes.
	UserProfile = types.UserProfile

	// ProfileProvider resolves user identifiers to profiles.
	ProfileProvider = types.ProfileProvider

	// Authorizer answers editor capability checks for missions.
	Authorizer = types.Authorizer

	// NotificationEmitter receives committed transition events.
	NotificationEmitter = types.NotificationEmitter

	// Logger defines methods for structured logging.
	Logger = types.Logger

	// MetricsCollector defines methods for recording operational metrics.
	MetricsCollector = types.MetricsCollector

	// IneligibleReason identifies which eligibility check failed.
	IneligibleReason = types.IneligibleReason
)

// Slot state constants.
const (
	SlotOpen             = types.SlotOpen
	SlotAssigned         = types.SlotAssigned
	SlotBlocked          = types.SlotBlocked
	SlotExternallyFilled = types.SlotExternallyFilled
)

// Registration status constants.
const (
	RegistrationPending   = types.RegistrationPending
	RegistrationAssigned  = types.RegistrationAssigned
	RegistrationRejected  = types.RegistrationRejected
	RegistrationWithdrawn = types.RegistrationWithdrawn
)

// Event kind constants.
const (
	EventRegistered = types.EventRegistered
	EventAssigned   = types.EventAssigned
	EventUnassigned = types.EventUnassigned
	EventRejected   = types.EventRejected
	EventWithdrawn  = types.EventWithdrawn
)

// Ineligibility reason constants.
const (
	ReasonBlocked               = types.ReasonBlocked
	ReasonAlreadyAssigned       = types.ReasonAlreadyAssigned
	ReasonDuplicateRegistration = types.ReasonDuplicateRegistration
	ReasonCommunityRestricted   = types.ReasonCommunityRestricted
	ReasonMissingCapability     = types.ReasonMissingCapability
)
