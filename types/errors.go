package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the slotter library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components should use these sentinel errors for known
// error conditions and wrap external errors with context using
// fmt.Errorf("%s: %w", msg, err).

// Engine errors - Public API errors returned by the Engine.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument is returned when an operation receives semantically
	// invalid input (empty required field, conflicting flags). Non-retryable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProfileProviderRequired is returned when the profile provider is nil.
	ErrProfileProviderRequired = errors.New("profile provider is required")

	// ErrAuthorizerRequired is returned when the authorizer is nil.
	ErrAuthorizerRequired = errors.New("authorizer is required")

	// ErrAlreadyStarted is returned when Start is called on a running engine.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrNotStarted is returned when operations require a started engine.
	ErrNotStarted = errors.New("engine not started")

	// ErrNotFound is returned for unknown missions, slot groups, slots or
	// registrations. Non-retryable.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the actor lacks the required
	// capability. Non-retryable.
	ErrUnauthorized = errors.New("actor lacks required capability")

	// ErrConflict is returned when a transition targets a slot whose state
	// no longer admits it (e.g. manual assignment of an already filled
	// slot). Non-retryable; the caller must refresh state.
	ErrConflict = errors.New("conflicting slot state")

	// ErrContentionTimeout is returned when a slot's critical section could
	// not be acquired in time. Retryable with backoff.
	ErrContentionTimeout = errors.New("slot contention timeout")

	// ErrIneligible is the base error for rejected registrations. Match
	// with errors.Is and extract the reason with errors.As on
	// *IneligibleError.
	ErrIneligible = errors.New("registration not eligible")

	// ErrDuplicateOrder is returned when a slot group order number is
	// already taken within the mission.
	ErrDuplicateOrder = errors.New("order number already in use")
)

// IneligibleReason identifies which eligibility check failed.
type IneligibleReason int

const (
	// ReasonBlocked indicates the slot is blocked.
	ReasonBlocked IneligibleReason = iota

	// ReasonAlreadyAssigned indicates the slot already has an assignee
	// (registration-based or external) and admits no further registrants.
	ReasonAlreadyAssigned

	// ReasonDuplicateRegistration indicates the user already has an active
	// registration on the slot.
	ReasonDuplicateRegistration

	// ReasonCommunityRestricted indicates the user's community does not
	// match the slot's restricted community.
	ReasonCommunityRestricted

	// ReasonMissingCapability indicates the user lacks required capability
	// tags.
	ReasonMissingCapability
)

// String returns the string representation of the ineligibility reason.
func (r IneligibleReason) String() string {
	switch r {
	case ReasonBlocked:
		return "Blocked"
	case ReasonAlreadyAssigned:
		return "AlreadyAssigned"
	case ReasonDuplicateRegistration:
		return "DuplicateRegistration"
	case ReasonCommunityRestricted:
		return "CommunityRestricted"
	case ReasonMissingCapability:
		return "MissingCapability"
	default:
		return "Unknown"
	}
}

// IneligibleError reports a rejected registration together with the specific
// check that failed. It unwraps to ErrIneligible.
type IneligibleError struct {
	// Reason identifies the failed check.
	Reason IneligibleReason

	// SlotUID and UserUID identify the rejected request.
	SlotUID string
	UserUID string
}

// Error implements the error interface.
func (e *IneligibleError) Error() string {
	return fmt.Sprintf("registration not eligible: %s (slot %s, user %s)", e.Reason, e.SlotUID, e.UserUID)
}

// Unwrap links the error to ErrIneligible for errors.Is matching.
func (e *IneligibleError) Unwrap() error {
	return ErrIneligible
}

// NewIneligibleError creates an IneligibleError for the given request.
//
// Parameters:
//   - reason: The failed eligibility check
//   - slotUID: The target slot
//   - userUID: The rejected user
//
// Returns:
//   - *IneligibleError: Error matching errors.Is(err, ErrIneligible)
func NewIneligibleError(reason IneligibleReason, slotUID, userUID string) *IneligibleError {
	return &IneligibleError{Reason: reason, SlotUID: slotUID, UserUID: userUID}
}
