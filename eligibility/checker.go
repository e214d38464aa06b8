package eligibility

import "github.com/Black-Forest-Community/slotlist-reboot/types"

// Result is the outcome of an eligibility check.
type Result struct {
	// Eligible reports whether every check passed.
	Eligible bool

	// Reason identifies the first failed check. Only meaningful when
	// Eligible is false.
	Reason types.IneligibleReason
}

// ineligible builds a failed Result for the given reason.
func ineligible(reason types.IneligibleReason) Result {
	return Result{Eligible: false, Reason: reason}
}

// Check evaluates whether a user may register for a slot.
//
// The function is pure: it inspects only its arguments and has no side
// effects. Callers are responsible for snapshot consistency (the engine runs
// it inside the slot's critical section).
//
// Parameters:
//   - slot: Snapshot of the target slot
//   - profile: The registering user's community and capability tags
//   - alreadyRegistered: Whether the user has an active (pending or
//     assigned) registration on the slot
//
// Returns:
//   - Result: Eligible, or the first failed check's reason
func Check(slot types.Slot, profile types.UserProfile, alreadyRegistered bool) Result {
	if slot.Blocked {
		return ineligible(types.ReasonBlocked)
	}

	if !admitsRegistrant(slot) {
		return ineligible(types.ReasonAlreadyAssigned)
	}

	if alreadyRegistered {
		return ineligible(types.ReasonDuplicateRegistration)
	}

	if slot.RestrictedCommunityUID != "" && profile.CommunityUID != slot.RestrictedCommunityUID {
		return ineligible(types.ReasonCommunityRestricted)
	}

	if !profile.HasTags(slot.RequiredTags) {
		return ineligible(types.ReasonMissingCapability)
	}

	return Result{Eligible: true}
}

// admitsRegistrant reports whether the slot accepts another registration.
//
// Auto-assignable slots admit registrants only while no assignee source is
// set. Manual slots keep collecting pending registrations for editor review
// even when assigned, but an external assignee closes them entirely.
func admitsRegistrant(slot types.Slot) bool {
	if slot.ExternalAssignee != "" {
		return false
	}
	if slot.AutoAssignable {
		return slot.AssigneeUID == ""
	}

	return true
}
