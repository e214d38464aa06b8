package slotter

import (
	"context"
	"fmt"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// ManualAssign assigns a pending registration to its slot on behalf of a
// mission editor.
//
// Manual assignment is an editor override: it bypasses the reserve gating
// rule and the community/capability checks (the editor vouches for the
// registrant). The slot must be open; filled or blocked slots require
// Unassign, ClearExternalAssignee or SetBlocked first.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - registrationUID: Pending registration on that slot
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, ErrConflict when
//     the slot is filled or blocked or the registration is not pending, or
//     ErrContentionTimeout
func (e *Engine) ManualAssign(ctx context.Context, slotUID, registrationUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return err
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	if entry.slot.Blocked {
		unlock()
		return fmt.Errorf("slot %s is blocked: %w", slotUID, types.ErrConflict)
	}
	if entry.slot.Filled() {
		unlock()
		return fmt.Errorf("slot %s is already filled: %w", slotUID, types.ErrConflict)
	}

	reg := entry.queue.Get(registrationUID)
	if reg == nil {
		unlock()
		return fmt.Errorf("registration %s: %w", registrationUID, types.ErrNotFound)
	}
	if reg.Status != types.RegistrationPending {
		unlock()
		return fmt.Errorf("registration %s is not pending: %w", registrationUID, types.ErrConflict)
	}

	var events []types.Event
	e.assignLocked(entry, reg, "manual", &events)
	e.commitLocked(entry)

	groupUID := entry.slot.GroupUID
	unlock()

	e.publish(events)
	e.reevaluateGroup(ctx, groupUID, slotUID)

	return nil
}

// Unassign removes the slot's registration-based assignee on behalf of a
// mission editor.
//
// The former assignee's registration returns to pending; it stays in the
// queue at its original position and can be manually assigned again. On an
// auto-assignable slot the next eligible pending registration is promoted in
// the same critical section, skipping the just-demoted registration so the
// former assignee is not immediately re-promoted.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, ErrConflict when
//     the slot has no registration-based assignee, or ErrContentionTimeout
func (e *Engine) Unassign(ctx context.Context, slotUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return err
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	if entry.slot.AssigneeUID == "" {
		unlock()
		return fmt.Errorf("slot %s has no assignee: %w", slotUID, types.ErrConflict)
	}

	var events []types.Event
	demoted := e.demoteLocked(entry, "unassign", &events)
	e.tryPromoteLocked(ctx, entry, demoted, "promotion", &events)
	e.commitLocked(entry)
	unlock()

	e.publish(events)

	return nil
}

// SetBlocked sets or clears the slot's blocked flag on behalf of a mission
// editor.
//
// Blocking a slot clears any assignee (registration-based or external); a
// demoted registration returns to pending and is restored to the queue, not
// removed. Pending registrations survive blocking and become assignable
// again after unblocking, which also runs promotion on auto-assignable
// slots. Setting the flag to its current value is a no-op.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - blocked: Desired blocked state
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, or
//     ErrContentionTimeout
func (e *Engine) SetBlocked(ctx context.Context, slotUID string, blocked bool, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return err
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	if entry.slot.Blocked == blocked {
		unlock()
		return nil
	}

	wasFilled := entry.slot.Filled()
	var events []types.Event

	if blocked {
		if entry.slot.AssigneeUID != "" {
			e.demoteLocked(entry, "blocked", &events)
		}
		if entry.slot.ExternalAssignee != "" {
			from := entry.slot.State()
			entry.slot.ExternalAssignee = ""
			e.noteTransitionLocked(entry, from)
			e.metrics.RecordUnassignment("blocked")
			events = append(events, e.newEvent(types.EventUnassigned, entry.slot, "", ""))
		}

		from := entry.slot.State()
		entry.slot.Blocked = true
		e.noteTransitionLocked(entry, from)
	} else {
		from := entry.slot.State()
		entry.slot.Blocked = false
		e.noteTransitionLocked(entry, from)
		e.tryPromoteLocked(ctx, entry, "", "promotion", &events)
	}

	e.commitLocked(entry)
	nowFilled := entry.slot.Filled()
	groupUID := entry.slot.GroupUID
	unlock()

	e.publish(events)

	if !wasFilled && nowFilled {
		e.reevaluateGroup(ctx, groupUID, slotUID)
	}

	return nil
}

// SetExternalAssignee fills the slot with a free-text assignee on behalf of
// a mission editor.
//
// External assignees represent participants without an account. They are
// mutually exclusive with registration-based assignees: a slot holding one
// must be unassigned first. Setting a new name over an existing external
// assignee replaces it. An empty name clears the external assignee
// (equivalent to ClearExternalAssignee).
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - name: Display name of the external participant
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, ErrConflict when
//     the slot is blocked or holds a registration-based assignee, or
//     ErrContentionTimeout
func (e *Engine) SetExternalAssignee(ctx context.Context, slotUID, name, actorUID string) error {
	if name == "" {
		return e.ClearExternalAssignee(ctx, slotUID, actorUID)
	}

	if err := e.requireStarted(); err != nil {
		return err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return err
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	if entry.slot.Blocked {
		unlock()
		return fmt.Errorf("slot %s is blocked: %w", slotUID, types.ErrConflict)
	}
	if entry.slot.AssigneeUID != "" {
		unlock()
		return fmt.Errorf("slot %s has a registration-based assignee: %w", slotUID, types.ErrConflict)
	}

	wasFilled := entry.slot.Filled()
	from := entry.slot.State()
	entry.slot.ExternalAssignee = name
	e.noteTransitionLocked(entry, from)

	var events []types.Event
	if !wasFilled {
		e.metrics.RecordAssignment("external")
		events = append(events, e.newEvent(types.EventAssigned, entry.slot, "", ""))
	}

	e.commitLocked(entry)
	groupUID := entry.slot.GroupUID
	unlock()

	e.publish(events)

	if !wasFilled {
		e.reevaluateGroup(ctx, groupUID, slotUID)
	}

	return nil
}

// ClearExternalAssignee removes the slot's external assignee on behalf of a
// mission editor.
//
// On an auto-assignable slot the earliest eligible pending registration is
// promoted in the same critical section.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, ErrConflict when
//     the slot has no external assignee, or ErrContentionTimeout
func (e *Engine) ClearExternalAssignee(ctx context.Context, slotUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return err
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	if entry.slot.ExternalAssignee == "" {
		unlock()
		return fmt.Errorf("slot %s has no external assignee: %w", slotUID, types.ErrConflict)
	}

	from := entry.slot.State()
	entry.slot.ExternalAssignee = ""
	e.noteTransitionLocked(entry, from)
	e.metrics.RecordUnassignment("external")

	var events []types.Event
	events = append(events, e.newEvent(types.EventUnassigned, entry.slot, "", ""))

	e.tryPromoteLocked(ctx, entry, "", "promotion", &events)
	e.commitLocked(entry)
	unlock()

	e.publish(events)

	return nil
}
