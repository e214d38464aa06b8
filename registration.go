package slotter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Black-Forest-Community/slotlist-reboot/eligibility"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Register submits a registration for a slot.
//
// Eligibility (blocked state, assignee admission, duplicate registration,
// community restriction, capability tags) is evaluated inside the slot's
// critical section, so the decision and the queue insertion are atomic with
// respect to every other operation on the slot. On an auto-assignable open
// slot the earliest eligible registration is assigned in the same critical
// section; the registrant may therefore return already assigned.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Target slot
//   - userUID: Registering user (profile resolved via the ProfileProvider)
//   - comment: Free-text comment stored on the registration
//
// Returns:
//   - types.Registration: The committed registration (Status reflects an
//     immediate auto-assignment)
//   - error: ErrNotStarted, ErrNotFound (slot or user profile),
//     ErrIneligible (carrying *IneligibleError), or ErrContentionTimeout
func (e *Engine) Register(ctx context.Context, slotUID, userUID, comment string) (types.Registration, error) {
	if err := e.requireStarted(); err != nil {
		return types.Registration{}, err
	}

	// Cheap existence check before the profile lookup; the authoritative
	// check happens again under the lock.
	if _, ok := e.slots.Load(slotUID); !ok {
		return types.Registration{}, fmt.Errorf("slot %s: %w", slotUID, types.ErrNotFound)
	}

	profile, err := e.profiles.Lookup(ctx, userUID)
	if err != nil {
		return types.Registration{}, fmt.Errorf("looking up profile for %s: %w", userUID, err)
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return types.Registration{}, err
	}

	already := false
	if existing := entry.queue.GetByUser(userUID); existing != nil && existing.Active() {
		already = true
	}

	result := eligibility.Check(e.effectiveSlotLocked(entry), profile, already)
	if !result.Eligible {
		unlock()
		e.metrics.RecordRegistration(result.Reason.String())
		e.logger.Debug("registration rejected",
			"slot_uid", slotUID,
			"user_uid", userUID,
			"reason", result.Reason.String(),
		)

		return types.Registration{}, types.NewIneligibleError(result.Reason, slotUID, userUID)
	}

	reg := &types.Registration{
		UID:       uuid.NewString(),
		SlotUID:   slotUID,
		UserUID:   userUID,
		Comment:   comment,
		Status:    types.RegistrationPending,
		CreatedAt: time.Now(),
	}
	entry.queue.Enqueue(reg)
	e.regSlots.Store(reg.UID, slotUID)

	var events []types.Event
	events = append(events, e.newEvent(types.EventRegistered, entry.slot, userUID, reg.UID))

	promoted := e.tryPromoteLocked(ctx, entry, "", "auto", &events)
	e.commitLocked(entry)

	committed := *reg
	groupUID := entry.slot.GroupUID
	unlock()

	outcome := "pending"
	if committed.Status == types.RegistrationAssigned {
		outcome = "assigned"
	}
	e.metrics.RecordRegistration(outcome)
	e.publish(events)

	if promoted {
		e.reevaluateGroup(ctx, groupUID, slotUID)
	}

	return committed, nil
}

// Withdraw removes the user's own registration.
//
// A pending registration simply leaves the queue. If the registration holds
// the slot, the slot is unassigned first and the next eligible pending
// registration is promoted in the same critical section (auto-assignable
// slots only).
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - registrationUID: Registration to withdraw
//   - userUID: Acting user; must own the registration
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized when the actor does
//     not own the registration, or ErrContentionTimeout
func (e *Engine) Withdraw(ctx context.Context, registrationUID, userUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slotUID, ok := e.regSlots.Load(registrationUID)
	if !ok {
		return fmt.Errorf("registration %s: %w", registrationUID, types.ErrNotFound)
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	reg := entry.queue.Get(registrationUID)
	if reg == nil {
		unlock()
		e.regSlots.Delete(registrationUID)

		return fmt.Errorf("registration %s: %w", registrationUID, types.ErrNotFound)
	}
	if reg.UserUID != userUID {
		unlock()
		return fmt.Errorf("registration %s belongs to another user: %w", registrationUID, types.ErrUnauthorized)
	}

	wasFilled := entry.slot.Filled()
	var events []types.Event

	if reg.Status == types.RegistrationAssigned {
		from := entry.slot.State()
		entry.slot.AssigneeUID = ""
		e.noteTransitionLocked(entry, from)
		e.metrics.RecordUnassignment("withdraw")
		events = append(events, e.newEvent(types.EventUnassigned, entry.slot, userUID, registrationUID))
	}

	entry.queue.Remove(registrationUID)
	reg.Status = types.RegistrationWithdrawn
	reg.Confirmed = false
	e.regSlots.Delete(registrationUID)
	events = append(events, e.newEvent(types.EventWithdrawn, entry.slot, userUID, registrationUID))

	e.tryPromoteLocked(ctx, entry, "", "promotion", &events)
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

// Reject removes a pending registration on behalf of a mission editor.
//
// Only pending registrations can be rejected; removing an assignee requires
// Unassign first. The rejected user may register for the slot again.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - registrationUID: Registration to reject
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, ErrConflict when
//     the registration is assigned, or ErrContentionTimeout
func (e *Engine) Reject(ctx context.Context, registrationUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	slotUID, ok := e.regSlots.Load(registrationUID)
	if !ok {
		return fmt.Errorf("registration %s: %w", registrationUID, types.ErrNotFound)
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

	reg := entry.queue.Get(registrationUID)
	if reg == nil {
		unlock()
		e.regSlots.Delete(registrationUID)

		return fmt.Errorf("registration %s: %w", registrationUID, types.ErrNotFound)
	}
	if reg.Status == types.RegistrationAssigned {
		unlock()
		return fmt.Errorf("registration %s holds the slot, unassign first: %w", registrationUID, types.ErrConflict)
	}

	userUID := reg.UserUID
	entry.queue.Remove(registrationUID)
	reg.Status = types.RegistrationRejected
	e.regSlots.Delete(registrationUID)

	var events []types.Event
	events = append(events, e.newEvent(types.EventRejected, entry.slot, userUID, registrationUID))

	e.commitLocked(entry)
	unlock()

	e.publish(events)

	return nil
}
