package slotter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	slotter "github.com/Black-Forest-Community/slotlist-reboot"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

func TestManualAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	reg, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)

	require.ErrorIs(t, f.engine.ManualAssign(ctx, slot.UID, reg.UID, "not-an-editor"), slotter.ErrUnauthorized)

	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, reg.UID, editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotAssigned, got.State())
	require.Equal(t, "alice", got.AssigneeUID)

	regs, err := f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, types.RegistrationAssigned, regs[0].Status)
	require.True(t, regs[0].Confirmed)

	require.Eventually(t, func() bool {
		return f.recorder.CountKind(types.EventAssigned) == 1
	}, eventuallyTimeout, eventuallyTick)
}

func TestManualAssign_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	alice, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	bob, err := f.engine.Register(ctx, slot.UID, "bob", "")
	require.NoError(t, err)

	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, alice.UID, editorUID))

	// Filled slot refuses a second manual assignment.
	require.ErrorIs(t, f.engine.ManualAssign(ctx, slot.UID, bob.UID, editorUID), slotter.ErrConflict)

	require.ErrorIs(t, f.engine.ManualAssign(ctx, slot.UID, "no-such-registration", editorUID), slotter.ErrNotFound)

	blocked := f.addSlot(t, types.Slot{Title: "Blocked", OrderNumber: 2, Blocked: true})
	require.ErrorIs(t, f.engine.ManualAssign(ctx, blocked.UID, alice.UID, editorUID), slotter.ErrConflict)
}

func TestManualAssign_BypassesEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// dave belongs to another community; his pending registration predates
	// the restriction, and an editor may still assign him.
	slot := f.addSlot(t, types.Slot{})
	reg, err := f.engine.Register(ctx, slot.UID, "dave", "")
	require.NoError(t, err)

	restricted := "bfc"
	_, err = f.engine.UpdateSlot(ctx, slot.UID, slotter.SlotUpdate{RestrictedCommunityUID: &restricted}, editorUID)
	require.NoError(t, err)

	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, reg.UID, editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "dave", got.AssigneeUID)
}

func TestManualAssign_UnassignRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	alice, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	bob, err := f.engine.Register(ctx, slot.UID, "bob", "")
	require.NoError(t, err)

	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, alice.UID, editorUID))
	require.NoError(t, f.engine.Unassign(ctx, slot.UID, editorUID))

	// Alice's registration survives unassignment as pending.
	regs, err := f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, "alice", regs[0].UserUID)
	require.Equal(t, types.RegistrationPending, regs[0].Status)
	require.False(t, regs[0].Confirmed)

	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, bob.UID, editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "bob", got.AssigneeUID)

	regs, err = f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, types.RegistrationPending, regs[0].Status)
	require.Equal(t, types.RegistrationAssigned, regs[1].Status)
}

func TestUnassign_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	require.ErrorIs(t, f.engine.Unassign(ctx, slot.UID, editorUID), slotter.ErrConflict)
	require.ErrorIs(t, f.engine.Unassign(ctx, slot.UID, "not-an-editor"), slotter.ErrUnauthorized)
	require.ErrorIs(t, f.engine.Unassign(ctx, "no-such-slot", editorUID), slotter.ErrNotFound)
}

func TestUnassign_AutoSlotSkipsDemotedRegistration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	_, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	_, err = f.engine.Register(ctx, slot.UID, "bob", "")
	require.NoError(t, err)

	auto := true
	_, err = f.engine.UpdateSlot(ctx, slot.UID, slotter.SlotUpdate{AutoAssignable: &auto}, editorUID)
	require.NoError(t, err)

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.AssigneeUID)

	// Unassigning alice promotes bob, not alice again, even though alice
	// is still earlier in the queue.
	require.NoError(t, f.engine.Unassign(ctx, slot.UID, editorUID))

	got, err = f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "bob", got.AssigneeUID)

	regs, err := f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 2)
	require.Equal(t, "alice", regs[0].UserUID)
	require.Equal(t, types.RegistrationPending, regs[0].Status)
}

func TestSetBlocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	reg, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, reg.UID, editorUID))

	require.NoError(t, f.engine.SetBlocked(ctx, slot.UID, true, editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotBlocked, got.State())
	require.Empty(t, got.AssigneeUID)

	// The demoted registration stays queued through the blocked phase.
	regs, err := f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	require.Equal(t, types.RegistrationPending, regs[0].Status)

	_, err = f.engine.Register(ctx, slot.UID, "bob", "")
	var inel *slotter.IneligibleError
	require.ErrorAs(t, err, &inel)
	require.Equal(t, types.ReasonBlocked, inel.Reason)

	require.NoError(t, f.engine.SetBlocked(ctx, slot.UID, false, editorUID))
	got, err = f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotOpen, got.State())
}

func TestSetBlocked_UnblockPromotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{AutoAssignable: true})
	reg, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	require.Equal(t, types.RegistrationAssigned, reg.Status)

	require.NoError(t, f.engine.SetBlocked(ctx, slot.UID, true, editorUID))
	require.NoError(t, f.engine.SetBlocked(ctx, slot.UID, false, editorUID))

	// Unblocking re-runs promotion; alice gets the slot back.
	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.AssigneeUID)
	require.Equal(t, types.SlotAssigned, got.State())
}

func TestSetBlocked_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	require.NoError(t, f.engine.SetBlocked(ctx, slot.UID, false, editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotOpen, got.State())
}

func TestExternalAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	require.NoError(t, f.engine.SetExternalAssignee(ctx, slot.UID, "Guest Speaker", editorUID))

	got, err := f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotExternallyFilled, got.State())
	require.Equal(t, "Guest Speaker", got.ExternalAssignee)

	// Externally filled slots admit no registrations.
	_, err = f.engine.Register(ctx, slot.UID, "alice", "")
	var inel *slotter.IneligibleError
	require.ErrorAs(t, err, &inel)
	require.Equal(t, types.ReasonAlreadyAssigned, inel.Reason)

	// Replacing the name is allowed.
	require.NoError(t, f.engine.SetExternalAssignee(ctx, slot.UID, "Other Guest", editorUID))
	got, err = f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, "Other Guest", got.ExternalAssignee)

	require.NoError(t, f.engine.ClearExternalAssignee(ctx, slot.UID, editorUID))
	got, err = f.engine.Slot(slot.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotOpen, got.State())

	require.ErrorIs(t, f.engine.ClearExternalAssignee(ctx, slot.UID, editorUID), slotter.ErrConflict)
}

func TestExternalAssignee_MutualExclusion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	reg, err := f.engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)
	require.NoError(t, f.engine.ManualAssign(ctx, slot.UID, reg.UID, editorUID))

	require.ErrorIs(t, f.engine.SetExternalAssignee(ctx, slot.UID, "Guest", editorUID), slotter.ErrConflict)

	blocked := f.addSlot(t, types.Slot{Title: "Blocked", OrderNumber: 2, Blocked: true})
	require.ErrorIs(t, f.engine.SetExternalAssignee(ctx, blocked.UID, "Guest", editorUID), slotter.ErrConflict)
}

func TestReserve_PromotionGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	regular1 := f.addSlot(t, types.Slot{Title: "Rifleman 1", OrderNumber: 1, AutoAssignable: true})
	regular2 := f.addSlot(t, types.Slot{Title: "Rifleman 2", OrderNumber: 2, AutoAssignable: true})
	reserve := f.addSlot(t, types.Slot{Title: "Reserve", OrderNumber: 3, AutoAssignable: true, Reserve: true})

	// The reserve registration stays pending while regular slots are open.
	reg, err := f.engine.Register(ctx, reserve.UID, "carol", "")
	require.NoError(t, err)
	require.Equal(t, types.RegistrationPending, reg.Status)

	_, err = f.engine.Register(ctx, regular1.UID, "alice", "")
	require.NoError(t, err)

	got, err := f.engine.Slot(reserve.UID)
	require.NoError(t, err)
	require.Equal(t, types.SlotOpen, got.State())

	// Filling the last regular slot triggers reserve promotion.
	_, err = f.engine.Register(ctx, regular2.UID, "bob", "")
	require.NoError(t, err)

	got, err = f.engine.Slot(reserve.UID)
	require.NoError(t, err)
	require.Equal(t, "carol", got.AssigneeUID)
	require.Equal(t, types.SlotAssigned, got.State())
}

func TestReserve_BlockedRegularSlotIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	regular := f.addSlot(t, types.Slot{Title: "Rifleman", OrderNumber: 1, AutoAssignable: true})
	f.addSlot(t, types.Slot{Title: "Closed", OrderNumber: 2, Blocked: true})
	reserve := f.addSlot(t, types.Slot{Title: "Reserve", OrderNumber: 3, AutoAssignable: true, Reserve: true})

	_, err := f.engine.Register(ctx, reserve.UID, "carol", "")
	require.NoError(t, err)

	// The blocked regular slot does not hold the gate open.
	_, err = f.engine.Register(ctx, regular.UID, "alice", "")
	require.NoError(t, err)

	got, err := f.engine.Slot(reserve.UID)
	require.NoError(t, err)
	require.Equal(t, "carol", got.AssigneeUID)
}

func TestReserve_ExternalFillTriggersPromotion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	regular := f.addSlot(t, types.Slot{Title: "Rifleman", OrderNumber: 1})
	reserve := f.addSlot(t, types.Slot{Title: "Reserve", OrderNumber: 2, AutoAssignable: true, Reserve: true})

	_, err := f.engine.Register(ctx, reserve.UID, "carol", "")
	require.NoError(t, err)

	require.NoError(t, f.engine.SetExternalAssignee(ctx, regular.UID, "Guest", editorUID))

	got, err := f.engine.Slot(reserve.UID)
	require.NoError(t, err)
	require.Equal(t, "carol", got.AssigneeUID)
}
