package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// AssertSlotInvariants checks the structural invariants of a slot snapshot
// against its registrations:
//
//   - at most one assignee source (registration-based or external)
//   - blocked slots hold no assignee
//   - RegistrationCount equals the number of pending plus assigned entries
//   - exactly one assigned registration exists iff the slot has a
//     registration-based assignee, and it belongs to that user
//   - no user holds more than one active registration on the slot
//
// Use it as the final consistency check after concurrent operation stress.
func AssertSlotInvariants(t *testing.T, slot types.Slot, regs []types.Registration) {
	t.Helper()

	if slot.AssigneeUID != "" {
		require.Empty(t, slot.ExternalAssignee,
			"slot %s has both a registration-based and an external assignee", slot.UID)
	}
	if slot.Blocked {
		require.Empty(t, slot.AssigneeUID, "blocked slot %s holds an assignee", slot.UID)
		require.Empty(t, slot.ExternalAssignee, "blocked slot %s holds an external assignee", slot.UID)
	}

	active := 0
	assigned := 0
	activeUsers := make(map[string]int)
	for _, reg := range regs {
		require.Equal(t, slot.UID, reg.SlotUID, "registration %s indexed under the wrong slot", reg.UID)

		if reg.Active() {
			active++
			activeUsers[reg.UserUID]++
		}
		if reg.Status == types.RegistrationAssigned {
			assigned++
			require.Equal(t, slot.AssigneeUID, reg.UserUID,
				"assigned registration %s does not match slot assignee", reg.UID)
			require.True(t, reg.Confirmed, "assigned registration %s is unconfirmed", reg.UID)
		}
	}

	require.Equal(t, active, slot.RegistrationCount,
		"slot %s registration count out of sync", slot.UID)

	if slot.AssigneeUID != "" {
		require.Equal(t, 1, assigned, "slot %s assignee has no matching registration", slot.UID)
	} else {
		require.Zero(t, assigned, "slot %s has an assigned registration but no assignee", slot.UID)
	}

	for user, n := range activeUsers {
		require.Equal(t, 1, n, "user %s holds %d active registrations on slot %s", user, n, slot.UID)
	}
}
