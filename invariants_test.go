package slotter_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/Black-Forest-Community/slotlist-reboot/testing"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Randomized operation stress: several goroutines fire arbitrary operations
// at a small topology; afterwards every slot must still satisfy the
// structural invariants. Individual operations are expected to fail often
// (conflicts, ineligibility) — only consistency matters here.
func TestEngine_InvariantsUnderRandomOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const slotCount = 6
	slots := make([]types.Slot, slotCount)
	for i := range slotCount {
		slots[i] = f.addSlot(t, types.Slot{
			Title:          fmt.Sprintf("Slot %d", i),
			OrderNumber:    i + 1,
			AutoAssignable: i%2 == 0,
			Reserve:        i == slotCount-1,
		})
	}

	users := make([]string, 10)
	for i := range users {
		users[i] = fmt.Sprintf("user-%d", i)
		f.profiles.Put(types.UserProfile{UID: users[i], CommunityUID: "bfc"})
	}

	const (
		workers      = 8
		opsPerWorker = 200
	)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(42, uint64(w)))

			for range opsPerWorker {
				slot := slots[rng.IntN(len(slots))]
				user := users[rng.IntN(len(users))]

				switch rng.IntN(6) {
				case 0, 1:
					_, _ = f.engine.Register(ctx, slot.UID, user, "")
				case 2:
					for _, reg := range f.engine.UserRegistrations(user) {
						_ = f.engine.Withdraw(ctx, reg.UID, user)
						break
					}
				case 3:
					regs, err := f.engine.SlotRegistrations(slot.UID)
					if err == nil && len(regs) > 0 {
						reg := regs[rng.IntN(len(regs))]
						if rng.IntN(2) == 0 {
							_ = f.engine.ManualAssign(ctx, slot.UID, reg.UID, editorUID)
						} else {
							_ = f.engine.Reject(ctx, reg.UID, editorUID)
						}
					}
				case 4:
					_ = f.engine.Unassign(ctx, slot.UID, editorUID)
				case 5:
					_ = f.engine.SetBlocked(ctx, slot.UID, rng.IntN(2) == 0, editorUID)
				}
			}
		}()
	}
	wg.Wait()

	for _, slot := range slots {
		got, err := f.engine.Slot(slot.UID)
		require.NoError(t, err)
		regs, err := f.engine.SlotRegistrations(slot.UID)
		require.NoError(t, err)

		testutil.AssertSlotInvariants(t, got, regs)
	}
}
