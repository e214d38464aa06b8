package slotter_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	slotter "github.com/Black-Forest-Community/slotlist-reboot"
	"github.com/Black-Forest-Community/slotlist-reboot/provider"
	testutil "github.com/Black-Forest-Community/slotlist-reboot/testing"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

const editorUID = "editor"

// Polling bounds for require.Eventually on asynchronous event dispatch.
const (
	eventuallyTimeout = 2 * time.Second
	eventuallyTick    = 10 * time.Millisecond
)

// fixture is a started engine with one mission, one slot group, a static
// profile set and an editor grant.
type fixture struct {
	engine   *slotter.Engine
	profiles *provider.StaticProfiles
	authz    *provider.StaticAuthorizer
	recorder *testutil.Recorder
	mission  types.Mission
	group    types.SlotGroup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	profiles := provider.NewStaticProfiles(
		types.UserProfile{UID: "alice", Nickname: "Alice", CommunityUID: "bfc", Tags: []string{"apex", "ws"}},
		types.UserProfile{UID: "bob", Nickname: "Bob", CommunityUID: "bfc", Tags: []string{"apex"}},
		types.UserProfile{UID: "carol", Nickname: "Carol", CommunityUID: "bfc", Tags: []string{"apex"}},
		types.UserProfile{UID: "dave", Nickname: "Dave", CommunityUID: "other"},
	)
	authz := provider.NewStaticAuthorizer()
	recorder := testutil.NewRecorder()

	cfg := slotter.TestConfig()
	engine, err := slotter.New(&cfg, profiles, authz, slotter.WithEmitter(recorder))
	require.NoError(t, err)
	require.NoError(t, engine.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = engine.Stop(stopCtx)
	})

	mission, err := engine.CreateMission(ctx, types.Mission{Slug: "op-test", Title: "Operation Test"})
	require.NoError(t, err)
	authz.Grant(mission.UID, editorUID)

	group, err := engine.CreateSlotGroup(ctx, types.SlotGroup{
		MissionUID:  mission.UID,
		Title:       "Alpha Squad",
		OrderNumber: 1,
	}, editorUID)
	require.NoError(t, err)

	return &fixture{
		engine:   engine,
		profiles: profiles,
		authz:    authz,
		recorder: recorder,
		mission:  mission,
		group:    group,
	}
}

// addSlot creates a slot in the fixture group, defaulting GroupUID and Title.
func (f *fixture) addSlot(t *testing.T, slot types.Slot) types.Slot {
	t.Helper()

	if slot.GroupUID == "" {
		slot.GroupUID = f.group.UID
	}
	if slot.Title == "" {
		slot.Title = "Rifleman"
	}

	created, err := f.engine.CreateSlot(context.Background(), slot, editorUID)
	require.NoError(t, err)

	return created
}

func TestNew_RequiresCollaborators(t *testing.T) {
	authz := provider.NewStaticAuthorizer()
	profiles := provider.NewStaticProfiles()

	_, err := slotter.New(nil, nil, authz)
	require.ErrorIs(t, err, slotter.ErrProfileProviderRequired)

	_, err = slotter.New(nil, profiles, nil)
	require.ErrorIs(t, err, slotter.ErrAuthorizerRequired)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := slotter.Config{LockTimeout: -time.Second}

	_, err := slotter.New(&cfg, provider.NewStaticProfiles(), provider.NewStaticAuthorizer())
	require.ErrorIs(t, err, slotter.ErrInvalidConfig)
}

func TestEngine_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := slotter.TestConfig()

	engine, err := slotter.New(&cfg, provider.NewStaticProfiles(), provider.NewStaticAuthorizer())
	require.NoError(t, err)

	// Operations before Start are refused.
	_, err = engine.Register(ctx, "slot-1", "alice", "")
	require.ErrorIs(t, err, slotter.ErrNotStarted)

	require.NoError(t, engine.Start(ctx))
	require.ErrorIs(t, engine.Start(ctx), slotter.ErrAlreadyStarted)

	require.NoError(t, engine.Stop(ctx))
	require.ErrorIs(t, engine.Stop(ctx), slotter.ErrNotStarted)
}

func TestEngine_StopFlushesEvents(t *testing.T) {
	ctx := context.Background()

	profiles := provider.NewStaticProfiles(types.UserProfile{UID: "alice"})
	authz := provider.NewStaticAuthorizer()
	recorder := testutil.NewRecorder()

	cfg := slotter.TestConfig()
	engine, err := slotter.New(&cfg, profiles, authz, slotter.WithEmitter(recorder))
	require.NoError(t, err)
	require.NoError(t, engine.Start(ctx))

	mission, err := engine.CreateMission(ctx, types.Mission{Slug: "op", Title: "Op"})
	require.NoError(t, err)
	authz.Grant(mission.UID, editorUID)
	group, err := engine.CreateSlotGroup(ctx, types.SlotGroup{MissionUID: mission.UID, Title: "Alpha", OrderNumber: 1}, editorUID)
	require.NoError(t, err)
	slot, err := engine.CreateSlot(ctx, types.Slot{GroupUID: group.UID, Title: "Rifleman"}, editorUID)
	require.NoError(t, err)

	_, err = engine.Register(ctx, slot.UID, "alice", "")
	require.NoError(t, err)

	require.NoError(t, engine.Stop(ctx))
	require.Equal(t, 1, recorder.CountKind(types.EventRegistered))
}

func TestEngine_UserRegistrationsAcrossSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot1 := f.addSlot(t, types.Slot{Title: "Medic", OrderNumber: 1})
	slot2 := f.addSlot(t, types.Slot{Title: "Engineer", OrderNumber: 2})

	_, err := f.engine.Register(ctx, slot1.UID, "alice", "")
	require.NoError(t, err)
	_, err = f.engine.Register(ctx, slot2.UID, "alice", "")
	require.NoError(t, err)
	_, err = f.engine.Register(ctx, slot2.UID, "bob", "")
	require.NoError(t, err)

	regs := f.engine.UserRegistrations("alice")
	require.Len(t, regs, 2)
	for _, reg := range regs {
		require.Equal(t, "alice", reg.UserUID)
	}

	require.Len(t, f.engine.UserRegistrations("bob"), 1)
	require.Empty(t, f.engine.UserRegistrations("carol"))
}

func TestEngine_CrossSlotParallelism(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const slotCount = 8
	slots := make([]types.Slot, slotCount)
	for i := range slotCount {
		slots[i] = f.addSlot(t, types.Slot{Title: fmt.Sprintf("Slot %d", i), OrderNumber: i + 1})
	}

	// Each user registers for every slot concurrently; operations on
	// distinct slots must all succeed without contention failures.
	users := []string{"alice", "bob", "carol"}
	var wg sync.WaitGroup
	errs := make(chan error, slotCount*len(users))

	for _, slot := range slots {
		for _, user := range users {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.engine.Register(ctx, slot.UID, user, "")
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	for _, slot := range slots {
		regs, err := f.engine.SlotRegistrations(slot.UID)
		require.NoError(t, err)
		require.Len(t, regs, len(users))

		got, err := f.engine.Slot(slot.UID)
		require.NoError(t, err)
		require.Equal(t, len(users), got.RegistrationCount)
	}
}

func TestEngine_RegistrationsOrderedByCreation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slot := f.addSlot(t, types.Slot{})
	for _, user := range []string{"alice", "bob", "carol"} {
		_, err := f.engine.Register(ctx, slot.UID, user, "")
		require.NoError(t, err)
	}

	regs, err := f.engine.SlotRegistrations(slot.UID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	require.Equal(t, "alice", regs[0].UserUID)
	require.Equal(t, "bob", regs[1].UserUID)
	require.Equal(t, "carol", regs[2].UserUID)

	for i := 1; i < len(regs); i++ {
		require.Less(t, regs[i-1].Seq, regs[i].Seq)
	}
}
