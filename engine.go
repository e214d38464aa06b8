package slotter

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Black-Forest-Community/slotlist-reboot/eligibility"
	"github.com/Black-Forest-Community/slotlist-reboot/emitter"
	"github.com/Black-Forest-Community/slotlist-reboot/internal/locking"
	"github.com/Black-Forest-Community/slotlist-reboot/internal/logging"
	"github.com/Black-Forest-Community/slotlist-reboot/internal/metrics"
	"github.com/Black-Forest-Community/slotlist-reboot/queue"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// validSlotTransitions maps each slot state to the states it may move to.
// Transitions the engine computes always stay within this table; a violation
// indicates a logic error and is logged rather than panicked on.
var validSlotTransitions = map[types.SlotState][]types.SlotState{
	types.SlotOpen:             {types.SlotAssigned, types.SlotBlocked, types.SlotExternallyFilled},
	types.SlotAssigned:         {types.SlotOpen, types.SlotBlocked},
	types.SlotBlocked:          {types.SlotOpen},
	types.SlotExternallyFilled: {types.SlotOpen, types.SlotBlocked},
}

// slotEntry is the engine's per-slot record.
//
// slot and queue are guarded by the slot's keyed critical section. The atomic
// fields are lock-free snapshots refreshed on every commit: filled, reserve
// and blocked feed the reserve gating check of sibling slots, snapSlot and
// snapRegs serve queries without taking the lock.
type slotEntry struct {
	slot  types.Slot
	queue *queue.Queue

	filled  atomic.Bool
	reserve atomic.Bool
	blocked atomic.Bool

	snapSlot atomic.Pointer[types.Slot]
	snapRegs atomic.Pointer[[]types.Registration]
}

// storeSnapshot refreshes the lock-free views. Must be called with the
// slot's critical section held.
func (se *slotEntry) storeSnapshot() {
	slot := se.slot
	slot.RequiredTags = slices.Clone(se.slot.RequiredTags)
	se.snapSlot.Store(&slot)

	all := se.queue.All()
	regs := make([]types.Registration, len(all))
	for i, reg := range all {
		regs[i] = *reg
	}
	se.snapRegs.Store(&regs)

	se.filled.Store(se.slot.Filled())
	se.reserve.Store(se.slot.Reserve)
	se.blocked.Store(se.slot.Blocked)
}

// Engine is the mission slot allocation engine.
//
// It manages mission topology (missions, slot groups, slots), registration
// queues and slot assignment. All methods are safe for concurrent use;
// operations on distinct slots proceed in parallel, operations on the same
// slot are serialized through a per-slot critical section with a bounded
// wait (Config.LockTimeout).
//
// The engine must be started with Start before state-changing operations are
// accepted, and stopped with Stop to flush pending notifications.
type Engine struct {
	cfg      Config
	profiles types.ProfileProvider
	authz    types.Authorizer

	logger  types.Logger
	metrics types.MetricsCollector
	emitter types.NotificationEmitter

	locks *locking.Keyed

	missions   *xsync.Map[string, types.Mission]
	groups     *xsync.Map[string, types.SlotGroup]
	slots      *xsync.Map[string, *slotEntry]
	groupSlots *xsync.Map[string, *xsync.Map[string, *slotEntry]]
	regSlots   *xsync.Map[string, string] // registration UID -> slot UID

	// topoMu serializes topology mutations (create/delete of missions,
	// groups and slots) so uniqueness checks see a stable view. Slot state
	// transitions never take it.
	topoMu sync.Mutex

	mu      sync.Mutex // lifecycle
	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	events chan types.Event
}

// New creates a new Engine with the given configuration and collaborators.
//
// Parameters:
//   - cfg: Engine configuration; nil uses DefaultConfig. Missing fields are
//     filled with defaults before validation
//   - profiles: Resolves user identifiers to community and capability tags
//   - authz: Answers editor capability checks for missions
//   - opts: Optional logger, metrics collector and notification emitter
//
// Returns:
//   - *Engine: A new engine instance (not yet started)
//   - error: Configuration or collaborator validation failure
//
// Example:
//
//	cfg := slotter.DefaultConfig()
//	engine, err := slotter.New(&cfg, profiles, authz,
//	    slotter.WithLogger(logging.NewSlogDefault()),
//	    slotter.WithEmitter(em),
//	)
func New(cfg *Config, profiles types.ProfileProvider, authz types.Authorizer, opts ...Option) (*Engine, error) {
	if profiles == nil {
		return nil, ErrProfileProviderRequired
	}
	if authz == nil {
		return nil, ErrAuthorizerRequired
	}

	var config Config
	if cfg != nil {
		config = *cfg
	}
	SetDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        config,
		profiles:   profiles,
		authz:      authz,
		logger:     logging.NewNop(),
		metrics:    metrics.NewNop(),
		emitter:    emitter.NewNop(),
		locks:      locking.New(),
		missions:   xsync.NewMap[string, types.Mission](),
		groups:     xsync.NewMap[string, types.SlotGroup](),
		slots:      xsync.NewMap[string, *slotEntry](),
		groupSlots: xsync.NewMap[string, *xsync.Map[string, *slotEntry]](),
		regSlots:   xsync.NewMap[string, string](),
		events:     make(chan types.Event, config.EventBufferSize),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Start starts the engine's notification dispatch loop.
//
// Parameters:
//   - ctx: Unused for the lifecycle itself; reserved for future setup work
//
// Returns:
//   - error: ErrAlreadyStarted if the engine is already running
func (e *Engine) Start(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started.Load() {
		return ErrAlreadyStarted
	}

	e.cfg.ValidateWithWarnings(e.logger)

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Go(e.dispatch)
	e.started.Store(true)

	e.logger.Info("engine started",
		"lock_timeout", e.cfg.LockTimeout,
		"event_buffer_size", e.cfg.EventBufferSize,
	)

	return nil
}

// Stop stops the engine, flushing buffered notifications.
//
// Parameters:
//   - ctx: Bounds the wait for the dispatch loop to drain
//
// Returns:
//   - error: ErrNotStarted if the engine is not running, or the context
//     error when the drain does not finish in time
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started.Load() {
		return ErrNotStarted
	}

	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for dispatch drain: %w", ctx.Err())
	}

	e.started.Store(false)
	e.logger.Info("engine stopped")

	return nil
}

// requireStarted gates state-changing operations on a running engine.
func (e *Engine) requireStarted() error {
	if !e.started.Load() {
		return ErrNotStarted
	}

	return nil
}

// dispatch delivers buffered events to the emitter until the engine stops,
// then drains whatever is still buffered.
func (e *Engine) dispatch() {
	for {
		select {
		case ev := <-e.events:
			e.emit(ev)
		case <-e.ctx.Done():
			for {
				select {
				case ev := <-e.events:
					e.emit(ev)
				default:
					return
				}
			}
		}
	}
}

// emit hands one event to the emitter. Failures are logged and counted;
// notification is best-effort and never fails the originating operation.
func (e *Engine) emit(ev types.Event) {
	if err := e.emitter.Emit(context.Background(), ev); err != nil {
		e.metrics.RecordEventDropped("emit_failed")
		e.logger.Error("failed to emit event",
			"kind", ev.Kind.String(),
			"slot_uid", ev.SlotUID,
			"error", err,
		)

		return
	}

	e.metrics.RecordEventEmitted(ev.Kind)
}

// publish enqueues events for dispatch without blocking. Events that do not
// fit into the buffer are dropped and counted.
func (e *Engine) publish(events []types.Event) {
	for _, ev := range events {
		select {
		case e.events <- ev:
		default:
			e.metrics.RecordEventDropped("buffer_full")
			e.logger.Warn("event buffer full, dropping notification",
				"kind", ev.Kind.String(),
				"slot_uid", ev.SlotUID,
			)
		}
	}
}

// acquireSlot enters the slot's critical section and returns its entry.
//
// The entry is looked up after acquisition so a concurrently deleted slot
// surfaces as ErrNotFound rather than as a write to a dangling record.
func (e *Engine) acquireSlot(ctx context.Context, slotUID string) (*slotEntry, func(), error) {
	start := time.Now()
	unlock, err := e.locks.Acquire(ctx, slotUID, e.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, types.ErrContentionTimeout) {
			e.metrics.RecordLockTimeout()
		}

		return nil, nil, err
	}
	e.metrics.RecordLockWait(time.Since(start).Seconds())

	entry, ok := e.slots.Load(slotUID)
	if !ok {
		unlock()
		return nil, nil, fmt.Errorf("slot %s: %w", slotUID, types.ErrNotFound)
	}

	return entry, unlock, nil
}

// commitLocked finalizes a mutation: refreshes the denormalized registration
// count, publishes the lock-free snapshot and records queue depth.
func (e *Engine) commitLocked(entry *slotEntry) {
	entry.slot.RegistrationCount = entry.queue.CountActive()
	entry.storeSnapshot()

	depth := len(entry.queue.Pending())
	e.metrics.RecordQueueDepth(depth)
	if e.cfg.WarnQueueDepth > 0 && depth > e.cfg.WarnQueueDepth {
		e.logger.Warn("slot queue depth above threshold",
			"slot_uid", entry.slot.UID,
			"depth", depth,
			"threshold", e.cfg.WarnQueueDepth,
		)
	}
}

// noteTransitionLocked records the state change from the given prior state
// to the slot's current state, if any.
func (e *Engine) noteTransitionLocked(entry *slotEntry, from types.SlotState) {
	to := entry.slot.State()
	if from == to {
		return
	}

	if !slices.Contains(validSlotTransitions[from], to) {
		e.logger.Error("invalid slot state transition",
			"slot_uid", entry.slot.UID,
			"from", from.String(),
			"to", to.String(),
		)
	}

	e.metrics.RecordSlotStateTransition(from, to)
	e.logger.Debug("slot state transition",
		"slot_uid", entry.slot.UID,
		"from", from.String(),
		"to", to.String(),
	)
}

// newEvent builds an event for the slot's current topology position.
func (e *Engine) newEvent(kind types.EventKind, slot types.Slot, userUID, registrationUID string) types.Event {
	missionUID := ""
	if group, ok := e.groups.Load(slot.GroupUID); ok {
		missionUID = group.MissionUID
	}

	return types.Event{
		Kind:            kind,
		MissionUID:      missionUID,
		GroupUID:        slot.GroupUID,
		SlotUID:         slot.UID,
		UserUID:         userUID,
		RegistrationUID: registrationUID,
		OccurredAt:      time.Now(),
	}
}

// effectiveSlotLocked returns the slot with mission-wide required tags merged
// into its own, which is the view the eligibility checker evaluates.
func (e *Engine) effectiveSlotLocked(entry *slotEntry) types.Slot {
	slot := entry.slot

	group, ok := e.groups.Load(slot.GroupUID)
	if !ok {
		return slot
	}
	mission, ok := e.missions.Load(group.MissionUID)
	if !ok || len(mission.RequiredTags) == 0 {
		return slot
	}

	merged := slices.Clone(slot.RequiredTags)
	for _, tag := range mission.RequiredTags {
		if !slices.Contains(merged, tag) {
			merged = append(merged, tag)
		}
	}
	slot.RequiredTags = merged

	return slot
}

// assignLocked commits a registration-based assignment.
func (e *Engine) assignLocked(entry *slotEntry, reg *types.Registration, kind string, events *[]types.Event) {
	from := entry.slot.State()

	reg.Status = types.RegistrationAssigned
	reg.Confirmed = true
	entry.slot.AssigneeUID = reg.UserUID

	e.noteTransitionLocked(entry, from)
	e.metrics.RecordAssignment(kind)
	*events = append(*events, e.newEvent(types.EventAssigned, entry.slot, reg.UserUID, reg.UID))
}

// demoteLocked clears the slot's registration-based assignee and returns the
// demoted registration to pending.
//
// Returns:
//   - string: UID of the demoted registration ("" when the assignee had no
//     queue entry, which only happens for state imported from outside)
func (e *Engine) demoteLocked(entry *slotEntry, reason string, events *[]types.Event) string {
	userUID := entry.slot.AssigneeUID
	if userUID == "" {
		return ""
	}

	from := entry.slot.State()

	registrationUID := ""
	if reg := entry.queue.GetByUser(userUID); reg != nil && reg.Status == types.RegistrationAssigned {
		reg.Status = types.RegistrationPending
		reg.Confirmed = false
		registrationUID = reg.UID
	}
	entry.slot.AssigneeUID = ""

	e.noteTransitionLocked(entry, from)
	e.metrics.RecordUnassignment(reason)
	*events = append(*events, e.newEvent(types.EventUnassigned, entry.slot, userUID, registrationUID))

	return registrationUID
}

// tryPromoteLocked assigns the earliest eligible pending registration to the
// slot if the slot currently auto-assigns.
//
// The exclude parameter skips one registration UID for this pass; it carries
// the just-demoted registration after an unassignment so the former assignee
// is not immediately re-promoted ahead of the rest of the queue.
//
// Returns:
//   - bool: true if an assignment was committed
func (e *Engine) tryPromoteLocked(ctx context.Context, entry *slotEntry, exclude, kind string, events *[]types.Event) bool {
	if !entry.slot.AutoAssignable || entry.slot.State() != types.SlotOpen {
		return false
	}
	if entry.slot.Reserve && !e.nonReserveSlotsFilled(entry.slot.GroupUID) {
		return false
	}

	checkSlot := e.effectiveSlotLocked(entry)
	candidate := entry.queue.PeekEligible(func(reg *types.Registration) bool {
		if reg.Status != types.RegistrationPending || reg.UID == exclude {
			return false
		}

		profile, err := e.profiles.Lookup(ctx, reg.UserUID)
		if err != nil {
			e.logger.Warn("skipping promotion candidate, profile lookup failed",
				"user_uid", reg.UserUID,
				"slot_uid", entry.slot.UID,
				"error", err,
			)

			return false
		}

		return eligibility.Check(checkSlot, profile, false).Eligible
	})
	if candidate == nil {
		return false
	}

	e.assignLocked(entry, candidate, kind, events)

	return true
}

// nonReserveSlotsFilled reports whether every non-reserve, non-blocked slot
// in the group is filled. This is the gate for reserve slot promotion.
//
// The check reads lock-free snapshots of the sibling slots: it never takes
// another slot's critical section, so it cannot deadlock against concurrent
// operations in the same group. The snapshots may lag a concurrent commit by
// one re-evaluation cycle, which the next fill-changing transition corrects.
func (e *Engine) nonReserveSlotsFilled(groupUID string) bool {
	siblings, ok := e.groupSlots.Load(groupUID)
	if !ok {
		return false
	}

	allFilled := true
	siblings.Range(func(_ string, se *slotEntry) bool {
		if se.reserve.Load() || se.blocked.Load() {
			return true
		}
		if !se.filled.Load() {
			allFilled = false
			return false
		}

		return true
	})

	return allFilled
}

// reevaluateGroup runs reserve promotion for every unfilled reserve slot in
// the group, excluding the slot that triggered the re-evaluation.
//
// Called after a fill-changing transition has committed and released its own
// critical section; each reserve sibling is promoted under its own lock.
// Siblings whose lock cannot be acquired in time are skipped; the next
// transition in the group retries them.
func (e *Engine) reevaluateGroup(ctx context.Context, groupUID, triggerSlotUID string) {
	siblings, ok := e.groupSlots.Load(groupUID)
	if !ok {
		return
	}

	var reserveUIDs []string
	siblings.Range(func(uid string, se *slotEntry) bool {
		if uid != triggerSlotUID && se.reserve.Load() && !se.filled.Load() && !se.blocked.Load() {
			reserveUIDs = append(reserveUIDs, uid)
		}

		return true
	})

	for _, uid := range reserveUIDs {
		entry, unlock, err := e.acquireSlot(ctx, uid)
		if err != nil {
			e.logger.Debug("skipping reserve re-evaluation",
				"slot_uid", uid,
				"group_uid", groupUID,
				"error", err,
			)

			continue
		}

		var events []types.Event
		if e.tryPromoteLocked(ctx, entry, "", "promotion", &events) {
			e.commitLocked(entry)
		}
		unlock()

		e.publish(events)
	}
}

// requireEditor resolves the group's mission and checks the actor's editor
// capability on it.
//
// Returns:
//   - string: The mission UID
//   - error: ErrNotFound for an unknown group, ErrUnauthorized when the
//     actor lacks the capability, or the authorizer's own failure
func (e *Engine) requireEditor(ctx context.Context, groupUID, actorUID string) (string, error) {
	group, ok := e.groups.Load(groupUID)
	if !ok {
		return "", fmt.Errorf("slot group %s: %w", groupUID, types.ErrNotFound)
	}

	ok, err := e.authz.CanEdit(ctx, group.MissionUID, actorUID)
	if err != nil {
		return "", fmt.Errorf("checking editor capability: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("actor %s on mission %s: %w", actorUID, group.MissionUID, types.ErrUnauthorized)
	}

	return group.MissionUID, nil
}

// Mission returns the mission with the given UID.
//
// Returns:
//   - types.Mission: Copy of the mission
//   - error: ErrNotFound for unknown missions
func (e *Engine) Mission(missionUID string) (types.Mission, error) {
	mission, ok := e.missions.Load(missionUID)
	if !ok {
		return types.Mission{}, fmt.Errorf("mission %s: %w", missionUID, types.ErrNotFound)
	}

	return mission, nil
}

// Missions returns all missions, sorted by creation time.
func (e *Engine) Missions() []types.Mission {
	var out []types.Mission
	e.missions.Range(func(_ string, m types.Mission) bool {
		out = append(out, m)
		return true
	})

	slices.SortFunc(out, func(a, b types.Mission) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

// MissionGroups returns the mission's slot groups ordered by order number,
// ties broken by creation time.
//
// Returns:
//   - []types.SlotGroup: Ordered groups (empty for unknown missions)
func (e *Engine) MissionGroups(missionUID string) []types.SlotGroup {
	var out []types.SlotGroup
	e.groups.Range(func(_ string, g types.SlotGroup) bool {
		if g.MissionUID == missionUID {
			out = append(out, g)
		}

		return true
	})

	slices.SortFunc(out, func(a, b types.SlotGroup) int {
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber - b.OrderNumber
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

// SlotGroup returns the slot group with the given UID.
//
// Returns:
//   - types.SlotGroup: Copy of the group
//   - error: ErrNotFound for unknown groups
func (e *Engine) SlotGroup(groupUID string) (types.SlotGroup, error) {
	group, ok := e.groups.Load(groupUID)
	if !ok {
		return types.SlotGroup{}, fmt.Errorf("slot group %s: %w", groupUID, types.ErrNotFound)
	}

	return group, nil
}

// GroupSlots returns the group's slots ordered by order number, ties broken
// by creation time.
//
// The returned slots are lock-free snapshots: they reflect the latest
// committed state of each slot.
func (e *Engine) GroupSlots(groupUID string) []types.Slot {
	siblings, ok := e.groupSlots.Load(groupUID)
	if !ok {
		return nil
	}

	var out []types.Slot
	siblings.Range(func(_ string, se *slotEntry) bool {
		if snap := se.snapSlot.Load(); snap != nil {
			out = append(out, *snap)
		}

		return true
	})

	slices.SortFunc(out, func(a, b types.Slot) int {
		if a.OrderNumber != b.OrderNumber {
			return a.OrderNumber - b.OrderNumber
		}

		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return out
}

// Slot returns the latest committed state of the slot.
//
// The read is lock-free: it never waits on the slot's critical section. The
// slot's assignment state derives from the returned value via Slot.State().
//
// Returns:
//   - types.Slot: Snapshot of the slot
//   - error: ErrNotFound for unknown slots
func (e *Engine) Slot(slotUID string) (types.Slot, error) {
	entry, ok := e.slots.Load(slotUID)
	if !ok {
		return types.Slot{}, fmt.Errorf("slot %s: %w", slotUID, types.ErrNotFound)
	}

	snap := entry.snapSlot.Load()
	if snap == nil {
		return types.Slot{}, fmt.Errorf("slot %s: %w", slotUID, types.ErrNotFound)
	}

	return *snap, nil
}

// SlotRegistrations returns the slot's registrations in queue order.
//
// The read is lock-free. Withdrawn and rejected registrations are not
// included (they leave the queue on removal).
//
// Returns:
//   - []types.Registration: Registrations in (CreatedAt, Seq) order
//   - error: ErrNotFound for unknown slots
func (e *Engine) SlotRegistrations(slotUID string) ([]types.Registration, error) {
	entry, ok := e.slots.Load(slotUID)
	if !ok {
		return nil, fmt.Errorf("slot %s: %w", slotUID, types.ErrNotFound)
	}

	snap := entry.snapRegs.Load()
	if snap == nil {
		return nil, nil
	}

	return slices.Clone(*snap), nil
}

// UserRegistrations returns the user's registrations across all slots.
//
// Returns:
//   - []types.Registration: The user's active registrations, in no
//     particular order across slots
func (e *Engine) UserRegistrations(userUID string) []types.Registration {
	var out []types.Registration
	e.slots.Range(func(_ string, se *slotEntry) bool {
		snap := se.snapRegs.Load()
		if snap == nil {
			return true
		}
		for _, reg := range *snap {
			if reg.UserUID == userUID {
				out = append(out, reg)
			}
		}

		return true
	})

	return out
}
