package slotter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Black-Forest-Community/slotlist-reboot/queue"
	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// CreateMission registers a new mission with the engine.
//
// Mission creation is not editor-gated: whoever creates the mission is
// expected to receive editor capability from the application's Authorizer.
// A missing UID is generated, a zero CreatedAt is set to now.
//
// Parameters:
//   - ctx: Unused; reserved for future validation hooks
//   - mission: Mission to create; Slug and Title are required
//
// Returns:
//   - types.Mission: The stored mission with UID and CreatedAt filled in
//   - error: ErrNotStarted or ErrInvalidArgument
func (e *Engine) CreateMission(_ context.Context, mission types.Mission) (types.Mission, error) {
	if err := e.requireStarted(); err != nil {
		return types.Mission{}, err
	}
	if mission.Slug == "" {
		return types.Mission{}, fmt.Errorf("mission slug is required: %w", types.ErrInvalidArgument)
	}
	if mission.Title == "" {
		return types.Mission{}, fmt.Errorf("mission title is required: %w", types.ErrInvalidArgument)
	}

	if mission.UID == "" {
		mission.UID = uuid.NewString()
	}
	if mission.CreatedAt.IsZero() {
		mission.CreatedAt = time.Now()
	}

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	e.missions.Store(mission.UID, mission)
	e.logger.Info("mission created", "mission_uid", mission.UID, "slug", mission.Slug)

	return mission, nil
}

// UpdateMission replaces the mutable fields of a mission on behalf of a
// mission editor (title, time window, mission-wide required tags).
//
// Parameters:
//   - ctx: Context passed to the authorizer
//   - mission: Mission carrying the UID to update and the new field values
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - types.Mission: The stored mission after the update
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized or
//     ErrInvalidArgument
func (e *Engine) UpdateMission(ctx context.Context, mission types.Mission, actorUID string) (types.Mission, error) {
	if err := e.requireStarted(); err != nil {
		return types.Mission{}, err
	}

	current, ok := e.missions.Load(mission.UID)
	if !ok {
		return types.Mission{}, fmt.Errorf("mission %s: %w", mission.UID, types.ErrNotFound)
	}

	allowed, err := e.authz.CanEdit(ctx, mission.UID, actorUID)
	if err != nil {
		return types.Mission{}, fmt.Errorf("checking editor capability: %w", err)
	}
	if !allowed {
		return types.Mission{}, fmt.Errorf("actor %s on mission %s: %w", actorUID, mission.UID, types.ErrUnauthorized)
	}

	if mission.Title == "" {
		return types.Mission{}, fmt.Errorf("mission title is required: %w", types.ErrInvalidArgument)
	}

	// Slug and creation time are immutable.
	mission.Slug = current.Slug
	mission.CreatedAt = current.CreatedAt
	mission.CommunityUID = current.CommunityUID

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	e.missions.Store(mission.UID, mission)

	return mission, nil
}

// DeleteMission removes a mission and cascades to its slot groups, slots and
// registrations.
//
// Parameters:
//   - ctx: Context passed to the authorizer and used while acquiring each
//     slot's critical section
//   - missionUID: Mission to delete
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, or the first slot
//     removal failure (the cascade stops there and can be retried)
func (e *Engine) DeleteMission(ctx context.Context, missionUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	if _, ok := e.missions.Load(missionUID); !ok {
		return fmt.Errorf("mission %s: %w", missionUID, types.ErrNotFound)
	}

	allowed, err := e.authz.CanEdit(ctx, missionUID, actorUID)
	if err != nil {
		return fmt.Errorf("checking editor capability: %w", err)
	}
	if !allowed {
		return fmt.Errorf("actor %s on mission %s: %w", actorUID, missionUID, types.ErrUnauthorized)
	}

	for _, group := range e.MissionGroups(missionUID) {
		if err := e.removeGroup(ctx, group.UID); err != nil {
			return err
		}
	}

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	e.missions.Delete(missionUID)
	e.logger.Info("mission deleted", "mission_uid", missionUID)

	return nil
}

// CreateSlotGroup adds a slot group to a mission on behalf of a mission
// editor.
//
// Order numbers are unique within a mission; a taken order number fails with
// ErrDuplicateOrder.
//
// Parameters:
//   - ctx: Context passed to the authorizer
//   - group: Group to create; MissionUID and Title are required
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - types.SlotGroup: The stored group with UID and CreatedAt filled in
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized,
//     ErrInvalidArgument or ErrDuplicateOrder
func (e *Engine) CreateSlotGroup(ctx context.Context, group types.SlotGroup, actorUID string) (types.SlotGroup, error) {
	if err := e.requireStarted(); err != nil {
		return types.SlotGroup{}, err
	}
	if group.Title == "" {
		return types.SlotGroup{}, fmt.Errorf("slot group title is required: %w", types.ErrInvalidArgument)
	}

	if _, ok := e.missions.Load(group.MissionUID); !ok {
		return types.SlotGroup{}, fmt.Errorf("mission %s: %w", group.MissionUID, types.ErrNotFound)
	}

	allowed, err := e.authz.CanEdit(ctx, group.MissionUID, actorUID)
	if err != nil {
		return types.SlotGroup{}, fmt.Errorf("checking editor capability: %w", err)
	}
	if !allowed {
		return types.SlotGroup{}, fmt.Errorf("actor %s on mission %s: %w", actorUID, group.MissionUID, types.ErrUnauthorized)
	}

	if group.UID == "" {
		group.UID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	duplicate := false
	e.groups.Range(func(_ string, g types.SlotGroup) bool {
		if g.MissionUID == group.MissionUID && g.OrderNumber == group.OrderNumber {
			duplicate = true
			return false
		}

		return true
	})
	if duplicate {
		return types.SlotGroup{}, fmt.Errorf("order number %d in mission %s: %w",
			group.OrderNumber, group.MissionUID, types.ErrDuplicateOrder)
	}

	e.groups.Store(group.UID, group)
	e.groupSlots.Store(group.UID, xsync.NewMap[string, *slotEntry]())

	return group, nil
}

// DeleteSlotGroup removes a slot group and cascades to its slots and
// registrations.
//
// Parameters:
//   - ctx: Context passed to the authorizer and used while acquiring each
//     slot's critical section
//   - groupUID: Group to delete
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, or the first slot
//     removal failure
func (e *Engine) DeleteSlotGroup(ctx context.Context, groupUID, actorUID string) error {
	if err := e.requireStarted(); err != nil {
		return err
	}

	if _, err := e.requireEditor(ctx, groupUID, actorUID); err != nil {
		return err
	}

	return e.removeGroup(ctx, groupUID)
}

// removeGroup deletes every slot of the group, then the group itself.
// Authorization has already been checked by the caller.
func (e *Engine) removeGroup(ctx context.Context, groupUID string) error {
	siblings, ok := e.groupSlots.Load(groupUID)
	if !ok {
		return fmt.Errorf("slot group %s: %w", groupUID, types.ErrNotFound)
	}

	var slotUIDs []string
	siblings.Range(func(uid string, _ *slotEntry) bool {
		slotUIDs = append(slotUIDs, uid)
		return true
	})

	for _, uid := range slotUIDs {
		if err := e.removeSlot(ctx, uid); err != nil {
			return err
		}
	}

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	e.groups.Delete(groupUID)
	e.groupSlots.Delete(groupUID)
	e.logger.Info("slot group deleted", "group_uid", groupUID)

	return nil
}

// CreateSlot adds a slot to a slot group on behalf of a mission editor.
//
// Slots are created without a registration-based assignee; assignment goes
// through Register/ManualAssign. An external assignee may be preset (e.g.
// for imported rosters) unless the slot is created blocked.
//
// Parameters:
//   - ctx: Context passed to the authorizer
//   - slot: Slot to create; GroupUID and Title are required
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - types.Slot: The stored slot with UID and CreatedAt filled in
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized or
//     ErrInvalidArgument
func (e *Engine) CreateSlot(ctx context.Context, slot types.Slot, actorUID string) (types.Slot, error) {
	if err := e.requireStarted(); err != nil {
		return types.Slot{}, err
	}
	if slot.Title == "" {
		return types.Slot{}, fmt.Errorf("slot title is required: %w", types.ErrInvalidArgument)
	}
	if slot.AssigneeUID != "" {
		return types.Slot{}, fmt.Errorf("slots are created unassigned: %w", types.ErrInvalidArgument)
	}
	if slot.Blocked && slot.ExternalAssignee != "" {
		return types.Slot{}, fmt.Errorf("blocked slots hold no assignee: %w", types.ErrInvalidArgument)
	}
	if slot.RegistrationCount != 0 {
		slot.RegistrationCount = 0
	}

	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return types.Slot{}, err
	}

	if slot.UID == "" {
		slot.UID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}

	entry := &slotEntry{slot: slot, queue: queue.New()}
	entry.storeSnapshot()

	e.topoMu.Lock()
	defer e.topoMu.Unlock()

	siblings, ok := e.groupSlots.Load(slot.GroupUID)
	if !ok {
		return types.Slot{}, fmt.Errorf("slot group %s: %w", slot.GroupUID, types.ErrNotFound)
	}

	e.slots.Store(slot.UID, entry)
	siblings.Store(slot.UID, entry)

	return slot, nil
}

// SlotUpdate is a patch for a slot's editable fields. Nil fields are left
// unchanged.
type SlotUpdate struct {
	Title                  *string
	OrderNumber            *int
	RequiredTags           *[]string
	RestrictedCommunityUID *string
	Reserve                *bool
	AutoAssignable         *bool
}

// UpdateSlot patches a slot's editable fields on behalf of a mission editor.
//
// Changing AutoAssignable, Reserve or the eligibility restrictions may make
// a queued registration assignable; promotion runs in the same critical
// section. Assignment state (assignee, blocked flag, external assignee) is
// not editable here; use the dedicated operations.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Slot to patch
//   - update: Fields to change
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - types.Slot: The slot after the update
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized,
//     ErrInvalidArgument or ErrContentionTimeout
func (e *Engine) UpdateSlot(ctx context.Context, slotUID string, update SlotUpdate, actorUID string) (types.Slot, error) {
	if err := e.requireStarted(); err != nil {
		return types.Slot{}, err
	}

	slot, err := e.Slot(slotUID)
	if err != nil {
		return types.Slot{}, err
	}
	if _, err := e.requireEditor(ctx, slot.GroupUID, actorUID); err != nil {
		return types.Slot{}, err
	}
	if update.Title != nil && *update.Title == "" {
		return types.Slot{}, fmt.Errorf("slot title is required: %w", types.ErrInvalidArgument)
	}

	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return types.Slot{}, err
	}

	if update.Title != nil {
		entry.slot.Title = *update.Title
	}
	if update.OrderNumber != nil {
		entry.slot.OrderNumber = *update.OrderNumber
	}
	if update.RequiredTags != nil {
		entry.slot.RequiredTags = *update.RequiredTags
	}
	if update.RestrictedCommunityUID != nil {
		entry.slot.RestrictedCommunityUID = *update.RestrictedCommunityUID
	}
	if update.Reserve != nil {
		entry.slot.Reserve = *update.Reserve
	}
	if update.AutoAssignable != nil {
		entry.slot.AutoAssignable = *update.AutoAssignable
	}

	wasFilled := entry.slot.Filled()
	var events []types.Event
	e.tryPromoteLocked(ctx, entry, "", "promotion", &events)
	e.commitLocked(entry)

	updated := entry.slot
	nowFilled := entry.slot.Filled()
	groupUID := entry.slot.GroupUID
	unlock()

	e.publish(events)

	if !wasFilled && nowFilled {
		e.reevaluateGroup(ctx, groupUID, slotUID)
	}

	return updated, nil
}

// DeleteSlot removes a slot and its registrations on behalf of a mission
// editor.
//
// An assignee loses the slot (an unassignment event is emitted); queued
// registrations are deleted silently. Removing an unfilled regular slot can
// complete its group, so reserve promotion is re-evaluated afterwards.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the critical section
//   - slotUID: Slot to delete
//   - actorUID: Acting editor; must hold editor capability on the mission
//
// Returns:
//   - error: ErrNotStarted, ErrNotFound, ErrUnauthorized, or
//     ErrContentionTimeout
func (e *Engine) DeleteSlot(ctx context.Context, slotUID, actorUID string) error {
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

	return e.removeSlot(ctx, slotUID)
}

// removeSlot deletes a slot under its critical section and re-evaluates the
// group. Authorization has already been checked by the caller.
func (e *Engine) removeSlot(ctx context.Context, slotUID string) error {
	entry, unlock, err := e.acquireSlot(ctx, slotUID)
	if err != nil {
		return err
	}

	var events []types.Event
	if entry.slot.AssigneeUID != "" {
		userUID := entry.slot.AssigneeUID
		reg := entry.queue.GetByUser(userUID)
		registrationUID := ""
		if reg != nil {
			registrationUID = reg.UID
		}
		e.metrics.RecordUnassignment("deleted")
		events = append(events, e.newEvent(types.EventUnassigned, entry.slot, userUID, registrationUID))
	}

	for _, reg := range entry.queue.All() {
		e.regSlots.Delete(reg.UID)
	}

	groupUID := entry.slot.GroupUID

	e.topoMu.Lock()
	e.slots.Delete(slotUID)
	if siblings, ok := e.groupSlots.Load(groupUID); ok {
		siblings.Delete(slotUID)
	}
	e.topoMu.Unlock()

	e.locks.Forget(slotUID)
	unlock()

	e.publish(events)
	e.logger.Info("slot deleted", "slot_uid", slotUID, "group_uid", groupUID)

	e.reevaluateGroup(ctx, groupUID, slotUID)

	return nil
}
