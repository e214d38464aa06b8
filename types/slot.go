package types

import "time"

// Mission represents a mission whose slots are managed by the engine.
//
// Missions are immutable after creation except through explicit topology
// operations performed by an authorized editor.
type Mission struct {
	// UID uniquely identifies the mission.
	UID string `json:"uid" yaml:"uid"`

	// Slug is the human-readable unique identifier used in permissions
	// and URLs (e.g. "op-red-dawn-2026").
	Slug string `json:"slug" yaml:"slug"`

	// Title is the display title of the mission.
	Title string `json:"title" yaml:"title"`

	// StartTime and EndTime define the mission time window.
	StartTime time.Time `json:"startTime" yaml:"startTime"`
	EndTime   time.Time `json:"endTime" yaml:"endTime"`

	// RequiredTags lists capability tags (e.g. game DLC identifiers) every
	// participant is expected to own. Tags are free-form, case-sensitive
	// strings; the engine does not validate them against a fixed catalogue.
	RequiredTags []string `json:"requiredTags" yaml:"requiredTags"`

	// CommunityUID references the owning community ("" if none).
	CommunityUID string `json:"communityUid" yaml:"communityUid"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// SlotGroup is an ordered container of slots within a mission.
//
// The order number defines display and processing order. It is unique within
// a mission; ties during listing are broken by creation time.
type SlotGroup struct {
	// UID uniquely identifies the slot group.
	UID string `json:"uid" yaml:"uid"`

	// MissionUID references the parent mission.
	MissionUID string `json:"missionUid" yaml:"missionUid"`

	// Title is the display title of the group.
	Title string `json:"title" yaml:"title"`

	// OrderNumber defines the group's position within the mission.
	OrderNumber int `json:"orderNumber" yaml:"orderNumber"`

	// CreatedAt is the creation timestamp (tie-break for equal order numbers).
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Slot is a single assignable position within a slot group.
//
// A slot has at most one assignment source at any time: either AssigneeUID
// (registration-based) or ExternalAssignee (free-text), never both.
type Slot struct {
	// UID uniquely identifies the slot.
	UID string `json:"uid" yaml:"uid"`

	// GroupUID references the parent slot group.
	GroupUID string `json:"groupUid" yaml:"groupUid"`

	// Title is the display title of the slot (e.g. "Platoon Leader").
	Title string `json:"title" yaml:"title"`

	// OrderNumber defines the slot's position within the group.
	OrderNumber int `json:"orderNumber" yaml:"orderNumber"`

	// RequiredTags lists capability tags a registrant must own in addition
	// to the mission-wide tags. Case-sensitive string equality.
	RequiredTags []string `json:"requiredTags" yaml:"requiredTags"`

	// RestrictedCommunityUID limits eligibility to members of one community
	// ("" for unrestricted slots).
	RestrictedCommunityUID string `json:"restrictedCommunityUid" yaml:"restrictedCommunityUid"`

	// Blocked slots accept no new registrations and hold no assignee.
	Blocked bool `json:"blocked" yaml:"blocked"`

	// Reserve slots are overflow: they are only auto-assigned once every
	// non-reserve slot in the same group is filled.
	Reserve bool `json:"reserve" yaml:"reserve"`

	// AutoAssignable slots assign the first eligible registration
	// immediately instead of queueing it for manual review.
	AutoAssignable bool `json:"autoAssignable" yaml:"autoAssignable"`

	// ExternalAssignee is a free-text assignee for participants without an
	// account. Mutually exclusive with AssigneeUID.
	ExternalAssignee string `json:"externalAssignee" yaml:"externalAssignee"`

	// AssigneeUID is the user currently assigned to the slot ("" if none).
	AssigneeUID string `json:"assigneeUid" yaml:"assigneeUid"`

	// RegistrationCount is the denormalized count of pending plus assigned
	// registrations for the slot.
	RegistrationCount int `json:"registrationCount" yaml:"registrationCount"`

	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// State derives the slot's assignment state from its fields.
//
// Returns:
//   - SlotState: Blocked, ExternallyFilled, Assigned or Open
func (s Slot) State() SlotState {
	switch {
	case s.Blocked:
		return SlotBlocked
	case s.ExternalAssignee != "":
		return SlotExternallyFilled
	case s.AssigneeUID != "":
		return SlotAssigned
	default:
		return SlotOpen
	}
}

// Filled reports whether the slot counts as filled for the reserve
// promotion rule (assigned or externally filled).
func (s Slot) Filled() bool {
	return s.AssigneeUID != "" || s.ExternalAssignee != ""
}

// SlotState represents the assignment state of a slot.
//
// States during normal operation:
//
//	SlotOpen → SlotAssigned → SlotOpen (unassign/withdraw)
//
// Blocking and external assignment are editor-driven:
//
//	any → SlotBlocked → SlotOpen (unblock)
//	SlotOpen → SlotExternallyFilled → SlotOpen (clear)
type SlotState int

const (
	// SlotOpen indicates the slot has no assignee and accepts registrations.
	SlotOpen SlotState = iota

	// SlotAssigned indicates the slot has a registration-based assignee.
	SlotAssigned

	// SlotBlocked indicates the slot accepts no registrations and holds no
	// assignee until unblocked.
	SlotBlocked

	// SlotExternallyFilled indicates the slot is held by a free-text
	// external assignee and accepts no registrations.
	SlotExternallyFilled
)

// String returns the string representation of the slot state.
func (s SlotState) String() string {
	switch s {
	case SlotOpen:
		return "Open"
	case SlotAssigned:
		return "Assigned"
	case SlotBlocked:
		return "Blocked"
	case SlotExternallyFilled:
		return "ExternallyFilled"
	default:
		return "Unknown"
	}
}
