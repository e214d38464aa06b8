package types

import "context"

// UserProfile carries the user attributes the eligibility checker consumes.
type UserProfile struct {
	// UID uniquely identifies the user.
	UID string `json:"uid" yaml:"uid"`

	// Nickname is the user's display name.
	Nickname string `json:"nickname" yaml:"nickname"`

	// CommunityUID references the user's community ("" if none).
	CommunityUID string `json:"communityUid" yaml:"communityUid"`

	// Tags lists the capability tags (e.g. owned game DLCs) of the user.
	Tags []string `json:"tags" yaml:"tags"`
}

// HasTags reports whether the profile's tag set is a superset of required.
//
// Comparison is case-sensitive string equality. An empty requirement is
// always satisfied.
func (p UserProfile) HasTags(required []string) bool {
	if len(required) == 0 {
		return true
	}

	owned := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		owned[tag] = struct{}{}
	}

	for _, tag := range required {
		if _, ok := owned[tag]; !ok {
			return false
		}
	}

	return true
}

// ProfileProvider resolves user identifiers to profiles.
//
// The engine calls Lookup before entering a slot's critical section for
// registration, and inside it during head-eligible promotion. Implementations
// should therefore answer quickly (cache or in-memory lookup); the engine
// never mutates returned profiles.
type ProfileProvider interface {
	// Lookup returns the profile for the given user.
	//
	// Returns:
	//   - UserProfile: The user's community membership and capability tags
	//   - error: ErrNotFound (possibly wrapped) for unknown users
	Lookup(ctx context.Context, userUID string) (UserProfile, error)
}

// Authorizer answers whether an actor may perform editor-level operations
// on a mission (manual assignment, rejection, blocking, topology changes).
//
// The engine treats this as an opaque capability check: it never inspects
// permission strings itself.
type Authorizer interface {
	// CanEdit reports whether the actor holds editor capability on the mission.
	CanEdit(ctx context.Context, missionUID, actorUID string) (bool, error)
}
