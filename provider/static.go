package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// StaticProfiles implements types.ProfileProvider over a fixed profile set.
type StaticProfiles struct {
	mu       sync.RWMutex
	profiles map[string]types.UserProfile
}

var _ types.ProfileProvider = (*StaticProfiles)(nil)

// NewStaticProfiles creates a profile provider with a fixed set of profiles.
//
// Parameters:
//   - profiles: Initial profiles, keyed by their UID field
//
// Returns:
//   - *StaticProfiles: Initialized provider
//
// Example:
//
//	profiles := provider.NewStaticProfiles(
//	    types.UserProfile{UID: "user-1", CommunityUID: "bfc", Tags: []string{"apex"}},
//	    types.UserProfile{UID: "user-2"},
//	)
func NewStaticProfiles(profiles ...types.UserProfile) *StaticProfiles {
	m := make(map[string]types.UserProfile, len(profiles))
	for _, p := range profiles {
		m[p.UID] = p
	}

	return &StaticProfiles{profiles: m}
}

// Lookup returns the profile for the given user.
//
// Returns:
//   - types.UserProfile: Copy of the stored profile
//   - error: types.ErrNotFound for unknown users
func (s *StaticProfiles) Lookup(_ context.Context, userUID string) (types.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userUID]
	if !ok {
		return types.UserProfile{}, fmt.Errorf("user %s: %w", userUID, types.ErrNotFound)
	}

	return profile, nil
}

// Put adds or replaces a profile.
//
// This allows simulating profile changes (community joins, tag purchases)
// between operations, which is useful for testing eligibility re-evaluation.
func (s *StaticProfiles) Put(profile types.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.UID] = profile
}

// StaticAuthorizer implements types.Authorizer over explicit editor grants.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[string]map[string]struct{} // missionUID -> actorUID set
}

var _ types.Authorizer = (*StaticAuthorizer)(nil)

// NewStaticAuthorizer creates an authorizer with no grants.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{grants: make(map[string]map[string]struct{})}
}

// Grant gives an actor editor capability on a mission.
func (s *StaticAuthorizer) Grant(missionUID, actorUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grants[missionUID] == nil {
		s.grants[missionUID] = make(map[string]struct{})
	}
	s.grants[missionUID][actorUID] = struct{}{}
}

// Revoke removes an actor's editor capability on a mission.
func (s *StaticAuthorizer) Revoke(missionUID, actorUID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.grants[missionUID], actorUID)
}

// CanEdit reports whether the actor holds editor capability on the mission.
//
// Returns:
//   - bool: true if a grant exists
//   - error: Always nil (never fails)
func (s *StaticAuthorizer) CanEdit(_ context.Context, missionUID, actorUID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.grants[missionUID][actorUID]

	return ok, nil
}
