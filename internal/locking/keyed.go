// Package locking provides the per-slot serialization primitive used by the
// engine: a registry of independent mutexes keyed by slot identifier, with
// timeout-bounded acquisition.
//
// Two operations on different keys proceed fully in parallel; two operations
// on the same key never interleave. Acquisition that cannot complete within
// the caller's deadline fails with types.ErrContentionTimeout so callers can
// retry with backoff instead of hanging.
package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// Keyed is a registry of per-key mutexes.
//
// Mutexes are created lazily on first acquisition and persist until Forget
// is called for their key (typically when the keyed entity is deleted).
type Keyed struct {
	locks *xsync.Map[string, chan struct{}]
}

// New creates an empty lock registry.
func New() *Keyed {
	return &Keyed{locks: xsync.NewMap[string, chan struct{}]()}
}

// Acquire locks the mutex for the given key, waiting at most timeout.
//
// A timeout of zero or less means acquisition fails immediately unless the
// mutex is free.
//
// Parameters:
//   - ctx: Context for cancellation while waiting
//   - key: Identifier of the serialized entity (slot UID)
//   - timeout: Maximum time to wait for the critical section
//
// Returns:
//   - func(): Release function; must be called exactly once
//   - error: types.ErrContentionTimeout when the wait expires, or the
//     context error when ctx is cancelled first
func (k *Keyed) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	sem, _ := k.locks.LoadOrCompute(key, func() (chan struct{}, bool) {
		return make(chan struct{}, 1), false
	})

	// Fast path: uncontended acquisition without timer allocation.
	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-timer.C:
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, types.ErrContentionTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("acquiring lock for %q: %w", key, ctx.Err())
	}
}

// Forget removes the mutex for the given key from the registry.
//
// Intended for keyed entities that no longer exist. The caller must hold the
// key's critical section; a release issued after Forget still operates on the
// removed mutex and remains safe.
func (k *Keyed) Forget(key string) {
	k.locks.Delete(key)
}

// Size returns the number of registered mutexes (for tests and metrics).
func (k *Keyed) Size() int {
	return k.locks.Size()
}
