package queue

import (
	"sort"

	"github.com/Black-Forest-Community/slotlist-reboot/types"
)

// Queue is an append-only ordered collection of registrations for one slot.
//
// Entries are ordered by (CreatedAt, Seq). Seq is assigned by the queue at
// enqueue time and increases monotonically for the queue's lifetime, so two
// registrations sharing a timestamp still have a deterministic order.
type Queue struct {
	entries []*types.Registration
	nextSeq uint64
}

// New creates an empty registration queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue inserts a registration into the queue and assigns its sequence
// number.
//
// The entry is placed according to the total order; an entry carrying an
// older timestamp than the current tail is inserted at its ordered position
// rather than appended (the order is defined by creation time, not arrival).
//
// Parameters:
//   - reg: Registration to insert; its Seq field is overwritten
func (q *Queue) Enqueue(reg *types.Registration) {
	q.nextSeq++
	reg.Seq = q.nextSeq

	idx := sort.Search(len(q.entries), func(i int) bool {
		return less(reg, q.entries[i])
	})

	q.entries = append(q.entries, nil)
	copy(q.entries[idx+1:], q.entries[idx:])
	q.entries[idx] = reg
}

// PeekEligible returns the earliest registration satisfying the predicate.
//
// Parameters:
//   - pred: Predicate evaluated in queue order; may be nil to accept any
//
// Returns:
//   - *types.Registration: Earliest matching entry, or nil if none matches
func (q *Queue) PeekEligible(pred func(*types.Registration) bool) *types.Registration {
	for _, reg := range q.entries {
		if pred == nil || pred(reg) {
			return reg
		}
	}

	return nil
}

// Get returns the entry with the given registration UID, or nil.
func (q *Queue) Get(registrationUID string) *types.Registration {
	for _, reg := range q.entries {
		if reg.UID == registrationUID {
			return reg
		}
	}

	return nil
}

// GetByUser returns the entry registered by the given user, or nil.
func (q *Queue) GetByUser(userUID string) *types.Registration {
	for _, reg := range q.entries {
		if reg.UserUID == userUID {
			return reg
		}
	}

	return nil
}

// Remove deletes the entry with the given registration UID.
//
// Remaining entries keep their sequence numbers; the order of the queue is
// unaffected.
//
// Returns:
//   - bool: true if an entry was removed
func (q *Queue) Remove(registrationUID string) bool {
	for i, reg := range q.entries {
		if reg.UID == registrationUID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}

	return false
}

// Pending returns the pending entries in queue order.
func (q *Queue) Pending() []*types.Registration {
	pending := make([]*types.Registration, 0, len(q.entries))
	for _, reg := range q.entries {
		if reg.Status == types.RegistrationPending {
			pending = append(pending, reg)
		}
	}

	return pending
}

// All returns every entry in queue order.
func (q *Queue) All() []*types.Registration {
	out := make([]*types.Registration, len(q.entries))
	copy(out, q.entries)

	return out
}

// Len returns the number of entries in the queue.
func (q *Queue) Len() int {
	return len(q.entries)
}

// CountActive returns the number of pending plus assigned entries. This is
// the value the slot's denormalized RegistrationCount must equal.
func (q *Queue) CountActive() int {
	n := 0
	for _, reg := range q.entries {
		if reg.Active() {
			n++
		}
	}

	return n
}

// less reports whether a precedes b in the queue's total order.
func less(a, b *types.Registration) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}

	return a.Seq < b.Seq
}
