// Package eligibility implements the admission rules for slot registrations.
//
// The checker is a pure function over a slot snapshot and a user profile: it
// performs no I/O, mutates nothing, and is safe for concurrent use. The
// engine invokes it inside a slot's critical section so that the snapshot it
// sees cannot change mid-check.
//
// Checks run in a fixed order and short-circuit on the first failure:
//
//  1. slot not blocked
//  2. slot admits another registrant (no assignee for auto-assignable
//     slots; not externally filled for manual slots)
//  3. user not already registered on the slot
//  4. restricted community matches, if set
//  5. user's capability tags are a superset of the slot's required tags
//
// Each failure reports a specific types.IneligibleReason.
package eligibility
