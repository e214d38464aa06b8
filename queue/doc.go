// Package queue implements the per-slot ordered registration queue.
//
// The queue keeps registrations in a strict total order: creation timestamp
// first, then a monotonically increasing sequence number assigned at enqueue
// time. The sequence number guards against clock-resolution collisions when
// many registrations arrive within the same timestamp tick.
//
// The queue never reorders on update; withdrawal and rejection remove entries
// without renumbering the remainder.
//
// A Queue is not safe for concurrent use on its own. The engine owns one
// queue per slot and accesses it exclusively inside that slot's critical
// section.
package queue
