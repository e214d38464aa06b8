package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called concurrently from engine goroutines and must be
// thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better
// modularity.
type MetricsCollector interface {
	EngineMetrics
	QueueMetrics
	LockMetrics
	EventMetrics
}

// EngineMetrics defines metrics for slot assignment operations.
type EngineMetrics interface {
	// RecordRegistration records the outcome of a registration attempt.
	//
	// Parameters:
	//   - outcome: "pending", "assigned" or the ineligibility reason
	RecordRegistration(outcome string)

	// RecordAssignment records a slot assignment.
	//
	// Parameters:
	//   - kind: "auto", "manual" or "promotion"
	RecordAssignment(kind string)

	// RecordUnassignment records a slot losing its assignee.
	//
	// Parameters:
	//   - reason: "unassign", "withdraw" or "blocked"
	RecordUnassignment(reason string)

	// RecordSlotStateTransition records a slot state transition.
	RecordSlotStateTransition(from, to SlotState)
}

// QueueMetrics defines metrics for registration queue operations.
type QueueMetrics interface {
	// RecordQueueDepth sets the observed queue depth for a slot (gauge).
	RecordQueueDepth(depth int)
}

// LockMetrics defines metrics for per-slot critical section acquisition.
type LockMetrics interface {
	// RecordLockWait records the time spent acquiring a slot's critical
	// section, in seconds.
	RecordLockWait(seconds float64)

	// RecordLockTimeout records a failed acquisition (contention timeout).
	RecordLockTimeout()
}

// EventMetrics defines metrics for notification dispatch.
type EventMetrics interface {
	// RecordEventEmitted records a successfully dispatched event.
	RecordEventEmitted(kind EventKind)

	// RecordEventDropped records an event dropped due to a full dispatch
	// buffer or an emitter failure.
	RecordEventDropped(reason string)
}
