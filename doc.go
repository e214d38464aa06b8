// Package slotter implements an embeddable mission slot allocation engine:
// eligibility-checked registration, ordered per-slot queues, automatic and
// manual assignment, reserve overflow promotion and best-effort transition
// notifications.
//
// # Overview
//
// A mission is a tree of slot groups and slots. Users register for slots;
// the engine validates eligibility (blocked state, duplicate registration,
// community restriction, capability tags), queues registrations in creation
// order and assigns slots either automatically (auto-assignable slots) or
// through editor-driven manual assignment. Every slot has its own critical
// section, so operations on different slots run fully in parallel while
// operations on the same slot are serialized with a bounded wait.
//
// # Quick Start
//
//	cfg := slotter.DefaultConfig()
//
//	engine, err := slotter.New(&cfg, profiles, authz,
//	    slotter.WithEmitter(em),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop(context.Background())
//
//	reg, err := engine.Register(ctx, slotUID, userUID, "happy to fill in")
//
// # Collaborators
//
// The engine owns no user data and no permission model. Identity and
// capability tags come from a ProfileProvider, editor capability from an
// Authorizer, and committed transitions leave the engine through a
// NotificationEmitter. In-memory implementations for all three live in the
// provider and emitter packages.
//
// # Error Handling
//
// Operations return sentinel errors matchable with errors.Is: ErrNotFound,
// ErrUnauthorized, ErrConflict, ErrIneligible and ErrContentionTimeout.
// Only ErrContentionTimeout is retryable; everything else requires the
// caller to refresh state or give up. Ineligible registrations additionally
// carry the failed check, extractable with errors.As on *IneligibleError.
package slotter
