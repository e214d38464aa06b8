// Package types provides core type definitions and interfaces for the slotter library.
//
// This package contains shared types that are used across multiple packages in the
// slotter library. By keeping these types in a separate package, we avoid import
// cycles between the main slotter package and its internal implementations.
//
// Key types:
//   - Mission, SlotGroup, Slot, Registration: the slotting data model
//   - SlotState: derived slot assignment state
//   - Event: committed transition notification payload
//   - ProfileProvider, Authorizer, NotificationEmitter: collaborator interfaces
//   - Logger: structured logging interface
//   - MetricsCollector: metrics recording interface
package types
