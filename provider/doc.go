// Package provider supplies in-memory implementations of the engine's
// collaborator interfaces: a static profile provider and a static
// authorizer.
//
// They are intended for embedding scenarios where profiles and editor grants
// are loaded upfront (imports, fixtures, small deployments) and for tests.
// Production systems typically implement types.ProfileProvider and
// types.Authorizer against their own identity and permission stores.
package provider
