// Package state defines the persistence contract for form state snapshots.
//
// A Store loads and saves one snapshot per Ref. Saves carry the version the
// caller last loaded; a store rejects the save with ErrVersionMismatch when
// another writer got there first. Mutate wraps the load/modify/save cycle.
//
// MemoryStore is the in-process implementation used by sessions by default
// and in tests. Durable stores are supplied by consumers.
package state
