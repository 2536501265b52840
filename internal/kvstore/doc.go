// Package kvstore provides the durable string-keyed store that keeps the scene
// queue alive between runs.
//
// The Store interface is intentionally tiny: Get, Set, and Close. Open selects
// an implementation from configuration: SQLite (the default, a single
// kv_entries table), a JSON file, Redis, or process memory for tests and
// throwaway sessions.
//
// Writes are last-writer-wins. Nothing here coordinates concurrent processes
// beyond what the backing engine does on its own, and no implementation
// promises atomicity across a crash.
package kvstore
