// Package sharedprefs provides typed, null-safe access to a persistent key-value
// settings store.
//
// Values are read and written through per-kind accessors (bool, float, int, long,
// string and sets of each). Writes become visible to the process immediately and are
// committed to the configured storage backend (memory, JSON file, SQLite, PostgreSQL)
// asynchronously, optionally fronted by a cache (in-memory, Redis).
package sharedprefs
