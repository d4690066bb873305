// Package cache provides the persistent record cache for resolved mod
// references.
//
// The cache is a single JSON object mapping "source:id" keys to an entry
// holding the freshness token the record was fetched under and the record
// itself. A lookup only hits when the stored token equals the queried token
// exactly; any other token is a miss, never a stale hit.
//
// The whole file is loaded by [Load] and rewritten by [Store.Save], which is a
// no-op unless something was inserted since load. Saves go through a temp
// file, fsync and rename so the file on disk is never torn. Entries are never
// evicted.
package cache
