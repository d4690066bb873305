// Package mods defines how a modpack dependency is identified and how the
// metadata fetched for it is represented.
//
// A [Reference] points at exactly one project on exactly one [Source] and
// carries a freshness token (a version id or file id taken from the pack
// definition). Its [Key] namespaces the source-specific id with the source
// name so that ids from different services can never collide in the cache.
//
// A [Record] is the source-agnostic view of a fetched project. It wraps one
// of the native upstream shapes ([ModrinthProject] or [CurseForgeProject])
// behind the [Project] interface and exposes the accessors used for display.
package mods
