// Package resolve turns mod references into unified records, consulting the
// cache before any upstream client.
//
// References are partitioned by source. For each source the cache is asked
// for every reference; with the default all-or-nothing lookup a single miss
// sends the whole sublist to the upstream batch fetch, with the per-key
// lookup only the misses are fetched. Fetched records are inserted into the
// cache under the reference's key and token. The result is grouped by source
// (Modrinth first) unless input order is requested.
//
// Any fetch failure aborts the resolution and no records are returned.
// Insertions made for sources resolved before the failure stay in the cache.
package resolve
