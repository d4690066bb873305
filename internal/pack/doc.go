// Package pack loads mod references from a packwiz pack directory or from a
// plain-text reference list.
//
// A packwiz pack is a directory with a pack.toml and one *.pw.toml metadata
// file per mod. The update section of each metadata file names the upstream
// project and the version or file currently pinned; that pin becomes the
// freshness token used by the cache.
package pack
