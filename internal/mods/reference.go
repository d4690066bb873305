package mods

import (
	"strconv"

	"github.com/dshills/packwizml/internal/apperr"
)

// Key is the cache identity of a reference: the source plus its
// source-specific id. Names and filenames never take part in it.
type Key struct {
	Source Source
	ID     string
}

// String renders the key as "source:id", the form stored in the cache file.
func (k Key) String() string {
	return string(k.Source) + ":" + k.ID
}

// Reference is one declared dependency of a modpack.
type Reference struct {
	Source Source
	ID     string
	// Token is the freshness token supplied by the pack definition. It is
	// compared byte for byte and never computed here.
	Token string
	// Name is the display name from the pack file, for diagnostics only.
	Name string
}

// New validates and builds a reference. CurseForge ids must be positive
// integers; Modrinth ids must be non-empty.
func New(source Source, id, token string) (Reference, error) {
	if !source.Valid() {
		return Reference{}, apperr.Validation("unknown source %q for id %q", source, id)
	}
	if id == "" {
		return Reference{}, apperr.Validation("empty %s project id", source)
	}
	if source == CurseForge {
		n, err := strconv.ParseUint(id, 10, 32)
		if err != nil || n == 0 {
			return Reference{}, apperr.Validation("curseforge project id %q is not a positive integer", id)
		}
	}
	return Reference{Source: source, ID: id, Token: token}, nil
}

// Key returns the cache key of the reference.
func (r Reference) Key() Key {
	return Key{Source: r.Source, ID: r.ID}
}

// Partition splits refs by source, preserving the relative order within each
// source.
func Partition(refs []Reference) map[Source][]Reference {
	out := make(map[Source][]Reference, len(Sources))
	for _, r := range refs {
		out[r.Source] = append(out[r.Source], r)
	}
	return out
}
