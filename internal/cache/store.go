package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
)

// DefaultPath is the cache file used when none is configured.
const DefaultPath = "./.packwizml.cache"

// Entry is one persisted cache record.
type Entry struct {
	Token  string      `json:"freshness_token"`
	Record mods.Record `json:"record"`
}

// Insertion is a record proposed for the cache under a key and token.
type Insertion struct {
	Key    mods.Key
	Token  string
	Record mods.Record
}

// Store is the in-memory view of a cache file. It is owned by a single
// resolution at a time and is not safe for concurrent use.
type Store struct {
	path    string
	entries map[string]Entry
	// pending holds keys written since load; the store is dirty iff non-empty.
	pending map[string]struct{}
}

// New returns an empty store that will be saved to path.
func New(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]Entry),
		pending: make(map[string]struct{}),
	}
}

// Load reads the cache file at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, apperr.File("reading cache", path, err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, apperr.Deserialization(path, err)
	}
	if s.entries == nil {
		s.entries = make(map[string]Entry)
	}
	for k, e := range s.entries {
		if err := checkEntry(k, e); err != nil {
			return nil, apperr.Deserialization(path, err)
		}
	}
	return s, nil
}

// checkEntry rejects entries that could not have been written by Insert:
// a missing record, or a record filed under another source's key.
func checkEntry(key string, e Entry) error {
	src, id, ok := strings.Cut(key, ":")
	if !ok || id == "" {
		return fmt.Errorf("entry %q: malformed key", key)
	}
	if e.Record.Project() == nil {
		return fmt.Errorf("entry %q: missing record", key)
	}
	if got := e.Record.Source(); string(got) != src {
		return fmt.Errorf("entry %q: record source is %q", key, got)
	}
	return nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string { return s.path }

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Dirty reports whether anything was inserted since load.
func (s *Store) Dirty() bool { return len(s.pending) > 0 }

// Get returns the record stored under key only if it was stored with token.
func (s *Store) Get(key mods.Key, token string) (mods.Record, bool) {
	e, ok := s.entries[key.String()]
	if !ok || e.Token != token {
		return mods.Record{}, false
	}
	return e.Record, true
}

// GetAll returns the records for every reference, in order, only if every
// one of them hits. A single miss returns false and no records.
func (s *Store) GetAll(refs []mods.Reference) ([]mods.Record, bool) {
	out := make([]mods.Record, 0, len(refs))
	for _, r := range refs {
		rec, ok := s.Get(r.Key(), r.Token)
		if !ok {
			return nil, false
		}
		out = append(out, rec)
	}
	return out, true
}

// Lookup splits refs into cache hits and the references that missed.
func (s *Store) Lookup(refs []mods.Reference) (map[mods.Key]mods.Record, []mods.Reference) {
	hits := make(map[mods.Key]mods.Record, len(refs))
	var misses []mods.Reference
	for _, r := range refs {
		if rec, ok := s.Get(r.Key(), r.Token); ok {
			hits[r.Key()] = rec
			continue
		}
		misses = append(misses, r)
	}
	return hits, misses
}

// Insert stores rec under key and token, overwriting any previous entry.
func (s *Store) Insert(key mods.Key, token string, rec mods.Record) {
	k := key.String()
	s.entries[k] = Entry{Token: token, Record: rec}
	s.pending[k] = struct{}{}
}

// InsertAll applies Insert for each insertion.
func (s *Store) InsertAll(ins []Insertion) {
	for _, in := range ins {
		s.Insert(in.Key, in.Token, in.Record)
	}
}

// Save writes the full cache to its path if the store is dirty.
func (s *Store) Save() error {
	if !s.Dirty() {
		return nil
	}
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := writeFileDurable(s.path, data); err != nil {
		return err
	}
	s.pending = make(map[string]struct{})
	return nil
}

// writeFileDurable writes data next to path, syncs it and renames it over
// path.
func writeFileDurable(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.File("creating cache directory", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".packwizml-cache-*")
	if err != nil {
		return apperr.File("creating temp cache file", dir, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return apperr.File("writing cache", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperr.File("syncing cache", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.File("closing cache", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return apperr.File("replacing cache", path, err)
	}
	return nil
}

// Clear removes the cache file at path. A missing file is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.File("removing cache", path, err)
	}
	return nil
}
