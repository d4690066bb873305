package cache

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
)

// Stats describes the contents of a cache.
type Stats struct {
	Path      string              `json:"path"`
	Entries   int                 `json:"entries"`
	BySource  map[mods.Source]int `json:"bySource"`
	FileBytes int64               `json:"fileBytes"`
	Dirty     bool                `json:"dirty"`
}

// GetStats returns information about the store and its backing file.
func (s *Store) GetStats() (Stats, error) {
	stats := Stats{
		Path:     s.path,
		Entries:  len(s.entries),
		BySource: make(map[mods.Source]int),
		Dirty:    s.Dirty(),
	}
	for _, e := range s.entries {
		stats.BySource[e.Record.Source()]++
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, apperr.File("reading cache info", s.path, err)
	}
	stats.FileBytes = info.Size()
	return stats, nil
}
