package output

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dshills/packwizml/internal/mods"
)

// SortMode selects the record field used for ordering.
type SortMode string

const (
	SortNone  SortMode = "none"
	SortName  SortMode = "name"
	SortTitle SortMode = "title"
	SortSlug  SortMode = "slug"
	SortID    SortMode = "id"
)

// ParseSortMode parses a sort mode name case-insensitively. An empty string
// is SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortNone, nil
	case SortNone, SortName, SortTitle, SortSlug, SortID:
		return m, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q (want none, name, title, slug or id)", s)
	}
}

func (m SortMode) String() string { return string(m) }

// UnmarshalText lets config decoding accept sort mode names.
func (m *SortMode) UnmarshalText(text []byte) error {
	v, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// SortOptions controls Sort.
type SortOptions struct {
	By         SortMode
	IgnoreCase bool
	Reverse    bool
}

// Sort returns a sorted copy of records. Records with equal keys keep their
// input order. Reverse is applied after sorting, so with SortNone it simply
// reverses the input.
func Sort(records []mods.Record, opts SortOptions) []mods.Record {
	out := make([]mods.Record, len(records))
	copy(out, records)

	if key := sortKey(opts.By); key != nil {
		type keyed struct {
			key string
			rec mods.Record
		}
		fold := cases.Fold()
		ks := make([]keyed, len(out))
		for i, r := range out {
			k := key(r)
			if opts.IgnoreCase {
				k = fold.String(k)
			}
			ks[i] = keyed{key: k, rec: r}
		}
		sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
		for i := range ks {
			out[i] = ks[i].rec
		}
	}

	if opts.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

func sortKey(m SortMode) func(mods.Record) string {
	switch m {
	case SortName, SortTitle:
		return mods.Record.Title
	case SortSlug:
		return mods.Record.Slug
	case SortID:
		return mods.Record.ID
	default:
		return nil
	}
}
