package mods

import (
	"fmt"
	"strings"
)

// Source identifies an upstream metadata service.
type Source string

const (
	Modrinth   Source = "modrinth"
	CurseForge Source = "curseforge"
)

// Sources lists every supported source in resolution order.
var Sources = []Source{Modrinth, CurseForge}

// ParseSource accepts a source name or its short alias (mr, cf),
// case-insensitively.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "modrinth", "mr":
		return Modrinth, nil
	case "curseforge", "cf":
		return CurseForge, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

func (s Source) String() string { return string(s) }

// Valid reports whether s is a supported source.
func (s Source) Valid() bool {
	return s == Modrinth || s == CurseForge
}
