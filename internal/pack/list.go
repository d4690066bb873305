package pack

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
)

// ParseList reads a plain-text reference list. Each non-blank line is
// "<source>:<id>[:<token>]" where source is modrinth, mr, curseforge or cf.
// Lines starting with # or // are comments.
func ParseList(r io.Reader) ([]mods.Reference, error) {
	var refs []mods.Reference
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		parts := strings.SplitN(line, ":", 3)
		if len(parts) < 2 {
			return nil, apperr.Validation("line %d: expected <source>:<id>[:<token>], got %q", lineNo, line)
		}
		src, err := mods.ParseSource(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, apperr.Validation("line %d: %v", lineNo, err)
		}
		var token string
		if len(parts) == 3 {
			token = strings.TrimSpace(parts[2])
		}
		ref, err := mods.New(src, strings.TrimSpace(parts[1]), token)
		if err != nil {
			return nil, apperr.Validation("line %d: %v", lineNo, err)
		}
		refs = append(refs, ref)
	}
	if err := sc.Err(); err != nil {
		return nil, apperr.File("reading reference list", "", err)
	}
	return refs, nil
}

// LoadList opens path and parses it with ParseList.
func LoadList(path string) ([]mods.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.File("opening reference list", path, err)
	}
	defer f.Close()
	refs, err := ParseList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return refs, nil
}
