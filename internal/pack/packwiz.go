package pack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/logging"
	"github.com/dshills/packwizml/internal/mods"
)

// MetaSuffix is the filename suffix of packwiz per-mod metadata files.
const MetaSuffix = ".pw.toml"

// Pack is the subset of pack.toml this tool reads.
type Pack struct {
	Name       string   `toml:"name"`
	Author     string   `toml:"author"`
	Version    string   `toml:"version"`
	PackFormat string   `toml:"pack-format"`
	Versions   Versions `toml:"versions"`
}

// Versions lists the game and loader versions a pack targets.
type Versions struct {
	Minecraft string `toml:"minecraft"`
	Fabric    string `toml:"fabric"`
	Forge     string `toml:"forge"`
	Quilt     string `toml:"quilt"`
	NeoForge  string `toml:"neoforge"`
}

type modMeta struct {
	Name     string `toml:"name"`
	Filename string `toml:"filename"`
	Side     string `toml:"side"`
	Update   struct {
		Modrinth *struct {
			ModID   string `toml:"mod-id"`
			Version string `toml:"version"`
		} `toml:"modrinth"`
		CurseForge *struct {
			ProjectID int64 `toml:"project-id"`
			FileID    int64 `toml:"file-id"`
		} `toml:"curseforge"`
	} `toml:"update"`
}

// Options controls LoadPackwiz.
type Options struct {
	// SkipUnmanaged skips metadata files with no update section instead of
	// failing.
	SkipUnmanaged bool
	Logger        *log.Logger
}

// Loaded is the result of LoadPackwiz.
type Loaded struct {
	Pack       Pack
	References []mods.Reference
	// Skipped lists metadata files ignored because they name no source.
	Skipped []string
}

// LoadPackwiz reads dir/pack.toml and every *.pw.toml file in modsDir, in
// filename order. modsDir is used as given; callers resolve it against dir.
func LoadPackwiz(dir, modsDir string, opts Options) (*Loaded, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	if err := requireDir(dir, "pack directory"); err != nil {
		return nil, err
	}
	packPath := filepath.Join(dir, "pack.toml")
	data, err := os.ReadFile(packPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Validation("pack not found: %s does not exist", packPath)
	}
	if err != nil {
		return nil, apperr.File("reading pack", packPath, err)
	}

	var out Loaded
	if err := toml.Unmarshal(data, &out.Pack); err != nil {
		return nil, apperr.Deserialization(packPath, err)
	}

	if err := requireDir(modsDir, "mods directory"); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return nil, apperr.File("listing mods", modsDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), MetaSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(modsDir, name)
		ref, ok, err := loadMeta(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			if !opts.SkipUnmanaged {
				return nil, apperr.Validation("%s has no modrinth or curseforge update section", path)
			}
			logger.Warn("skipping unmanaged mod", "path", path)
			out.Skipped = append(out.Skipped, path)
			continue
		}
		out.References = append(out.References, ref)
	}
	logger.Debug("loaded pack", "path", dir, "name", out.Pack.Name, "count", len(out.References))
	return &out, nil
}

func loadMeta(path string) (mods.Reference, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mods.Reference{}, false, apperr.File("reading mod metadata", path, err)
	}
	var meta modMeta
	if err := toml.Unmarshal(data, &meta); err != nil {
		return mods.Reference{}, false, apperr.Deserialization(path, err)
	}

	mr, cf := meta.Update.Modrinth, meta.Update.CurseForge
	var ref mods.Reference
	switch {
	case mr != nil && cf != nil:
		return mods.Reference{}, false, apperr.Validation("%s declares both modrinth and curseforge sources", path)
	case mr != nil:
		ref, err = mods.New(mods.Modrinth, mr.ModID, mr.Version)
	case cf != nil:
		ref, err = mods.New(mods.CurseForge, strconv.FormatInt(cf.ProjectID, 10), strconv.FormatInt(cf.FileID, 10))
	default:
		return mods.Reference{}, false, nil
	}
	if err != nil {
		return mods.Reference{}, false, fmt.Errorf("%s: %w", path, err)
	}
	ref.Name = meta.Name
	return ref, true, nil
}

func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return apperr.Validation("%s %s does not exist", what, path)
	}
	if err != nil {
		return apperr.File("checking "+what, path, err)
	}
	if !info.IsDir() {
		return apperr.Validation("%s %s is not a directory", what, path)
	}
	return nil
}
