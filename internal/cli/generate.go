package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dshills/packwizml/internal/cache"
	"github.com/dshills/packwizml/internal/config"
	"github.com/dshills/packwizml/internal/logging"
	"github.com/dshills/packwizml/internal/mods"
	"github.com/dshills/packwizml/internal/output"
	"github.com/dshills/packwizml/internal/pack"
	"github.com/dshills/packwizml/internal/providers"
	"github.com/dshills/packwizml/internal/resolve"
)

const flagJSON = "json"

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("mods", "m", "mods", "Mods directory, relative to the pack directory")
	f.BoolP("mods-absolute", "M", false, "Treat --mods as a path relative to the working directory")
	f.String("list", "", "Read references from a text list (source:id[:token] per line) instead of a pack")
	f.Bool("skip-unmanaged", false, "Skip mod files without a Modrinth or CurseForge update section")
	f.StringP("output", "o", "", "Output file, relative to the pack directory (default: stdout)")
	f.BoolP("output-absolute", "O", false, "Treat --output as a path relative to the working directory")
	f.BoolP("force", "F", false, "Overwrite the output file if it exists")
	f.StringP("format", "f", output.DefaultTemplate, "Line template ({NAME} {TITLE} {URL} {DESCRIPTION} {SLUG} {ID} {INDEX} {SOURCE})")
	f.Bool(flagJSON, false, "Write JSON instead of template lines")
	f.StringP("sort-by", "s", "none", "Sort by none, name, title, slug or id")
	f.BoolP("reverse", "r", false, "Reverse the final order")
	f.Bool("ignore-case", false, "Sort case-insensitively")
	f.Bool("preview", false, "Render the list as markdown in the terminal")
	f.String("lookup", "all-or-nothing", "Cache lookup policy (all-or-nothing, per-key)")
	f.String("order", "grouped", "Result order (grouped, input)")
	f.String("on-error", "fail", "Partial batch failures (fail, keep-partial)")
	f.Int("concurrency", providers.DefaultConcurrency, "Maximum concurrent CurseForge requests (0 = unbounded)")
}

// loadConfig builds the effective config for cmd, including secrets.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	file, _ := cmd.Flags().GetString(flagConfig)
	cfg, used, err := config.Load(config.LoadOptions{File: file, Flags: cmd.Flags()})
	if err != nil {
		return config.Config{}, "", err
	}
	if f := cmd.Flags().Lookup(flagJSON); f != nil && f.Changed {
		if asJSON, _ := cmd.Flags().GetBool(flagJSON); asJSON {
			cfg.Format = output.FormatJSON
		}
	}
	secrets, err := config.LoadSecrets()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg.APIKey = secrets.APIKey()
	return cfg, used, nil
}

func newLogger(cfg config.Config, stderr io.Writer) (*log.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Color:      cfg.Log.Color,
		Output:     stderr,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
	})
}

// paths are the filesystem locations derived from the config.
type paths struct {
	pack   string
	mods   string
	output string
}

func resolvePaths(cfg config.Config) paths {
	p := paths{pack: cfg.Path, mods: cfg.Mods, output: cfg.Output}
	if !cfg.ModsAbsolute {
		p.mods = filepath.Join(cfg.Path, cfg.Mods)
	}
	if cfg.Output != "" && !cfg.OutputAbsolute {
		p.output = filepath.Join(cfg.Path, cfg.Output)
	}
	return p
}

func runGenerate(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, used, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	if used != "" {
		logger.Debug("loaded config", "path", used)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return generate(ctx, cfg, logger, stdout)
}

// generate runs one full resolution and writes the output.
func generate(ctx context.Context, cfg config.Config, logger *log.Logger, stdout io.Writer) error {
	p := resolvePaths(cfg)

	writer, err := output.GetWriter(cfg.Format, cfg.Template)
	if err != nil {
		return err
	}
	if err := output.CheckDestination(p.output, cfg.Force); err != nil {
		return err
	}

	refs, packName, err := loadReferences(cfg, p, logger)
	if err != nil {
		return err
	}
	if mw, ok := writer.(*output.MarkdownWriter); ok {
		mw.Title = packName
	}

	store, err := cache.Load(cfg.Cache)
	if err != nil {
		return err
	}
	logger.Debug("loaded cache", "path", store.Path(), "count", store.Len())

	fetchers, err := newFetchers(cfg, logger)
	if err != nil {
		return err
	}
	resolver := resolve.New(store, fetchers, resolve.Options{
		Lookup:  cfg.Lookup,
		Order:   cfg.Order,
		OnError: cfg.OnError,
		Logger:  logger,
	})

	records, resolveErr := resolver.Resolve(ctx, refs)

	// Sublists that resolved before a failure are still persisted.
	if err := store.Save(); err != nil {
		if resolveErr != nil {
			logger.Error("saving cache", "path", store.Path(), "err", err)
			return resolveErr
		}
		return err
	}
	if resolveErr != nil {
		return resolveErr
	}
	logger.Info("resolved mods", "count", len(records), "cached", store.Len())

	records = output.Sort(records, output.SortOptions{
		By:         cfg.SortBy,
		IgnoreCase: cfg.IgnoreCase,
		Reverse:    cfg.Reverse,
	})

	if p.output != "" {
		if err := output.WriteFile(p.output, cfg.Force, writer, records); err != nil {
			return err
		}
		logger.Info("wrote mod list", "path", p.output, "count", len(records))
		return nil
	}
	if cfg.Preview && cfg.Format != output.FormatJSON {
		md, err := output.Render(writer, records)
		if err != nil {
			return err
		}
		return output.Preview(stdout, md, output.PreviewOptions{Plain: cfg.Log.Color == logging.ColorNever})
	}
	return writer.Write(stdout, records)
}

func loadReferences(cfg config.Config, p paths, logger *log.Logger) ([]mods.Reference, string, error) {
	if cfg.List != "" {
		refs, err := pack.LoadList(cfg.List)
		if err != nil {
			return nil, "", err
		}
		logger.Debug("loaded reference list", "path", cfg.List, "count", len(refs))
		return refs, "", nil
	}
	loaded, err := pack.LoadPackwiz(p.pack, p.mods, pack.Options{
		SkipUnmanaged: cfg.SkipUnmanaged,
		Logger:        logger,
	})
	if err != nil {
		return nil, "", err
	}
	if len(loaded.Skipped) > 0 {
		logger.Info("skipped unmanaged mods", "count", len(loaded.Skipped))
	}
	return loaded.References, loaded.Pack.Name, nil
}

// newFetchers builds one fetcher per supported source from cfg.
func newFetchers(cfg config.Config, logger *log.Logger) ([]providers.Fetcher, error) {
	baseURLs := map[mods.Source]string{
		mods.Modrinth:   cfg.API.ModrinthURL,
		mods.CurseForge: cfg.API.CurseForgeURL,
	}
	fetchers := make([]providers.Fetcher, 0, len(mods.Sources))
	for _, src := range mods.Sources {
		f, err := providers.New(src, providers.Options{
			BaseURL:     baseURLs[src],
			Timeout:     time.Duration(cfg.API.TimeoutSeconds) * time.Second,
			APIKey:      cfg.APIKey,
			Concurrency: cfg.Concurrency,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, f)
	}
	return fetchers, nil
}
