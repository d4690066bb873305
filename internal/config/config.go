package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/cache"
	"github.com/dshills/packwizml/internal/logging"
	"github.com/dshills/packwizml/internal/output"
	"github.com/dshills/packwizml/internal/resolve"
)

// FileName is the config file name searched for in the working directory
// and the user config directory.
const FileName = "packwizml.toml"

// EnvPrefix prefixes every environment override, e.g. PACKWIZML_SORT_BY.
const EnvPrefix = "PACKWIZML"

// Config represents the packwizml configuration.
type Config struct {
	Path           string `mapstructure:"path" toml:"path" json:"path"`
	Cache          string `mapstructure:"cache" toml:"cache" json:"cache"`
	Mods           string `mapstructure:"mods" toml:"mods" json:"mods"`
	ModsAbsolute   bool   `mapstructure:"mods-absolute" toml:"mods-absolute" json:"modsAbsolute"`
	List           string `mapstructure:"list" toml:"list,omitempty" json:"list,omitempty"`
	SkipUnmanaged  bool   `mapstructure:"skip-unmanaged" toml:"skip-unmanaged" json:"skipUnmanaged"`
	Output         string `mapstructure:"output" toml:"output,omitempty" json:"output,omitempty"`
	OutputAbsolute bool   `mapstructure:"output-absolute" toml:"output-absolute" json:"outputAbsolute"`
	Force          bool   `mapstructure:"force" toml:"force" json:"force"`

	Format     string          `mapstructure:"output-format" toml:"output-format" json:"outputFormat"`
	Template   string          `mapstructure:"template" toml:"template" json:"template"`
	SortBy     output.SortMode `mapstructure:"sort-by" toml:"sort-by" json:"sortBy"`
	Reverse    bool            `mapstructure:"reverse" toml:"reverse" json:"reverse"`
	IgnoreCase bool            `mapstructure:"ignore-case" toml:"ignore-case" json:"ignoreCase"`
	Preview    bool            `mapstructure:"preview" toml:"preview" json:"preview"`

	Lookup      resolve.LookupPolicy `mapstructure:"lookup" toml:"lookup" json:"lookup"`
	Order       resolve.OrderPolicy  `mapstructure:"order" toml:"order" json:"order"`
	OnError     resolve.ErrorPolicy  `mapstructure:"on-error" toml:"on-error" json:"onError"`
	Concurrency int                  `mapstructure:"concurrency" toml:"concurrency" json:"concurrency"`

	API APIConfig `mapstructure:"api" toml:"api" json:"api"`
	Log LogConfig `mapstructure:"log" toml:"log" json:"log"`

	// APIKey is filled from LoadSecrets, never from files or flags.
	APIKey string `mapstructure:"-" toml:"-" json:"apiKey,omitempty"`
}

// APIConfig holds upstream endpoints and HTTP settings.
type APIConfig struct {
	ModrinthURL    string `mapstructure:"modrinth-url" toml:"modrinth-url" json:"modrinthUrl"`
	CurseForgeURL  string `mapstructure:"curseforge-url" toml:"curseforge-url" json:"curseforgeUrl"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds" toml:"timeout-seconds" json:"timeoutSeconds"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level      logging.Level     `mapstructure:"level" toml:"level" json:"level"`
	Color      logging.ColorMode `mapstructure:"color" toml:"color" json:"color"`
	File       string            `mapstructure:"file" toml:"file,omitempty" json:"file,omitempty"`
	MaxSizeMB  int               `mapstructure:"max-size-mb" toml:"max-size-mb" json:"maxSizeMb"`
	MaxBackups int               `mapstructure:"max-backups" toml:"max-backups" json:"maxBackups"`
	Compress   bool              `mapstructure:"compress" toml:"compress" json:"compress"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Path:     "./",
		Cache:    cache.DefaultPath,
		Mods:     "mods",
		Format:   output.FormatText,
		Template: output.DefaultTemplate,
		SortBy:   output.SortNone,
		Lookup:   resolve.LookupAllOrNothing,
		Order:    resolve.OrderGrouped,
		OnError:  resolve.FailFast,
		// Matches the CurseForge client's default fan-out.
		Concurrency: 8,
		API: APIConfig{
			ModrinthURL:    "https://api.modrinth.com/v2",
			CurseForgeURL:  "https://api.curseforge.com/v1",
			TimeoutSeconds: 30,
		},
		Log: LogConfig{
			Level:      logging.LevelWarn,
			Color:      logging.ColorAuto,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// FlagKeys maps config keys to the CLI flag that overrides them.
var FlagKeys = map[string]string{
	"path":            "path",
	"cache":           "cache",
	"mods":            "mods",
	"mods-absolute":   "mods-absolute",
	"list":            "list",
	"skip-unmanaged":  "skip-unmanaged",
	"output":          "output",
	"output-absolute": "output-absolute",
	"force":           "force",
	"template":        "format",
	"sort-by":         "sort-by",
	"reverse":         "reverse",
	"ignore-case":     "ignore-case",
	"preview":         "preview",
	"lookup":          "lookup",
	"order":           "order",
	"on-error":        "on-error",
	"concurrency":     "concurrency",
	"log.level":       "log-level",
	"log.color":       "color",
	"log.file":        "log-file",
}

// ConfigDir returns the platform-appropriate config directory for packwizml.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "packwizml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "packwizml"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "packwizml"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "packwizml"), nil
	default:
		return filepath.Join(home, ".config", "packwizml"), nil
	}
}

// ConfigPath returns the full path of the user config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// File is an explicit config file; it must exist. When empty the
	// working directory and ConfigDir are searched and a missing file is
	// not an error.
	File string
	// Flags are bound per FlagKeys; only flags the user changed override
	// lower layers.
	Flags *pflag.FlagSet
}

// Load builds the effective config by merging: defaults <- file <- env <- flags.
// It returns the config and the path of the file that was read, if any.
func Load(opts LoadOptions) (Config, string, error) {
	v, err := newViper(opts)
	if err != nil {
		return Config{}, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return Config{}, "", apperr.Validation("invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, v.ConfigFileUsed(), nil
}

func newViper(opts LoadOptions) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, Default())

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".toml"))
		v.AddConfigPath(".")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case opts.File == "" && errors.As(err, &notFound):
		case errors.Is(err, os.ErrNotExist):
			return nil, apperr.Validation("config file %s does not exist", opts.File)
		default:
			return nil, apperr.Deserialization(v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}
	return v, nil
}

// setDefaults registers every key so that environment overrides are seen
// by Unmarshal.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("path", d.Path)
	v.SetDefault("cache", d.Cache)
	v.SetDefault("mods", d.Mods)
	v.SetDefault("mods-absolute", d.ModsAbsolute)
	v.SetDefault("list", d.List)
	v.SetDefault("skip-unmanaged", d.SkipUnmanaged)
	v.SetDefault("output", d.Output)
	v.SetDefault("output-absolute", d.OutputAbsolute)
	v.SetDefault("force", d.Force)
	v.SetDefault("output-format", d.Format)
	v.SetDefault("template", d.Template)
	v.SetDefault("sort-by", d.SortBy.String())
	v.SetDefault("reverse", d.Reverse)
	v.SetDefault("ignore-case", d.IgnoreCase)
	v.SetDefault("preview", d.Preview)
	v.SetDefault("lookup", d.Lookup.String())
	v.SetDefault("order", d.Order.String())
	v.SetDefault("on-error", d.OnError.String())
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("api.modrinth-url", d.API.ModrinthURL)
	v.SetDefault("api.curseforge-url", d.API.CurseForgeURL)
	v.SetDefault("api.timeout-seconds", d.API.TimeoutSeconds)
	v.SetDefault("log.level", d.Log.Level.String())
	v.SetDefault("log.color", d.Log.Color.String())
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max-size-mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max-backups", d.Log.MaxBackups)
	v.SetDefault("log.compress", d.Log.Compress)
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.TextUnmarshallerHookFunc()
}

// Validate checks values that decoding alone does not constrain.
func (c Config) Validate() error {
	if _, err := output.GetWriter(c.Format, c.Template); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return apperr.Validation("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if c.API.TimeoutSeconds < 0 {
		return apperr.Validation("api.timeout-seconds must be >= 0, got %d", c.API.TimeoutSeconds)
	}
	if c.Path == "" {
		return apperr.Validation("path must not be empty")
	}
	if c.Cache == "" {
		return apperr.Validation("cache path must not be empty")
	}
	return nil
}

// Marshal renders cfg as a TOML config file.
func Marshal(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// Init writes a default config file to path. An existing file is left
// untouched unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return apperr.Validation("config file %s already exists (use --force to overwrite)", path)
	}
	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.File("creating config directory", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.File("writing config", path, err)
	}
	return nil
}

// Set updates a single key in the config file at path, creating the file if
// needed. The value is validated by decoding the resulting config.
func Set(path, key, value string) error {
	if _, ok := knownKeys()[key]; !ok {
		return apperr.Validation("unknown config key: %s", key)
	}

	v := viper.New()
	v.SetConfigType("toml")
	if data, err := os.ReadFile(path); err == nil {
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return apperr.Deserialization(path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return apperr.File("reading config", path, err)
	}
	v.Set(key, value)

	check := viper.New()
	setDefaults(check, Default())
	for _, k := range v.AllKeys() {
		check.Set(k, v.Get(k))
	}
	var cfg Config
	if err := check.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return apperr.Validation("invalid value for %s: %v", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.File("creating config directory", filepath.Dir(path), err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return apperr.File("writing config", path, err)
	}
	return nil
}

func knownKeys() map[string]struct{} {
	v := viper.New()
	setDefaults(v, Default())
	keys := make(map[string]struct{})
	for _, k := range v.AllKeys() {
		keys[k] = struct{}{}
	}
	return keys
}
