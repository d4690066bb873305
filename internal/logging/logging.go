package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a user-facing log level name.
type Level string

const (
	LevelOff   Level = "off"
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
	LevelTrace Level = "trace"
)

// levelOff is above every level the logger emits.
const levelOff = log.Level(math.MaxInt32)

// ParseLevel parses a level name case-insensitively. "warning" is accepted
// for warn.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelOff, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace:
		return l, nil
	case "warning":
		return LevelWarn, nil
	case "":
		return LevelWarn, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want off, error, warn, info, debug or trace)", s)
	}
}

func (l Level) String() string { return string(l) }

// UnmarshalText lets config decoding accept level names.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// logLevel maps l onto the logger's levels. trace has no counterpart and
// logs at debug.
func (l Level) logLevel() log.Level {
	switch l {
	case LevelOff:
		return levelOff
	case LevelError:
		return log.ErrorLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelDebug, LevelTrace:
		return log.DebugLevel
	default:
		return log.WarnLevel
	}
}

// ColorMode selects when terminal output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses a color mode name case-insensitively.
func ParseColorMode(s string) (ColorMode, error) {
	switch c := ColorMode(strings.ToLower(strings.TrimSpace(s))); c {
	case ColorAuto, ColorAlways, ColorNever:
		return c, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
	}
}

func (c ColorMode) String() string { return string(c) }

// UnmarshalText lets config decoding accept color mode names.
func (c *ColorMode) UnmarshalText(text []byte) error {
	v, err := ParseColorMode(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Profile returns the termenv profile forced by c, and false for auto.
func (c ColorMode) Profile() (termenv.Profile, bool) {
	switch c {
	case ColorAlways:
		return termenv.TrueColor, true
	case ColorNever:
		return termenv.Ascii, true
	default:
		return termenv.Ascii, false
	}
}

// Options configures New.
type Options struct {
	Level Level
	Color ColorMode
	// Output receives terminal logs; nil means stderr.
	Output io.Writer
	// File, when set, sends logs to a rotating file instead of Output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

// New builds a logger. The returned closer releases the log file, if any,
// and is never nil. If the log file cannot be prepared, logging falls back
// to Output and the failure is logged as a warning.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := opts.Level
	if level == "" {
		level = LevelWarn
	}
	if _, err := ParseLevel(string(level)); err != nil {
		return nil, nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var (
		closer  io.Closer = nopCloser{}
		toFile  bool
		fileErr error
	)
	if opts.File != "" {
		rotator, err := buildFileOutput(opts)
		if err != nil {
			fileErr = err
		} else {
			out, closer, toFile = rotator, rotator, true
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:  level.logLevel(),
		Prefix: "packwizml",
	})
	if toFile {
		logger.SetFormatter(log.LogfmtFormatter)
		logger.SetReportTimestamp(true)
		logger.SetColorProfile(termenv.Ascii)
	} else if profile, ok := opts.Color.Profile(); ok {
		logger.SetColorProfile(profile)
	}

	if fileErr != nil {
		logger.Warn("logging to stderr instead of file", "path", opts.File, "err", fileErr)
	}
	return logger, closer, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

func buildFileOutput(opts Options) (*lumberjack.Logger, error) {
	dir := filepath.Dir(opts.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
		LocalTime:  true,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
