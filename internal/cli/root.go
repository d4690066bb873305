package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/config"
	"github.com/dshills/packwizml/internal/redact"
	"github.com/dshills/packwizml/internal/version"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// Persistent flags shared by every command.
const (
	flagConfig   = "config"
	flagPath     = "path"
	flagCache    = "cache"
	flagLogLevel = "log-level"
	flagColor    = "color"
	flagLogFile  = "log-file"
)

// usageError marks failures cobra detects before a command runs.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "packwizml",
		Short: "Generate a mod list for a packwiz modpack",
		Long: "packwizml reads a packwiz modpack, looks every mod up on Modrinth or CurseForge, " +
			"and writes a formatted list of names, links and descriptions. Lookups are cached " +
			"per mod version, so unchanged packs need no network access.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.String(flagConfig, "", "Config file (default: ./packwizml.toml or the user config dir)")
	pf.StringP(flagPath, "p", "./", "Path to the pack directory")
	pf.String(flagCache, "./.packwizml.cache", "Path to the cache file")
	pf.StringP(flagLogLevel, "v", "warn", "Log level (off, error, warn, info, debug, trace)")
	pf.StringP(flagColor, "c", "auto", "Color mode (auto, always, never)")
	pf.String(flagLogFile, "", "Write logs to a rotating file instead of stderr")

	addGenerateFlags(root)

	root.AddCommand(newCacheCmd(stdout))
	root.AddCommand(newConfigCmd(stdout))
	root.AddCommand(newSourcesCmd(stdout))
	root.AddCommand(newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print packwizml version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, version.Full())
		},
	}
}

// Run executes the root command with the process arguments and returns an
// exit code.
func Run() int {
	return RunArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// RunArgs executes the command tree with args and returns an exit code.
func RunArgs(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(stderr, "Error: %s\n", scrub(err))
	return exitCodeFor(err)
}

// exitCodeFor maps an error onto the exit codes.
func exitCodeFor(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ue):
		return ExitUsageError
	case apperr.IsAuth(err):
		return ExitAuthError
	case apperr.KindOf(err) == apperr.KindValidation:
		return ExitUsageError
	case apperr.KindOf(err) == apperr.KindUnknown && isCobraUsage(err):
		return ExitUsageError
	default:
		return ExitRuntimeError
	}
}

// isCobraUsage recognizes argument and command errors cobra returns without
// going through the flag error func.
func isCobraUsage(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "accepts ", "requires ", "unknown flag", "unknown shorthand flag"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// scrub removes the CurseForge key and secret-shaped values from an error
// message and bounds its length.
func scrub(err error) string {
	secrets, _ := config.LoadSecrets()
	return redact.Body(err.Error(), secrets.APIKey())
}
