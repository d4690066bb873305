// Package cli wires together the Cobra command tree for the packwizml binary.
//
// The root command generates the mod list: it reads configuration, loads
// the pack references, resolves them through the cache and the upstream
// sources, saves the cache and writes the formatted output. Subcommands
// manage the cache (cache show, cache clear) and configuration (config show,
// config init, config set), list the sources, and print the version. Run
// returns deterministic exit codes for scripting.
package cli
