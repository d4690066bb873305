// Package config loads and merges packwizml configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (PACKWIZML_SORT_BY, PACKWIZML_LOG_LEVEL, etc.)
//  3. Config file (packwizml.toml in the working directory, then
//     $XDG_CONFIG_HOME/packwizml/packwizml.toml, or the --config path)
//  4. Built-in defaults
//
// The CurseForge API key is not part of the layered config. It is read from
// CF_API_KEY or from the file named by CF_API_KEY_FILE; see [LoadSecrets].
package config
