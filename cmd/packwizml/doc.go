// Packwizml generates a formatted mod list for a packwiz modpack.
//
// Every mod in the pack is looked up on Modrinth or CurseForge and rendered
// through a line template, as JSON, or as a markdown table. Lookups are
// cached per mod version in a JSON file, so re-running on an unchanged pack
// makes no network requests.
//
// Usage:
//
//	packwizml                          # print the list for the pack in ./
//	packwizml -p mypack -o MODS.md -F  # write mypack/MODS.md, overwriting it
//	packwizml -s name --ignore-case    # sort by project name
//	packwizml --json                   # JSON instead of template lines
//	packwizml --list mods.txt          # read source:id[:token] lines instead of a pack
//	packwizml cache show               # cache statistics
//	packwizml config init              # write a default packwizml.toml
//
// CurseForge lookups need an API key in CF_API_KEY, or a file named by
// CF_API_KEY_FILE.
package main
