package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/packwizml/internal/apperr"
	"github.com/dshills/packwizml/internal/mods"
	"github.com/dshills/packwizml/internal/redact"
)

// probeIDs are long-lived projects used to check that a source responds.
var probeIDs = map[mods.Source]string{
	mods.Modrinth:   "P7dR8mSH", // Fabric API
	mods.CurseForge: "238222",   // JEI
}

func newSourcesCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Upstream source information",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List supported sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, src := range mods.Sources {
				fmt.Fprintf(stdout, "%s:\n", src)
				switch src {
				case mods.Modrinth:
					fmt.Fprintf(stdout, "  endpoint: %s\n", cfg.API.ModrinthURL)
					fmt.Fprintln(stdout, "  lookups:  one batch request, no credentials")
				case mods.CurseForge:
					fmt.Fprintf(stdout, "  endpoint: %s\n", cfg.API.CurseForgeURL)
					fmt.Fprintf(stdout, "  lookups:  one request per mod, up to %d at once\n", cfg.Concurrency)
					key := "not set"
					if cfg.APIKey != "" {
						key = redact.Mask(cfg.APIKey)
					}
					fmt.Fprintf(stdout, "  api key:  %s\n", key)
				}
				fmt.Fprintln(stdout)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check that each source is reachable and the credentials work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			fetchers, err := newFetchers(cfg, nil)
			if err != nil {
				return err
			}

			var firstErr error
			for _, f := range fetchers {
				fmt.Fprintf(stdout, "Checking %s...\n", f.Source())
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				_, err := f.Fetch(ctx, probeIDs[f.Source()])
				cancel()
				if err != nil {
					fmt.Fprintf(stdout, "FAIL: %s\n", redact.Body(err.Error(), cfg.APIKey))
					// An auth failure outranks other failures for the exit code.
					if firstErr == nil || apperr.IsAuth(err) {
						firstErr = err
					}
					continue
				}
				fmt.Fprintf(stdout, "OK: %s is reachable\n", f.Source())
			}
			return firstErr
		},
	})
	return cmd
}
