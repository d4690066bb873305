package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/packwizml/internal/config"
	"github.com/dshills/packwizml/internal/redact"
)

// configTarget is the file config init and config set write to: --config
// when given, otherwise the user config file.
func configTarget(cmd *cobra.Command) (string, error) {
	if file, _ := cmd.Flags().GetString(flagConfig); file != "" {
		return file, nil
	}
	return config.ConfigPath()
}

func newConfigCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage packwizml configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.Init(path, force); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Config file created at %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolP("force", "F", false, "Overwrite an existing config file")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(cmd)
			if err != nil {
				return err
			}
			if err := config.Set(path, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.APIKey = redact.Mask(cfg.APIKey)
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(initCmd, setCmd, showCmd)
	return cmd
}
