// Init command for the chummer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chummer/pkg/chummer"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create configuration and migrate legacy settings",
		Long: `Init creates the configuration directory with a default config.yaml,
then writes the settings file. On first run the settings are migrated from
the legacy store when it holds any; otherwise defaults are written. Running
init again leaves an existing settings file untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(env.DataDir, 0o755); err != nil {
				return sysError("create data directory: %w", err)
			}

			s, source, err := chummer.BootstrapSettings(env)
			if err != nil {
				return sysError("init: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Chummer initialized successfully")
			fmt.Fprintln(out, "  config:  ", a.configDir)
			fmt.Fprintln(out, "  data:    ", env.DataDir)
			fmt.Fprintf(out, "  settings: %s (%s, %d custom data directories)\n",
				env.SettingsPath, source, len(s.CustomData.Directories))
			return nil
		},
	}
}
