// Legacy store commands for the chummer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/chummer/internal/legacy"
)

// seedFile is the YAML layout accepted by "legacy seed".
type seedFile struct {
	Entries []legacy.Entry `yaml:"entries"`
}

func newLegacyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Work with the legacy settings store",
	}
	cmd.AddCommand(newLegacySeedCmd(a))
	return cmd
}

func newLegacySeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Write legacy store values from a YAML file",
		Long: `Seed writes values into the SQLite legacy store, creating it when
missing. The file lists entries with subkey, name and value:

  entries:
    - {subkey: "", name: language, value: de-de}
    - {subkey: 'CustomData\house', name: path, value: /data/house}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return userError("seed: %w", err)
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return userError("seed: parse %s: %w", args[0], err)
			}

			env, err := a.environment()
			if err != nil {
				return err
			}
			path := env.LegacyPath
			if path == "" {
				path = filepath.Join(env.DataDir, legacy.DefaultSQLiteFileName)
			}
			if err := legacy.WriteSQLiteStore(path, seed.Entries); err != nil {
				return sysError("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d legacy values to %s\n", len(seed.Entries), path)
			return nil
		},
	}
}
