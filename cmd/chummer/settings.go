// Settings commands for the chummer CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/chummer/pkg/chummer"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and migrate the global settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a))
	cmd.AddCommand(newSettingsMigrateCmd(a))
	cmd.AddCommand(newCustomDataCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := a.bootstrap()
			if err != nil {
				return err
			}
			s, _, err := store.Load()
			if err != nil {
				return sysError("load settings: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return writeYAML(cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newSettingsMigrateCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate settings from the legacy store",
		Long: `Migrate imports settings from the legacy store into the settings file.
Without --force nothing happens once a settings file exists. With --force the
legacy store is read again and replaces the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.environment()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				_, source, err := chummer.BootstrapSettings(env)
				if err != nil {
					return sysError("migrate: %w", err)
				}
				if source == chummer.SourceFile {
					fmt.Fprintf(out, "Settings already present at %s; use --force to import again\n", env.SettingsPath)
					return nil
				}
				fmt.Fprintf(out, "Settings written to %s (%s)\n", env.SettingsPath, source)
				return nil
			}

			s, found, err := chummer.ImportLegacySettings(env)
			if err != nil {
				return sysError("migrate: %w", err)
			}
			if !found {
				return userError("migrate: no legacy settings found")
			}
			if err := chummer.NewSettingsStore(env).Save(s); err != nil {
				return sysError("migrate: %w", err)
			}
			fmt.Fprintf(out, "Settings written to %s (%s)\n", env.SettingsPath, chummer.SourceLegacy)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-import even when a settings file exists")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return sysError("encode output: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return sysError("encode output: %w", err)
	}
	if err := enc.Close(); err != nil {
		return sysError("encode output: %w", err)
	}
	return nil
}
