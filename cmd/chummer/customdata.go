// Custom data directory commands for the chummer CLI.
package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chummer/pkg/chummer"
	"github.com/mesh-intelligence/chummer/pkg/types"
)

func newCustomDataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customdata",
		Aliases: []string{"cd"},
		Short:   "Manage custom data directories",
		Long: `Custom data directories are overlays applied in list order; later
directories take precedence. Directories are addressed by ID or path.`,
	}
	cmd.AddCommand(newCustomDataListCmd(a))
	cmd.AddCommand(newCustomDataAddCmd(a))
	cmd.AddCommand(newCustomDataRemoveCmd(a))
	cmd.AddCommand(newCustomDataToggleCmd(a, "enable", true))
	cmd.AddCommand(newCustomDataToggleCmd(a, "disable", false))
	return cmd
}

func newCustomDataListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List custom data directories in precedence order",
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
			dirs := s.CustomData.Directories
			if asJSON {
				if dirs == nil {
					dirs = []types.CustomDataDirectory{}
				}
				return writeJSON(cmd.OutOrStdout(), dirs)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tENABLED\tPATH")
			for _, d := range dirs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, strconv.FormatBool(d.Enabled), d.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCustomDataAddCmd(a *app) *cobra.Command {
	var (
		name     string
		disabled bool
	)
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Append a custom data directory with the highest precedence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return userError("add: %w", err)
			}
			_, store, err := a.bootstrap()
			if err != nil {
				return err
			}

			d := types.NewCustomDataDirectory(path)
			if name != "" {
				d.Name = name
			}
			d.Enabled = !disabled
			if _, err := store.Update(types.WithCustomDataDirectory(d)); err != nil {
				return sysError("add: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default: last path element)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the directory disabled")
	return cmd
}

func newCustomDataRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|path>",
		Short: "Remove a custom data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := a.findCustomData(args[0])
			if err != nil {
				return err
			}
			if _, err := store.Update(types.WithoutCustomDataDirectory(d.ID)); err != nil {
				return sysError("remove: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", d.ID, d.Path)
			return nil
		},
	}
}

func newCustomDataToggleCmd(a *app, verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id|path>",
		Short: verb + " a custom data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := a.findCustomData(args[0])
			if err != nil {
				return err
			}
			if _, err := store.Update(types.WithCustomDataDirectoryEnabled(d.ID, enabled)); err != nil {
				return sysError("%s: %w", verb, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: enabled=%t\n", d.ID, enabled)
			return nil
		},
	}
}

// findCustomData resolves an ID or path against the current settings.
// Paths are matched as given and as absolute paths.
func (a *app) findCustomData(idOrPath string) (*chummer.SettingsStore, types.CustomDataDirectory, error) {
	_, store, err := a.bootstrap()
	if err != nil {
		return nil, types.CustomDataDirectory{}, err
	}
	s, _, err := store.Load()
	if err != nil {
		return nil, types.CustomDataDirectory{}, sysError("load settings: %w", err)
	}
	if d, ok := s.CustomDataDirectory(idOrPath); ok {
		return store, d, nil
	}
	if abs, err := filepath.Abs(idOrPath); err == nil {
		if d, ok := s.CustomDataDirectory(abs); ok {
			return store, d, nil
		}
	}
	return nil, types.CustomDataDirectory{}, userError("%w: %s", types.ErrDirectoryUnknown, idOrPath)
}
