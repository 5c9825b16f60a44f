// Version command for the chummer CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/chummer/pkg/chummer"
)

const modulePath = "github.com/mesh-intelligence/chummer"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chummer version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "chummer v%s\nmodule: %s\n", chummer.Version, modulePath)
			return nil
		},
	}
}
