// Package cmd holds the geofenced command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the geofenced release.
const Version = "0.3.0"

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geofenced",
		Short: "Tactical geofence evaluation service.",
		Long: `geofenced loads a SpatialConstraints mission document and answers
whether positions are allowed, which areas they violate and which warning
areas contain them. It can run as an HTTP service or as one-shot commands.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newCheckCmd(),
		newConvertCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of geofenced",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geofenced v%s\n", Version)
		},
	}
}
