package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/webmap/internal/service"
)

func init() {
	rootCmd.AddCommand(newStopCmd())
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the service running in the game",
		Long: `The stop command asks the service to shut its listener down. The module
stays loaded in the game but idle.

Example:
  webmapctl stop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context())
		},
	}
}

func runStop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := call(ctx, service.PathStop)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(r)
	}
	printInfo("stopping web server...\n")
	return nil
}
