package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/webmap/internal/procfind"
)

// findProcess locates the target; tests replace it.
var findProcess = procfind.Find

func init() {
	rootCmd.AddCommand(newFindCmd())
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Print the process id of the game",
		Long: `The find command looks up the game process by the executable name set in
process_name and prints its id.

Example:
  webmapctl find
  webmapctl find --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind()
		},
	}
}

func runFind() error {
	pid, err := findProcess(cfg.ProcessName)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]interface{}{
			"process": cfg.ProcessName,
			"pid":     pid,
		})
	}
	printVerbose("Process: %s\n", cfg.ProcessName)
	printInfo("%d\n", pid)
	return nil
}
