package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/webmap/internal/service"
)

var (
	dumpDirect bool
	dumpPID    uint32
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpDirect, "direct", false, "Dump from the game's memory to stdout instead of asking the service")
	cmd.Flags().Uint32Var(&dumpPID, "pid", 0, "Target process id for --direct (default: find by process_name)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Dump the game's object table for diagnosis",
		Long: `The dump command lists every live object of the game with its name. By
default the service writes ` + service.DumpFile + ` beside its module and the path is
printed; with --direct the dump is read from the game's memory and written to
stdout.

Example:
  webmapctl dump
  webmapctl dump --direct > dump.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context())
		},
	}
}

func runDump(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if dumpDirect {
		ex, closer, err := openDirect(dumpPID)
		if err != nil {
			return err
		}
		defer closer.Close()
		sum, err := ex.Dump(os.Stdout)
		if err != nil {
			return err
		}
		printVerbose("%d names, %d slots, %d objects\n", sum.Names, sum.Slots, sum.Objects)
		return nil
	}

	r, err := call(ctx, service.PathDump)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(r)
	}
	printInfo("Dump written to %s\n", r.Path)
	return nil
}
