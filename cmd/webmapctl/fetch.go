package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/webmap/internal/entity"
	"github.com/joshuapare/webmap/internal/poller"
	"github.com/joshuapare/webmap/internal/service"
	"github.com/joshuapare/webmap/internal/wire"
)

var (
	fetchDirect bool
	fetchPID    uint32
)

func init() {
	cmd := newFetchCmd()
	cmd.Flags().BoolVar(&fetchDirect, "direct", false, "Read the game's memory directly instead of asking the service")
	cmd.Flags().Uint32Var(&fetchPID, "pid", 0, "Target process id for --direct (default: find by process_name)")
	rootCmd.AddCommand(cmd)
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Print one snapshot of the map features",
		Long: `The fetch command prints the features currently on the map. By default it
asks the running service; with --direct it reads the game's memory itself.

Example:
  webmapctl fetch
  webmapctl fetch --json
  webmapctl fetch --direct --pid 1234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context())
		},
	}
}

func runFetch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		features []entity.Feature
		err      error
	)
	if fetchDirect {
		features, err = fetchFromProcess(fetchPID)
	} else {
		features, err = fetchFromService(ctx)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(wire.FromSnapshot(entity.Snapshot{Features: features}))
	}
	for _, f := range features {
		printInfo("%4d  %-24s %11.0f %11.0f %9.0f", f.Index, entity.CategoryName(f.Category),
			f.Position[0], f.Position[1], f.Position[2])
		if f.Label != "" {
			printInfo("  %s", f.Label)
		}
		printInfo("\n")
	}
	printInfo("\nTotal: %d features\n", len(features))
	return nil
}

func fetchFromService(ctx context.Context) ([]entity.Feature, error) {
	url := cfg.URL(service.PathActors)
	printVerbose("GET %s\n", url)
	data, err := poller.NewHTTPFetcher(url, cfg.FetchTimeout()).Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("service returned an empty reply")
	}
	return wire.Decode(data)
}

func fetchFromProcess(pid uint32) ([]entity.Feature, error) {
	ex, closer, err := openDirect(pid)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	snap := ex.Extract()
	if snap.Unresolved {
		return nil, &wire.RemoteError{Msg: snap.Reason}
	}
	return snap.Features, nil
}
