package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/joshuapare/webmap/cmd/webmapctl/mapview"
	"github.com/joshuapare/webmap/internal/logger"
	"github.com/joshuapare/webmap/internal/poller"
	"github.com/joshuapare/webmap/internal/service"
)

var (
	watchPID    uint32
	watchModule string
)

// errNotTerminal is returned by watch when stdout is redirected.
var errNotTerminal = errors.New("watch needs an interactive terminal; use fetch instead")

func init() {
	cmd := newWatchCmd()
	cmd.Flags().Uint32Var(&watchPID, "pid", 0, "Target process id (default: find by process_name)")
	cmd.Flags().StringVar(&watchModule, "module", "", "Service module path for the start command")
	rootCmd.AddCommand(cmd)
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the live map in the terminal",
		Long: `The watch command polls the service and draws the map features in the
terminal. From inside the view, i starts the service and s stops it.

Example:
  webmapctl watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errNotTerminal
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runWatch(ctx, nil)
		},
	}
}

// newWatch builds the poller and the view for the watch command.
func newWatch() (*poller.Poller, mapview.Model) {
	url := cfg.URL(service.PathActors)
	p := poller.New(poller.NewHTTPFetcher(url, cfg.FetchTimeout()), poller.Options{
		Interval:  cfg.PollInterval(),
		Namespace: namespace,
		Logger:    logger.Named("poller"),
	})

	pid := watchPID
	if pid == 0 {
		if found, err := findProcess(cfg.ProcessName); err == nil {
			pid = found
		}
	}

	actions := mapview.Actions{
		Inject: func() error {
			_, _, err := startService(pid, watchModule)
			return err
		},
		StopService: func() error {
			_, err := call(context.Background(), service.PathStop)
			if err != nil {
				logger.Warn("stop request failed", zap.Error(err))
			}
			return err
		},
	}
	info := mapview.Info{Process: cfg.ProcessName, PID: pid, URL: url}
	return p, mapview.New(p, actions, info)
}

// runWatch runs the poll loop and the UI until the UI quits. opts are
// passed to the tea program.
func runWatch(ctx context.Context, opts []tea.ProgramOption) error {
	p, model := newWatch()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := p.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		defer p.Stop()
		prog := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)...)
		_, err := prog.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
