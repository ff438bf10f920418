package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joshuapare/webmap/internal/inject"
	"github.com/joshuapare/webmap/internal/logger"
)

var (
	injectPID    uint32
	injectModule string

	// injectOS performs the remote load; tests replace it.
	injectOS = inject.System
)

func init() {
	cmd := newInjectCmd()
	cmd.Flags().Uint32Var(&injectPID, "pid", 0, "Target process id (default: find by process_name)")
	cmd.Flags().StringVar(&injectModule, "module", "", "Service module path (default: module_name beside webmapctl)")
	rootCmd.AddCommand(cmd)
}

func newInjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inject",
		Short: "Load the service module into the game",
		Long: `The inject command loads the webmap service module into the game process.
The service starts a few seconds later; use status to follow it.

Example:
  webmapctl inject
  webmapctl inject --pid 1234 --module C:\webmap\webmapsvc.dll`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInject()
		},
	}
}

func runInject() error {
	pid, path, err := startService(injectPID, injectModule)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]interface{}{
			"pid":    pid,
			"module": path,
			"result": inject.Success.String(),
		})
	}
	printInfo("Loaded %s into process %d\n", path, pid)
	return nil
}

// startService injects the module into pid, or into the process found by
// name when pid is zero.
func startService(pid uint32, module string) (uint32, string, error) {
	path, err := modulePath(module)
	if err != nil {
		return 0, "", err
	}
	if pid == 0 {
		if pid, err = findProcess(cfg.ProcessName); err != nil {
			return 0, "", err
		}
	}
	printVerbose("Injecting %s into %d\n", path, pid)

	in := inject.New(injectOS, inject.Options{
		Timeout: cfg.InjectTimeout(),
		Logger:  logger.Named("inject"),
	})
	if err := in.Inject(pid, path); err != nil {
		logger.Warn("inject failed", zap.Uint32("pid", pid), zap.Error(err))
		return pid, path, err
	}
	logger.Info("module injected", zap.Uint32("pid", pid), zap.String("module", path))
	return pid, path, nil
}

// modulePath resolves the service module to an absolute path. Without an
// explicit path, module_name is looked up beside the executable, then in
// the working directory. A missing module wraps os.ErrNotExist.
func modulePath(explicit string) (string, error) {
	var candidates []string
	if explicit != "" {
		candidates = []string{explicit}
	} else {
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), cfg.ModuleName))
		}
		candidates = append(candidates, cfg.ModuleName)
	}
	for _, c := range candidates {
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		if st, err := os.Stat(abs); err == nil && !st.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("missing dll %s: %w", candidates[len(candidates)-1], os.ErrNotExist)
}
