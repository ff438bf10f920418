package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/webmap/internal/readiness"
	"github.com/joshuapare/webmap/internal/service"
	"github.com/joshuapare/webmap/internal/version"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the service is running",
		Long: `The status command reports the service readiness: absent, starting or
ready. When ready it also checks that the service version is compatible with
this tool.

Example:
  webmapctl status
  webmapctl status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}
}

type statusResult struct {
	State      string `json:"state"`
	URL        string `json:"url,omitempty"`
	Version    string `json:"version,omitempty"`
	Compatible *bool  `json:"compatible,omitempty"`
	Warning    string `json:"warning,omitempty"`
}

func runStatus(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	state := readiness.Observe(namespace, readiness.DefaultName)
	res := statusResult{State: state.String()}

	if state == readiness.Ready {
		res.URL = cfg.URL(service.PathActors)
		r, err := call(ctx, service.PathVersion)
		if err != nil {
			res.Warning = err.Error()
		} else {
			res.Version = r.Version
			ok := true
			if err := version.Compatible(version.Current(), r.Version); err != nil {
				ok = false
				res.Warning = err.Error()
			}
			res.Compatible = &ok
		}
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Service: %s\n", res.State)
	if res.URL != "" {
		printInfo("URL:     %s\n", res.URL)
	}
	if res.Version != "" {
		printInfo("Version: %s\n", res.Version)
	}
	if res.Warning != "" {
		printError("%s\n", res.Warning)
	}
	return nil
}
