package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/joshuapare/webmap/internal/config"
	"github.com/joshuapare/webmap/internal/logger"
	"github.com/joshuapare/webmap/internal/readiness"
	"github.com/joshuapare/webmap/internal/version"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	quiet   bool
	jsonOut bool
	debug   bool

	// cfg is loaded before any subcommand runs.
	cfg = config.Default()

	// namespace holds the service readiness signal.
	namespace = readiness.System
)

var rootCmd = &cobra.Command{
	Use:   "webmapctl",
	Short: "Operate the webmap service inside a running game",
	Long: `webmapctl finds the game process, loads the webmap service module into it,
and watches the live map the service publishes over HTTP.`,
	Version:           version.Current(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.FileName, "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write a debug log to ~/.webmap/logs")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	path, err := logger.Init(logger.Options{Enabled: debug, Level: zapcore.DebugLevel, Prefix: "webmapctl"})
	if err != nil {
		printError("unable to open log file: %v\n", err)
		return nil
	}
	if path != "" {
		printVerbose("Logging to %s\n", path)
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
