package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/brandos-canvas/pkg/config"
	"github.com/ritzau/brandos-canvas/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:           "brandos-canvas",
	Short:         "Node catalog and board server for the Brand OS canvas",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("verbosity", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	rootCmd.PersistentFlags().Bool("json", false, "Log as JSON")

	rootCmd.AddCommand(serveCmd, typesCmd, handlesCmd)
}

// loadConfig resolves configuration for cmd and applies its logging settings
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		return nil, err
	}
	logging.Configure(level, cfg.JSONLogs)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
