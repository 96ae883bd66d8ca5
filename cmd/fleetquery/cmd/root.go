package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"

	"github.com/fleetops/fleetquery/internal/config"
	"github.com/fleetops/fleetquery/internal/log"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fleetquery",
	Short: "Run live telemetry queries against a managed endpoint fleet",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, env vars with FLEETQUERY prefix also apply)")
}

// initFromConfig is the shared PreRunE: parse configuration, initialize
// logging, dump generic startup information.
func initFromConfig(cmd *cobra.Command, args []string) error {
	var err error

	conf, err = config.Parse(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", cfgFile, err)
	}

	err = log.Init(conf.Logs)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	logger := log.Logger()

	logger.V(1).Info("Starting fleetquery",
		"version", version.Info(),
		"buildContext", version.BuildContext(),
	)
	logger.V(1).Info("Using config", "config", fmt.Sprintf("%+v", conf))

	return nil
}
