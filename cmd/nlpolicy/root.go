package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/nlpolicy/pkg/cli"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nlpolicy",
	Short: "Compile natural-language HR policies into executable rules",
	Long: `nlpolicy turns free-text compensation and attendance policies (Arabic or
English) into structured rules and reports whether the data model can
support them.

A remote language model is used when one is configured; otherwise, or when
the model fails, a local dictionary parser compiles the policy.

Configuration is read from --config (YAML), NLPOLICY_* environment
variables and a .env file in the working directory.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus environment when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig initializes the process configuration and logger once per run.
func loadConfig(cmd *cobra.Command, args []string) error {
	if config.GetConfig() == nil {
		if err := config.Initialize(cfgFile); err != nil {
			return cli.NewConfigError("config", err.Error())
		}
	}
	cfg := config.GetConfig()

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	_, err := logging.Setup(logging.Config{
		Level:         level,
		Format:        cfg.Telemetry.Logging.Format,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	return nil
}
