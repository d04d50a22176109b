package main

import (
	"fmt"
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/kjnapes/spacerocks/pkg/utils"
)

const (
	appName = "spacerocks"
	version = "v0.3.0"
)

var (
	cfgFile string
	config  *utils.Config
	logger  log.Logger
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "N-body integration of solar system bodies",
	Long: `spacerocks integrates the orbits of the sun, planets and small bodies.

Initial states come from JPL Horizons or a local state file. Runs can stream
JSONL snapshots, save their final states and expose Prometheus metrics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		if config, err = utils.LoadConfig(cfgFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logger, err = utils.NewLogger(config.Client.LogLevel, config.Client.LogJSON); err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to $HOME/.spacerocks/config.yaml, or to
the path given with --config, and create the data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = utils.GetConfigPath()
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		cfg := utils.DefaultConfig()
		if err := utils.SaveConfig(cfg, path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at: %s\n", path)
		fmt.Fprintf(cmd.OutOrStdout(), "Data directory: %s\n", cfg.Client.DataDir)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.spacerocks/config.yaml)")

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(integrateCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
