package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/udlcoach/internal/cli"
	"github.com/aretw0/udlcoach/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "udlcoach",
	Short: "udlcoach is a Universal Design for Learning assessment coach",
	Long: `udlcoach guides educators through designing new assessments or evaluating
existing ones against the Universal Design for Learning principles.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle audit logs")
	rootCmd.PersistentFlags().String("store", "", "Session store driver: memory, file, sqlite or redis (overrides config)")
}

// loadConfig reads the configuration and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if driver, _ := cmd.Flags().GetString("store"); driver != "" {
		cfg.Store.Driver = driver
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// buildApp loads the configuration and wires the coach for cmd.
func buildApp(ctx context.Context, cmd *cobra.Command, quiet bool) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Build(ctx, cfg, cli.BuildOptions{Debug: debug, Quiet: quiet})
}
