package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pressroom/internal/config"
	"pressroom/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pressroom",
		Short: "Pressroom assigns presentation templates to articles.",
		Long: `Pressroom decides which of four presentation templates (classic, modern,
magazine, minimal) an article is rendered with.

Assignments come from one of two paths:
  • deterministic: category preference list indexed by a stable hash of the article id
  • ai: content analysis (type, tone, complexity) mapped to a layout configuration

An explicit template override always wins, and any analysis failure falls back
to the deterministic path, so an article is always rendered.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.pressroom.yaml or $HOME/.pressroom.yaml)")

	rootCmd.AddCommand(NewAssignCmd())
	rootCmd.AddCommand(NewAnalyzeCmd())
	rootCmd.AddCommand(NewSelectCmd())
	rootCmd.AddCommand(NewRenderCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewMigrateCmd())
	rootCmd.AddCommand(NewImportCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration and points logs at stderr so command output stays clean.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	level := cfg.Logging.Level
	if cfg.App.Debug {
		level = "debug"
	}
	logger.Configure(level, cfg.Logging.Format, os.Stderr)

	return nil
}
