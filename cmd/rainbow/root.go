package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/rainbow/internal/config"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

var (
	cfg *config.Config
	log logger.Logger
)

// rootCmd runs the server when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rainbow",
	Short: "Persistent text highlights for web pages",
	Long: `Rainbow stores colored highlights and notes made on web pages and
re-applies them when a page is loaded again. Configuration is read from
RH_* environment variables and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		log = logger.New(cfg.LogLevel, cfg.PrettyLog)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: runServe,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ rainbow: %v\n", err)
		os.Exit(1)
	}
}
