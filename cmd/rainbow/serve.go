package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/rainbow/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
