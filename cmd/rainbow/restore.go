package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/rainbow/internal/app"
	"github.com/MrSnakeDoc/rainbow/internal/page"
	"github.com/MrSnakeDoc/rainbow/internal/utils"
)

var (
	restoreURL    string
	restoreIn     string
	restoreOut    string
	restoreReport bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Apply stored highlights to a saved HTML page",
	Long: `Restore parses an HTML file as if it had been loaded from --url, re-applies
every stored highlight of that address and writes the marked document to
--out (stdout by default). The site must be on the allow-list.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(restoreIn)
		if err != nil {
			return err
		}
		defer utils.Close(in)

		p, err := page.Parse(in, restoreURL)
		if err != nil {
			return err
		}

		lib, closeStore, err := app.OpenLibrary(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		rep, err := lib.Restore(cmd.Context(), p)
		if err != nil {
			return err
		}

		out := os.Stdout
		if restoreOut != "" && restoreOut != "-" {
			f, err := os.Create(restoreOut)
			if err != nil {
				return err
			}
			defer utils.Close(f)
			out = f
		}
		if err := p.Render(out); err != nil {
			return fmt.Errorf("failed to write page: %w", err)
		}

		if restoreReport {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreURL, "url", "", "address the page was loaded from")
	restoreCmd.Flags().StringVar(&restoreIn, "in", "", "HTML file to read")
	restoreCmd.Flags().StringVar(&restoreOut, "out", "", "file to write (default stdout)")
	restoreCmd.Flags().BoolVar(&restoreReport, "report", false, "print the relocation report as JSON on stderr")
	_ = restoreCmd.MarkFlagRequired("url")
	_ = restoreCmd.MarkFlagRequired("in")
}
