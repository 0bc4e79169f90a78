package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jobagent-engine/internal/config"
)

var (
	dataDir    string
	useBrowser bool
)

var rootCmd = &cobra.Command{
	Use:   "jobagent",
	Short: "UK job-search agent: sponsorship badges, job board and form autofill",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotenv(".env")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $"+config.EnvDataDir+" or .)")
	rootCmd.PersistentFlags().BoolVar(&useBrowser, "browser", false, "render pages in headless Chrome (overrides fetch.use_browser)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(autofillCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
