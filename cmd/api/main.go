package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by ldflags at release time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "Issue tracker HTTP API",
	Long: `api serves the issue tracker REST API backed by Postgres or MongoDB.
Running it without a subcommand is the same as "api serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
