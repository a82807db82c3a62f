// Command studyctl ingests study material and queries the chunk store
// without going through the HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "studyctl",
	Short:        "Study deck maintenance tool",
	Long:         "CLI for ingesting documents, inspecting retrieval and migrating the studydeck schema.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config TOML (overrides CONFIG_FILE)")
	rootCmd.AddCommand(newIngestCmd(), newQueryCmd(), newMigrateCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
