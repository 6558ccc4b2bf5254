package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelst/skein"
	"github.com/avelst/skein/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "skein",
	Short: "Skein is the sync core for a visually edited workflow canvas",
	Long:  `Skein keeps a workflow model in sync across local edits, the rendered canvas, and live run telemetry from the execution service.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func serverURL(cmd *cobra.Command) string {
	url, _ := cmd.Flags().GetString("server")
	if !cmd.Flags().Changed("server") {
		if env := os.Getenv("SKEIN_SERVER"); env != "" {
			return env
		}
	}
	return url
}

func newClient(cmd *cobra.Command, logLevel string) (*skein.Client, error) {
	return skein.New(serverURL(cmd), skein.WithLogger(cli.NewLogger(logLevel)))
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("server", "http://localhost:8787", "Base URL of the workflow service (env: SKEIN_SERVER)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
