package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avelst/skein/internal/cli"
	"github.com/avelst/skein/internal/devserver"
	"github.com/avelst/skein/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the loopback workflow service",
	Long:  `Starts a local development server exposing the workflow REST API, the websocket telemetry stream, and Prometheus metrics. Runs are simulated.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		stepDelay, _ := cmd.Flags().GetDuration("step-delay")
		seed, _ := cmd.Flags().GetBool("seed")
		level, _ := cmd.Flags().GetString("log-level")

		logger := cli.NewLogger(level)
		server := devserver.New(
			devserver.WithLogger(logger),
			devserver.WithStepDelay(stepDelay),
		)

		if seed {
			reg := registry.NewRegistry()
			for _, name := range reg.Names() {
				flow, err := reg.Instantiate(name, name)
				if err != nil {
					continue
				}
				if err := server.Store().Save(cmd.Context(), flow); err != nil {
					logger.Warn("failed to seed template", "template", name, "err", err)
					continue
				}
				fmt.Printf("Seeded flow %s (%s)\n", flow.ID, name)
			}
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: server.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Skein dev server on %s\n", addr)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, cancel := cli.NewSignalContext(cmd.Context())
		defer cancel()

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Printf("Graceful shutdown did not complete: %v\n", err)
				_ = srv.Close()
			}
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8787", "Listen address")
	serveCmd.Flags().Duration("step-delay", 150*time.Millisecond, "Simulated execution time per node")
	serveCmd.Flags().Bool("seed", false, "Seed the store with the built-in templates")
	rootCmd.AddCommand(serveCmd)
}
