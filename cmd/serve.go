package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovetools/fsevents/cli"
	"github.com/grovetools/fsevents/internal/server"
	"github.com/grovetools/fsevents/pkg/watch"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the `serve` command.
func NewServeCmd() *cobra.Command {
	cmd := cli.NewStandardCommand(
		"serve [paths...]",
		"Broadcast filesystem events to websocket subscribers",
	)
	cmd.Long = `Watches the given paths and serves the event feed over HTTP.
Subscribers connect to ws://<addr>/events and receive one JSON object
per change; GET /health reports liveness.`
	cmd.Example = `# Serve events for the current directory
fswatch serve

# Serve a specific tree on a public address
fswatch serve --addr 0.0.0.0:8787 /srv/data`

	cmd.Flags().String("addr", "", "Listen address (host:port)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger := cli.GetLogger(cmd)
		verbose, _ := cmd.Flags().GetBool("verbose")
		handler := cli.NewErrorHandler(verbose)

		cfg, err := cli.LoadConfig(cmd)
		if err != nil {
			return handler.Handle(err)
		}

		paths := args
		if len(paths) == 0 {
			paths = cfg.Paths
		}
		if len(paths) == 0 {
			paths = []string{"."}
		}

		addr := cfg.Serve.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		w, err := watch.New(paths, watch.Options{
			Debounce: cfg.Debounce.Std(),
			Latency:  cfg.Latency.Std(),
			Ignore:   cfg.Ignore,
		})
		if err != nil {
			return handler.Handle(err)
		}

		bus := server.NewBus()
		srv := server.New(bus)

		go func() {
			for ev := range w.Events() {
				bus.Publish(ev)
			}
			bus.Close()
		}()

		stopOnSignal(func() {
			logger.Info("Shutting down...")
			w.Close()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(ctx)
		})

		if err := srv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			return handler.Handle(err)
		}
		return nil
	}

	return cmd
}
