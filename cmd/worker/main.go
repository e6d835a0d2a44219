package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/moviemetric/backend/internal/app"
	"github.com/moviemetric/backend/internal/temporalx"
	"github.com/moviemetric/backend/internal/temporalx/temporalworker"
)

// The worker binary polls the Temporal task queue and executes the batch
// jobs on their nightly schedules. It shares all wiring with the API
// server but never serves HTTP.
func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Clients.Temporal == nil {
		a.Log.Error("TEMPORAL_ADDRESS is required for the worker")
		os.Exit(1)
	}

	a.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Registry, a.Metrics)
	if err != nil {
		a.Log.Error("Worker init failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Start(ctx); err != nil {
		a.Log.Error("Worker start failed", "error", err)
		os.Exit(1)
	}

	if err := temporalx.EnsureSchedules(ctx, a.Clients.Temporal, a.Log); err != nil {
		a.Log.Warn("Schedule setup failed", "error", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	a.Log.Info("Shutting down worker", "signal", sig.String())
}
