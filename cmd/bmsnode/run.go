package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmatx/bmsnode/internal/adapter"
	"github.com/salmatx/bmsnode/internal/broker"
	"github.com/salmatx/bmsnode/internal/config"
	"github.com/salmatx/bmsnode/internal/httpapi"
	"github.com/salmatx/bmsnode/internal/kv"
	"github.com/salmatx/bmsnode/internal/logging"
	"github.com/salmatx/bmsnode/internal/node"
)

var runLog = logging.For("run")

func newRunCmd() *cobra.Command {
	var (
		configPath string
		kvPath     string
		httpAddr   string
		useDemo    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the telemetry node (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.Context(), configPath, kvPath, httpAddr, useDemo)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", node.ConfigPath, "path to the JSON configuration file")
	cmd.Flags().StringVar(&kvPath, "kv", "/var/lib/bmsnode/nvs.db", "path to the persistent key-value store")
	cmd.Flags().StringVar(&httpAddr, "http", ":8080", "HTTP listen address")
	cmd.Flags().BoolVar(&useDemo, "demo-adapter", true, "use the synthetic demo adapter instead of real hardware")
	return cmd
}

func runNode(ctx context.Context, configPath, kvPath, httpAddr string, useDemo bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			runLog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	defer signal.Stop(sigCh)

	cfg, err := config.Load(configPath)
	if err != nil {
		runLog.Warn("config load failed, using defaults", "err", err)
	}

	store, err := kv.Open(kvPath)
	if err != nil {
		return fmt.Errorf("open kv store: %w", err)
	}
	defer store.Close()

	var a adapter.Adapter
	if useDemo {
		a = adapter.NewDemoAdapter(cfg.ToLimits(), rand.Uint32(), monotonicTick)
	} else {
		return fmt.Errorf("no non-demo adapter is wired into this build")
	}

	// INIT's body dials the configured broker (internal/node bodyInit) and
	// swaps it in via Core.SetPublisher, falling back to CONFIG on failure;
	// this placeholder is only ever published through if no broker URI is
	// configured at all.
	pub := broker.Publisher(broker.NewRecording())
	core := node.NewCore(cfg, a, pub, store)

	restart := func() {
		runLog.Info("restart requested by config handler, exiting process")
		cancel()
	}
	router := httpapi.NewRouter(core, restart, configPath)

	srv := &http.Server{Addr: httpAddr, Handler: router}
	go func() {
		runLog.Info("http server listening", "addr", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			runLog.Error("http server failed", "err", err)
		}
	}()

	machine := node.NewMachine(core)
	done := make(chan struct{})
	go func() {
		machine.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	<-done
	return nil
}

var bootTime = time.Now()

// monotonicTick returns a coarse monotonic tick for the demo adapter,
// standing in for the hardware tick counter real firmware reads.
func monotonicTick() uint64 {
	return uint64(time.Since(bootTime).Milliseconds())
}
