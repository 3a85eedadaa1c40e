// Command boxd is the sandbox daemon: it serves the HTTP and gRPC front
// doors over a shared session registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandkasten-run/boxd/internal/api"
	"github.com/sandkasten-run/boxd/internal/config"
	"github.com/sandkasten-run/boxd/internal/reaper"
	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/sandkasten-run/boxd/internal/store"
	"github.com/sandkasten-run/boxd/internal/workspace"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("boxd", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	cfgPath := fs.String("config", "", "path to boxd.yaml")
	logLevelStr := fs.String("log-level", "", "log level: debug, info, warn, error (default from BOXD_LOG or info)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logLevel := parseLogLevel(*logLevelStr, os.Getenv("BOXD_LOG"))
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	path := *cfgPath
	if path == "" {
		for _, p := range []string{"boxd.yaml", "/etc/boxd/boxd.yaml"} {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Error("load config", "error", err)
		return 2
	}
	logger.Debug("config loaded", "config_path", path, "listen", cfg.Listen, "db_path", cfg.DBPath)

	if cfg.APIKey == "" {
		if isListenNonLoopback(cfg.Listen) {
			logger.Error("refusing to start: api_key is empty and listen address is not loopback")
			return 1
		}
		logger.Warn("no API key configured, running in open access mode (dev only)")
	}

	st, err := store.New(cfg.DBPath, 0)
	if err != nil {
		logger.Error("open store", "error", err)
		return 1
	}
	defer st.Close()

	ws, err := workspace.New(cfg.WorkspaceRoot, cfg.SnapshotRoot)
	if err != nil {
		logger.Error("open workspace store", "error", err)
		return 1
	}

	idleTTL := time.Duration(cfg.SessionIdleTTLSeconds) * time.Second
	registry := session.New(ws, st, idleTTL, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	destroyGrace := time.Duration(cfg.DestroyGraceMs) * time.Millisecond
	sweepInterval := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	rpr := reaper.New(registry, sweepInterval, destroyGrace, logger)
	go rpr.Run(ctx)

	activeCounter := func() int { return len(registry.List()) }
	httpSrv := api.NewServer(cfg, registry, activeCounter, logger)
	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      httpSrv.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var grpcSrv *grpcServerHandle
	if cfg.GRPC.Enabled {
		grpcSrv, err = startGRPCServer(cfg, registry, logger)
		if err != nil {
			logger.Error("start grpc server", "error", err)
			return 1
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigCh
		logger.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
		if grpcSrv != nil {
			grpcSrv.server.GracefulStop()
		}
	}()

	logger.Info("listening", "http_addr", cfg.Listen, "grpc_enabled", cfg.GRPC.Enabled, "grpc_addr", cfg.GRPC.Listen)
	fmt.Fprintf(os.Stderr, "\n  boxd ready\n  HTTP: http://%s/v1\n\n", cfg.Listen)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("http server error", "error", err)
		return 1
	}

	return 0
}

func isListenNonLoopback(listen string) bool {
	host, _, err := net.SplitHostPort(listen)
	if err != nil {
		return true
	}
	if host == "" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return true
	}
	return !ip.IsLoopback()
}

func parseLogLevel(flagVal, envVal string) slog.Level {
	v := flagVal
	if v == "" {
		v = envVal
	}
	switch v {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

