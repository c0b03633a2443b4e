// Package main provides the entry point for respcache-server.
//
// respcache-server is a small in-memory key-value cache speaking a
// subset of the Redis RESP protocol (PING, ECHO, SET, GET) with
// per-key millisecond expiry.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gohermgo/respcache/internal/infra/buildinfo"
	"github.com/gohermgo/respcache/internal/infra/confloader"
	"github.com/gohermgo/respcache/internal/infra/shutdown"
	"github.com/gohermgo/respcache/internal/server/config"
	"github.com/gohermgo/respcache/internal/server/respserver"
	"github.com/gohermgo/respcache/internal/store"
	"github.com/gohermgo/respcache/internal/telemetry/logger"
	"github.com/gohermgo/respcache/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		port        = flag.String("port", "", "Listen port, overriding configuration")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("respcache-server %s\n", buildinfo.String())
		return nil
	}

	// A local .env supplies environment overrides during development;
	// absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile, *port)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting respcache-server",
		"version", buildinfo.Get().Version,
		"commit", buildinfo.Get().Commit,
		"config", *configFile)

	st := store.New(cfg.Store.Shards)

	var metrics *metric.Registry
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		metrics = metric.NewRegistry(registry, func() float64 {
			return float64(st.Len())
		})
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metric.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics endpoint error", "error", err)
			}
		}()
	}

	srv := respserver.New(&respserver.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
	}, st, metrics, logger.Slog(log))

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	watcher, err := watchConfig(*configFile, log)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	// Hooks run in reverse order of registration.
	if watcher != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			return watcher.Stop()
		})
	}
	if metricsServer != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics endpoint")
			return metricsServer.Shutdown(ctx)
		})
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down resp server")
		return srv.Shutdown(ctx)
	})

	log.Info("server started", "addr", cfg.Server.Addr)
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file, environment, and flag
// overrides, then validates it.
func loadConfig(configFile, port string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// The port flag wins over every other source.
	if port != "" {
		host, _, err := net.SplitHostPort(cfg.Server.Addr)
		if err != nil {
			return nil, fmt.Errorf("invalid server.addr %q: %w", cfg.Server.Addr, err)
		}
		if err := loader.LoadMap(map[string]any{
			"server.addr": net.JoinHostPort(host, port),
		}); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// watchConfig re-applies the log level when the config file changes.
// Returns nil when no config file is in use.
func watchConfig(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	if configFile == "" {
		return nil, nil
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg := config.Default()
		if err := confloader.NewLoader(confloader.WithConfigFile(configFile)).Load(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
