package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/infra/buildinfo"
	"github.com/yndnr/tokstore/internal/infra/confloader"
	"github.com/yndnr/tokstore/internal/infra/shutdown"
	"github.com/yndnr/tokstore/internal/server/config"
	"github.com/yndnr/tokstore/internal/server/httpserver"
	"github.com/yndnr/tokstore/internal/server/localserver"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/storage/adapter"
	"github.com/yndnr/tokstore/internal/storage/file"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/internal/telemetry/metric"
	"github.com/yndnr/tokstore/pkg/secret"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tokstore-server", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		configFile  = fs.String("config", "", "Path to configuration file")
		showVersion = fs.Bool("version", false, "Show version information")
		checkOnly   = fs.Bool("check", false, "Validate configuration and exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	info := buildinfo.Get()
	if *showVersion {
		fmt.Fprintln(stdout, "tokstore-server", info.String())
		return nil
	}

	// 1. Configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *checkOnly {
		fmt.Fprintln(stdout, "configuration ok")
		return nil
	}

	// 2. Logger
	log, err := logger.New(cfg.LoggerConfig(stdout))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	log.Info("starting tokstore-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	// 3. Backend, hasher, token store
	var reg *metric.Registry
	if cfg.Metrics.Enabled {
		reg = metric.NewRegistry()
		reg.RegisterBuildInfo(info)
	}

	a, backend, err := adapter.Open(cfg.StorageConfig(), log)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	if fileStore, ok := backend.(*file.Store); ok && reg != nil {
		if err := fileStore.RegisterMetrics(reg.Registerer()); err != nil {
			log.Warn("file backend metrics not registered", "error", err)
		}
	}
	if a == storage.AdapterNone {
		log.Warn("no session backend configured, token requests are answered without effect")
	}

	hasher, err := secret.New(cfg.HasherConfig())
	if err != nil {
		quitBackend(backend, log)
		return fmt.Errorf("init hasher: %w", err)
	}

	opts := []service.Option{service.WithLogger(log)}
	if reg != nil {
		backend = metric.InstrumentBackend(backend, a, reg)
		opts = append(opts, service.WithObserver(reg))
	}
	store := service.NewTokenStore(backend, hasher, opts...)

	// 4. HTTP server
	trusted, err := httpserver.ParseTrustedProxies(cfg.Server.HTTP.TrustedProxies)
	if err != nil {
		quitBackend(backend, log)
		return fmt.Errorf("trusted proxies: %w", err)
	}
	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Store:            store,
		Adapter:          string(a),
		Metrics:          reg,
		Logger:           log,
		ConfirmRateLimit: cfg.Server.HTTP.ConfirmRateLimit,
		ConfirmBurst:     cfg.Server.HTTP.ConfirmBurst,
		TrustedProxies:   trusted,
	})
	httpServer := httpserver.New(httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}, router)

	var local *localserver.Server
	if cfg.Server.Local.Socket != "" {
		local = localserver.New(cfg.Server.Local.Socket, router)
		if err := local.Listen(); err != nil {
			quitBackend(backend, log)
			return fmt.Errorf("local socket: %w", err)
		}
	}

	// 5. Config watcher
	var watcher *confloader.Watcher
	if *configFile != "" {
		watcher, err = watchConfig(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		}
	}

	// 6. Graceful shutdown, hooks run in reverse order
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, shutdown.WithLogger(log))
	shutdownHandler.OnShutdown("token store", func(ctx context.Context) error {
		rel, err := store.Quit(ctx)
		log.Info("token store released", "release", rel.String())
		return err
	})
	if watcher != nil {
		shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}
	if local != nil {
		shutdownHandler.OnShutdown("local server", local.Shutdown)
	}
	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

	serveErr := make(chan error, 2)
	if local != nil {
		go func() {
			log.Info("local socket listening", "path", local.Path())
			if err := local.ListenAndServe(); err != nil {
				serveErr <- fmt.Errorf("local server: %w", err)
			}
		}()
	}
	go func() {
		log.Info("HTTP server listening", "addr", httpServer.Addr())
		if err := httpServer.ListenAndServe(); err != nil {
			serveErr <- fmt.Errorf("http server: %w", err)
			return
		}
		serveErr <- nil
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	waitErr := make(chan error, 1)
	go func() { waitErr <- shutdownHandler.Wait(waitCtx) }()

	select {
	case err := <-serveErr:
		cancel()
		if shutdownErr := <-waitErr; shutdownErr != nil {
			log.Error("shutdown error", "error", shutdownErr)
		}
		return err
	case err := <-waitErr:
		if err != nil {
			log.Error("shutdown error", "error", err)
			return err
		}
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads and verifies configuration from file and environment.
func loadConfig(path string) (*config.ServerConfig, error) {
	cfg, err := config.Load(path, nil)
	if err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watchConfig reloads the log level when the config file changes. Other
// settings need a restart.
func watchConfig(path string, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(changed string) {
		cfg, err := loadConfig(changed)
		if err != nil {
			log.Warn("config reload rejected", "path", changed, "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("log level not applied", "level", cfg.Log.Level, "error", err)
			return
		}
		log.Info("config reloaded", "path", changed, "log_level", logger.GetLevel())
	})
	w.StartAsync()
	return w, nil
}

func quitBackend(b storage.Backend, log *slog.Logger) {
	if b == nil {
		return
	}
	if _, err := b.Quit(context.Background()); err != nil {
		log.Warn("backend release failed", "error", err)
	}
}
