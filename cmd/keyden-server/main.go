package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/keydenlabs/keyden/internal/core/service"
	"github.com/keydenlabs/keyden/internal/infra/buildinfo"
	"github.com/keydenlabs/keyden/internal/infra/confloader"
	"github.com/keydenlabs/keyden/internal/infra/shutdown"
	"github.com/keydenlabs/keyden/internal/server/config"
	"github.com/keydenlabs/keyden/internal/server/httpserver"
	"github.com/keydenlabs/keyden/internal/server/httpserver/handler"
	"github.com/keydenlabs/keyden/internal/server/textserver"
	"github.com/keydenlabs/keyden/internal/storage"
	"github.com/keydenlabs/keyden/internal/telemetry/logger"
	"github.com/keydenlabs/keyden/internal/telemetry/metric"
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
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("keyden-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting keyden-server",
		"version", buildinfo.Version,
		"commit", buildinfo.ShortCommit(),
		"backend", cfg.Storage.Backend,
		"config", *configFile)

	promRegistry := metric.NewRegistry()
	promRegistry.MustRegister(metric.NewBuildInfo(buildinfo.Version, buildinfo.Commit))

	storageEngine, err := initStorage(cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	storageEngine.RegisterMetrics(promRegistry)

	ctx := context.Background()
	if err := storageEngine.Recover(ctx); err != nil {
		_ = storageEngine.Close()
		return fmt.Errorf("storage recovery: %w", err)
	}

	dispatcher := service.NewDispatcher(service.NewDatabaseService(storageEngine.Registry()))

	serverMetrics := metric.NewServerMetrics()
	serverMetrics.Register(promRegistry)

	textServer := textserver.New(&textserver.Config{
		Listen:       cfg.Server.Listen,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
	}, dispatcher, serverMetrics, log)

	// Hooks run in reverse registration order, so teardown is config
	// watcher, text server drain, admin server, storage engine.
	sd := shutdown.NewHandler(cfg.Server.ShutdownTimeout, log)
	sd.OnShutdown("storage engine", func(context.Context) error {
		return storageEngine.Close()
	})

	var adminHandler *handler.Handler
	if cfg.Admin.Listen != "" {
		adminHandler = handler.New(storageEngine, promRegistry)
		adminServer := httpserver.New(&httpserver.Config{
			Listen:       cfg.Admin.Listen,
			ReadTimeout:  cfg.Admin.ReadTimeout,
			WriteTimeout: cfg.Admin.WriteTimeout,
		}, httpserver.NewRouter(adminHandler, log), log)

		if err := adminServer.Start(ctx); err != nil {
			_ = storageEngine.Close()
			return fmt.Errorf("start admin server: %w", err)
		}
		sd.OnShutdown("admin server", adminServer.Shutdown)

		// An admin server that dies after boot takes the process down
		// with it instead of leaving the instance half-observable.
		go func() {
			if err := <-adminServer.Err(); err != nil {
				sd.Trigger()
			}
		}()
	}

	if err := textServer.Start(ctx); err != nil {
		sd.Trigger()
		_ = sd.Wait()
		return fmt.Errorf("start text server: %w", err)
	}
	sd.OnShutdown("text server", textServer.Shutdown)

	if adminHandler != nil {
		adminHandler.MarkReady()
	}

	if watcher := startConfigWatcher(*configFile, cfg, storageEngine, log); watcher != nil {
		sd.OnShutdown("config watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}

	log.Info("server started",
		"listen", cfg.Server.Listen,
		"admin", cfg.Admin.Listen)

	if err := sd.Wait(); err != nil {
		log.Error("shutdown finished with errors", "error", err)
		return err
	}

	log.Info("server stopped")
	return nil
}

// loadConfig builds the effective configuration from defaults, the
// optional config file and KEYDEN_-prefixed environment variables.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (*slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

func initStorage(cfg *config.ServerConfig, log *slog.Logger) (*storage.Engine, error) {
	storageCfg := storage.DefaultConfig(".")
	storageCfg.Backend = cfg.Storage.Backend
	storageCfg.SweepInterval = cfg.Storage.SweepInterval
	storageCfg.SnapshotInterval = cfg.Storage.Snapshot.Interval
	storageCfg.Snapshot.Dir = cfg.Storage.Snapshot.Dir
	storageCfg.Snapshot.RetentionCount = cfg.Storage.Snapshot.Retain
	storageCfg.Badger.Dir = cfg.Storage.Badger.Dir
	storageCfg.Logger = log

	return storage.New(storageCfg)
}

// startConfigWatcher arranges for config file changes to be re-read
// and the reloadable keys applied in place. Returns nil when no config
// file is in use or the watcher cannot be set up; the server runs fine
// without it.
func startConfigWatcher(configFile string, boot *config.ServerConfig, eng *storage.Engine, log *slog.Logger) *confloader.Watcher {
	if configFile == "" {
		return nil
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher unavailable", "error", err)
		return nil
	}
	if err := watcher.Watch(configFile); err != nil {
		log.Warn("config watcher unavailable", "error", err)
		_ = watcher.Stop()
		return nil
	}

	// Callbacks fire from the watcher goroutine one at a time, so
	// current needs no locking.
	current := boot
	watcher.OnChange(func(path string) {
		fresh, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected, keeping current settings", "error", err)
			return
		}

		if fresh.Log.Level != current.Log.Level {
			logger.SetLevel(fresh.Log.Level)
			log.Info("log level updated", "level", fresh.Log.Level)
		}
		if fresh.Storage.SweepInterval != current.Storage.SweepInterval {
			eng.SetSweepInterval(fresh.Storage.SweepInterval)
			log.Info("sweep interval updated", "interval", fresh.Storage.SweepInterval.String())
		}

		for _, section := range restartOnlySections(current, fresh) {
			log.Warn("config change needs a restart to take effect", "section", section)
		}

		current = fresh
	})

	watcher.StartAsync()
	return watcher
}

// restartOnlySections reports which config sections changed in ways
// the running server cannot apply.
func restartOnlySections(old, fresh *config.ServerConfig) []string {
	var sections []string
	if old.Server != fresh.Server {
		sections = append(sections, "server")
	}
	if old.Admin != fresh.Admin {
		sections = append(sections, "admin")
	}
	if old.Storage.Backend != fresh.Storage.Backend ||
		old.Storage.Snapshot != fresh.Storage.Snapshot ||
		old.Storage.Badger != fresh.Storage.Badger {
		sections = append(sections, "storage")
	}
	if old.Log.Format != fresh.Log.Format {
		sections = append(sections, "log.format")
	}
	return sections
}
