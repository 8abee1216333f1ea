// Package main is the entry point for the Content Collapse idle server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/MRamiBalles/ContentCollapse/internal/content"
	"github.com/MRamiBalles/ContentCollapse/internal/domain/save"
	"github.com/MRamiBalles/ContentCollapse/internal/engine"
	"github.com/MRamiBalles/ContentCollapse/internal/events"
	"github.com/MRamiBalles/ContentCollapse/internal/infra/storage"
	"github.com/MRamiBalles/ContentCollapse/internal/network"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/clock"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/config"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/logger"
	"github.com/MRamiBalles/ContentCollapse/internal/platform/metrics"
)

const shutdownTimeout = 5 * time.Second

func main() {
	profile := flag.String("profile", "default", "Config preset: default or dev")
	configPath := flag.String("config", "", "Optional YAML config file")
	inMemory := flag.Bool("memory", false, "Keep saves and events in memory only")
	flag.Parse()

	appLogger := logger.NewLogger()
	appLogger.Info("Initializing Content Collapse idle server...")

	if err := run(appLogger, *profile, *configPath, *inMemory); err != nil {
		appLogger.Error("Server stopped with error: " + err.Error())
		os.Exit(1)
	}
	appLogger.Info("Server stopped cleanly.")
}

func run(appLogger *logger.Logger, profile, configPath string, inMemory bool) error {
	base, err := config.ForProfile(profile)
	if err != nil {
		return err
	}
	cfg, err := config.Load(base, configPath)
	if err != nil {
		return err
	}

	catalog := content.Default()
	if cfg.CatalogPath != "" {
		appLogger.Info("Loading catalog from " + cfg.CatalogPath)
		if catalog, err = content.Load(cfg.CatalogPath); err != nil {
			return err
		}
	}

	clk := clock.Real{}
	collector := metrics.NewCollector()

	var (
		db       *sqlx.DB
		gateway  save.Gateway
		eventLog *events.EventLog
		recon    *storage.Reconstructor
	)
	if inMemory {
		appLogger.Info("Running without a database; progress is lost on exit.")
		gateway = storage.NewMemoryGateway(clk)
		eventLog = events.NewEventLog(nil)
	} else {
		appLogger.Infof("Initializing SQLite database '%s'...", cfg.DBPath)
		db, err = storage.InitSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		eventRepo := storage.NewSQLiteEventRepository(db)
		eventLog = events.NewEventLog(storage.NewEventPersister(eventRepo, cfg.SaveSlot))
		eventLog.OnPersistError(func(err error) {
			appLogger.Warnf("Audit event not persisted: %v", err)
		})
		gateway = storage.NewSQLiteSaveGateway(db, cfg.SaveSlot, clk, appLogger)
		recon = storage.NewReconstructor(eventRepo)
	}

	appLogger.Info("Bootstrapping Engine...")
	gameEngine := engine.NewEngine(engine.Options{
		Catalog:  catalog,
		Config:   cfg,
		Clock:    clk,
		Gateway:  gateway,
		EventLog: eventLog,
		Metrics:  collector,
		Logger:   appLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancelLoad := context.WithTimeout(ctx, shutdownTimeout)
	gameEngine.LoadSave(loadCtx)
	cancelLoad()

	hub := network.NewHub(cfg, collector, appLogger)
	hub.Attach(gameEngine)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWs(hub, gameEngine, cfg.MinActionInterval, w, r)
	})
	network.NewAPI(gameEngine, appLogger).RegisterRoutes(mux)
	network.NewHistoryHandler(eventLog, recon, cfg.SaveSlot, appLogger).RegisterRoutes(mux)
	mux.HandleFunc("GET /metrics", collector.Handler())
	mux.HandleFunc("GET /metrics/prom", collector.PrometheusHandler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		appLogger.Infof("HTTP API & WS Server listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	gameEngine.Start(gctx)
	appLogger.Info("Server running. Press Ctrl+C to exit.")

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		gameEngine.Stop()
		if gameEngine.Flush(shutdownCtx) {
			appLogger.Info("Final save written.")
		}
		eventLog.Wait()
		return err
	})

	return g.Wait()
}
