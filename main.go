package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"autoplay/internal/database"
	"autoplay/internal/expand"
	"autoplay/internal/filesystem"
	"autoplay/internal/handlers"
	"autoplay/internal/logging"
	"autoplay/internal/metrics"
	"autoplay/internal/middleware"
	"autoplay/internal/mpd"
	"autoplay/internal/player"
	"autoplay/internal/playlist"
	"autoplay/internal/reconcile"
	"autoplay/internal/session"
	"autoplay/internal/startup"
	"autoplay/internal/state"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout    = 30 * time.Second
	collectorInterval  = time.Minute
	playerProbeTimeout = 5 * time.Second
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
	metrics.InitializeMetrics()
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"state":     config.StateDir,
		"playlists": config.Playlists.Dir,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForSignal(cancel)

	// Initialize state store
	storeStart := time.Now()
	store, err := openStore(ctx, config)
	if err != nil {
		startup.LogFatal("Failed to initialize state store: %v", err)
	}
	startup.LogStateInit(config.StateBackend, store.Location(), time.Since(storeStart))

	// Connect to the player
	startup.LogPlayerInit(config.MPD.Addr, config.Playlists.Dir)
	mpdConfig := mpd.Config{Addr: config.MPD.Addr, Password: config.MPD.Password}
	client := mpd.New(mpdConfig, logging.Named("mpd"))
	probeCtx, probeCancel := context.WithTimeout(ctx, playerProbeTimeout)
	if err := client.Ping(probeCtx); err != nil {
		logging.Warn("  Player not reachable yet: %v", err)
	} else {
		startup.LogPlayerConnected()
	}
	probeCancel()

	core := buildCore(client.Core(), config)
	orch := session.New(session.Options{
		Core:         core,
		Store:        store,
		Overrides:    config.Overrides,
		Expander:     expand.New(core.Playlists, logging.Named("expand")),
		Reconciler:   reconcile.New(core.Tracklist, core.Library, reconcile.Options{Strategy: config.Strategy, LookupTracks: config.LookupTracks}, logging.Named("reconcile")),
		SaveOnEvents: config.SaveOnEvents,
		SaveInterval: config.SaveInterval,
		Logger:       logging.Named("session"),
	})

	collector := metrics.NewCollector(orch, collectorInterval)
	collector.Start()

	// Start HTTP server
	var srv *http.Server
	if config.HTTP.Listen != "" {
		opts := handlers.Options{
			Session:       orch,
			Player:        client,
			Overrides:     config.Overrides,
			StateLocation: store.Location(),
		}
		if hl, ok := store.(handlers.HistoryLister); ok {
			opts.History = hl
		}
		router := handlers.New(opts).Router()
		startup.LogHTTPRoutes(router, config.HTTP.LogHealthChecks)
		srv = newServer(config, router)

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("HTTP server error: %v", err)
				cancel()
			}
		}()
	}

	startup.LogServerStarted(startup.ServerConfig{
		Listen:          config.HTTP.Listen,
		StateLocation:   store.Location(),
		StartupDuration: time.Since(startTime),
	})

	// Restore, follow player events and save on stop
	startup.LogSessionStart()
	events := mpd.Watch(ctx, mpdConfig, config.MPD.RetryInterval, logging.Named("mpd-watch"))
	orch.Run(ctx, events)
	startup.LogShutdownStepComplete("Session saved")

	shutdown(srv, collector, client, store)
}

// openStore opens the configured state backend.
func openStore(ctx context.Context, config *startup.Config) (state.Store, error) {
	switch config.StateBackend {
	case startup.BackendSQLite:
		db, err := database.New(ctx, config.StatePath, &database.Options{
			HistoryLimit: config.HistoryLimit,
			Logger:       logging.Named("database"),
		})
		if err != nil {
			return nil, err
		}
		return db, nil
	case startup.BackendFile:
		return state.NewFileStore(config.StatePath), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", config.StateBackend)
	}
}

// buildCore adds local playlists, when configured, to the player's own.
func buildCore(core player.Core, config *startup.Config) player.Core {
	if config.Playlists.Dir == "" {
		return core
	}
	local := playlist.NewProvider(config.Playlists.Dir, config.Playlists.MediaDir, logging.Named("playlist"))
	core.Playlists = player.MultiPlaylists{core.Playlists, local}
	return core
}

func newServer(config *startup.Config, router *mux.Router) *http.Server {
	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.HTTP.LogHealthChecks

	return &http.Server{
		Addr:              config.HTTP.Listen,
		Handler:           middleware.Logger(loggingConfig)(router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func waitForSignal(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())
	startup.LogShutdownStep("Saving session")
	cancel()
}

func shutdown(srv *http.Server, collector *metrics.Collector, client *mpd.Client, store state.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	if srv != nil {
		startup.LogShutdownStep("Shutting down HTTP server")
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("HTTP server stopped")
		}
	}

	startup.LogShutdownStep("Disconnecting from player")
	if err := client.Close(); err != nil {
		logging.Warn("Player disconnect error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Player disconnected")
	}

	if db, ok := store.(*database.Database); ok {
		startup.LogShutdownStep("Closing database")
		if err := db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Database closed")
		}
	}

	startup.LogShutdownComplete()
}
