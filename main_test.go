package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"autoplay/internal/database"
	"autoplay/internal/player"
	"autoplay/internal/player/playertest"
	"autoplay/internal/startup"
	"autoplay/internal/state"

	"github.com/gorilla/mux"
)

func testConfig(t *testing.T, backend string) *startup.Config {
	t.Helper()
	cfg := startup.DefaultConfig()
	cfg.StateDir = t.TempDir()
	cfg.StateBackend = backend
	cfg.StatePath = filepath.Join(cfg.StateDir, startup.StateFileName(backend))
	return &cfg
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		cfg := testConfig(t, startup.BackendFile)
		store, err := openStore(ctx, cfg)
		if err != nil {
			t.Fatalf("openStore() error = %v", err)
		}
		if _, ok := store.(*state.FileStore); !ok {
			t.Errorf("store = %T, want *state.FileStore", store)
		}
		if store.Location() != cfg.StatePath {
			t.Errorf("Location() = %q, want %q", store.Location(), cfg.StatePath)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t, startup.BackendSQLite)
		store, err := openStore(ctx, cfg)
		if err != nil {
			t.Fatalf("openStore() error = %v", err)
		}
		db, ok := store.(*database.Database)
		if !ok {
			t.Fatalf("store = %T, want *database.Database", store)
		}
		defer db.Close()
		if store.Location() != "sqlite:"+cfg.StatePath {
			t.Errorf("Location() = %q", store.Location())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t, "etcd")
		if _, err := openStore(ctx, cfg); err == nil {
			t.Error("openStore() error = nil")
		}
	})
}

func TestBuildCore(t *testing.T) {
	fake := playertest.New()
	base := fake.Core()

	cfg := testConfig(t, startup.BackendFile)
	if got := buildCore(base, cfg); got.Playlists != base.Playlists {
		t.Error("buildCore() replaced playlists without a playlist dir")
	}

	cfg.Playlists.Dir = t.TempDir()
	got := buildCore(base, cfg)
	multi, ok := got.Playlists.(player.MultiPlaylists)
	if !ok || len(multi) != 2 {
		t.Fatalf("Playlists = %T %v, want two providers", got.Playlists, got.Playlists)
	}
	if got.Tracklist != base.Tracklist || got.Mixer != base.Mixer {
		t.Error("buildCore() changed other collaborators")
	}
}

func TestNewServer(t *testing.T) {
	cfg := testConfig(t, startup.BackendFile)
	cfg.HTTP.Listen = "127.0.0.1:0"

	router := mux.NewRouter()
	router.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newServer(cfg, router)

	if srv.Addr != cfg.HTTP.Listen {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != 15*time.Second || srv.IdleTimeout != 60*time.Second {
		t.Errorf("timeouts = %v/%v", srv.ReadTimeout, srv.IdleTimeout)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("GET /ping = %d", rr.Code)
	}
}
