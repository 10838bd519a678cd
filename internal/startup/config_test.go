package startup

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"autoplay/internal/player"
	"autoplay/internal/reconcile"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoplay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig("")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.SaveInterval != 10*time.Second {
		t.Errorf("SaveInterval = %v", cfg.SaveInterval)
	}
	if cfg.Strategy != reconcile.StrategyWalk {
		t.Errorf("Strategy = %v", cfg.Strategy)
	}
	if cfg.StateBackend != BackendFile || cfg.StatePath != filepath.Join(cfg.StateDir, "autoplay.state") {
		t.Errorf("state = %s at %s", cfg.StateBackend, cfg.StatePath)
	}
	if len(cfg.SaveOnEvents) != 0 {
		t.Errorf("SaveOnEvents = %v, want none", cfg.SaveOnEvents)
	}
	for k, v := range cfg.Overrides.Describe() {
		if v != "auto" {
			t.Errorf("override %s = %s, want auto", k, v)
		}
	}
}

func TestParseConfigFile(t *testing.T) {
	stateDir := t.TempDir()
	path := writeConfig(t, `
tracklist:
  uris: [m3u:evening.m3u, "file:///music/a.mp3"]
  index: 2
  random: auto
mixer:
  volume: 35
playback:
  state: paused
save_on_events: [tracklist_changed, volume_changed]
save_interval: 3s
position_strategy: direct
state_backend: sqlite
state_dir: `+stateDir+`
mpd:
  addr: /run/mpd/socket
playlists:
  dir: /srv/playlists
`)

	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if uris, ok := cfg.Overrides.Tracklist.URIs.Get(); !ok || !reflect.DeepEqual(uris, []string{"m3u:evening.m3u", "file:///music/a.mp3"}) {
		t.Errorf("uris = %v, %v", uris, ok)
	}
	if idx, ok := cfg.Overrides.Tracklist.Index.Get(); !ok || idx != 2 {
		t.Errorf("index = %v, %v", idx, ok)
	}
	if cfg.Overrides.Tracklist.Random.IsConfigured() {
		t.Error("random should inherit")
	}
	if vol, ok := cfg.Overrides.Mixer.Volume.Get(); !ok || vol != 35 {
		t.Errorf("volume = %v, %v", vol, ok)
	}
	if st, ok := cfg.Overrides.Playback.State.Get(); !ok || st != player.StatePaused {
		t.Errorf("state = %v, %v", st, ok)
	}
	if !reflect.DeepEqual(cfg.SaveOnEvents, []string{"tracklist_changed", "volume_changed"}) {
		t.Errorf("SaveOnEvents = %v", cfg.SaveOnEvents)
	}
	if cfg.SaveInterval != 3*time.Second || cfg.Strategy != reconcile.StrategyDirect {
		t.Errorf("SaveInterval = %v, Strategy = %v", cfg.SaveInterval, cfg.Strategy)
	}
	if cfg.StatePath != filepath.Join(stateDir, "autoplay.db") {
		t.Errorf("StatePath = %s", cfg.StatePath)
	}
	if cfg.MPD.Addr != "/run/mpd/socket" || cfg.MPD.RetryInterval != 5*time.Second {
		t.Errorf("MPD = %+v", cfg.MPD)
	}
	if cfg.Playlists.Dir != "/srv/playlists" || cfg.File != path {
		t.Errorf("Playlists = %+v, File = %s", cfg.Playlists, cfg.File)
	}
}

func TestParseConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
mixer:
  volume: 35
  mute: true
save_interval: 3s
`)
	t.Setenv("AUTOPLAY_MIXER_VOLUME", "auto")
	t.Setenv("AUTOPLAY_TRACKLIST_URIS", "a.mp3, b.mp3")
	t.Setenv("AUTOPLAY_SAVE_ON_EVENTS", "options_changed, ,volume_changed")
	t.Setenv("AUTOPLAY_SAVE_INTERVAL", "1m")
	t.Setenv("AUTOPLAY_MPD_ADDR", "mpd.local:6600")

	cfg, err := ParseConfig(path)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Overrides.Mixer.Volume.IsConfigured() {
		t.Error("volume should be auto from env")
	}
	if mute, ok := cfg.Overrides.Mixer.Mute.Get(); !ok || !mute {
		t.Errorf("mute from file = %v, %v", mute, ok)
	}
	if uris, _ := cfg.Overrides.Tracklist.URIs.Get(); !reflect.DeepEqual(uris, []string{"a.mp3", "b.mp3"}) {
		t.Errorf("uris = %v", uris)
	}
	if !reflect.DeepEqual(cfg.SaveOnEvents, []string{"options_changed", "volume_changed"}) {
		t.Errorf("SaveOnEvents = %v", cfg.SaveOnEvents)
	}
	if cfg.SaveInterval != time.Minute || cfg.MPD.Addr != "mpd.local:6600" {
		t.Errorf("SaveInterval = %v, MPD.Addr = %s", cfg.SaveInterval, cfg.MPD.Addr)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad volume", yaml: "mixer:\n  volume: 150\n", wantErr: "150"},
		{name: "bad state", yaml: "playback:\n  state: rewinding\n", wantErr: "rewinding"},
		{name: "bad backend", yaml: "state_backend: redis\n", wantErr: "state_backend"},
		{name: "bad strategy", yaml: "position_strategy: guess\n", wantErr: "guess"},
		{name: "negative interval", yaml: "save_interval: -1s\n", wantErr: "save_interval"},
		{name: "not yaml", yaml: "mixer: [\n", wantErr: "parse config file"},
		{name: "bad env", env: map[string]string{"AUTOPLAY_TRACKLIST_CONSUME": "maybe"}, wantErr: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}
			_, err := ParseConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseConfig() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	if _, err := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("ParseConfig() with missing file error = nil")
	}
}

func TestStateFileName(t *testing.T) {
	if StateFileName(BackendSQLite) != "autoplay.db" || StateFileName(BackendFile) != "autoplay.state" {
		t.Error("StateFileName() mismatch")
	}
}
