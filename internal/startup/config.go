package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"autoplay/internal/logging"
	"autoplay/internal/override"
	"autoplay/internal/reconcile"
)

// EnvPrefix prefixes every environment variable read by LoadConfig.
const EnvPrefix = "AUTOPLAY_"

// ConfigFileEnv names the variable holding the optional YAML file path.
const ConfigFileEnv = EnvPrefix + "CONFIG"

// State backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration. Values come from the YAML
// file named by AUTOPLAY_CONFIG, then AUTOPLAY_* environment variables,
// which win over the file.
type Config struct {
	Overrides override.Config `yaml:",inline"`

	SaveOnEvents     []string      `yaml:"save_on_events" env:"SAVE_ON_EVENTS" envSeparator:","`
	SaveInterval     time.Duration `yaml:"save_interval" env:"SAVE_INTERVAL"`
	PositionStrategy string        `yaml:"position_strategy" env:"POSITION_STRATEGY"`
	LookupTracks     bool          `yaml:"lookup_tracks" env:"LOOKUP_TRACKS"`

	StateDir     string `yaml:"state_dir" env:"STATE_DIR"`
	StateBackend string `yaml:"state_backend" env:"STATE_BACKEND"`
	HistoryLimit int    `yaml:"history_limit" env:"HISTORY_LIMIT"`

	MPD       MPDConfig      `yaml:"mpd" envPrefix:"MPD_"`
	HTTP      HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Playlists PlaylistConfig `yaml:"playlists" envPrefix:"PLAYLIST_"`

	// Derived
	StatePath string             `yaml:"-"`
	Strategy  reconcile.Strategy `yaml:"-"`
	File      string             `yaml:"-"`
}

// MPDConfig locates the music player daemon.
type MPDConfig struct {
	Addr          string        `yaml:"addr" env:"ADDR"`
	Password      string        `yaml:"password" env:"PASSWORD"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"RETRY_INTERVAL"`
}

// HTTPConfig configures the status server. An empty Listen disables it.
type HTTPConfig struct {
	Listen          string `yaml:"listen" env:"LISTEN"`
	LogHealthChecks bool   `yaml:"log_health_checks" env:"LOG_HEALTH_CHECKS"`
}

// PlaylistConfig configures local m3u/wpl playlists. An empty Dir disables them.
type PlaylistConfig struct {
	Dir      string `yaml:"dir" env:"DIR"`
	MediaDir string `yaml:"media_dir" env:"MEDIA_DIR"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		SaveInterval:     10 * time.Second,
		PositionStrategy: string(reconcile.StrategyWalk),
		StateDir:         "/var/lib/autoplay",
		StateBackend:     BackendFile,
		MPD: MPDConfig{
			Addr:          "localhost:6600",
			RetryInterval: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Listen:          ":8080",
			LogHealthChecks: false,
		},
	}
}

// ParseConfig builds a Config from defaults, the YAML file at path (skipped
// when path is empty) and the environment. It reads the file but creates
// nothing.
func ParseConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.File = path
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	stateDir, err := filepath.Abs(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory path: %w", err)
	}
	cfg.StateDir = stateDir
	cfg.StatePath = filepath.Join(stateDir, StateFileName(cfg.StateBackend))
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	strategy, err := reconcile.ParseStrategy(c.PositionStrategy)
	if err != nil {
		errs = append(errs, err)
	}
	c.Strategy = strategy

	switch c.StateBackend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("invalid state_backend %q (want %s or %s)", c.StateBackend, BackendFile, BackendSQLite))
	}

	if c.SaveInterval < 0 {
		errs = append(errs, fmt.Errorf("save_interval must not be negative, got %v", c.SaveInterval))
	}
	if c.MPD.Addr == "" {
		errs = append(errs, errors.New("mpd.addr must be set"))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("state_dir must be set"))
	}

	events := c.SaveOnEvents[:0]
	for _, e := range c.SaveOnEvents {
		if e = strings.TrimSpace(e); e != "" {
			events = append(events, e)
		}
	}
	c.SaveOnEvents = events

	return errors.Join(errs...)
}

// StateFileName returns the file name used for backend inside the state directory.
func StateFileName(backend string) string {
	if backend == BackendSQLite {
		return "autoplay.db"
	}
	return "autoplay.state"
}

// LoadConfig prints the banner, reads configuration and prepares the state
// directory.
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	cfg, err := ParseConfig(os.Getenv(ConfigFileEnv))
	if err != nil {
		return nil, err
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	if cfg.File != "" {
		logging.Info("  Config file:         %s", cfg.File)
	}
	logging.Info("  STATE_DIR:           %s", cfg.StateDir)
	logging.Info("  STATE_BACKEND:       %s", cfg.StateBackend)
	logging.Info("  SAVE_ON_EVENTS:      %s", strings.Join(cfg.SaveOnEvents, ","))
	logging.Info("  SAVE_INTERVAL:       %v", cfg.SaveInterval)
	logging.Info("  POSITION_STRATEGY:   %s", cfg.Strategy)
	logging.Info("  LOOKUP_TRACKS:       %v", cfg.LookupTracks)
	logging.Info("  MPD_ADDR:            %s", cfg.MPD.Addr)
	logging.Info("  HTTP_LISTEN:         %s", cfg.HTTP.Listen)
	logging.Info("  PLAYLIST_DIR:        %s", cfg.Playlists.Dir)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logOverrides(cfg.Overrides)

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	logging.Info("  State directory (absolute): %s", cfg.StateDir)
	logging.Info("  State location:             %s", cfg.StatePath)

	if err := ensureDirectory(cfg.StateDir, "state"); err != nil {
		return nil, fmt.Errorf("state directory error: %w", err)
	}
	logging.Debug("  Testing state directory write access...")
	if err := testWriteAccess(cfg.StateDir); err != nil {
		return nil, fmt.Errorf("state directory is not writable: %w", err)
	}
	logging.Info("  [OK] State directory is writable")

	if cfg.Playlists.Dir != "" {
		if err := ensureDirectory(cfg.Playlists.Dir, "playlist"); err != nil {
			logging.Warn("  Playlist directory issue: %v", err)
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Event saves:     %s", enabledString(len(cfg.SaveOnEvents) > 0))
	logging.Info("    Local playlists: %s", enabledString(cfg.Playlists.Dir != ""))
	logging.Info("    HTTP server:     %s", enabledString(cfg.HTTP.Listen != ""))

	return cfg, nil
}

func logOverrides(c override.Config) {
	described := c.Describe()
	keys := make([]string, 0, len(described))
	for k := range described {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logging.Info("  Overrides:")
	for _, k := range keys {
		logging.Info("    %-22s %s", k+":", described[k])
	}
}
