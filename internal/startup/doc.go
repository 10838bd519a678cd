// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read by [LoadConfig] from an optional YAML file named by
// AUTOPLAY_CONFIG, then from AUTOPLAY_* environment variables, which take
// precedence over the file:
//
//   - AUTOPLAY_TRACKLIST_URIS, _INDEX, _CONSUME, _RANDOM, _REPEAT, _SINGLE
//   - AUTOPLAY_MIXER_MUTE, AUTOPLAY_MIXER_VOLUME
//   - AUTOPLAY_PLAYBACK_STATE, AUTOPLAY_PLAYBACK_TIME_POSITION
//   - AUTOPLAY_SAVE_ON_EVENTS: Comma separated event names (default: none)
//   - AUTOPLAY_SAVE_INTERVAL: Cool-down before an event-triggered save (default: 10s)
//   - AUTOPLAY_POSITION_STRATEGY: walk or direct (default: walk)
//   - AUTOPLAY_LOOKUP_TRACKS: Resolve URIs through the library before adding (default: false)
//   - AUTOPLAY_STATE_DIR: State directory (default: /var/lib/autoplay)
//   - AUTOPLAY_STATE_BACKEND: file or sqlite (default: file)
//   - AUTOPLAY_HISTORY_LIMIT: Captures kept by the sqlite backend (default: 20)
//   - AUTOPLAY_MPD_ADDR, AUTOPLAY_MPD_PASSWORD: MPD server (default: localhost:6600)
//   - AUTOPLAY_HTTP_LISTEN: Status server address, empty to disable (default: :8080)
//   - AUTOPLAY_PLAYLIST_DIR, AUTOPLAY_PLAYLIST_MEDIA_DIR: Local m3u/wpl playlists
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//
// Every override accepts "auto", meaning the saved session value is used.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
//   - [LogStateInit]: State store backend and location
//   - [LogPlayerInit]: Player connection target
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
