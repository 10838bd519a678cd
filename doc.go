// Package main provides the entry point for the autoplay daemon.
//
// Autoplay restores a music player's session when it starts and saves it
// again after configured player events and on shutdown. The player is an MPD
// server; the session covers the queue, the current track and position, the
// playback options and the mixer.
//
// # Application Lifecycle
//
//  1. Configuration Loading: YAML file and AUTOPLAY_* environment variables
//  2. State Store: a JSON file or a SQLite database with capture history
//  3. Player Connection: MPD client plus optional local m3u/wpl playlists
//  4. HTTP Server (optional): health probes, session API and /metrics
//  5. Session Restore: the saved session is replayed onto the player
//  6. Event Loop: MPD idle events schedule debounced saves
//  7. Graceful Shutdown: SIGINT/SIGTERM save the session one last time,
//     then the HTTP server, player connection and database are closed
//
// # Related Packages
//
//   - [autoplay/internal/session]: Restore and capture orchestration
//   - [autoplay/internal/state]: Session document and stores
//   - [autoplay/internal/database]: SQLite store with history
//   - [autoplay/internal/mpd]: MPD adapter and event watcher
//   - [autoplay/internal/handlers]: HTTP status API
//   - [autoplay/internal/startup]: Configuration and startup logging
package main
