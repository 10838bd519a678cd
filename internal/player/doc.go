// Package player defines the narrow command surface autoplay consumes from a
// host music player: the tracklist (queue), mixer, playback transport,
// library lookup and stored playlists.
//
// Every call is synchronous from the caller's point of view. Adapters over
// asynchronous hosts must block until the host has answered, because each
// restore step depends on the completed output of the previous one.
//
// Implementations:
//   - internal/mpd: Music Player Daemon over its TCP/unix protocol
//   - internal/playlist: local .m3u/.wpl files as a Playlists provider
//   - internal/player/playertest: in-memory double that records calls
package player
