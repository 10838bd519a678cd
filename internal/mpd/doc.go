// Package mpd connects the session engine to a Music Player Daemon.
//
// Client implements the tracklist, mixer, playback, library and stored
// playlist collaborators over the MPD protocol. Watch turns MPD idle
// notifications into the event names used by save_on_events:
//
//	playlist -> tracklist_changed
//	player   -> playback_state_changed
//	mixer    -> volume_changed
//	options  -> options_changed
package mpd
