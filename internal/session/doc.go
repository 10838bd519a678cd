// Package session drives the restore and save cycle of one player session.
//
// An Orchestrator moves through three phases:
//
//	Idle --OnStart--> Running --OnStop--> Stopped
//
// OnStart loads the saved state, expands and reconciles the queue, applies
// the tracklist flags and mixer settings, and finally the playback state when
// a queue entry could be resolved. While Running, host events named in
// SaveOnEvents arm a debounce.Timer whose callback captures the live player
// into the scratch state and persists it. OnStop cancels a pending save and
// saves once more.
//
// Nothing in this package returns collaborator failures to the host: every
// failure is logged, counted in metrics and the phase completes with what
// could be read or applied.
package session
