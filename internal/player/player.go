package player

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned by collaborators that cannot perform an operation
// at all (for example a mixer without mute support).
var ErrUnsupported = errors.New("operation not supported by player")

// TLID identifies one entry in the live tracklist. It stays valid while the
// entry exists, regardless of reordering, and distinguishes duplicate URIs.
type TLID int

// Track is the minimal track view the engine needs.
type Track struct {
	URI string `json:"uri"`
}

// TLTrack is a tracklist entry: a track plus its position identifier.
type TLTrack struct {
	TLID  TLID  `json:"tlid"`
	Track Track `json:"track"`
}

// PlaybackState is the player's transport state.
type PlaybackState string

const (
	StateStopped PlaybackState = "stopped"
	StatePlaying PlaybackState = "playing"
	StatePaused  PlaybackState = "paused"
)

// Valid reports whether s is one of the three known states.
func (s PlaybackState) Valid() bool {
	switch s {
	case StateStopped, StatePlaying, StatePaused:
		return true
	}
	return false
}

// ParsePlaybackState validates a state name.
func ParsePlaybackState(s string) (PlaybackState, error) {
	st := PlaybackState(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid playback state %q (want stopped, playing or paused)", s)
	}
	return st, nil
}

// Tracklist is the live queue.
type Tracklist interface {
	Clear(ctx context.Context) error
	Add(ctx context.Context, uris []string) error

	Consume(ctx context.Context) (bool, error)
	SetConsume(ctx context.Context, v bool) error
	Random(ctx context.Context) (bool, error)
	SetRandom(ctx context.Context, v bool) error
	Repeat(ctx context.Context) (bool, error)
	SetRepeat(ctx context.Context, v bool) error
	Single(ctx context.Context) (bool, error)
	SetSingle(ctx context.Context, v bool) error

	Tracks(ctx context.Context) ([]Track, error)
	TLTracks(ctx context.Context) ([]TLTrack, error)
	// Index returns the position of the current entry. ok is false when
	// nothing is current.
	Index(ctx context.Context) (index int, ok bool, err error)
}

// Mixer controls output volume.
type Mixer interface {
	Mute(ctx context.Context) (bool, error)
	SetMute(ctx context.Context, v bool) error
	Volume(ctx context.Context) (int, error)
	SetVolume(ctx context.Context, v int) error
}

// Playback controls the transport.
type Playback interface {
	Stop(ctx context.Context) error
	Play(ctx context.Context, tlid TLID) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, ms int) error
	State(ctx context.Context) (PlaybackState, error)
	TimePosition(ctx context.Context) (int, error)
}

// Library resolves URIs (tracks, directories, albums) into tracks.
type Library interface {
	Lookup(ctx context.Context, uris []string) (map[string][]Track, error)
}

// Playlists exposes stored playlists.
type Playlists interface {
	URISchemes(ctx context.Context) ([]string, error)
	Items(ctx context.Context, uri string) ([]Track, error)
}

// Core bundles the collaborators of one host player.
type Core struct {
	Tracklist Tracklist
	Mixer     Mixer
	Playback  Playback
	Library   Library
	Playlists Playlists
}
