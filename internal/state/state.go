package state

import (
	"autoplay/internal/player"
)

// CurrentVersion is written into every saved document. Documents without a
// version key are the legacy shape and decode the same way.
const CurrentVersion = 1

// SessionState is the persisted snapshot of one player session. Every leaf
// is optional: nil means "unknown", never a default.
type SessionState struct {
	Version   int
	Tracklist Tracklist
	Mixer     Mixer
	Playback  Playback
}

// Tracklist holds queue contents and play-order flags.
type Tracklist struct {
	URIs    []string
	Index   *int
	Consume *bool
	Random  *bool
	Repeat  *bool
	Single  *bool
}

// Mixer holds output settings.
type Mixer struct {
	Mute   *bool
	Volume *int
}

// Playback holds transport settings.
type Playback struct {
	State        *player.PlaybackState
	TimePosition *int
}

// Empty returns the skeleton used when nothing could be loaded.
func Empty() *SessionState {
	return &SessionState{}
}

// IsEmpty reports whether no leaf is known.
func (s *SessionState) IsEmpty() bool {
	t, m, p := s.Tracklist, s.Mixer, s.Playback
	return t.URIs == nil && t.Index == nil && t.Consume == nil && t.Random == nil &&
		t.Repeat == nil && t.Single == nil && m.Mute == nil && m.Volume == nil &&
		p.State == nil && p.TimePosition == nil
}

// Clone returns a deep copy.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := &SessionState{Version: s.Version}
	if s.Tracklist.URIs != nil {
		c.Tracklist.URIs = append(make([]string, 0, len(s.Tracklist.URIs)), s.Tracklist.URIs...)
	}
	c.Tracklist.Index = clonePtr(s.Tracklist.Index)
	c.Tracklist.Consume = clonePtr(s.Tracklist.Consume)
	c.Tracklist.Random = clonePtr(s.Tracklist.Random)
	c.Tracklist.Repeat = clonePtr(s.Tracklist.Repeat)
	c.Tracklist.Single = clonePtr(s.Tracklist.Single)
	c.Mixer.Mute = clonePtr(s.Mixer.Mute)
	c.Mixer.Volume = clonePtr(s.Mixer.Volume)
	c.Playback.State = clonePtr(s.Playback.State)
	c.Playback.TimePosition = clonePtr(s.Playback.TimePosition)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v. It keeps literal state construction short.
func Ptr[T any](v T) *T {
	return &v
}
