// Package playertest provides an in-memory host player that records every
// mutating command it receives.
package playertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"autoplay/internal/player"
)

// ErrRejected is returned by setters listed in Player.Fail.
var ErrRejected = errors.New("rejected by fake player")

// Player implements every collaborator interface of package player.
type Player struct {
	mu sync.Mutex

	calls []string
	reads int

	nextID  player.TLID
	entries []player.TLTrack
	current int // index into entries, -1 when nothing is current

	consume, random, repeat, single bool
	mute                            bool
	volume                          int
	state                           player.PlaybackState
	position                        int

	// Refuse lists URIs the backend silently drops on Add and cannot look up.
	Refuse map[string]bool
	// Fail lists command names ("set_volume", "seek", ...) that return ErrRejected.
	Fail map[string]bool
	// ReadErr lists read operations ("get_tl_tracks", "get_volume", ...) that fail.
	ReadErr map[string]bool
	// LookupResult overrides Library.Lookup per URI when set.
	LookupResult map[string][]player.Track
	// Schemes are the playlist URI schemes reported by Playlists.
	Schemes []string
	// PlaylistItems maps playlist URI to its contents.
	PlaylistItems map[string][]string
}

// New creates an empty, stopped player with volume 100.
func New() *Player {
	return &Player{
		nextID:        1,
		current:       -1,
		volume:        100,
		state:         player.StateStopped,
		Refuse:        map[string]bool{},
		Fail:          map[string]bool{},
		ReadErr:       map[string]bool{},
		PlaylistItems: map[string][]string{},
	}
}

// Core returns the player wired as every collaborator.
func (p *Player) Core() player.Core {
	return player.Core{
		Tracklist: p,
		Mixer:     mixer{p},
		Playback:  playback{p},
		Library:   p,
		Playlists: playlists{p},
	}
}

// Calls returns the mutating commands received so far, e.g. "set_volume(50)".
func (p *Player) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// Reads returns how many read-only calls were made.
func (p *Player) Reads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reads
}

// ResetCalls forgets recorded calls and reads.
func (p *Player) ResetCalls() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.reads = 0
}

func (p *Player) command(name string, arg interface{}) error {
	p.calls = append(p.calls, fmt.Sprintf("%s(%v)", name, arg))
	if p.Fail[name] {
		return fmt.Errorf("%s: %w", name, ErrRejected)
	}
	return nil
}

func (p *Player) read(name string) error {
	p.reads++
	if p.ReadErr[name] {
		return fmt.Errorf("%s: %w", name, ErrRejected)
	}
	return nil
}

// Seed replaces the queue with uris, bypassing call recording. Used to set up
// capture tests.
func (p *Player) Seed(uris []string, current int) []player.TLTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
	for _, u := range uris {
		p.entries = append(p.entries, player.TLTrack{TLID: p.nextID, Track: player.Track{URI: u}})
		p.nextID++
	}
	p.current = current
	out := make([]player.TLTrack, len(p.entries))
	copy(out, p.entries)
	return out
}

// SetLive sets flag, mixer and playback values without recording calls.
func (p *Player) SetLive(consume, random, repeat, single, mute bool, volume int, state player.PlaybackState, position int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consume, p.random, p.repeat, p.single = consume, random, repeat, single
	p.mute, p.volume = mute, volume
	p.state, p.position = state, position
}

// --- Tracklist ---

func (p *Player) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.command("clear", ""); err != nil {
		return err
	}
	p.entries = nil
	p.current = -1
	return nil
}

func (p *Player) Add(_ context.Context, uris []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.command("add", "["+strings.Join(uris, " ")+"]"); err != nil {
		return err
	}
	for _, u := range uris {
		if p.Refuse[u] {
			continue
		}
		p.entries = append(p.entries, player.TLTrack{TLID: p.nextID, Track: player.Track{URI: u}})
		p.nextID++
	}
	return nil
}

func (p *Player) flag(name string, v *bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.read("get_" + name); err != nil {
		return false, err
	}
	return *v, nil
}

func (p *Player) setFlag(name string, dst *bool, v bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.command("set_"+name, v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func (p *Player) Consume(context.Context) (bool, error) { return p.flag("consume", &p.consume) }
func (p *Player) Random(context.Context) (bool, error)  { return p.flag("random", &p.random) }
func (p *Player) Repeat(context.Context) (bool, error)  { return p.flag("repeat", &p.repeat) }
func (p *Player) Single(context.Context) (bool, error)  { return p.flag("single", &p.single) }

func (p *Player) SetConsume(_ context.Context, v bool) error {
	return p.setFlag("consume", &p.consume, v)
}
func (p *Player) SetRandom(_ context.Context, v bool) error { return p.setFlag("random", &p.random, v) }
func (p *Player) SetRepeat(_ context.Context, v bool) error { return p.setFlag("repeat", &p.repeat, v) }
func (p *Player) SetSingle(_ context.Context, v bool) error { return p.setFlag("single", &p.single, v) }

func (p *Player) Tracks(context.Context) ([]player.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.read("get_tracks"); err != nil {
		return nil, err
	}
	out := make([]player.Track, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.Track)
	}
	return out, nil
}

func (p *Player) TLTracks(context.Context) ([]player.TLTrack, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.read("get_tl_tracks"); err != nil {
		return nil, err
	}
	out := make([]player.TLTrack, len(p.entries))
	copy(out, p.entries)
	return out, nil
}

func (p *Player) Index(context.Context) (int, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.read("index"); err != nil {
		return 0, false, err
	}
	if p.current < 0 || p.current >= len(p.entries) {
		return 0, false, nil
	}
	return p.current, true, nil
}

// --- Library ---

func (p *Player) Lookup(_ context.Context, uris []string) (map[string][]player.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.read("lookup"); err != nil {
		return nil, err
	}
	out := make(map[string][]player.Track, len(uris))
	for _, u := range uris {
		if tracks, ok := p.LookupResult[u]; ok {
			out[u] = tracks
			continue
		}
		if p.Refuse[u] {
			out[u] = nil
			continue
		}
		out[u] = []player.Track{{URI: u}}
	}
	return out, nil
}

// --- Mixer ---

type mixer struct{ p *Player }

func (m mixer) Mute(context.Context) (bool, error) { return m.p.flag("mute", &m.p.mute) }
func (m mixer) SetMute(_ context.Context, v bool) error {
	return m.p.setFlag("mute", &m.p.mute, v)
}

func (m mixer) Volume(context.Context) (int, error) {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	if err := m.p.read("get_volume"); err != nil {
		return 0, err
	}
	return m.p.volume, nil
}

func (m mixer) SetVolume(_ context.Context, v int) error {
	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	if err := m.p.command("set_volume", v); err != nil {
		return err
	}
	m.p.volume = v
	return nil
}

// --- Playback ---

type playback struct{ p *Player }

func (pb playback) Stop(context.Context) error {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.command("stop", ""); err != nil {
		return err
	}
	pb.p.state = player.StateStopped
	pb.p.position = 0
	return nil
}

func (pb playback) Play(_ context.Context, tlid player.TLID) error {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.command("play", tlid); err != nil {
		return err
	}
	for i, e := range pb.p.entries {
		if e.TLID == tlid {
			pb.p.current = i
			pb.p.state = player.StatePlaying
			pb.p.position = 0
			return nil
		}
	}
	return fmt.Errorf("play: no tracklist entry with tlid %d", tlid)
}

func (pb playback) Pause(context.Context) error {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.command("pause", ""); err != nil {
		return err
	}
	if pb.p.state == player.StatePlaying {
		pb.p.state = player.StatePaused
	}
	return nil
}

func (pb playback) Seek(_ context.Context, ms int) error {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.command("seek", ms); err != nil {
		return err
	}
	pb.p.position = ms
	return nil
}

func (pb playback) State(context.Context) (player.PlaybackState, error) {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.read("get_state"); err != nil {
		return "", err
	}
	return pb.p.state, nil
}

func (pb playback) TimePosition(context.Context) (int, error) {
	pb.p.mu.Lock()
	defer pb.p.mu.Unlock()
	if err := pb.p.read("get_time_position"); err != nil {
		return 0, err
	}
	return pb.p.position, nil
}

// --- Playlists ---

type playlists struct{ p *Player }

func (pl playlists) URISchemes(context.Context) ([]string, error) {
	pl.p.mu.Lock()
	defer pl.p.mu.Unlock()
	if err := pl.p.read("get_uri_schemes"); err != nil {
		return nil, err
	}
	return append([]string(nil), pl.p.Schemes...), nil
}

func (pl playlists) Items(_ context.Context, uri string) ([]player.Track, error) {
	pl.p.mu.Lock()
	defer pl.p.mu.Unlock()
	if err := pl.p.read("get_items"); err != nil {
		return nil, err
	}
	items, ok := pl.p.PlaylistItems[uri]
	if !ok {
		return nil, fmt.Errorf("playlist %q not found", uri)
	}
	out := make([]player.Track, 0, len(items))
	for _, u := range items {
		out = append(out, player.Track{URI: u})
	}
	return out, nil
}
