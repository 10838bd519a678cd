package override

import (
	"context"
	"errors"
	"fmt"

	"autoplay/internal/logging"
	"autoplay/internal/player"
	"autoplay/internal/state"
)

// ErrOptionApplyFailed wraps a setter rejection.
var ErrOptionApplyFailed = errors.New("option apply failed")

// Key names one (controller, option) pair.
type Key struct {
	Controller string
	Option     string
}

func (k Key) String() string {
	return k.Controller + "." + k.Option
}

// The documented option set.
var (
	TracklistURIs    = Key{"tracklist", "uris"}
	TracklistIndex   = Key{"tracklist", "index"}
	TracklistConsume = Key{"tracklist", "consume"}
	TracklistRandom  = Key{"tracklist", "random"}
	TracklistRepeat  = Key{"tracklist", "repeat"}
	TracklistSingle  = Key{"tracklist", "single"}
	MixerMute        = Key{"mixer", "mute"}
	MixerVolume      = Key{"mixer", "volume"}
	PlaybackState    = Key{"playback", "state"}
	PlaybackPosition = Key{"playback", "time_position"}
)

// Keys lists every option Resolve understands, in restore order.
var Keys = []Key{
	TracklistURIs, TracklistIndex,
	TracklistConsume, TracklistRandom, TracklistRepeat, TracklistSingle,
	MixerMute, MixerVolume,
	PlaybackState, PlaybackPosition,
}

// Config holds one Option per documented option. The zero Config inherits
// everything from saved state.
type Config struct {
	Tracklist TracklistConfig `yaml:"tracklist" envPrefix:"TRACKLIST_"`
	Mixer     MixerConfig     `yaml:"mixer" envPrefix:"MIXER_"`
	Playback  PlaybackConfig  `yaml:"playback" envPrefix:"PLAYBACK_"`
}

type TracklistConfig struct {
	URIs    Option[[]string]    `yaml:"uris" env:"URIS"`
	Index   Option[NonNegative] `yaml:"index" env:"INDEX"`
	Consume Option[bool]        `yaml:"consume" env:"CONSUME"`
	Random  Option[bool]        `yaml:"random" env:"RANDOM"`
	Repeat  Option[bool]        `yaml:"repeat" env:"REPEAT"`
	Single  Option[bool]        `yaml:"single" env:"SINGLE"`
}

type MixerConfig struct {
	Mute   Option[bool]    `yaml:"mute" env:"MUTE"`
	Volume Option[Percent] `yaml:"volume" env:"VOLUME"`
}

type PlaybackConfig struct {
	State        Option[player.PlaybackState] `yaml:"state" env:"STATE"`
	TimePosition Option[NonNegative]          `yaml:"time_position" env:"TIME_POSITION"`
}

// Resolver merges configuration with saved state. It is pure: it never
// touches the player or mutates the state it reads.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver for cfg.
func NewResolver(cfg Config) Resolver {
	return Resolver{cfg: cfg}
}

func resolve[T any](opt Option[T], saved *T) (T, bool) {
	if v, ok := opt.Get(); ok {
		return v, true
	}
	if saved != nil {
		return *saved, true
	}
	var zero T
	return zero, false
}

func resolveInt[T ~int](opt Option[T], saved *int) (int, bool) {
	if v, ok := opt.Get(); ok {
		return int(v), true
	}
	if saved != nil {
		return *saved, true
	}
	return 0, false
}

// URIs returns the effective queue contents.
func (r Resolver) URIs(s *state.SessionState) ([]string, bool) {
	if v, ok := r.cfg.Tracklist.URIs.Get(); ok {
		return v, true
	}
	if s.Tracklist.URIs != nil {
		return s.Tracklist.URIs, true
	}
	return nil, false
}

// Index returns the effective queue index.
func (r Resolver) Index(s *state.SessionState) (int, bool) {
	return resolveInt(r.cfg.Tracklist.Index, s.Tracklist.Index)
}

// Flag returns the effective value of a boolean option. ok is false for
// unknown values and for keys that are not boolean options.
func (r Resolver) Flag(s *state.SessionState, k Key) (bool, bool) {
	switch k {
	case TracklistConsume:
		return resolve(r.cfg.Tracklist.Consume, s.Tracklist.Consume)
	case TracklistRandom:
		return resolve(r.cfg.Tracklist.Random, s.Tracklist.Random)
	case TracklistRepeat:
		return resolve(r.cfg.Tracklist.Repeat, s.Tracklist.Repeat)
	case TracklistSingle:
		return resolve(r.cfg.Tracklist.Single, s.Tracklist.Single)
	case MixerMute:
		return resolve(r.cfg.Mixer.Mute, s.Mixer.Mute)
	}
	return false, false
}

// Volume returns the effective mixer volume.
func (r Resolver) Volume(s *state.SessionState) (int, bool) {
	return resolveInt(r.cfg.Mixer.Volume, s.Mixer.Volume)
}

// PlaybackState returns the effective transport state.
func (r Resolver) PlaybackState(s *state.SessionState) (player.PlaybackState, bool) {
	return resolve(r.cfg.Playback.State, s.Playback.State)
}

// TimePosition returns the effective seek position in milliseconds.
func (r Resolver) TimePosition(s *state.SessionState) (int, bool) {
	return resolveInt(r.cfg.Playback.TimePosition, s.Playback.TimePosition)
}

// Resolve returns the effective value for k: the configured literal when
// there is one, otherwise the saved value. ok is false when the value is
// unknown or k is not a documented option.
func (r Resolver) Resolve(s *state.SessionState, k Key) (value any, ok bool) {
	switch k {
	case TracklistURIs:
		v, ok := r.URIs(s)
		return nilIfUnknown(v, ok)
	case TracklistIndex:
		v, ok := r.Index(s)
		return nilIfUnknown(v, ok)
	case TracklistConsume, TracklistRandom, TracklistRepeat, TracklistSingle, MixerMute:
		v, ok := r.Flag(s, k)
		return nilIfUnknown(v, ok)
	case MixerVolume:
		v, ok := r.Volume(s)
		return nilIfUnknown(v, ok)
	case PlaybackState:
		v, ok := r.PlaybackState(s)
		return nilIfUnknown(v, ok)
	case PlaybackPosition:
		v, ok := r.TimePosition(s)
		return nilIfUnknown(v, ok)
	}
	return nil, false
}

func nilIfUnknown[T any](v T, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}

// Apply pushes the effective value of k to the live player. An unknown value
// leaves the player untouched. A rejected setter is logged at info level and
// reported as ErrOptionApplyFailed; the caller carries on with other options.
// Only the flag and mixer options can be applied this way.
func (r Resolver) Apply(ctx context.Context, core player.Core, s *state.SessionState, k Key, log logging.Logger) error {
	value, ok := r.Resolve(s, k)
	if !ok {
		return nil
	}

	var err error
	switch k {
	case TracklistConsume:
		err = core.Tracklist.SetConsume(ctx, value.(bool))
	case TracklistRandom:
		err = core.Tracklist.SetRandom(ctx, value.(bool))
	case TracklistRepeat:
		err = core.Tracklist.SetRepeat(ctx, value.(bool))
	case TracklistSingle:
		err = core.Tracklist.SetSingle(ctx, value.(bool))
	case MixerMute:
		err = core.Mixer.SetMute(ctx, value.(bool))
	case MixerVolume:
		err = core.Mixer.SetVolume(ctx, value.(int))
	default:
		return fmt.Errorf("option %s cannot be applied directly", k)
	}

	if err != nil {
		log.Info("Set %s/%s to '%v' failed: %v", k.Controller, k.Option, value, err)
		return fmt.Errorf("%w: %s=%v: %w", ErrOptionApplyFailed, k, value, err)
	}
	log.Debug("Set %s/%s to '%v'", k.Controller, k.Option, value)
	return nil
}

// Describe returns the configured value of each option, "auto" for inherited.
func (c Config) Describe() map[string]string {
	return map[string]string{
		TracklistURIs.String():    c.Tracklist.URIs.String(),
		TracklistIndex.String():   c.Tracklist.Index.String(),
		TracklistConsume.String(): c.Tracklist.Consume.String(),
		TracklistRandom.String():  c.Tracklist.Random.String(),
		TracklistRepeat.String():  c.Tracklist.Repeat.String(),
		TracklistSingle.String():  c.Tracklist.Single.String(),
		MixerMute.String():        c.Mixer.Mute.String(),
		MixerVolume.String():      c.Mixer.Volume.String(),
		PlaybackState.String():    c.Playback.State.String(),
		PlaybackPosition.String(): c.Playback.TimePosition.String(),
	}
}
