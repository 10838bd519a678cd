package session

import (
	"context"

	"autoplay/internal/metrics"
	"autoplay/internal/state"
)

// capture reads the live player into the scratch state. A failed read keeps
// the previously known value of that leaf. The caller holds saveMu.
func (o *Orchestrator) capture(ctx context.Context) {
	s := o.scratch
	tl := o.core.Tracklist

	if tracks, err := tl.Tracks(ctx); o.read("tracks", err) {
		uris := make([]string, 0, len(tracks))
		for _, t := range tracks {
			if t.URI != "" {
				uris = append(uris, t.URI)
			}
		}
		s.Tracklist.URIs = uris
	}

	if index, current, err := tl.Index(ctx); o.read("index", err) {
		if current {
			s.Tracklist.Index = state.Ptr(index)
		} else {
			s.Tracklist.Index = nil
		}
	}

	o.captureFlag(ctx, "consume", tl.Consume, &s.Tracklist.Consume)
	o.captureFlag(ctx, "random", tl.Random, &s.Tracklist.Random)
	o.captureFlag(ctx, "repeat", tl.Repeat, &s.Tracklist.Repeat)
	o.captureFlag(ctx, "single", tl.Single, &s.Tracklist.Single)
	o.captureFlag(ctx, "mute", o.core.Mixer.Mute, &s.Mixer.Mute)

	if volume, err := o.core.Mixer.Volume(ctx); o.read("volume", err) {
		if volume >= 0 && volume <= 100 {
			s.Mixer.Volume = state.Ptr(volume)
		} else {
			o.log.Debug("Ignoring out-of-range volume %d", volume)
		}
	}

	if st, err := o.core.Playback.State(ctx); o.read("playback state", err) {
		if st.Valid() {
			s.Playback.State = state.Ptr(st)
		}
	}

	if pos, err := o.core.Playback.TimePosition(ctx); o.read("time position", err) && pos >= 0 {
		s.Playback.TimePosition = state.Ptr(pos)
	}

	s.Version = state.CurrentVersion
}

func (o *Orchestrator) captureFlag(ctx context.Context, name string, get func(context.Context) (bool, error), dst **bool) {
	if v, err := get(ctx); o.read(name, err) {
		*dst = state.Ptr(v)
	}
}

// read reports whether a getter succeeded, logging the failure otherwise.
func (o *Orchestrator) read(what string, err error) bool {
	if err == nil {
		return true
	}
	metrics.RecordDiagnostic(metrics.KindPlayerReadFailed)
	o.log.Warn("Cannot read %s, keeping previous value: %v", what, err)
	return false
}
