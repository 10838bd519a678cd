package session

import (
	"context"
	"errors"

	"autoplay/internal/metrics"
	"autoplay/internal/override"
	"autoplay/internal/player"
	"autoplay/internal/state"
)

// restore applies s to the live player and reports the outcome label.
func (o *Orchestrator) restore(ctx context.Context, s *state.SessionState) string {
	var (
		tlid     player.TLID
		resolved bool
	)

	if uris, ok := o.resolver.URIs(s); ok {
		expanded := o.expander.Expand(ctx, uris)
		index, ok := o.resolver.Index(s)
		if !ok {
			index = 0
		}
		tlid, resolved = o.reconciler.Reconcile(ctx, expanded, index)
	}

	for _, k := range []override.Key{
		override.TracklistConsume, override.TracklistRandom,
		override.TracklistRepeat, override.TracklistSingle,
		override.MixerMute, override.MixerVolume,
	} {
		if err := o.resolver.Apply(ctx, o.core, s, k, o.log); errors.Is(err, override.ErrOptionApplyFailed) {
			metrics.RecordDiagnostic(metrics.KindOptionApplyFailed)
		}
	}

	if resolved {
		o.applyPlayback(ctx, s, tlid)
	}

	switch {
	case s.IsEmpty():
		return "empty"
	case resolved:
		return "restored"
	default:
		return "partial"
	}
}

// applyPlayback restores the transport around the resolved queue entry.
func (o *Orchestrator) applyPlayback(ctx context.Context, s *state.SessionState, tlid player.TLID) {
	pb := o.core.Playback

	st, ok := o.resolver.PlaybackState(s)
	if !ok {
		o.log.Debug("Playback state unknown, leaving transport untouched")
		return
	}

	switch st {
	case player.StateStopped:
		o.command("stop playback", pb.Stop(ctx))
		return
	case player.StatePlaying:
		o.command("start playback", pb.Play(ctx, tlid))
	case player.StatePaused:
		// Pausing needs a current track, so start it first.
		o.command("start playback", pb.Play(ctx, tlid))
		o.command("pause playback", pb.Pause(ctx))
	}

	if pos, ok := o.resolver.TimePosition(s); ok {
		o.command("seek", pb.Seek(ctx, pos))
	}
}

func (o *Orchestrator) command(what string, err error) {
	if err == nil {
		return
	}
	metrics.RecordDiagnostic(metrics.KindPlayerCommandFailed)
	o.log.Info("Cannot %s: %v", what, err)
}
