package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autoplay/internal/logging"
	"autoplay/internal/metrics"
	"autoplay/internal/player"
)

// ErrPositionUnresolvable means no queue entry could be identified for the
// requested index.
var ErrPositionUnresolvable = errors.New("queue position unresolvable")

// Strategy selects how the saved index is mapped onto the rebuilt queue.
type Strategy string

const (
	// StrategyWalk pairs expected URIs with live entries in order and counts
	// the index down over expected URIs, skipping entries the backend refused.
	StrategyWalk Strategy = "walk"
	// StrategyDirect takes the live entry at the index as-is.
	StrategyDirect Strategy = "direct"
)

// ParseStrategy validates a strategy name. The empty string selects walk.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyWalk:
		return StrategyWalk, nil
	case StrategyDirect:
		return StrategyDirect, nil
	}
	return "", fmt.Errorf("invalid position strategy %q (want walk or direct)", s)
}

// Options configures a Reconciler.
type Options struct {
	Strategy Strategy
	// LookupTracks re-derives the URI list from library lookups before adding,
	// which expands directory and album URIs and drops unknown ones.
	LookupTracks bool
}

// Reconciler rebuilds the live queue and finds the entry to resume.
type Reconciler struct {
	tracklist player.Tracklist
	library   player.Library
	opts      Options
	log       logging.Logger
}

// New creates a Reconciler. library is only used with Options.LookupTracks
// and may be nil otherwise.
func New(tracklist player.Tracklist, library player.Library, opts Options, log logging.Logger) *Reconciler {
	if opts.Strategy == "" {
		opts.Strategy = StrategyWalk
	}
	if log == nil {
		log = logging.Discard
	}
	return &Reconciler{tracklist: tracklist, library: library, opts: opts, log: log}
}

// Reconcile replaces the live queue with uris and returns the identifier of
// the entry at indexHint. ok is false when uris is empty, the queue is empty
// after adding, or the hint cannot be matched. Collaborator failures are
// logged and never returned.
func (r *Reconciler) Reconcile(ctx context.Context, uris []string, indexHint int) (tlid player.TLID, ok bool) {
	if err := r.tracklist.Clear(ctx); err != nil {
		r.commandFailed("clear tracklist", err)
	}
	if err := r.tracklist.SetConsume(ctx, false); err != nil {
		r.commandFailed("disable consume", err)
	}

	if r.opts.LookupTracks && r.library != nil && len(uris) > 0 {
		uris = r.lookup(ctx, uris)
	}
	if len(uris) == 0 {
		r.log.Debug("Nothing to add to the tracklist")
		return 0, false
	}

	if err := r.tracklist.Add(ctx, uris); err != nil {
		r.commandFailed("add tracks", err)
	}

	live, err := r.tracklist.TLTracks(ctx)
	if err != nil {
		return r.unresolved("cannot read tracklist: %v", err)
	}
	if len(live) == 0 {
		return r.unresolved("tracklist is empty after adding %d tracks", len(uris))
	}
	if indexHint < 0 {
		indexHint = 0
	}

	switch r.opts.Strategy {
	case StrategyDirect:
		return r.direct(live, indexHint)
	default:
		return r.walk(uris, live, indexHint)
	}
}

func (r *Reconciler) lookup(ctx context.Context, uris []string) []string {
	found, err := r.library.Lookup(ctx, uris)
	if err != nil {
		r.log.Warn("Library lookup failed, adding URIs unresolved: %v", err)
		metrics.RecordDiagnostic(metrics.KindPlayerReadFailed)
		return uris
	}

	out := make([]string, 0, len(uris))
	for _, uri := range uris {
		tracks := found[uri]
		if len(tracks) == 0 {
			r.log.Warn("Track %s not found in library", uri)
			metrics.RecordDiagnostic(metrics.KindContentUnresolvable)
			continue
		}
		for _, t := range tracks {
			out = append(out, t.URI)
		}
	}
	return out
}

// walk matches the live queue against the expected URIs. The countdown
// starts at index and drops once per expected URI; a URI missing from the
// queue consumes no live entry and only counts while the countdown is
// positive, so the next entry that is present is taken instead.
func (r *Reconciler) walk(expected []string, live []player.TLTrack, index int) (player.TLID, bool) {
	var (
		tlid  player.TLID
		found bool
	)
	for _, uri := range expected {
		if len(live) > 0 && live[0].Track.URI == uri {
			if index == 0 && !found {
				tlid, found = live[0].TLID, true
			}
			live = live[1:]
			index--
			continue
		}

		scheme, _, _ := strings.Cut(uri, ":")
		r.log.Warn("Track %s added to the tracklist, but it cannot be found there. "+
			"Possible reasons are: 1. The track has disappeared. "+
			"2. The backend '%s' does not exist. 3. The backend '%s' is not ready (yet).",
			uri, scheme, scheme)
		metrics.RecordDiagnostic(metrics.KindContentUnresolvable)
		if index != 0 {
			index--
		}
	}

	if !found {
		return r.unresolved("no tracklist entry left for the saved index")
	}
	return tlid, true
}

func (r *Reconciler) direct(live []player.TLTrack, index int) (player.TLID, bool) {
	if index >= len(live) {
		return r.unresolved("index %d beyond tracklist of %d entries", index, len(live))
	}
	return live[index].TLID, true
}

func (r *Reconciler) unresolved(format string, args ...interface{}) (player.TLID, bool) {
	metrics.RecordDiagnostic(metrics.KindPositionUnresolvable)
	r.log.Warn("%v", fmt.Errorf("%w: %s", ErrPositionUnresolvable, fmt.Sprintf(format, args...)))
	return 0, false
}

func (r *Reconciler) commandFailed(what string, err error) {
	metrics.RecordDiagnostic(metrics.KindPlayerCommandFailed)
	r.log.Warn("Cannot %s: %v", what, err)
}
