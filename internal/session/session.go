package session

import (
	"context"
	"sync"
	"time"

	"autoplay/internal/debounce"
	"autoplay/internal/expand"
	"autoplay/internal/logging"
	"autoplay/internal/metrics"
	"autoplay/internal/override"
	"autoplay/internal/player"
	"autoplay/internal/reconcile"
	"autoplay/internal/state"
)

// Phase is the orchestrator's lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseStopped Phase = "stopped"
)

// Capture triggers, as reported in metrics.
const (
	TriggerEvent  = "event"
	TriggerStop   = "stop"
	TriggerManual = "manual"
)

// Options configures an Orchestrator. Core and Store are required.
type Options struct {
	Core      player.Core
	Store     state.Store
	Overrides override.Config

	// Expander and Reconciler default to ones built over Core.
	Expander   *expand.Expander
	Reconciler *reconcile.Reconciler

	// SaveOnEvents names the host events that schedule a save. An empty set
	// disables event-driven saving.
	SaveOnEvents []string
	// SaveInterval is the cool-down between the first triggering event and
	// the save.
	SaveInterval time.Duration

	Logger logging.Logger
}

// Orchestrator restores the session on start, saves it after configured
// events and on stop. All failures are logged and absorbed.
type Orchestrator struct {
	core       player.Core
	store      state.Store
	resolver   override.Resolver
	expander   *expand.Expander
	reconciler *reconcile.Reconciler
	log        logging.Logger

	saveOn   map[string]bool
	interval time.Duration

	// mu guards phase and timer.
	mu    sync.Mutex
	phase Phase
	timer *debounce.Timer

	// saveMu serializes restore, capture and persist, and guards the
	// scratch state.
	saveMu      sync.Mutex
	scratch     *state.SessionState
	lastCapture time.Time
}

// New creates an idle Orchestrator.
func New(opts Options) *Orchestrator {
	log := opts.Logger
	if log == nil {
		log = logging.Std()
	}
	if opts.Expander == nil {
		opts.Expander = expand.New(opts.Core.Playlists, log)
	}
	if opts.Reconciler == nil {
		opts.Reconciler = reconcile.New(opts.Core.Tracklist, opts.Core.Library, reconcile.Options{}, log)
	}

	saveOn := make(map[string]bool, len(opts.SaveOnEvents))
	for _, e := range opts.SaveOnEvents {
		saveOn[e] = true
	}

	metrics.SetPhase(string(PhaseIdle))
	return &Orchestrator{
		core:       opts.Core,
		store:      opts.Store,
		resolver:   override.NewResolver(opts.Overrides),
		expander:   opts.Expander,
		reconciler: opts.Reconciler,
		log:        log,
		saveOn:     saveOn,
		interval:   opts.SaveInterval,
		phase:      PhaseIdle,
		scratch:    state.Empty(),
	}
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// OnStart restores the saved session and moves to Running. It is a no-op
// outside Idle.
func (o *Orchestrator) OnStart(ctx context.Context) {
	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		o.log.Warn("Ignoring start in phase %s", o.phase)
		return
	}
	o.mu.Unlock()

	start := time.Now()
	o.saveMu.Lock()
	s := state.Load(ctx, o.store, o.log)
	o.scratch = s
	result := o.restore(ctx, s)
	o.saveMu.Unlock()

	metrics.RestoresTotal.WithLabelValues(result).Inc()
	metrics.RestoreDuration.Observe(time.Since(start).Seconds())
	o.log.Info("Session restore finished (%s) in %v", result, time.Since(start))

	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.saveOn) > 0 {
		o.timer = debounce.NewTimer(o.interval, func() {
			o.save(context.Background(), TriggerEvent)
		})
	}
	o.phase = PhaseRunning
	metrics.SetPhase(string(PhaseRunning))
}

// OnEvent schedules a save when name is a configured trigger.
func (o *Orchestrator) OnEvent(name string) {
	metrics.PlayerEventsTotal.WithLabelValues(name).Inc()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseRunning || o.timer == nil || !o.saveOn[name] {
		return
	}
	o.log.Debug("Event %s schedules a save in %v", name, o.interval)
	metrics.SaveTimerArmsTotal.Inc()
	o.timer.Arm()
}

// OnStop cancels any pending save, captures the session one last time and
// persists it. The orchestrator ends in Stopped; further calls are no-ops.
func (o *Orchestrator) OnStop(ctx context.Context) {
	o.mu.Lock()
	if o.phase == PhaseStopped {
		o.mu.Unlock()
		return
	}
	timer := o.timer
	o.timer = nil
	o.phase = PhaseStopped
	o.mu.Unlock()

	// Stop waits for a running callback, so it must not hold saveMu.
	if timer != nil {
		timer.Stop()
	}

	o.save(ctx, TriggerStop)
	metrics.SetPhase(string(PhaseStopped))
}

// Run restores the session, feeds events to OnEvent until ctx is done or
// events is closed, then stops.
func (o *Orchestrator) Run(ctx context.Context, events <-chan string) {
	o.OnStart(ctx)
	defer o.OnStop(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-events:
			if !ok {
				return
			}
			o.OnEvent(name)
		}
	}
}

// SaveNow captures and persists the session immediately.
func (o *Orchestrator) SaveNow(ctx context.Context) error {
	return o.save(ctx, TriggerManual)
}

// Snapshot returns a copy of the last restored or captured session.
func (o *Orchestrator) Snapshot() *state.SessionState {
	o.saveMu.Lock()
	defer o.saveMu.Unlock()
	return o.scratch.Clone()
}

// LastCapture returns when the session was last captured, or the zero time.
func (o *Orchestrator) LastCapture() time.Time {
	o.saveMu.Lock()
	defer o.saveMu.Unlock()
	return o.lastCapture
}

// GetStats implements metrics.StatsProvider.
func (o *Orchestrator) GetStats() metrics.Stats {
	snap := o.Snapshot()
	return metrics.Stats{
		Phase:           string(o.Phase()),
		TracklistLength: len(snap.Tracklist.URIs),
		LastCapture:     o.LastCapture(),
	}
}

func (o *Orchestrator) save(ctx context.Context, trigger string) error {
	start := time.Now()
	o.saveMu.Lock()
	defer o.saveMu.Unlock()

	o.capture(ctx)
	o.lastCapture = time.Now()
	err := state.Persist(ctx, o.store, o.scratch, o.log)

	metrics.CapturesTotal.WithLabelValues(trigger).Inc()
	metrics.CaptureDuration.Observe(time.Since(start).Seconds())
	metrics.TracklistLength.Set(float64(len(o.scratch.Tracklist.URIs)))
	metrics.LastCaptureTimestamp.Set(float64(o.lastCapture.Unix()))
	return err
}
