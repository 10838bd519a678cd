package session

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"autoplay/internal/logging"
	"autoplay/internal/override"
	"autoplay/internal/player"
	"autoplay/internal/player/playertest"
	"autoplay/internal/reconcile"
	"autoplay/internal/state"
)

const savedDocument = `{"tracklist":{"uris":["file:///a.mp3"],"index":0,"consume":false},
"mixer":{"volume":50},"playback":{"state":"playing","time_position":1000}}`

// countingStore counts writes to an underlying FileStore.
type countingStore struct {
	*state.FileStore
	writes atomic.Int32
}

func (c *countingStore) Write(ctx context.Context, data []byte) error {
	c.writes.Add(1)
	return c.FileStore.Write(ctx, data)
}

func newStore(t *testing.T, doc string) *countingStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autoplay.state")
	if doc != "" {
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return &countingStore{FileStore: state.NewFileStore(path)}
}

func newOrchestrator(p *playertest.Player, store state.Store, opts Options) (*Orchestrator, *logging.Recorder) {
	rec := logging.NewRecorder()
	opts.Core = p.Core()
	opts.Store = store
	opts.Logger = rec
	return New(opts), rec
}

func TestOnStart_RestoresSavedSession(t *testing.T) {
	p := playertest.New()
	o, _ := newOrchestrator(p, newStore(t, savedDocument), Options{})

	o.OnStart(context.Background())

	want := []string{
		"clear()",
		"set_consume(false)",
		"add([file:///a.mp3])",
		"set_consume(false)",
		"set_volume(50)",
		"play(1)",
		"seek(1000)",
	}
	if got := p.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v\nwant    %v", got, want)
	}
	if o.Phase() != PhaseRunning {
		t.Errorf("Phase() = %s, want running", o.Phase())
	}
}

func TestOnStart_NothingSaved(t *testing.T) {
	p := playertest.New()
	o, rec := newOrchestrator(p, newStore(t, ""), Options{})

	o.OnStart(context.Background())

	if got := p.Calls(); len(got) != 0 {
		t.Errorf("calls = %v, want none", got)
	}
	if rec.Count(logging.LevelInfo, "No state restored") != 1 {
		t.Errorf("expected info diagnostic, got %v", rec.Entries())
	}
	if o.Phase() != PhaseRunning {
		t.Errorf("Phase() = %s, want running", o.Phase())
	}
}

func TestOnStart_CorruptFile(t *testing.T) {
	p := playertest.New()
	o, rec := newOrchestrator(p, newStore(t, `{"tracklist":`), Options{})

	o.OnStart(context.Background())

	if got := p.Calls(); len(got) != 0 {
		t.Errorf("calls = %v, want none", got)
	}
	if len(rec.AtLevel(logging.LevelError)) != 1 {
		t.Errorf("expected one error diagnostic, got %v", rec.Entries())
	}
}

func TestOnStart_PlaybackStates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "paused",
			doc:  `{"tracklist":{"uris":["A","B"],"index":1},"playback":{"state":"paused","time_position":42}}`,
			want: []string{"clear()", "set_consume(false)", "add([A B])", "play(2)", "pause()", "seek(42)"},
		},
		{
			name: "stopped",
			doc:  `{"tracklist":{"uris":["A"]},"playback":{"state":"stopped","time_position":42}}`,
			want: []string{"clear()", "set_consume(false)", "add([A])", "stop()"},
		},
		{
			name: "playing without position",
			doc:  `{"tracklist":{"uris":["A"]},"playback":{"state":"playing"}}`,
			want: []string{"clear()", "set_consume(false)", "add([A])", "play(1)"},
		},
		{
			name: "unknown state",
			doc:  `{"tracklist":{"uris":["A"]},"playback":{"time_position":42}}`,
			want: []string{"clear()", "set_consume(false)", "add([A])"},
		},
		{
			name: "known empty queue",
			doc:  `{"tracklist":{"uris":[]},"mixer":{"mute":true},"playback":{"state":"playing"}}`,
			want: []string{"clear()", "set_consume(false)", "set_mute(true)"},
		},
		{
			name: "all flags",
			doc:  `{"tracklist":{"uris":["A"],"consume":true,"random":false,"repeat":true,"single":false},"mixer":{"mute":false,"volume":7}}`,
			want: []string{
				"clear()", "set_consume(false)", "add([A])",
				"set_consume(true)", "set_random(false)", "set_repeat(true)", "set_single(false)",
				"set_mute(false)", "set_volume(7)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := playertest.New()
			o, _ := newOrchestrator(p, newStore(t, tt.doc), Options{})

			o.OnStart(context.Background())

			if got := p.Calls(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calls = %v\nwant    %v", got, tt.want)
			}
		})
	}
}

func TestOnStart_PositionUnresolvedSkipsPlayback(t *testing.T) {
	p := playertest.New()
	p.Refuse["file:///a.mp3"] = true
	o, _ := newOrchestrator(p, newStore(t, savedDocument), Options{})

	o.OnStart(context.Background())

	want := []string{"clear()", "set_consume(false)", "add([file:///a.mp3])", "set_consume(false)", "set_volume(50)"}
	if got := p.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v\nwant    %v", got, want)
	}
}

func TestOnStart_Overrides(t *testing.T) {
	p := playertest.New()
	cfg := override.Config{
		Tracklist: override.TracklistConfig{
			URIs:   override.Configured([]string{"X", "Y"}),
			Index:  override.Configured(override.NonNegative(1)),
			Random: override.Configured(true),
		},
		Mixer:    override.MixerConfig{Volume: override.Configured(override.Percent(80))},
		Playback: override.PlaybackConfig{TimePosition: override.Configured(override.NonNegative(0))},
	}
	o, _ := newOrchestrator(p, newStore(t, savedDocument), Options{Overrides: cfg})

	o.OnStart(context.Background())

	want := []string{
		"clear()", "set_consume(false)", "add([X Y])",
		"set_consume(false)", "set_random(true)", "set_volume(80)",
		"play(2)", "seek(0)",
	}
	if got := p.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v\nwant    %v", got, want)
	}
}

func TestOnStart_OverridesWithoutSavedState(t *testing.T) {
	p := playertest.New()
	cfg := override.Config{Mixer: override.MixerConfig{Mute: override.Configured(true)}}
	o, _ := newOrchestrator(p, newStore(t, ""), Options{Overrides: cfg})

	o.OnStart(context.Background())

	if got, want := p.Calls(), []string{"set_mute(true)"}; !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestOnStart_SetterFailureContinues(t *testing.T) {
	p := playertest.New()
	p.Fail["set_volume"] = true
	o, rec := newOrchestrator(p, newStore(t, savedDocument), Options{})

	o.OnStart(context.Background())

	calls := p.Calls()
	if calls[len(calls)-1] != "seek(1000)" {
		t.Errorf("restore stopped early: %v", calls)
	}
	if rec.Count(logging.LevelInfo, "Set mixer/volume to '50' failed") != 1 {
		t.Errorf("expected setter diagnostic, got %v", rec.Entries())
	}
}

func TestOnStart_DirectStrategy(t *testing.T) {
	p := playertest.New()
	p.Refuse["B"] = true
	core := p.Core()
	r := reconcile.New(core.Tracklist, core.Library, reconcile.Options{Strategy: reconcile.StrategyDirect}, logging.Discard)
	o, _ := newOrchestrator(p, newStore(t, `{"tracklist":{"uris":["A","B","C"],"index":1},"playback":{"state":"playing"}}`),
		Options{Reconciler: r})

	o.OnStart(context.Background())

	// Entry 1 of the live queue [A, C] is C.
	if calls := p.Calls(); calls[len(calls)-1] != "play(2)" {
		t.Errorf("calls = %v, want play(2) last", calls)
	}
}

func TestOnStart_ExpandsPlaylists(t *testing.T) {
	p := playertest.New()
	p.Schemes = []string{"m3u"}
	p.PlaylistItems["m3u:mix.m3u"] = []string{"file:///1.mp3", "file:///2.mp3"}
	o, _ := newOrchestrator(p, newStore(t, `{"tracklist":{"uris":["m3u:mix.m3u","file:///3.mp3"],"index":2}}`), Options{})

	o.OnStart(context.Background())

	want := []string{"clear()", "set_consume(false)", "add([file:///1.mp3 file:///2.mp3 file:///3.mp3])"}
	if got := p.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestOnStart_OnlyOnce(t *testing.T) {
	p := playertest.New()
	o, rec := newOrchestrator(p, newStore(t, savedDocument), Options{})

	o.OnStart(context.Background())
	n := len(p.Calls())
	o.OnStart(context.Background())

	if len(p.Calls()) != n {
		t.Errorf("second OnStart issued calls: %v", p.Calls())
	}
	if rec.Count(logging.LevelWarn, "Ignoring start") != 1 {
		t.Errorf("expected warning, got %v", rec.Entries())
	}
}

func TestOnStop_CapturesAndPersists(t *testing.T) {
	p := playertest.New()
	store := newStore(t, "")
	o, _ := newOrchestrator(p, store, Options{})
	o.OnStart(context.Background())

	p.Seed([]string{"file:///x.mp3", "file:///y.mp3"}, 1)
	p.SetLive(true, false, true, false, true, 33, player.StatePaused, 1234)

	o.OnStop(context.Background())

	if o.Phase() != PhaseStopped {
		t.Errorf("Phase() = %s, want stopped", o.Phase())
	}

	got, err := state.Read(context.Background(), store, logging.Discard)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := &state.SessionState{
		Version: state.CurrentVersion,
		Tracklist: state.Tracklist{
			URIs:    []string{"file:///x.mp3", "file:///y.mp3"},
			Index:   state.Ptr(1),
			Consume: state.Ptr(true),
			Random:  state.Ptr(false),
			Repeat:  state.Ptr(true),
			Single:  state.Ptr(false),
		},
		Mixer:    state.Mixer{Mute: state.Ptr(true), Volume: state.Ptr(33)},
		Playback: state.Playback{State: state.Ptr(player.StatePaused), TimePosition: state.Ptr(1234)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("persisted = %+v\nwant        %+v", got, want)
	}
	if !reflect.DeepEqual(o.Snapshot(), want) {
		t.Errorf("Snapshot() = %+v, want %+v", o.Snapshot(), want)
	}
}

func TestOnStop_NoCurrentTrackClearsIndex(t *testing.T) {
	p := playertest.New()
	store := newStore(t, savedDocument)
	o, _ := newOrchestrator(p, store, Options{})
	o.OnStart(context.Background())

	p.Seed([]string{"file:///a.mp3"}, -1)
	o.OnStop(context.Background())

	if snap := o.Snapshot(); snap.Tracklist.Index != nil {
		t.Errorf("index = %d, want unknown", *snap.Tracklist.Index)
	}
}

func TestCapture_ReadFailureKeepsPreviousValue(t *testing.T) {
	p := playertest.New()
	o, rec := newOrchestrator(p, newStore(t, `{"tracklist":{"random":true},"mixer":{"volume":50}}`), Options{})
	o.OnStart(context.Background())

	p.SetLive(false, false, false, false, false, 10, player.StateStopped, 0)
	p.ReadErr["get_random"] = true
	p.ReadErr["get_tracks"] = true

	if err := o.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow() error = %v", err)
	}

	snap := o.Snapshot()
	if snap.Tracklist.Random == nil || !*snap.Tracklist.Random {
		t.Errorf("random = %v, want previous value true", snap.Tracklist.Random)
	}
	if snap.Tracklist.URIs != nil {
		t.Errorf("uris = %v, want previous unknown value", snap.Tracklist.URIs)
	}
	if snap.Mixer.Volume == nil || *snap.Mixer.Volume != 10 {
		t.Errorf("volume = %v, want 10", snap.Mixer.Volume)
	}
	if n := rec.Count(logging.LevelWarn, "keeping previous value"); n != 2 {
		t.Errorf("read warnings = %d, want 2: %v", n, rec.Entries())
	}
}

func TestSaveNow_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// The parent of the state path is a regular file, so writes fail.
	store := state.NewFileStore(filepath.Join(blocker, "autoplay.state"))

	p := playertest.New()
	o, rec := newOrchestrator(p, store, Options{})
	o.OnStart(context.Background())

	if err := o.SaveNow(context.Background()); err == nil {
		t.Error("SaveNow() error = nil, want write failure")
	}
	if len(rec.AtLevel(logging.LevelError)) != 1 {
		t.Errorf("expected one error diagnostic, got %v", rec.Entries())
	}

	// Stop still completes.
	o.OnStop(context.Background())
	if o.Phase() != PhaseStopped {
		t.Errorf("Phase() = %s, want stopped", o.Phase())
	}
}

func TestOnEvent_DebouncedSave(t *testing.T) {
	p := playertest.New()
	store := newStore(t, "")
	o, _ := newOrchestrator(p, store, Options{
		SaveOnEvents: []string{"player", "mixer"},
		SaveInterval: 30 * time.Millisecond,
	})

	o.OnEvent("player") // ignored before start
	o.OnStart(context.Background())

	o.OnEvent("options")
	time.Sleep(100 * time.Millisecond)
	if n := store.writes.Load(); n != 0 {
		t.Fatalf("writes = %d after untracked event, want 0", n)
	}

	for i := 0; i < 5; i++ {
		o.OnEvent("player")
		o.OnEvent("mixer")
	}
	time.Sleep(150 * time.Millisecond)
	if n := store.writes.Load(); n != 1 {
		t.Fatalf("writes = %d after burst, want 1", n)
	}

	o.OnEvent("mixer")
	time.Sleep(150 * time.Millisecond)
	if n := store.writes.Load(); n != 2 {
		t.Fatalf("writes = %d after second window, want 2", n)
	}

	o.OnStop(context.Background())
	if n := store.writes.Load(); n != 3 {
		t.Errorf("writes = %d after stop, want 3", n)
	}
}

func TestOnStop_CancelsPendingSave(t *testing.T) {
	p := playertest.New()
	store := newStore(t, "")
	o, _ := newOrchestrator(p, store, Options{
		SaveOnEvents: []string{"player"},
		SaveInterval: time.Hour,
	})
	o.OnStart(context.Background())

	o.OnEvent("player")
	o.OnStop(context.Background())
	o.OnStop(context.Background())
	o.OnEvent("player")

	if n := store.writes.Load(); n != 1 {
		t.Errorf("writes = %d, want exactly the stop save", n)
	}
}

func TestRun(t *testing.T) {
	p := playertest.New()
	store := newStore(t, savedDocument)
	o, _ := newOrchestrator(p, store, Options{
		SaveOnEvents: []string{"player"},
		SaveInterval: 10 * time.Millisecond,
	})

	events := make(chan string)
	done := make(chan struct{})
	go func() {
		o.Run(context.Background(), events)
		close(done)
	}()

	events <- "player"
	time.Sleep(60 * time.Millisecond)
	close(events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after events closed")
	}
	if o.Phase() != PhaseStopped {
		t.Errorf("Phase() = %s, want stopped", o.Phase())
	}
	if n := store.writes.Load(); n != 2 {
		t.Errorf("writes = %d, want event save plus stop save", n)
	}
}

func TestRun_ContextCancel(t *testing.T) {
	p := playertest.New()
	o, _ := newOrchestrator(p, newStore(t, ""), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx, make(chan string))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if o.Phase() != PhaseStopped {
		t.Errorf("Phase() = %s, want stopped", o.Phase())
	}
}

func TestConcurrentSaves(t *testing.T) {
	p := playertest.New()
	store := newStore(t, "")
	o, _ := newOrchestrator(p, store, Options{SaveOnEvents: []string{"player"}, SaveInterval: time.Millisecond})
	o.OnStart(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				o.OnEvent("player")
				_ = o.SaveNow(context.Background())
				_ = o.Snapshot()
				_ = o.GetStats()
			}
		}()
	}
	wg.Wait()
	o.OnStop(context.Background())

	if _, err := state.Read(context.Background(), store, logging.Discard); err != nil {
		t.Errorf("state unreadable after concurrent saves: %v", err)
	}
}

func TestGetStats(t *testing.T) {
	p := playertest.New()
	o, _ := newOrchestrator(p, newStore(t, savedDocument), Options{})
	o.OnStart(context.Background())

	stats := o.GetStats()
	if stats.Phase != string(PhaseRunning) || stats.TracklistLength != 1 {
		t.Errorf("GetStats() = %+v", stats)
	}
	if !stats.LastCapture.IsZero() {
		t.Errorf("LastCapture = %v before any capture", stats.LastCapture)
	}
}
