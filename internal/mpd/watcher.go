package mpd

import (
	"context"
	"time"

	"github.com/fhs/gompd/v2/mpd"

	"autoplay/internal/logging"
)

// Subsystems watched for state changes.
var watchedSubsystems = []string{"playlist", "player", "mixer", "options"}

// EventName maps an MPD idle subsystem to the event name used in
// save_on_events. Unknown subsystems pass through unchanged.
func EventName(subsystem string) string {
	switch subsystem {
	case "playlist":
		return "tracklist_changed"
	case "player":
		return "playback_state_changed"
	case "mixer":
		return "volume_changed"
	case "options":
		return "options_changed"
	}
	return subsystem
}

// watcher is the subset of *mpd.Watcher used by Watch.
type watcher struct {
	events <-chan string
	errors <-chan error
	close  func() error
}

type watchDialFunc func() (*watcher, error)

// Watch delivers an event name for every idle notification until ctx is
// done. A dropped watcher connection is redialled after retryDelay. The
// returned channel is closed when Watch stops.
func Watch(ctx context.Context, cfg Config, retryDelay time.Duration, log logging.Logger) <-chan string {
	dial := func() (*watcher, error) {
		w, err := mpd.NewWatcher(cfg.network(), cfg.Addr, cfg.Password, watchedSubsystems...)
		if err != nil {
			return nil, err
		}
		return &watcher{events: w.Event, errors: w.Error, close: w.Close}, nil
	}
	return watch(ctx, dial, retryDelay, log)
}

func watch(ctx context.Context, dial watchDialFunc, retryDelay time.Duration, log logging.Logger) <-chan string {
	if log == nil {
		log = logging.Discard
	}
	out := make(chan string)

	go func() {
		defer close(out)
		for {
			w, err := dial()
			if err != nil {
				log.Warn("MPD watcher init failed: %v - retrying in %v", err, retryDelay)
			} else {
				log.Debug("MPD watcher connected")
				runWatcher(ctx, w, out, log)
				if err := w.close(); err != nil {
					log.Debug("MPD watcher close: %v", err)
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
		}
	}()
	return out
}

// runWatcher forwards events until the watcher fails or ctx is done.
func runWatcher(ctx context.Context, w *watcher, out chan<- string, log logging.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.errors:
			if !ok {
				return
			}
			log.Warn("MPD watcher error, reconnecting: %v", err)
			return
		case subsystem, ok := <-w.events:
			if !ok {
				log.Warn("MPD watcher closed")
				return
			}
			log.Debug("Idle event subsystem=%s", subsystem)
			select {
			case out <- EventName(subsystem):
			case <-ctx.Done():
				return
			}
		}
	}
}
