package debounce

import (
	"sync"
	"time"
)

type signal int

const (
	signalArm signal = iota
	signalStop
)

// Timer runs a callback once after a cool-down that starts with the first
// Arm. Further arms during the cool-down coalesce into the pending run, and
// Stop cancels a pending run without invoking the callback.
//
// The callback runs on the timer's own goroutine. It must not call Stop.
type Timer struct {
	cooldown time.Duration
	fn       func()

	// ctrl holds at most one pending signal; the worker drains it.
	ctrl     chan signal
	done     chan struct{}
	stopOnce sync.Once
}

// NewTimer starts the worker goroutine for fn.
func NewTimer(cooldown time.Duration, fn func()) *Timer {
	t := &Timer{
		cooldown: cooldown,
		fn:       fn,
		ctrl:     make(chan signal, 1),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

// Arm schedules a run. It never blocks: when a signal is already queued the
// arm is redundant and dropped.
func (t *Timer) Arm() {
	select {
	case t.ctrl <- signalArm:
	default:
	}
}

// Stop cancels any pending run and waits for the worker to exit. It is safe
// to call more than once.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		t.ctrl <- signalStop
		<-t.done
	})
}

func (t *Timer) run() {
	defer close(t.done)

	for {
		if <-t.ctrl == signalStop {
			return
		}

		deadline := time.NewTimer(t.cooldown)
	cooldown:
		for {
			select {
			case sig := <-t.ctrl:
				if sig == signalStop {
					deadline.Stop()
					return
				}
			case <-deadline.C:
				break cooldown
			}
		}

		t.fn()
	}
}
