// Package progress provides the cancellable activity indicator shown while
// a model response is pending.
//
// The indicator is an explicit ticker loop with a stop channel rather than
// a detached goroutine killed from outside: cancellation is observable, and
// Stop returning is the happens-before edge callers rely on when they start
// writing real content to the same sink.
package progress

import (
	"io"
	"sync"
	"time"
)

// DefaultInterval paces the waiting animation.
const DefaultInterval = 200 * time.Millisecond

// DefaultGlyph is written once per tick.
const DefaultGlyph = "."

// Indicator emits one glyph to the sink at a fixed interval until stopped.
// One indicator serves one outbound request; it is not restartable.
type Indicator struct {
	w        io.Writer
	interval time.Duration
	glyph    string

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	ticks int
}

// Start launches the indicator loop. Writes begin after the first full
// interval elapses, so a fast response produces no output at all.
func Start(w io.Writer, interval time.Duration) *Indicator {
	return StartWithGlyph(w, interval, DefaultGlyph)
}

// StartWithGlyph is Start with a custom per-tick glyph.
func StartWithGlyph(w io.Writer, interval time.Duration, glyph string) *Indicator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ind := &Indicator{
		w:        w,
		interval: interval,
		glyph:    glyph,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go ind.run()
	return ind
}

func (ind *Indicator) run() {
	defer close(ind.done)
	ticker := time.NewTicker(ind.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ind.stop:
			return
		case <-ticker.C:
			// Re-check stop before writing so a cancelled indicator never
			// races a tick onto the sink after Stop has returned.
			select {
			case <-ind.stop:
				return
			default:
			}
			if ind.w != nil {
				if _, err := io.WriteString(ind.w, ind.glyph); err != nil {
					return
				}
			}
			ind.mu.Lock()
			ind.ticks++
			ind.mu.Unlock()
		}
	}
}

// Stop cancels the indicator and waits for the loop to exit. It is safe to
// call any number of times; only the first call has an effect, and every
// call returns only once no further writes can occur.
func (ind *Indicator) Stop() {
	ind.stopOnce.Do(func() {
		close(ind.stop)
	})
	<-ind.done
}

// Ticks reports how many glyphs have been written so far.
func (ind *Indicator) Ticks() int {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.ticks
}
