// Package timing holds the frame-pumped timers used by the lattice engine.
//
// Nothing here starts goroutines. Owners call Schedule/Allow from event
// handlers and poll Due from their per-frame Tick, so every deferred action
// runs on the same goroutine as the input that caused it.
package timing

import "time"

// Debouncer coalesces bursts of Schedule calls into one firing Delay after
// the last call. MaxWait, when non-zero, caps how long a continuous burst can
// postpone the firing.
type Debouncer struct {
	Delay   time.Duration
	MaxWait time.Duration

	armed    bool
	first    time.Time
	deadline time.Time
	fired    int
}

func NewDebouncer(delay, maxWait time.Duration) *Debouncer {
	return &Debouncer{Delay: delay, MaxWait: maxWait}
}

// Schedule replaces any pending deadline.
func (d *Debouncer) Schedule(now time.Time) {
	if !d.armed {
		d.armed = true
		d.first = now
	}
	d.deadline = now.Add(d.Delay)
	if d.MaxWait > 0 {
		if limit := d.first.Add(d.MaxWait); d.deadline.After(limit) {
			d.deadline = limit
		}
	}
}

// Due reports true exactly once per armed burst, when now reaches the
// deadline. It disarms the debouncer.
func (d *Debouncer) Due(now time.Time) bool {
	if !d.armed || now.Before(d.deadline) {
		return false
	}
	d.armed = false
	d.fired++
	return true
}

func (d *Debouncer) Pending() bool { return d.armed }

func (d *Debouncer) Cancel() { d.armed = false }

// Fired counts completed firings.
func (d *Debouncer) Fired() int { return d.fired }

// Throttle lets one call through per Interval.
type Throttle struct {
	Interval time.Duration
	last     time.Time
}

func NewThrottle(interval time.Duration) *Throttle { return &Throttle{Interval: interval} }

func (t *Throttle) Allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	return true
}

// Reset forgets the last call so the next one passes.
func (t *Throttle) Reset() { t.last = time.Time{} }

// Flag coalesces requests until taken, e.g. one redraw per frame.
type Flag struct{ pending bool }

// Request reports whether this call raised the flag.
func (f *Flag) Request() bool {
	if f.pending {
		return false
	}
	f.pending = true
	return true
}

func (f *Flag) Take() bool {
	p := f.pending
	f.pending = false
	return p
}
