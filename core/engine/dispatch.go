package engine

import (
	"sort"

	game_log "github.com/ingyamilmolinar/tonnetz/internal/log"
)

// Update is published whenever the sounding notes or the highlighted chords
// change.
type Update struct {
	Notes  []string
	Chords []string
}

// Dispatcher fans updates out to subscribers. A subscriber that panics is
// logged and skipped; the others still run.
type Dispatcher struct {
	subs   map[int]func(Update)
	next   int
	logger *game_log.Logger
}

func NewDispatcher(logger *game_log.Logger) *Dispatcher {
	if logger == nil {
		logger = game_log.Discard()
	}
	return &Dispatcher{subs: map[int]func(Update){}, logger: logger}
}

// Subscribe registers fn and returns a func that removes it.
func (d *Dispatcher) Subscribe(fn func(Update)) (unsubscribe func()) {
	id := d.next
	d.next++
	d.subs[id] = fn
	return func() { delete(d.subs, id) }
}

func (d *Dispatcher) Len() int { return len(d.subs) }

// Publish calls subscribers in subscription order.
func (d *Dispatcher) Publish(u Update) {
	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		d.deliver(id, u)
	}
}

func (d *Dispatcher) deliver(id int, u Update) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("[ENGINE] subscriber %d panicked: %v", id, r)
		}
	}()
	if fn, ok := d.subs[id]; ok {
		fn(u)
	}
}
