package selection

import "github.com/ingyamilmolinar/tonnetz/core/geom"

// Tag is the interaction state of a lattice point.
type Tag int

const (
	Ready Tag = iota
	Hinted
	Active
	Inactive // cosmetic echo of a finished interaction, never read for membership
	DragPrev
)

func (t Tag) String() string {
	switch t {
	case Ready:
		return "ready"
	case Hinted:
		return "hinted"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case DragPrev:
		return "drag-prev"
	default:
		return "unknown"
	}
}

type entry struct {
	tag     Tag
	prev    Tag
	hasPrev bool
}

// entryFor returns the stored entry of a point, or the implicit one: Hinted
// when the point names a pattern note, Ready otherwise. Points materialised
// after a pattern was applied are therefore hinted without a rescan.
func (e *Engine) entryFor(a geom.Axial) entry {
	if en, ok := e.tags[a]; ok {
		return en
	}
	if _, ok := e.pattern[e.Name(a)]; ok {
		return entry{tag: Hinted}
	}
	return entry{tag: Ready}
}

func (e *Engine) toActive(a geom.Axial) {
	en := e.entryFor(a)
	if en.tag == Active {
		return
	}
	en.prev, en.hasPrev = en.tag, true
	en.tag = Active
	e.tags[a] = en
}

// toInactive is also toReady: target picks the resting tag.
func (e *Engine) toInactive(a geom.Axial, target Tag) {
	en := e.entryFor(a)
	if en.hasPrev && en.prev == Hinted {
		en.tag = Hinted
	} else {
		en.tag = target
	}
	en.hasPrev = false
	e.tags[a] = en
}

func (e *Engine) toDragPrev(a geom.Axial) {
	en := e.entryFor(a)
	if en.hasPrev && en.prev == Hinted {
		en.tag = Hinted
	} else {
		en.tag = DragPrev
	}
	e.tags[a] = en
}

// toHinted leaves a point that is mid-interaction alone and only records that
// it should come back as Hinted when the interaction ends.
func (e *Engine) toHinted(a geom.Axial) {
	en := e.entryFor(a)
	switch en.tag {
	case Hinted:
		return
	case Active, DragPrev:
		en.prev, en.hasPrev = Hinted, true
	default:
		if !en.hasPrev {
			en.prev, en.hasPrev = en.tag, true
		}
		en.tag = Hinted
	}
	e.tags[a] = en
}

// unhint drops the hint from a point, returning it to what it was before.
func (e *Engine) unhint(a geom.Axial) {
	en, ok := e.tags[a]
	if !ok {
		return
	}
	switch {
	case en.tag == Hinted:
		if en.hasPrev && en.prev != Hinted {
			en.tag = en.prev
		} else {
			en.tag = Ready
		}
		en.hasPrev = false
	case en.hasPrev && en.prev == Hinted:
		en.prev = Inactive
	}
	e.tags[a] = en
}

// prune forgets entries that carry nothing beyond the implicit default.
func (e *Engine) prune() {
	for a, en := range e.tags {
		if !en.hasPrev && en == e.implicit(a) {
			delete(e.tags, a)
		}
	}
}

func (e *Engine) implicit(a geom.Axial) entry {
	if _, ok := e.pattern[e.Name(a)]; ok {
		return entry{tag: Hinted}
	}
	return entry{tag: Ready}
}
