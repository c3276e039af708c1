// Package search implements the node-local part of the skip graph identifier
// search: the level-descent candidate scan over a lookup table. The
// distributed walk that forwards between nodes lives in the node package.
package search

import (
	"github.com/pkg/errors"

	"skipgraph/internal/lookup"
	"skipgraph/internal/model"
)

type Outcome uint8

const (
	OutcomeNotFound Outcome = iota
	OutcomeFound
)

func (o Outcome) String() string {
	if o == OutcomeFound {
		return "found"
	}
	return "not found"
}

// Request describes one step of an identifier search as seen by a single
// node: the target, the highest level still admissible, the direction of
// travel and the hops consumed so far.
type Request struct {
	Target    model.Identifier
	Level     int
	Direction model.Direction
	Hops      int
}

// Result is the terminal answer of a search. Termination carries either the
// match or the closest node encountered in the chosen direction.
type Result struct {
	Target           model.Identifier
	Outcome          Outcome
	Termination      model.Identity
	Level            int
	ExceededHopLimit bool
}

// DirectionTo picks the travel direction from self toward target. Callers
// handle equality before asking.
func DirectionTo(self, target model.Identifier) model.Direction {
	if self.Less(target) {
		return model.DirectionRight
	}
	return model.DirectionLeft
}

// BestCandidate scans the table from level req.Level down to 0 in
// req.Direction and returns the admissible neighbor closest to the target
// together with the level it was found at. A neighbor is admissible when it
// does not overshoot: in the right direction its identifier is at most the
// target, in the left direction at least the target. ok is false when no
// level holds an admissible neighbor.
func BestCandidate(t lookup.Table, req Request) (best model.Identity, level int, ok bool, err error) {
	if req.Level < 0 || req.Level >= lookup.Levels {
		return model.Identity{}, 0, false, errors.Errorf("search level %d out of range [0, %d)", req.Level, lookup.Levels)
	}
	for lvl := req.Level; lvl >= 0; lvl-- {
		n, set, err := t.GetEntry(lvl, req.Direction)
		if err != nil {
			return model.Identity{}, 0, false, errors.Wrapf(err, "scan level %d", lvl)
		}
		if !set {
			continue
		}
		if overshoots(n.ID, req.Target, req.Direction) {
			continue
		}
		if !ok || closer(n.ID, best.ID, req.Direction) {
			best, level, ok = n, lvl, true
		}
	}
	return best, level, ok, nil
}

func overshoots(id, target model.Identifier, dir model.Direction) bool {
	if dir == model.DirectionRight {
		return target.Less(id)
	}
	return id.Less(target)
}

// closer reports whether a beats b as a candidate: travelling right the
// greatest admissible identifier wins, travelling left the smallest.
func closer(a, b model.Identifier, dir model.Direction) bool {
	if dir == model.DirectionRight {
		return b.Less(a)
	}
	return a.Less(b)
}
