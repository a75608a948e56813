package xray

import (
	"errors"
	"fmt"
)

// ErrInvalidDelta is returned when a delta graph fails structural
// validation. The merge is rejected atomically; the existing graph is
// never partially updated.
var ErrInvalidDelta = errors.New("xray: invalid delta graph")

// ValidateDelta checks the structural invariants an extraction delta must
// satisfy before it may be merged:
//
//   - track is a known value
//   - every entity has a non-empty canonical name
//   - canonical names are unique within each category of the delta
//   - alias entries are non-empty
//   - event positions are non-negative
func ValidateDelta(g *Graph) error {
	if g == nil {
		return fmt.Errorf("%w: nil graph", ErrInvalidDelta)
	}
	if !g.Track.Valid() {
		return fmt.Errorf("%w: unknown track %q", ErrInvalidDelta, g.Track)
	}

	for _, c := range EntityCategories() {
		seen := make(map[string]bool)
		for i, e := range g.Entities(c) {
			if e == nil {
				return fmt.Errorf("%w: %s[%d] is null", ErrInvalidDelta, c, i)
			}
			if e.Name == "" {
				return fmt.Errorf("%w: %s[%d] has empty name", ErrInvalidDelta, c, i)
			}
			if seen[e.Name] {
				return fmt.Errorf("%w: duplicate name %q in %s", ErrInvalidDelta, e.Name, c)
			}
			seen[e.Name] = true
			for _, a := range e.Aliases {
				if a == "" {
					return fmt.Errorf("%w: %s %q has empty alias", ErrInvalidDelta, c, e.Name)
				}
			}
		}
	}

	for _, c := range EventCategories() {
		for i, ev := range g.Events(c) {
			if ev.Description == "" {
				return fmt.Errorf("%w: %s[%d] has empty description", ErrInvalidDelta, c, i)
			}
			if ev.Position < 0 {
				return fmt.Errorf("%w: %s[%d] has negative position", ErrInvalidDelta, c, i)
			}
		}
	}

	return nil
}
