package xray

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrTrackMismatch is returned when a delta's track differs from the
// existing graph's track. Tracks are not convertible; switching requires a
// full delete and regeneration.
var ErrTrackMismatch = errors.New("xray: delta track does not match existing graph track")

// Merger folds extraction deltas into an existing graph. The zero value is
// usable; Logger defaults to a no-op logger.
type Merger struct {
	Logger *zap.Logger
}

// Merge applies a delta graph to an existing graph and returns the merged
// result. Neither input is mutated. Rules:
//
//   - Mergeable categories match delta entities against existing entities
//     by identity (exact name, name-set intersection, substring) and merge
//     fields: description replaced only when the delta's is non-empty,
//     aliases and connections unioned, highlight refs appended without
//     duplicates. Unmatched delta entities are inserted.
//   - Event categories append in delta order, then the timeline is resorted
//     by narrative position. An event identical to a stored one is skipped
//     so that reapplying the same delta is a no-op.
//   - The status section (current state or conclusion, per track) is
//     replaced wholesale; it describes "as of now", not cumulative history.
//
// The merge is idempotent: applying the same delta twice yields the same
// graph as applying it once.
//
// If the delta fails validation the existing graph is returned unchanged
// alongside the error; partial merges never escape.
func (m *Merger) Merge(existing, delta *Graph) (*Graph, error) {
	if err := ValidateDelta(delta); err != nil {
		m.logger().Warn("merge rejected", zap.Error(err))
		return existing, err
	}
	if existing.Track != delta.Track {
		m.logger().Warn("merge rejected",
			zap.String("existing_track", string(existing.Track)),
			zap.String("delta_track", string(delta.Track)))
		return existing, fmt.Errorf("%w (existing %q, delta %q)",
			ErrTrackMismatch, existing.Track, delta.Track)
	}

	merged := existing.Clone()

	inserted, updated := 0, 0
	for _, c := range EntityCategories() {
		slot := merged.entitySlot(c)
		for _, cand := range delta.Entities(c) {
			if target := matchEntity(*slot, cand); target != nil {
				mergeEntity(target, cand)
				updated++
			} else {
				*slot = append(*slot, cand.clone())
				inserted++
			}
		}
	}

	for _, c := range EventCategories() {
		slot := merged.eventSlot(c)
		for _, ev := range delta.Events(c) {
			if hasEvent(*slot, ev) {
				continue
			}
			*slot = append(*slot, ev)
		}
		sortTimeline(*slot)
	}

	switch delta.Track {
	case TrackIncremental:
		merged.CurrentState = delta.CurrentState
	case TrackComplete:
		merged.Conclusion = delta.Conclusion
	}

	m.logger().Debug("merged delta",
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
		zap.Int("entities", merged.EntityCount()))
	return merged, nil
}

func (m *Merger) logger() *zap.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.NewNop()
}

// mergeEntity folds delta fields into an existing entity in place.
func mergeEntity(target, delta *Entity) {
	// The delta's description represents the more current understanding.
	if delta.Description != "" {
		target.Description = delta.Description
	}

	// Union aliases. A delta canonical name that differs from the target's
	// becomes an alias of the target.
	if delta.Name != target.Name {
		target.Aliases = appendMissing(target.Aliases, delta.Name, target.Name)
	}
	for _, a := range delta.Aliases {
		target.Aliases = appendMissing(target.Aliases, a, target.Name)
	}

	// Union connections by target name, duplicates collapsed
	// case-insensitively. Names stay unresolved strings until browse time.
	for _, conn := range delta.Connections {
		if !containsFold(target.Connections, conn) {
			target.Connections = append(target.Connections, conn)
		}
	}

	// Highlight refs append, never replace.
	for _, ref := range delta.HighlightRefs {
		if !containsString(target.HighlightRefs, ref) {
			target.HighlightRefs = append(target.HighlightRefs, ref)
		}
	}
}

// appendMissing adds name to aliases unless it is already present or equals
// the canonical name.
func appendMissing(aliases []string, name, canonical string) []string {
	if name == "" || name == canonical || containsString(aliases, name) {
		return aliases
	}
	return append(aliases, name)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func hasEvent(events []Event, ev Event) bool {
	for _, e := range events {
		if e.Description == ev.Description && e.Position == ev.Position {
			return true
		}
	}
	return false
}
