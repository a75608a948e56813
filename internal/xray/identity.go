package xray

import "strings"

// nameSet returns the entity's canonical name plus all aliases.
func nameSet(e *Entity) []string {
	names := make([]string, 0, len(e.Aliases)+1)
	names = append(names, e.Name)
	names = append(names, e.Aliases...)
	return names
}

// matchEntity finds the existing entity that candidate refers to, using the
// identity rules in priority order:
//
//  1. exact canonical name
//  2. name-set intersection (canonical + aliases, exact strings)
//  3. case-insensitive substring containment between any pair of names
//
// First match wins within each tier; there is no scoring beyond tier order.
// Returns nil if no tier matches. Matching is category-scoped: callers pass
// only entities from a single category.
func matchEntity(existing []*Entity, candidate *Entity) *Entity {
	// Tier 1: exact canonical name
	for _, e := range existing {
		if e.Name == candidate.Name {
			return e
		}
	}

	// Tier 2: name-set intersection
	candNames := nameSet(candidate)
	for _, e := range existing {
		if intersects(nameSet(e), candNames) {
			return e
		}
	}

	// Tier 3: case-insensitive substring containment, either direction.
	// Known to produce surprising merges for short names; kept as-is.
	for _, e := range existing {
		if containsAny(nameSet(e), candNames) {
			return e
		}
	}

	return nil
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}

func containsAny(a, b []string) bool {
	for _, x := range a {
		lx := strings.ToLower(x)
		for _, y := range b {
			ly := strings.ToLower(y)
			if lx == "" || ly == "" {
				continue
			}
			if strings.Contains(lx, ly) || strings.Contains(ly, lx) {
				return true
			}
		}
	}
	return false
}
