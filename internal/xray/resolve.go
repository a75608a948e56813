package xray

// ConnectionRef is a lazily resolved connection from one entity to another.
// Entity is nil when the named target does not exist yet (forward references
// across incremental updates are expected and legal).
type ConnectionRef struct {
	Name     string   `json:"name"`
	Category Category `json:"category,omitempty"`
	Entity   *Entity  `json:"-"`
}

// ResolveConnections resolves an entity's stored connection names against
// the graph using the same identity rules as the merge (exact name, then
// name-set intersection, then substring). Resolution happens at browse
// time, never at merge time, so connections recorded before their target
// entity was extracted resolve once the target appears.
//
// The target category is not recorded with the connection, so each tier is
// tried across categories in canonical order before falling to the next
// tier; an exact name match in any category beats an alias match in an
// earlier category.
func (g *Graph) ResolveConnections(e *Entity) []ConnectionRef {
	refs := make([]ConnectionRef, 0, len(e.Connections))
	for _, name := range e.Connections {
		refs = append(refs, g.resolveName(name))
	}
	return refs
}

func (g *Graph) resolveName(name string) ConnectionRef {
	probe := &Entity{Name: name}

	// Tier 1 across all categories, then tier 2, then tier 3.
	for _, c := range EntityCategories() {
		for _, e := range g.Entities(c) {
			if e.Name == name {
				return ConnectionRef{Name: name, Category: c, Entity: e}
			}
		}
	}
	for _, c := range EntityCategories() {
		for _, e := range g.Entities(c) {
			if intersects(nameSet(e), nameSet(probe)) {
				return ConnectionRef{Name: name, Category: c, Entity: e}
			}
		}
	}
	for _, c := range EntityCategories() {
		for _, e := range g.Entities(c) {
			if containsAny(nameSet(e), nameSet(probe)) {
				return ConnectionRef{Name: name, Category: c, Entity: e}
			}
		}
	}

	return ConnectionRef{Name: name}
}

// FindEntity looks up an entity by name within one category using the
// identity rules. Returns nil if nothing matches.
func (g *Graph) FindEntity(c Category, name string) *Entity {
	return matchEntity(g.Entities(c), &Entity{Name: name})
}
