package xray

import "sort"

// Track identifies how an X-Ray artifact is built. Incremental graphs grow
// with the reader's progress; complete graphs are built from the whole book
// in one pass. A record's track is fixed at first generation.
type Track string

const (
	TrackIncremental Track = "incremental"
	TrackComplete    Track = "complete"
)

// Valid reports whether t is a known track.
func (t Track) Valid() bool {
	return t == TrackIncremental || t == TrackComplete
}

// Category partitions entities by kind. Identity matching is scoped to a
// single category: the same surface name may belong to different entities
// in different categories.
type Category string

const (
	CategoryCharacters Category = "characters"
	CategoryLocations  Category = "locations"
	CategoryThemes     Category = "themes"
	CategoryLexicon    Category = "lexicon"
	CategoryTimeline   Category = "timeline"
	CategoryArguments  Category = "arguments"
)

// EntityCategories lists the mergeable-by-identity categories in their
// canonical display order.
func EntityCategories() []Category {
	return []Category{CategoryCharacters, CategoryLocations, CategoryThemes, CategoryLexicon}
}

// EventCategories lists the append-only categories. Their entries are prose
// fragments anchored to a narrative position, not named entities.
func EventCategories() []Category {
	return []Category{CategoryTimeline, CategoryArguments}
}

// Entity is one node of the knowledge graph. Connections hold target entity
// names as plain strings; they are resolved lazily at browse time because
// forward references across incremental updates are legal.
type Entity struct {
	Name          string   `json:"name"`
	Aliases       []string `json:"aliases,omitempty"`
	Description   string   `json:"description,omitempty"`
	Connections   []string `json:"connections,omitempty"`
	HighlightRefs []string `json:"highlight_refs,omitempty"`
}

// Event is one entry of an append-only category, anchored to a narrative
// position (progress fraction or page-derived fraction).
type Event struct {
	Description string  `json:"description"`
	Position    float64 `json:"position"`
}

// Graph is the structured knowledge built from a document, as stored inside
// an X-Ray artifact record and as produced by an extraction pass.
type Graph struct {
	Track        Track     `json:"track"`
	Characters   []*Entity `json:"characters"`
	Locations    []*Entity `json:"locations"`
	Themes       []*Entity `json:"themes"`
	Lexicon      []*Entity `json:"lexicon"`
	Timeline     []Event   `json:"timeline"`
	Arguments    []Event   `json:"arguments,omitempty"`
	CurrentState string    `json:"current_state,omitempty"`
	Conclusion   string    `json:"conclusion,omitempty"`
}

// NewGraph returns an empty graph on the given track.
func NewGraph(track Track) *Graph {
	return &Graph{Track: track}
}

// Entities returns the entity slice for a mergeable category.
func (g *Graph) Entities(c Category) []*Entity {
	if p := g.entitySlot(c); p != nil {
		return *p
	}
	return nil
}

// Events returns the event slice for an append-only category.
func (g *Graph) Events(c Category) []Event {
	switch c {
	case CategoryTimeline:
		return g.Timeline
	case CategoryArguments:
		return g.Arguments
	default:
		return nil
	}
}

// entitySlot maps a category to its backing slice. Categories are an
// enumerated type with this single dispatch point; callers never branch on
// raw strings.
func (g *Graph) entitySlot(c Category) *[]*Entity {
	switch c {
	case CategoryCharacters:
		return &g.Characters
	case CategoryLocations:
		return &g.Locations
	case CategoryThemes:
		return &g.Themes
	case CategoryLexicon:
		return &g.Lexicon
	default:
		return nil
	}
}

func (g *Graph) eventSlot(c Category) *[]Event {
	switch c {
	case CategoryTimeline:
		return &g.Timeline
	case CategoryArguments:
		return &g.Arguments
	default:
		return nil
	}
}

// EntityCount returns the total number of entities across mergeable
// categories.
func (g *Graph) EntityCount() int {
	n := 0
	for _, c := range EntityCategories() {
		n += len(g.Entities(c))
	}
	return n
}

// Clone returns a deep copy of the graph. Merging never mutates its inputs.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Track:        g.Track,
		CurrentState: g.CurrentState,
		Conclusion:   g.Conclusion,
	}
	for _, c := range EntityCategories() {
		src := g.Entities(c)
		if src == nil {
			continue
		}
		dst := make([]*Entity, len(src))
		for i, e := range src {
			dst[i] = e.clone()
		}
		*out.entitySlot(c) = dst
	}
	for _, c := range EventCategories() {
		src := g.Events(c)
		if src == nil {
			continue
		}
		*out.eventSlot(c) = append([]Event(nil), src...)
	}
	return out
}

func (e *Entity) clone() *Entity {
	return &Entity{
		Name:          e.Name,
		Aliases:       append([]string(nil), e.Aliases...),
		Description:   e.Description,
		Connections:   append([]string(nil), e.Connections...),
		HighlightRefs: append([]string(nil), e.HighlightRefs...),
	}
}

// sortTimeline orders events by the narrative position they are anchored
// to, not by extraction order. The sort is stable so same-position events
// keep their append order.
func sortTimeline(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Position < events[j].Position
	})
}
