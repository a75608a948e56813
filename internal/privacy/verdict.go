package privacy

// Category enumerates the personal data categories a gate verdict covers.
type Category int

const (
	CategoryBookText Category = iota
	CategoryHighlights
	CategoryAnnotations
	CategoryNotebook
	CategoryReadingProgress
	CategoryReadingStats
	CategorySurroundingContext
	CategoryChapterInfo
)

// Categories lists all gate categories in verdict order.
func Categories() []Category {
	return []Category{
		CategoryBookText, CategoryHighlights, CategoryAnnotations,
		CategoryNotebook, CategoryReadingProgress, CategoryReadingStats,
		CategorySurroundingContext, CategoryChapterInfo,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryBookText:
		return "book_text"
	case CategoryHighlights:
		return "highlights"
	case CategoryAnnotations:
		return "annotations"
	case CategoryNotebook:
		return "notebook"
	case CategoryReadingProgress:
		return "reading_progress"
	case CategoryReadingStats:
		return "reading_stats"
	case CategorySurroundingContext:
		return "surrounding_context"
	case CategoryChapterInfo:
		return "chapter_info"
	default:
		return "unknown"
	}
}

// State is the per-category outcome of a gate resolution.
type State int

const (
	// StateNotRequested: the action does not ask for this category.
	StateNotRequested State = iota

	// StateDenied: requested but disallowed by the privacy configuration.
	StateDenied

	// StateAllowed: requested and admissible.
	StateAllowed

	// StateDegradedToHighlights: annotations were requested and are
	// disallowed, but highlights are allowed. The resolver substitutes
	// highlights content under the highlights label instead of blocking.
	StateDegradedToHighlights
)

func (s State) String() string {
	switch s {
	case StateNotRequested:
		return "not_requested"
	case StateDenied:
		return "denied"
	case StateAllowed:
		return "allowed"
	case StateDegradedToHighlights:
		return "degraded_to_highlights"
	default:
		return "unknown"
	}
}

// Verdict is the ephemeral result of resolving one action against the
// privacy configuration for one provider. Computed per request and never
// persisted: the configuration may change between requests.
type Verdict struct {
	ActionID   string
	ProviderID string
	Trusted    bool

	states map[Category]State

	// Hard block: the action's declared capability needs text extraction
	// and extraction is disallowed. Checked before any provider call.
	HardBlock         bool
	HardBlockReason   string
	SuggestedActionID string
}

// State returns the resolved state for a category.
func (v *Verdict) State(c Category) State {
	return v.states[c]
}

// Admits reports whether content for the category may be attached, either
// fully or in degraded form.
func (v *Verdict) Admits(c Category) bool {
	s := v.states[c]
	return s == StateAllowed || s == StateDegradedToHighlights
}

// Denied returns the categories that were requested but refused, in
// verdict order. This feeds the after-the-fact "generated without" notice.
func (v *Verdict) Denied() []Category {
	var out []Category
	for _, c := range Categories() {
		if v.states[c] == StateDenied {
			out = append(out, c)
		}
	}
	return out
}
