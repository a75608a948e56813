package privacy

import (
	"fmt"

	"lector/core/internal/action"
	"lector/core/internal/cache"
)

// HardBlockError reports that a required capability is disallowed. It is
// raised before any provider call and carries a remediation hint for the
// host UI.
type HardBlockError struct {
	ActionID          string
	Reason            string
	SuggestedActionID string
}

func (e *HardBlockError) Error() string {
	return fmt.Sprintf("action %q blocked: %s", e.ActionID, e.Reason)
}

// suggestedAlternative maps a hard-blocking capability to an action that
// works without text extraction.
func suggestedAlternative(t cache.ArtifactType) string {
	switch t {
	case cache.ArtifactXRay, cache.ArtifactSimpleXRay:
		return "recap"
	case cache.ArtifactAnalysis, cache.ArtifactSummary:
		return "ask"
	default:
		return ""
	}
}

// Resolve computes the gate verdict for one action under the given privacy
// configuration and provider. For each category: a trusted provider is
// unconditionally allowed; otherwise the category is allowed iff the
// action requests it and the configuration permits it. Annotations degrade
// to highlights instead of being denied when only highlights are allowed.
func Resolve(def *action.Definition, cfg *Config, providerID string) *Verdict {
	trusted := cfg.IsTrusted(providerID)

	v := &Verdict{
		ActionID:   def.ID,
		ProviderID: providerID,
		Trusted:    trusted,
		states:     make(map[Category]State, len(Categories())),
	}

	for _, c := range Categories() {
		v.states[c] = resolveCategory(c, def, cfg, trusted)
	}

	// Hard block applies only to the action's declared capability, never
	// to a mere {book_text} reference: template references degrade to
	// empty content instead.
	if def.RequiresBookText() && v.states[CategoryBookText] != StateAllowed {
		v.HardBlock = true
		v.HardBlockReason = fmt.Sprintf(
			"%s needs book text, and text extraction is turned off for provider %q",
			def.CacheAs, providerID)
		v.SuggestedActionID = suggestedAlternative(def.CacheAs)
	}

	return v
}

// categoryGate describes one row of the gating table: what the action must
// request and what the configuration must allow.
type categoryGate struct {
	requested func(*action.Definition) bool
	allowed   func(*Config) bool
}

// gates is the lookup table driving resolveCategory. Reading stats have no
// dedicated toggle; they derive from progress data and share its gate.
// Surrounding context is extracted text, so it shares the extraction gate.
var gates = map[Category]categoryGate{
	CategoryBookText: {
		requested: func(d *action.Definition) bool { return d.UseBookText || d.RequiresBookText() },
		allowed:   func(c *Config) bool { return c.AllowTextExtraction },
	},
	CategoryHighlights: {
		requested: func(d *action.Definition) bool { return d.UseHighlights },
		allowed:   func(c *Config) bool { return c.HighlightsAllowed() },
	},
	CategoryAnnotations: {
		requested: func(d *action.Definition) bool { return d.UseAnnotations },
		allowed:   func(c *Config) bool { return c.AllowAnnotations },
	},
	CategoryNotebook: {
		requested: func(d *action.Definition) bool { return d.UseNotebook },
		allowed:   func(c *Config) bool { return c.AllowNotebook },
	},
	CategoryReadingProgress: {
		requested: func(d *action.Definition) bool { return d.UseReadingProgress },
		allowed:   func(c *Config) bool { return c.AllowReadingProgress },
	},
	CategoryReadingStats: {
		requested: func(d *action.Definition) bool { return d.UseReadingStats },
		allowed:   func(c *Config) bool { return c.AllowReadingProgress },
	},
	CategorySurroundingContext: {
		requested: func(d *action.Definition) bool { return d.UseSurroundingContext },
		allowed:   func(c *Config) bool { return c.AllowTextExtraction },
	},
	CategoryChapterInfo: {
		// Chapter metadata has no per-action flag; any action may render
		// it when the configuration allows.
		requested: func(d *action.Definition) bool { return true },
		allowed:   func(c *Config) bool { return c.AllowChapterInfo },
	},
}

func resolveCategory(c Category, def *action.Definition, cfg *Config, trusted bool) State {
	gate := gates[c]
	if !gate.requested(def) {
		return StateNotRequested
	}
	if trusted || gate.allowed(cfg) {
		return StateAllowed
	}
	if c == CategoryAnnotations && cfg.HighlightsAllowed() {
		return StateDegradedToHighlights
	}
	return StateDenied
}

// CacheReadable decides whether a stored artifact may satisfy a cache
// placeholder right now. Admissibility follows the record's recorded
// provenance, not the action's own flags, and is re-evaluated against the
// current configuration on every read: a cache built with text extraction
// needs extraction to still be enabled today.
//
// Viewing an existing record through the host UI is a separate path and is
// always permitted; this gate covers attaching cache content to prompts.
func CacheReadable(rec *cache.Record, cfg *Config, providerID string) bool {
	if rec == nil {
		return false
	}
	if cfg.IsTrusted(providerID) {
		return true
	}
	if rec.WithText && !cfg.AllowTextExtraction {
		return false
	}
	if rec.WithHighlights && !cfg.HighlightsAllowed() {
		return false
	}
	return true
}
