package action

import (
	"fmt"

	"lector/core/internal/cache"
)

// ContextKind identifies what a user was doing when an action is invoked.
type ContextKind string

const (
	ContextHighlight ContextKind = "highlight"
	ContextBook      ContextKind = "book"
	ContextMultiBook ContextKind = "multi_book"
	ContextGeneral   ContextKind = "general"
)

// Valid reports whether k is a known context kind.
func (k ContextKind) Valid() bool {
	switch k {
	case ContextHighlight, ContextBook, ContextMultiBook, ContextGeneral:
		return true
	default:
		return false
	}
}

// Definition describes one invocable AI action. Built-ins are registered in
// code; user-authored actions load from YAML files. A definition is
// immutable during a single resolution pass.
type Definition struct {
	ID             string      `yaml:"id" json:"id"`
	Name           string      `yaml:"name" json:"name"`
	PromptTemplate string      `yaml:"prompt" json:"prompt"`
	Context        ContextKind `yaml:"context" json:"context"`

	// Permission flags: which personal data categories the action wants.
	// Wanting a category is necessary but not sufficient; the privacy
	// configuration decides what is actually disclosed.
	UseBookText           bool `yaml:"use_book_text" json:"use_book_text"`
	UseHighlights         bool `yaml:"use_highlights" json:"use_highlights"`
	UseAnnotations        bool `yaml:"use_annotations" json:"use_annotations"`
	UseNotebook           bool `yaml:"use_notebook" json:"use_notebook"`
	UseReadingProgress    bool `yaml:"use_reading_progress" json:"use_reading_progress"`
	UseReadingStats       bool `yaml:"use_reading_stats" json:"use_reading_stats"`
	UseSurroundingContext bool `yaml:"use_surrounding_context" json:"use_surrounding_context"`

	// Cache directives. CacheAs stores the response as that artifact;
	// RequiresSummaryCache refuses to run until a summary artifact exists.
	CacheAs              cache.ArtifactType `yaml:"cache_as" json:"cache_as,omitempty"`
	RequiresSummaryCache bool               `yaml:"requires_summary_cache" json:"requires_summary_cache,omitempty"`

	// System message controls.
	SkipDomain              bool `yaml:"skip_domain" json:"skip_domain,omitempty"`
	SkipLanguageInstruction bool `yaml:"skip_language_instruction" json:"skip_language_instruction,omitempty"`

	// Provider overrides; empty means the global default.
	Provider    string   `yaml:"provider" json:"provider,omitempty"`
	Model       string   `yaml:"model" json:"model,omitempty"`
	Temperature *float64 `yaml:"temperature" json:"temperature,omitempty"`

	Builtin bool `yaml:"-" json:"builtin,omitempty"`
}

// RequiresBookText reports whether the action's declared capability needs
// text extraction outright. Such actions hard-block when extraction is
// disallowed rather than degrading; referencing {book_text} in the
// template alone does not make an action hard-blocking.
func (d *Definition) RequiresBookText() bool {
	return d.CacheAs.RequiresTextExtraction()
}

// Validate checks the definition schema. Called at load time so malformed
// records never reach a resolution pass.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("action has no id")
	}
	if d.PromptTemplate == "" {
		return fmt.Errorf("action %q has no prompt template", d.ID)
	}
	if !d.Context.Valid() {
		return fmt.Errorf("action %q has unknown context kind %q", d.ID, d.Context)
	}
	if d.CacheAs != "" && !d.CacheAs.Valid() {
		return fmt.Errorf("action %q has unknown cache_as %q", d.ID, d.CacheAs)
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 2) {
		return fmt.Errorf("action %q temperature %v out of range [0, 2]", d.ID, *d.Temperature)
	}
	return nil
}
