package action

import "lector/core/internal/cache"

// Builtins returns the built-in action set. The returned definitions are
// fresh copies; callers may not mutate a shared registry.
func Builtins() []*Definition {
	defs := builtinDefs()
	for _, d := range defs {
		d.Builtin = true
	}
	return defs
}

func builtinDefs() []*Definition {
	return []*Definition{
		{
			ID:             "explain",
			Name:           "Explain",
			Context:        ContextHighlight,
			UseSurroundingContext: true,
			PromptTemplate: "I am reading \"{title}\" by {author}. Explain this passage:\n\n{selected_text}\n\nSurrounding context:\n{surrounding_context}\n\n{highlights_section}",
			UseHighlights:  true,
		},
		{
			ID:             "translate",
			Name:           "Translate",
			Context:        ContextHighlight,
			SkipLanguageInstruction: true,
			PromptTemplate: "Translate the following passage from \"{title}\" into {language}. Keep names as they are.\n\n{selected_text}",
		},
		{
			ID:                 "summarize",
			Name:               "Summarize book so far",
			Context:            ContextBook,
			UseBookText:        true,
			UseReadingProgress: true,
			CacheAs:            cache.ArtifactSummary,
			PromptTemplate:     "Summarize \"{title}\" by {author} up to my current position.\n\n{reading_progress_section}\n\n{book_text_section}{text_fallback_nudge}",
		},
		{
			ID:                 "recap",
			Name:               "Recap before reading",
			Context:            ContextBook,
			UseReadingProgress: true,
			CacheAs:            cache.ArtifactRecap,
			PromptTemplate:     "I am returning to \"{title}\" by {author} after a break.\n\n{reading_progress_section}\n\n{summary_cache}\n\nGive me a short spoiler-free recap of where I left off.{text_fallback_nudge}",
		},
		{
			ID:             "analyze",
			Name:           "Analyze book",
			Context:        ContextBook,
			UseBookText:    true,
			UseHighlights:  true,
			UseAnnotations: true,
			CacheAs:        cache.ArtifactAnalysis,
			PromptTemplate: "Write a structured analysis of \"{title}\" by {author}: themes, style, and argument or plot structure.\n\n{book_text_section}\n\n{annotations_section}",
		},
		{
			ID:                 "xray-update",
			Name:               "Update X-Ray",
			Context:            ContextBook,
			UseBookText:        true,
			UseHighlights:      true,
			UseReadingProgress: true,
			CacheAs:            cache.ArtifactXRay,
			SkipLanguageInstruction: true,
			PromptTemplate:     "Extract an X-Ray update for \"{title}\" by {author} covering only what the text below reveals. Respond with a single JSON object with keys: track, characters, locations, themes, lexicon, timeline, current_state. Entities need name, aliases, description, connections.\n\n{reading_progress_section}\n\n{book_text_section}\n\n{highlights_section}",
		},
		{
			ID:             "vocabulary",
			Name:           "Vocabulary in context",
			Context:        ContextHighlight,
			UseSurroundingContext: true,
			PromptTemplate: "Define the word or phrase below as used in \"{title}\", then give one everyday example sentence.\n\nWord: {selected_text}\n\nContext:\n{surrounding_context}",
		},
		{
			ID:             "ask",
			Name:           "Ask about this book",
			Context:        ContextBook,
			UseBookText:    true,
			UseNotebook:    true,
			PromptTemplate: "I have a question about \"{title}\" by {author}.\n\n{book_text_section}\n\n{notebook_section}{text_fallback_nudge}",
		},
	}
}

// Registry holds the resolvable action set: built-ins plus user actions,
// user definitions shadowing built-ins with the same ID.
type Registry struct {
	order []string
	byID  map[string]*Definition
}

// NewRegistry builds a registry from definition sets applied in order.
func NewRegistry(sets ...[]*Definition) *Registry {
	r := &Registry{byID: make(map[string]*Definition)}
	for _, set := range sets {
		for _, d := range set {
			if _, exists := r.byID[d.ID]; !exists {
				r.order = append(r.order, d.ID)
			}
			r.byID[d.ID] = d
		}
	}
	return r
}

// Get returns the definition for id, or nil.
func (r *Registry) Get(id string) *Definition {
	return r.byID[id]
}

// All returns definitions in registration order.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
