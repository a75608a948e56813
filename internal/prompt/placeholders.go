package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"lector/core/internal/action"
	"lector/core/internal/cache"
	"lector/core/internal/privacy"
)

// NudgePlaceholder expands to a guidance string only when the render pass
// has no book text, telling the model to rely on background knowledge and
// to disclaim unfamiliarity instead of inventing detail.
const NudgePlaceholder = "text_fallback_nudge"

const nudgeText = "\n\nNote: the text of this book is not available to you. " +
	"Rely on your background knowledge of it, and say so honestly if you " +
	"are not familiar with this book rather than guessing."

// metaPlaceholders are never gated.
var metaPlaceholders = map[string]func(*Context) string{
	"title":         func(c *Context) string { return c.Title },
	"author":        func(c *Context) string { return c.Author },
	"language":      func(c *Context) string { return c.Language },
	"selected_text": func(c *Context) string { return c.SelectedText },
}

// gatedPlaceholder binds one placeholder family (raw + optional section
// variant) to its gate category.
type gatedPlaceholder struct {
	name     string
	category privacy.Category
	label    string // section label; empty means no section variant
	content  func(*Context) string
}

// gatedPlaceholders is the public placeholder contract: action templates
// written against these names must keep working drop-in. The order is the
// substitution order.
var gatedPlaceholders = []gatedPlaceholder{
	{"book_text", privacy.CategoryBookText, "Book text so far:", func(c *Context) string { return c.BookText }},
	{"surrounding_context", privacy.CategorySurroundingContext, "", func(c *Context) string { return c.SurroundingContext }},
	{"highlights", privacy.CategoryHighlights, "My highlights so far:", func(c *Context) string { return c.Highlights }},
	{"annotations", privacy.CategoryAnnotations, "My annotations so far:", func(c *Context) string { return c.Annotations }},
	{"notebook", privacy.CategoryNotebook, "My notebook:", func(c *Context) string { return c.Notebook }},
	{"reading_progress", privacy.CategoryReadingProgress, "Reading progress:", func(c *Context) string { return c.ReadingProgress }},
	{"reading_stats", privacy.CategoryReadingStats, "Reading statistics:", func(c *Context) string { return c.ReadingStats }},
	{"chapter_info", privacy.CategoryChapterInfo, "Chapter information:", func(c *Context) string { return c.ChapterInfo }},
}

// highlightsLabel is reused when annotations degrade to highlights: the
// section then carries the highlights label, not the annotations label.
const highlightsLabel = "My highlights so far:"

// cachePlaceholderOrder fixes resolution order for determinism.
var cachePlaceholderOrder = []string{
	"summary_cache", "xray_cache", "simple_xray_cache", "analysis_cache", "recap_cache",
}

// cachePlaceholders map template names to the artifact they read back.
var cachePlaceholders = map[string]cache.ArtifactType{
	"summary_cache":     cache.ArtifactSummary,
	"xray_cache":        cache.ArtifactXRay,
	"simple_xray_cache": cache.ArtifactSimpleXRay,
	"analysis_cache":    cache.ArtifactAnalysis,
	"recap_cache":       cache.ArtifactRecap,
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

func token(name string) string { return "{" + name + "}" }

// knownPlaceholders returns every legal placeholder name, sorted.
func knownPlaceholders() []string {
	var names []string
	for n := range metaPlaceholders {
		names = append(names, n)
	}
	for _, p := range gatedPlaceholders {
		names = append(names, p.name)
		if p.label != "" {
			names = append(names, p.name+"_section")
		}
	}
	for n := range cachePlaceholders {
		names = append(names, n)
	}
	names = append(names, NudgePlaceholder)
	sort.Strings(names)
	return names
}

// ValidateTemplate checks that an action's template only uses placeholders
// from the public contract. Run at load/authoring time, not per render.
func ValidateTemplate(def *action.Definition) error {
	known := make(map[string]bool)
	for _, n := range knownPlaceholders() {
		known[n] = true
	}

	for _, m := range placeholderRe.FindAllStringSubmatch(def.PromptTemplate, -1) {
		if !known[m[1]] {
			return fmt.Errorf("action %q: unknown placeholder {%s}", def.ID, m[1])
		}
	}
	return nil
}

// references reports whether the template uses the raw or section variant
// of a gated placeholder.
func references(template, name string) bool {
	return strings.Contains(template, token(name)) ||
		strings.Contains(template, token(name+"_section"))
}

// section renders a labeled block, or nothing when the content is empty. A
// section never leaves a dangling label.
func section(label, content string) string {
	if content == "" {
		return ""
	}
	return label + "\n" + content
}
