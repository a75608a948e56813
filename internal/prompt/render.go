package prompt

import (
	"strings"

	"go.uber.org/zap"

	"lector/core/internal/action"
	"lector/core/internal/cache"
	"lector/core/internal/privacy"
)

// Renderer substitutes an action's template into the final prompt. Store
// may be nil, in which case cache placeholders render empty.
type Renderer struct {
	Store  cache.Store
	Logger *zap.Logger
}

// Result is a completed render pass.
type Result struct {
	Prompt string

	// Used lists gated categories whose content made it into the prompt.
	Used []privacy.Category

	// Omitted lists categories the template references that the verdict
	// denied; it feeds the informational "generated without" notice. The
	// render itself is never blocked by an omission.
	Omitted []privacy.Category

	// CacheUsed lists artifacts whose content was attached.
	CacheUsed []cache.ArtifactType
}

// Render resolves all placeholders in the action's template. It aborts with
// a *privacy.HardBlockError before touching the store or assembling
// anything when the verdict hard-blocks; the caller surfaces the reason
// and the suggested alternative and must not call the provider.
//
// Resolution order is fixed: cache placeholders first (so emptiness is
// known before assembly), then section variants, then raw placeholders and
// metadata, then the fallback nudge.
func (r *Renderer) Render(def *action.Definition, ctx *Context, cfg *privacy.Config, v *privacy.Verdict) (*Result, error) {
	if v.HardBlock {
		return nil, &privacy.HardBlockError{
			ActionID:          def.ID,
			Reason:            v.HardBlockReason,
			SuggestedActionID: v.SuggestedActionID,
		}
	}

	out := def.PromptTemplate
	res := &Result{}

	// Cache placeholders. Admissibility follows the stored record's
	// provenance re-checked against the current configuration, not the
	// action's own flags; an inadmissible or missing record renders empty.
	for _, name := range cachePlaceholderOrder {
		artifact := cachePlaceholders[name]
		if !strings.Contains(out, token(name)) {
			continue
		}
		content := r.cacheContent(ctx.DocumentID, artifact, cfg, v.ProviderID)
		if content != "" {
			res.CacheUsed = append(res.CacheUsed, artifact)
		}
		out = strings.ReplaceAll(out, token(name), content)
	}

	// Gated content, in contract order.
	bookTextEmpty := true
	for _, p := range gatedPlaceholders {
		if !references(def.PromptTemplate, p.name) {
			continue
		}

		content, label := p.content(ctx), p.label
		switch v.State(p.category) {
		case privacy.StateDegradedToHighlights:
			// Highlights stand in for annotations, under the highlights
			// label so the prompt never claims notes it does not carry.
			content, label = ctx.Highlights, highlightsLabel
		case privacy.StateAllowed:
			// content as is
		default:
			if v.State(p.category) == privacy.StateDenied {
				res.Omitted = append(res.Omitted, p.category)
			}
			content = ""
		}

		if p.category == privacy.CategoryBookText && content != "" {
			bookTextEmpty = false
		}
		if content != "" {
			res.Used = append(res.Used, p.category)
		}

		if label != "" {
			out = strings.ReplaceAll(out, token(p.name+"_section"), section(label, content))
		}
		out = strings.ReplaceAll(out, token(p.name), content)
	}

	// Metadata.
	for name, get := range metaPlaceholders {
		out = strings.ReplaceAll(out, token(name), get(ctx))
	}

	// The nudge keeps text-less renders workable: it expands only when no
	// book text made it into this pass.
	nudge := ""
	if bookTextEmpty {
		nudge = nudgeText
	}
	out = strings.ReplaceAll(out, token(NudgePlaceholder), nudge)

	res.Prompt = strings.TrimSpace(collapseBlankRuns(out))

	if len(res.Omitted) > 0 {
		r.logger().Debug("rendered with omissions",
			zap.String("action", def.ID),
			zap.Int("omitted", len(res.Omitted)))
	}
	return res, nil
}

// cacheContent reads an artifact for a placeholder, returning "" when the
// record is missing or not admissible under the current configuration.
func (r *Renderer) cacheContent(documentID string, artifact cache.ArtifactType, cfg *privacy.Config, providerID string) string {
	if r.Store == nil || documentID == "" {
		return ""
	}
	rec, err := r.Store.Get(documentID, artifact)
	if err != nil {
		r.logger().Warn("cache read failed",
			zap.String("document", documentID),
			zap.String("artifact", string(artifact)),
			zap.Error(err))
		return ""
	}
	if !privacy.CacheReadable(rec, cfg, providerID) {
		return ""
	}
	return rec.Content
}

// collapseBlankRuns squeezes runs of 3+ newlines left behind by empty
// placeholders down to one blank line.
func collapseBlankRuns(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

func (r *Renderer) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}
