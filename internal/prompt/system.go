package prompt

import (
	"fmt"
	"strings"

	"lector/core/internal/action"
)

const domainInstruction = "You are a reading assistant embedded in an " +
	"e-book reader. Answer directly and concretely about the book at hand. " +
	"Do not reveal plot points beyond the reader's current position unless " +
	"they ask for them."

// SystemMessage assembles the system prompt for an action. The domain
// instruction anchors the model to the reading-companion role; the
// language instruction pins the response language. Actions opt out of
// either (a translation action must not have its target language
// overridden, an extraction action wants raw JSON with no domain prose).
func SystemMessage(def *action.Definition, language string) string {
	var parts []string
	if !def.SkipDomain {
		parts = append(parts, domainInstruction)
	}
	if !def.SkipLanguageInstruction && language != "" {
		parts = append(parts, fmt.Sprintf("Always respond in %s.", language))
	}
	return strings.Join(parts, " ")
}
