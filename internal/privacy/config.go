package privacy

// Config holds the user's privacy toggles. It is loaded by the host's
// settings layer and passed explicitly into Resolve; nothing in this
// package reads ambient global state, so verdicts are deterministic for a
// given (action, config, provider) tuple.
type Config struct {
	AllowHighlights      bool `json:"allow_highlights"`
	AllowAnnotations     bool `json:"allow_annotations"`
	AllowNotebook        bool `json:"allow_notebook"`
	AllowReadingProgress bool `json:"allow_reading_progress"`
	AllowChapterInfo     bool `json:"allow_chapter_info"`
	AllowTextExtraction  bool `json:"allow_text_extraction"`

	// TrustedProviders bypass every toggle. Typically a self-hosted model.
	TrustedProviders []string `json:"trusted_providers,omitempty"`
}

// IsTrusted reports whether providerID is in the trusted set.
func (c *Config) IsTrusted(providerID string) bool {
	for _, p := range c.TrustedProviders {
		if p == providerID {
			return true
		}
	}
	return false
}

// HighlightsAllowed applies the superset invariant: allowing annotations
// implies highlights are allowed too, since annotations contain them.
func (c *Config) HighlightsAllowed() bool {
	return c.AllowHighlights || c.AllowAnnotations
}
