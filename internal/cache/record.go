package cache

// ArtifactType identifies what kind of generated artifact a record holds.
type ArtifactType string

const (
	ArtifactSummary    ArtifactType = "summary"
	ArtifactXRay       ArtifactType = "xray"
	ArtifactSimpleXRay ArtifactType = "simple_xray"
	ArtifactAnalysis   ArtifactType = "analysis"
	ArtifactRecap      ArtifactType = "recap"
)

// ArtifactTypes lists all known artifact types.
func ArtifactTypes() []ArtifactType {
	return []ArtifactType{
		ArtifactSummary, ArtifactXRay, ArtifactSimpleXRay, ArtifactAnalysis, ArtifactRecap,
	}
}

// Valid reports whether t is a known artifact type.
func (t ArtifactType) Valid() bool {
	for _, known := range ArtifactTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RequiresTextExtraction reports whether generating this artifact type
// requires book text. These types hard-block when text extraction is
// disallowed; the others degrade.
func (t ArtifactType) RequiresTextExtraction() bool {
	switch t {
	case ArtifactXRay, ArtifactSimpleXRay, ArtifactAnalysis, ArtifactSummary:
		return true
	default:
		return false
	}
}

// Record is one persisted artifact for a (document, artifact type) pair.
// Content is plain text, or an encoded xray.Graph for the X-Ray types.
//
// The built-with flags record what data generation consumed. Readers must
// re-check them against the privacy configuration current at read time,
// not the one that was active at write time.
type Record struct {
	DocumentID   string       `json:"document_id"`
	Type         ArtifactType `json:"artifact_type"`
	Track        string       `json:"track,omitempty"` // xray types only
	Content      string       `json:"content"`
	Coverage     float64      `json:"coverage"` // highest progress consumed, 0.0-1.0
	Complete     bool         `json:"complete"`
	WithText     bool         `json:"built_with_text_extraction"`
	WithHighlights bool       `json:"built_with_highlights"`
	ModelID      string       `json:"model_id,omitempty"`
	GenerationID string       `json:"generation_id,omitempty"`
	GeneratedAt  int64        `json:"generated_at"` // Unix millis
}
