package prompt

// Context carries the document state a render pass may draw from. The host
// collaborators (text extraction, highlight store, statistics) fill it in
// before rendering; every field is pre-formatted text. What actually
// reaches the prompt is decided by the gate verdict, not by what the host
// happened to fill in.
type Context struct {
	DocumentID string

	// Metadata, never gated.
	Title    string
	Author   string
	Language string

	// SelectedText is the user's own selection; attaching it is the point
	// of invoking a highlight action, so it is not gated either.
	SelectedText string

	// Gated content.
	BookText           string
	SurroundingContext string
	Highlights         string
	Annotations        string
	Notebook           string
	ReadingProgress    string
	ReadingStats       string
	ChapterInfo        string
}
