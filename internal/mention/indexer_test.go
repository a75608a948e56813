package mention

import (
	"reflect"
	"testing"

	"lector/core/internal/xray"
)

func graphWith(c xray.Category, entities ...*xray.Entity) *xray.Graph {
	g := xray.NewGraph(xray.TrackIncremental)
	switch c {
	case xray.CategoryCharacters:
		g.Characters = entities
	case xray.CategoryLocations:
		g.Locations = entities
	case xray.CategoryLexicon:
		g.Lexicon = entities
	}
	return g
}

func wholeText(text string) []Chapter {
	return []Chapter{{ID: "ch1", Start: 0, End: len(text)}}
}

func revealAll() Options {
	return Options{RevealAll: true}
}

func TestFindMentions_WordBoundary(t *testing.T) {
	g := graphWith(xray.CategoryCharacters, &xray.Entity{Name: "El"})
	text := "El spoke. Elena did not. The elder nodded at El."

	got := FindMentions(g, wholeText(text), text, revealAll())
	if len(got) != 1 {
		t.Fatalf("got %d entities, want 1", len(got))
	}
	// "El" twice as a word; never inside "Elena" or "elder".
	if got[0].Chapters[0].Count != 2 {
		t.Errorf("got count %d, want 2", got[0].Chapters[0].Count)
	}
}

func TestFindMentions_CaseInsensitive(t *testing.T) {
	g := graphWith(xray.CategoryLocations, &xray.Entity{Name: "the Heron"})
	text := "They boarded THE HERON at dawn."

	got := FindMentions(g, wholeText(text), text, revealAll())
	if len(got) != 1 || got[0].Chapters[0].Count != 1 {
		t.Fatalf("case-insensitive match failed: %+v", got)
	}
}

// Overlapping matches from different aliases of the same entity collapse
// into one span: "Bob Robert" is one mention, not three.
func TestFindMentions_OverlappingAliasesMerged(t *testing.T) {
	g := graphWith(xray.CategoryCharacters, &xray.Entity{
		Name:    "Bob Robert",
		Aliases: []string{"Bob", "Robert"},
	})
	text := "Bob Robert arrived."

	got := FindMentions(g, wholeText(text), text, revealAll())
	if len(got) != 1 {
		t.Fatalf("got %d entities, want 1", len(got))
	}
	ch := got[0].Chapters[0]
	if ch.Count != 1 {
		t.Errorf("got count %d, want 1 merged span", ch.Count)
	}
	if !reflect.DeepEqual(ch.Spans, []Span{{Start: 0, End: 10}}) {
		t.Errorf("got spans %v, want one span covering the full name", ch.Spans)
	}
}

func TestFindMentions_SeparateAliasMentionsCounted(t *testing.T) {
	g := graphWith(xray.CategoryCharacters, &xray.Entity{
		Name:    "Elena",
		Aliases: []string{"the Mapmaker"},
	})
	text := "Elena charted the reef. Later the Mapmaker slept."

	got := FindMentions(g, wholeText(text), text, revealAll())
	if got[0].Chapters[0].Count != 2 {
		t.Errorf("got count %d, want 2", got[0].Chapters[0].Count)
	}
}

func TestFindMentions_EventCategoriesExcluded(t *testing.T) {
	g := xray.NewGraph(xray.TrackIncremental)
	g.Timeline = []xray.Event{{Description: "the storm", Position: 0.2}}
	text := "And then the storm came."

	got := FindMentions(g, wholeText(text), text, revealAll())
	if len(got) != 0 {
		t.Errorf("timeline entries must not be scanned: %+v", got)
	}
}

func TestFindMentions_ChapterBuckets(t *testing.T) {
	g := graphWith(xray.CategoryCharacters, &xray.Entity{Name: "Elena"})
	text := "Elena left. " + // ch1: [0,12)
		"Nothing here. " + // ch2: [12,26)
		"Elena returned. Elena wept." // ch3: [26,53)
	chapters := []Chapter{
		{ID: "ch1", Start: 0, End: 12},
		{ID: "ch2", Start: 12, End: 26},
		{ID: "ch3", Start: 26, End: len(text)},
	}

	got := FindMentions(g, chapters, text, revealAll())
	if len(got) != 1 {
		t.Fatalf("got %d entities, want 1", len(got))
	}
	chs := got[0].Chapters
	if len(chs) != 2 {
		t.Fatalf("chapters without matches must be omitted: %+v", chs)
	}
	if chs[0].ChapterID != "ch1" || chs[0].Count != 1 {
		t.Errorf("ch1: %+v", chs[0])
	}
	if chs[1].ChapterID != "ch3" || chs[1].Count != 2 {
		t.Errorf("ch3: %+v", chs[1])
	}
}

// Chapters past the reader's position are flagged gated and their spans
// withheld, unless the caller explicitly asks for a reveal-all scan.
func TestFindMentions_SpoilerGating(t *testing.T) {
	g := graphWith(xray.CategoryCharacters, &xray.Entity{Name: "Elena"})
	text := "Elena left. Elena dies."
	chapters := []Chapter{
		{ID: "ch1", Start: 0, End: 12},
		{ID: "ch2", Start: 12, End: len(text)},
	}

	got := FindMentions(g, chapters, text, Options{GateOffset: 11})
	chs := got[0].Chapters
	if len(chs) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chs))
	}
	if chs[0].Gated {
		t.Error("ch1 is before the gate")
	}
	if !chs[1].Gated {
		t.Error("ch2 should be gated")
	}
	if chs[1].Count != 0 || chs[1].Spans != nil {
		t.Errorf("gated chapter must withhold spans: %+v", chs[1])
	}

	revealed := FindMentions(g, chapters, text, Options{GateOffset: 11, RevealAll: true})
	if revealed[0].Chapters[1].Count != 1 {
		t.Errorf("reveal-all should expose spans: %+v", revealed[0].Chapters[1])
	}
}

func TestFindMentions_NoMatchesOmitsEntity(t *testing.T) {
	g := graphWith(xray.CategoryLexicon, &xray.Entity{Name: "thaumaturgy"})
	text := "No such word here."

	if got := FindMentions(g, wholeText(text), text, revealAll()); len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

func TestMergeSpans(t *testing.T) {
	tests := []struct {
		name string
		in   []Span
		want []Span
	}{
		{"empty", nil, nil},
		{"disjoint", []Span{{0, 3}, {5, 8}}, []Span{{0, 3}, {5, 8}}},
		{"overlap", []Span{{0, 6}, {4, 10}}, []Span{{0, 10}}},
		{"contained", []Span{{0, 10}, {2, 5}}, []Span{{0, 10}}},
		{"unsorted input", []Span{{5, 8}, {0, 3}}, []Span{{0, 3}, {5, 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSpans(append([]Span(nil), tt.in...))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
