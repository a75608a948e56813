package xray

import (
	"errors"
	"reflect"
	"testing"
)

func character(name string, aliases ...string) *Entity {
	return &Entity{Name: name, Aliases: aliases}
}

func singleCharGraph(track Track, e *Entity) *Graph {
	g := NewGraph(track)
	g.Characters = []*Entity{e}
	return g
}

func mustMerge(t *testing.T, existing, delta *Graph) *Graph {
	t.Helper()
	m := &Merger{}
	merged, err := m.Merge(existing, delta)
	if err != nil {
		t.Fatalf("unexpected merge error: %v", err)
	}
	return merged
}

func TestMerge_NewEntityInserted(t *testing.T) {
	existing := NewGraph(TrackIncremental)
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:        "Elena",
		Aliases:     []string{"El"},
		Description: "A cartographer",
	})

	merged := mustMerge(t, existing, delta)

	if len(merged.Characters) != 1 {
		t.Fatalf("got %d characters, want 1", len(merged.Characters))
	}
	if merged.Characters[0].Name != "Elena" {
		t.Errorf("got name %q, want %q", merged.Characters[0].Name, "Elena")
	}
	// Existing graph must not be touched.
	if len(existing.Characters) != 0 {
		t.Errorf("existing graph mutated: %d characters", len(existing.Characters))
	}
}

// Matches end-to-end scenario: entity created with an alias at 30%, then a
// delta at 50% whose canonical name is that alias. One entity results, with
// the newer description.
func TestMerge_AliasIdentityMatch(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name:        "Elena",
		Aliases:     []string{"El"},
		Description: "A cartographer",
	})
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:        "El",
		Description: "A cartographer turned smuggler",
	})

	merged := mustMerge(t, existing, delta)

	if len(merged.Characters) != 1 {
		t.Fatalf("got %d characters, want 1 (alias should match)", len(merged.Characters))
	}
	e := merged.Characters[0]
	if e.Name != "Elena" {
		t.Errorf("canonical name changed: got %q, want %q", e.Name, "Elena")
	}
	if e.Description != "A cartographer turned smuggler" {
		t.Errorf("description not replaced: got %q", e.Description)
	}
	if !reflect.DeepEqual(e.Aliases, []string{"El"}) {
		t.Errorf("got aliases %v, want [El]", e.Aliases)
	}
}

func TestMerge_EmptyDescriptionKeepsExisting(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name:        "Bran",
		Description: "The innkeeper",
	})
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:    "Bran",
		Aliases: []string{"Old Bran"},
	})

	merged := mustMerge(t, existing, delta)

	e := merged.Characters[0]
	if e.Description != "The innkeeper" {
		t.Errorf("empty delta description should not overwrite: got %q", e.Description)
	}
	if !reflect.DeepEqual(e.Aliases, []string{"Old Bran"}) {
		t.Errorf("got aliases %v, want [Old Bran]", e.Aliases)
	}
}

// Disambiguation is category-scoped: "Mars" the character and "Mars" the
// location never merge into each other.
func TestMerge_CategoryScopedIdentity(t *testing.T) {
	existing := NewGraph(TrackIncremental)
	existing.Characters = []*Entity{{Name: "Mars", Description: "A nickname"}}

	delta := NewGraph(TrackIncremental)
	delta.Locations = []*Entity{{Name: "Mars", Description: "The red planet"}}

	merged := mustMerge(t, existing, delta)

	if len(merged.Characters) != 1 || len(merged.Locations) != 1 {
		t.Fatalf("got %d characters and %d locations, want 1 and 1",
			len(merged.Characters), len(merged.Locations))
	}
	if merged.Characters[0].Description != "A nickname" {
		t.Errorf("character description leaked: %q", merged.Characters[0].Description)
	}
}

func TestMerge_ConnectionsUnionCollapsed(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name:        "Elena",
		Connections: []string{"Bran"},
	})
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:        "Elena",
		Connections: []string{"bran", "Mira"},
	})

	merged := mustMerge(t, existing, delta)

	got := merged.Characters[0].Connections
	want := []string{"Bran", "Mira"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got connections %v, want %v", got, want)
	}
}

func TestMerge_HighlightRefsAppended(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name:          "Elena",
		HighlightRefs: []string{"h1"},
	})
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:          "Elena",
		HighlightRefs: []string{"h2"},
	})

	merged := mustMerge(t, existing, delta)

	got := merged.Characters[0].HighlightRefs
	if !reflect.DeepEqual(got, []string{"h1", "h2"}) {
		t.Errorf("got highlight refs %v, want [h1 h2]", got)
	}
}

func TestMerge_SubstringFallback(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name: "Captain Aldous Vane",
	})
	delta := singleCharGraph(TrackIncremental, &Entity{
		Name:        "aldous vane",
		Description: "Master of the Heron",
	})

	merged := mustMerge(t, existing, delta)

	if len(merged.Characters) != 1 {
		t.Fatalf("substring tier should match: got %d characters", len(merged.Characters))
	}
	if merged.Characters[0].Name != "Captain Aldous Vane" {
		t.Errorf("got name %q, want existing canonical", merged.Characters[0].Name)
	}
}

func TestMerge_TimelineAppendAndResort(t *testing.T) {
	existing := NewGraph(TrackIncremental)
	existing.Timeline = []Event{{Description: "The fire", Position: 0.4}}

	delta := NewGraph(TrackIncremental)
	delta.Timeline = []Event{
		{Description: "The arrival", Position: 0.1},
		{Description: "The trial", Position: 0.45},
	}

	merged := mustMerge(t, existing, delta)

	want := []Event{
		{Description: "The arrival", Position: 0.1},
		{Description: "The fire", Position: 0.4},
		{Description: "The trial", Position: 0.45},
	}
	if !reflect.DeepEqual(merged.Timeline, want) {
		t.Errorf("got timeline %v, want %v", merged.Timeline, want)
	}
}

func TestMerge_StatusReplacedWholesale(t *testing.T) {
	existing := NewGraph(TrackIncremental)
	existing.CurrentState = "Elena has reached the coast"

	delta := NewGraph(TrackIncremental)
	delta.CurrentState = "Elena is imprisoned"

	merged := mustMerge(t, existing, delta)

	if merged.CurrentState != "Elena is imprisoned" {
		t.Errorf("got current state %q, want replacement", merged.CurrentState)
	}
}

func TestMerge_ConclusionForCompleteTrack(t *testing.T) {
	existing := NewGraph(TrackComplete)
	delta := NewGraph(TrackComplete)
	delta.Conclusion = "All threads resolve at the lighthouse"

	merged := mustMerge(t, existing, delta)

	if merged.Conclusion != delta.Conclusion {
		t.Errorf("got conclusion %q, want %q", merged.Conclusion, delta.Conclusion)
	}
}

func TestMerge_TrackMismatchRejected(t *testing.T) {
	existing := NewGraph(TrackIncremental)
	delta := NewGraph(TrackComplete)

	m := &Merger{}
	got, err := m.Merge(existing, delta)
	if !errors.Is(err, ErrTrackMismatch) {
		t.Fatalf("got err %v, want ErrTrackMismatch", err)
	}
	if got != existing {
		t.Error("rejected merge should return the existing graph unchanged")
	}
}

func TestMerge_InvalidDeltaAtomicRejection(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{Name: "Elena"})
	delta := NewGraph(TrackIncremental)
	delta.Characters = []*Entity{
		{Name: "Bran"},
		{Name: ""}, // malformed
	}

	m := &Merger{}
	got, err := m.Merge(existing, delta)
	if !errors.Is(err, ErrInvalidDelta) {
		t.Fatalf("got err %v, want ErrInvalidDelta", err)
	}
	if got != existing {
		t.Error("rejected merge should return the existing graph unchanged")
	}
	if len(existing.Characters) != 1 || existing.Characters[0].Name != "Elena" {
		t.Error("existing graph was partially updated")
	}
}

// merge(G, D) == merge(merge(G, D), D) for the same delta.
func TestMerge_Idempotent(t *testing.T) {
	existing := singleCharGraph(TrackIncremental, &Entity{
		Name:    "Elena",
		Aliases: []string{"El"},
	})
	delta := NewGraph(TrackIncremental)
	delta.Characters = []*Entity{{
		Name:          "El",
		Aliases:       []string{"The Mapmaker"},
		Description:   "A cartographer",
		Connections:   []string{"Bran"},
		HighlightRefs: []string{"h1"},
	}}
	delta.Locations = []*Entity{{Name: "The Heron", Description: "A ship"}}
	delta.Timeline = []Event{{Description: "The arrival", Position: 0.1}}
	delta.CurrentState = "Underway"

	once := mustMerge(t, existing, delta)
	twice := mustMerge(t, once, delta)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestValidateDelta(t *testing.T) {
	valid := NewGraph(TrackIncremental)
	valid.Characters = []*Entity{{Name: "Elena"}}

	dupNames := NewGraph(TrackIncremental)
	dupNames.Themes = []*Entity{{Name: "Memory"}, {Name: "Memory"}}

	badAlias := NewGraph(TrackComplete)
	badAlias.Lexicon = []*Entity{{Name: "thaumaturgy", Aliases: []string{""}}}

	badEvent := NewGraph(TrackIncremental)
	badEvent.Timeline = []Event{{Description: "The fall", Position: -0.2}}

	tests := []struct {
		name    string
		graph   *Graph
		wantErr bool
	}{
		{"valid", valid, false},
		{"nil graph", nil, true},
		{"unknown track", NewGraph(Track("partial")), true},
		{"duplicate names in category", dupNames, true},
		{"empty alias", badAlias, true},
		{"negative event position", badEvent, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDelta(tt.graph)
			if tt.wantErr && !errors.Is(err, ErrInvalidDelta) {
				t.Errorf("got err %v, want ErrInvalidDelta", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
