package xray

import (
	"errors"
	"testing"
)

const deltaJSON = `{
	"track": "incremental",
	"characters": [{"name": "Elena", "aliases": ["El"], "description": "A cartographer"}],
	"locations": [{"name": "The Heron"}],
	"timeline": [{"description": "The arrival", "position": 0.1}],
	"current_state": "Underway"
}`

func TestParseDelta_FencedBlock(t *testing.T) {
	text := "Here is the update you asked for:\n```json\n" + deltaJSON + "\n```\nLet me know if you need more."
	g, err := ParseDelta(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Track != TrackIncremental {
		t.Errorf("got track %q, want incremental", g.Track)
	}
	if len(g.Characters) != 1 || g.Characters[0].Name != "Elena" {
		t.Errorf("characters not parsed: %+v", g.Characters)
	}
}

func TestParseDelta_BareJSON(t *testing.T) {
	g, err := ParseDelta(deltaJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.CurrentState != "Underway" {
		t.Errorf("got current state %q, want %q", g.CurrentState, "Underway")
	}
}

func TestParseDelta_EmbeddedObject(t *testing.T) {
	text := "Sure! " + deltaJSON + " — that covers everything so far."
	g, err := ParseDelta(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Timeline) != 1 {
		t.Errorf("got %d timeline events, want 1", len(g.Timeline))
	}
}

func TestParseDelta_NoJSON(t *testing.T) {
	_, err := ParseDelta("I could not produce an update for this chapter.")
	if !errors.Is(err, ErrInvalidDelta) {
		t.Fatalf("got err %v, want ErrInvalidDelta", err)
	}
}

func TestParseDelta_InvalidStructure(t *testing.T) {
	_, err := ParseDelta(`{"track": "incremental", "characters": [{"name": ""}]}`)
	if !errors.Is(err, ErrInvalidDelta) {
		t.Fatalf("got err %v, want ErrInvalidDelta", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := NewGraph(TrackComplete)
	g.Characters = []*Entity{{Name: "Elena", Aliases: []string{"El"}}}
	g.Conclusion = "Resolved"

	content, err := g.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Track != TrackComplete || back.Conclusion != "Resolved" {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if len(back.Characters) != 1 || back.Characters[0].Name != "Elena" {
		t.Errorf("round trip lost characters: %+v", back.Characters)
	}
}
