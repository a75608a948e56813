package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sidecar.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(coverage float64) *Record {
	return &Record{
		DocumentID:   "doc-1",
		Type:         ArtifactXRay,
		Track:        "incremental",
		Content:      `{"track":"incremental"}`,
		Coverage:     coverage,
		WithText:     true,
		ModelID:      "test-model",
		GenerationID: "gen-1",
		GeneratedAt:  time.Now().UnixMilli(),
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := testRecord(0.30)
	want.WithHighlights = true
	if err := s.Put(want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get("doc-1", ArtifactXRay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("got nil record")
	}
	if got.Coverage != 0.30 {
		t.Errorf("got coverage %v, want 0.30", got.Coverage)
	}
	if !got.WithText || !got.WithHighlights {
		t.Errorf("provenance flags lost: %+v", got)
	}
	if got.Track != "incremental" || got.ModelID != "test-model" {
		t.Errorf("metadata lost: %+v", got)
	}
}

func TestStore_GetMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get("doc-1", ArtifactSummary)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

// Coverage updates are monotonic: a put at 0.20 after a record at 0.50 is
// rejected and the store still shows 0.50.
func TestStore_MonotonicCoverage(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(testRecord(0.50)); err != nil {
		t.Fatalf("put 0.50: %v", err)
	}

	err := s.Put(testRecord(0.20))
	if !errors.Is(err, ErrStaleCoverage) {
		t.Fatalf("got err %v, want ErrStaleCoverage", err)
	}

	got, err := s.Get("doc-1", ArtifactXRay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Coverage != 0.50 {
		t.Errorf("stale put changed the store: coverage %v, want 0.50", got.Coverage)
	}
}

func TestStore_EqualCoverageAccepted(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(testRecord(0.50)); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec := testRecord(0.50)
	rec.Content = `{"track":"incremental","current_state":"later"}`
	if err := s.Put(rec); err != nil {
		t.Fatalf("equal-coverage put should replace: %v", err)
	}

	got, _ := s.Get("doc-1", ArtifactXRay)
	if got.Content != rec.Content {
		t.Errorf("content not replaced: %q", got.Content)
	}
}

func TestStore_CompleteNeverDowngrades(t *testing.T) {
	s := openTestStore(t)

	done := testRecord(1.0)
	done.Track = "complete"
	done.Complete = true
	if err := s.Put(done); err != nil {
		t.Fatalf("put complete: %v", err)
	}

	partial := testRecord(0.80)
	partial.Track = "complete"
	err := s.Put(partial)
	if !errors.Is(err, ErrStaleCoverage) {
		t.Fatalf("got err %v, want ErrStaleCoverage", err)
	}
}

func TestStore_TrackChangeRejected(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(testRecord(0.30)); err != nil {
		t.Fatalf("put: %v", err)
	}

	complete := testRecord(1.0)
	complete.Track = "complete"
	err := s.Put(complete)
	if !errors.Is(err, ErrTrackChange) {
		t.Fatalf("got err %v, want ErrTrackChange", err)
	}
}

func TestStore_TrackSwitchAfterDelete(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put(testRecord(0.30)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("doc-1", ArtifactXRay); err != nil {
		t.Fatalf("delete: %v", err)
	}

	complete := testRecord(1.0)
	complete.Track = "complete"
	complete.Complete = true
	if err := s.Put(complete); err != nil {
		t.Errorf("put after delete should switch track: %v", err)
	}
}

func TestStore_DeleteMissingIsNoError(t *testing.T) {
	s := openTestStore(t)
	if err := s.Delete("doc-1", ArtifactRecap); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStore_ListPerDocument(t *testing.T) {
	s := openTestStore(t)

	for _, at := range []ArtifactType{ArtifactXRay, ArtifactSummary} {
		rec := testRecord(0.30)
		rec.Type = at
		if at != ArtifactXRay {
			rec.Track = ""
		}
		if err := s.Put(rec); err != nil {
			t.Fatalf("put %s: %v", at, err)
		}
	}
	other := testRecord(0.10)
	other.DocumentID = "doc-2"
	if err := s.Put(other); err != nil {
		t.Fatalf("put doc-2: %v", err)
	}

	records, err := s.List("doc-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Ordered by artifact type: summary before xray.
	if records[0].Type != ArtifactSummary || records[1].Type != ArtifactXRay {
		t.Errorf("unexpected order: %s, %s", records[0].Type, records[1].Type)
	}
}

func TestArtifactTypeValid(t *testing.T) {
	if !ArtifactXRay.Valid() {
		t.Error("xray should be valid")
	}
	if ArtifactType("poster").Valid() {
		t.Error("unknown type should be invalid")
	}
}

func TestRequiresTextExtraction(t *testing.T) {
	tests := []struct {
		t    ArtifactType
		want bool
	}{
		{ArtifactXRay, true},
		{ArtifactSimpleXRay, true},
		{ArtifactAnalysis, true},
		{ArtifactSummary, true},
		{ArtifactRecap, false},
	}
	for _, tt := range tests {
		if got := tt.t.RequiresTextExtraction(); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.t, got, tt.want)
		}
	}
}
