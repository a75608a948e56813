package cache

import "errors"

// ErrStaleCoverage is returned by Put when the incoming record's coverage
// is lower than what is already stored. Merging backward risks overwriting
// newer entity state with stale data; the caller must regenerate instead.
// This is also how a late-arriving result from a cancelled generation is
// kept from corrupting a newer cache state.
var ErrStaleCoverage = errors.New("cache: coverage below stored record")

// ErrTrackChange is returned by Put when the incoming record's track
// differs from the stored one. Tracks are fixed at first generation;
// switching requires an explicit delete and full regeneration.
var ErrTrackChange = errors.New("cache: track differs from stored record")

// Store is the persistence collaborator for artifact records, keyed by
// (document_id, artifact_type). document_id must be stable across file
// moves; resolving that identity is the host's job, not the store's.
//
// The store provides no mutual exclusion. At-most-one in-flight generation
// per key is the caller's responsibility; the store only rejects stale
// updates after the fact via the coverage check.
type Store interface {
	// Get returns the stored record, or nil if none exists.
	Get(documentID string, t ArtifactType) (*Record, error)

	// Put atomically replaces the record for (rec.DocumentID, rec.Type).
	// Returns ErrStaleCoverage when rec would lower stored coverage and
	// ErrTrackChange when rec would switch tracks; the stored record is
	// untouched in both cases.
	Put(rec *Record) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(documentID string, t ArtifactType) error

	// List returns all records for a document, ordered by artifact type.
	List(documentID string) ([]*Record, error)
}

// checkReplace applies the replacement invariants of Put given the existing
// record (nil when absent). Shared by store implementations.
func checkReplace(existing, incoming *Record) error {
	if existing == nil {
		return nil
	}
	if existing.Track != "" && incoming.Track != existing.Track {
		return ErrTrackChange
	}
	if existing.Complete && !incoming.Complete {
		return ErrStaleCoverage
	}
	if incoming.Coverage < existing.Coverage {
		return ErrStaleCoverage
	}
	return nil
}
