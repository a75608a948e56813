package cache

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists artifact records in a sidecar SQLite database. The
// database lives next to the host's library data so records travel with it.
type SQLiteStore struct {
	conn   *sql.DB
	Path   string
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	document_id   TEXT NOT NULL,
	artifact_type TEXT NOT NULL,
	track         TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL,
	coverage      REAL NOT NULL DEFAULT 0,
	complete      INTEGER NOT NULL DEFAULT 0,
	with_text     INTEGER NOT NULL DEFAULT 0,
	with_hl       INTEGER NOT NULL DEFAULT 0,
	model_id      TEXT NOT NULL DEFAULT '',
	generation_id TEXT NOT NULL DEFAULT '',
	generated_at  INTEGER NOT NULL,
	PRIMARY KEY (document_id, artifact_type)
)`

// OpenSQLite opens (or creates) a sidecar store with WAL mode enabled.
// Pass nil for logger to disable logging.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sidecar database: %w", err)
	}

	// WAL lets the host read while a generation result is being written.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating artifacts table: %w", err)
	}

	return &SQLiteStore{conn: conn, Path: path, logger: logger}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

const recordColumns = `document_id, artifact_type, track, content, coverage,
	complete, with_text, with_hl, model_id, generation_id, generated_at`

// Get returns the stored record for (documentID, t), or nil if none exists.
func (s *SQLiteStore) Get(documentID string, t ArtifactType) (*Record, error) {
	row := s.conn.QueryRow(`
		SELECT `+recordColumns+`
		FROM artifacts
		WHERE document_id = ?1 AND artifact_type = ?2
	`, documentID, string(t))

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s/%s: %w", documentID, t, err)
	}
	return rec, nil
}

// Put atomically replaces the record, enforcing monotonic coverage and
// track immutability against the stored row inside one transaction.
func (s *SQLiteStore) Put(rec *Record) error {
	if !rec.Type.Valid() {
		return fmt.Errorf("unknown artifact type %q", rec.Type)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting write transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		SELECT `+recordColumns+`
		FROM artifacts
		WHERE document_id = ?1 AND artifact_type = ?2
	`, rec.DocumentID, string(rec.Type))
	existing, err := scanRecord(row)
	if err == sql.ErrNoRows {
		existing = nil
	} else if err != nil {
		return fmt.Errorf("reading stored artifact: %w", err)
	}

	if err := checkReplace(existing, rec); err != nil {
		// Expected race when a cancelled generation completes late; the
		// caller decides whether the user needs to hear about it.
		s.logger.Debug("rejecting artifact write",
			zap.String("document", rec.DocumentID),
			zap.String("type", string(rec.Type)),
			zap.Float64("coverage", rec.Coverage),
			zap.Error(err))
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO artifacts (`+recordColumns+`)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11)
		ON CONFLICT (document_id, artifact_type) DO UPDATE SET
			track = excluded.track,
			content = excluded.content,
			coverage = excluded.coverage,
			complete = excluded.complete,
			with_text = excluded.with_text,
			with_hl = excluded.with_hl,
			model_id = excluded.model_id,
			generation_id = excluded.generation_id,
			generated_at = excluded.generated_at
	`, rec.DocumentID, string(rec.Type), rec.Track, rec.Content, rec.Coverage,
		rec.Complete, rec.WithText, rec.WithHighlights, rec.ModelID,
		rec.GenerationID, rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("writing artifact %s/%s: %w", rec.DocumentID, rec.Type, err)
	}

	return tx.Commit()
}

// Delete removes the record. Deleting a missing record is not an error.
func (s *SQLiteStore) Delete(documentID string, t ArtifactType) error {
	_, err := s.conn.Exec(`
		DELETE FROM artifacts WHERE document_id = ?1 AND artifact_type = ?2
	`, documentID, string(t))
	if err != nil {
		return fmt.Errorf("deleting artifact %s/%s: %w", documentID, t, err)
	}
	return nil
}

// List returns all records for a document, ordered by artifact type.
func (s *SQLiteStore) List(documentID string) ([]*Record, error) {
	rows, err := s.conn.Query(`
		SELECT `+recordColumns+`
		FROM artifacts
		WHERE document_id = ?1
		ORDER BY artifact_type
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts for %s: %w", documentID, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning artifact row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var artifactType string
	err := s.Scan(&rec.DocumentID, &artifactType, &rec.Track, &rec.Content,
		&rec.Coverage, &rec.Complete, &rec.WithText, &rec.WithHighlights,
		&rec.ModelID, &rec.GenerationID, &rec.GeneratedAt)
	if err != nil {
		return nil, err
	}
	rec.Type = ArtifactType(artifactType)
	return &rec, nil
}
