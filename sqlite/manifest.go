package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/manparse"
)

// Compile-time interface verification.
var _ manparse.ManifestService = (*ManifestService)(nil)

// ManifestService implements manparse.ManifestService using SQLite.
type ManifestService struct {
	db *DB
}

// NewManifestService creates a new ManifestService.
func NewManifestService(db *DB) *ManifestService {
	return &ManifestService{db: db}
}

// FindEntry retrieves the manifest entry for key.
func (s *ManifestService) FindEntry(ctx context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error) {
	e := manparse.ManifestEntry{Key: key}
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, render_hash, parse_version, run_id, updated_at
		FROM manifest
		WHERE name = ? AND section = ?
	`, key.Name, key.Section).Scan(&e.ContentHash, &e.RenderHash, &e.ParseVersion, &e.RunID, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, manparse.Errorf(manparse.ENOTFOUND, "manifest entry %s not found", key)
	}
	if err != nil {
		return nil, err
	}

	if e.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &e, nil
}

// PutEntry creates or replaces the entry for e.Key. UpdatedAt is set to the
// current time when zero.
func (s *ManifestService) PutEntry(ctx context.Context, e *manparse.ManifestEntry) error {
	if e.Key.Name == "" || e.ContentHash == "" {
		return manparse.Errorf(manparse.EINVALID, "manifest entry requires a name and content hash")
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manifest (name, section, content_hash, render_hash, parse_version, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, section) DO UPDATE SET
			content_hash = excluded.content_hash,
			render_hash = excluded.render_hash,
			parse_version = excluded.parse_version,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, e.Key.Name, e.Key.Section, e.ContentHash, e.RenderHash, e.ParseVersion, e.RunID,
		e.UpdatedAt.UTC().Format(time.RFC3339))

	return err
}

// DeleteEntry removes the entry for key, if any.
func (s *ManifestService) DeleteEntry(ctx context.Context, key manparse.DocumentKey) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM manifest WHERE name = ? AND section = ?", key.Name, key.Section)
	return err
}
