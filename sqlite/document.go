package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/manparse"
)

// Compile-time interface verification.
var _ manparse.DocumentService = (*DocumentService)(nil)

// DocumentService implements manparse.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// CreateDocument stores doc, replacing any document with the same key.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *manparse.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, section, title, complexity, content_hash, parse_version, parsed_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, section) DO UPDATE SET
			title = excluded.title,
			complexity = excluded.complexity,
			content_hash = excluded.content_hash,
			parse_version = excluded.parse_version,
			parsed_at = excluded.parsed_at,
			body = excluded.body
	`, doc.Name, doc.Section, doc.Title, string(doc.Complexity), doc.ContentHash, doc.ParseVersion,
		doc.ParsedAt.UTC().Format(time.RFC3339), string(body))

	return err
}

// FindDocument retrieves a document by key.
func (s *DocumentService) FindDocument(ctx context.Context, key manparse.DocumentKey) (*manparse.Document, error) {
	var body string

	err := s.db.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE name = ? AND section = ?
	`, key.Name, key.Section).Scan(&body)

	if err == sql.ErrNoRows {
		return nil, manparse.Errorf(manparse.ENOTFOUND, "document %s not found", key)
	}
	if err != nil {
		return nil, err
	}

	return decodeDocument(body)
}

// FindDocuments retrieves documents matching the filter, ordered by name and
// section.
func (s *DocumentService) FindDocuments(ctx context.Context, filter manparse.DocumentFilter) ([]*manparse.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT body FROM documents WHERE 1=1")

	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}
	if filter.Section != nil {
		query.WriteString(" AND section = ?")
		args = append(args, *filter.Section)
	}
	if filter.Complexity != nil {
		query.WriteString(" AND complexity = ?")
		args = append(args, string(*filter.Complexity))
	}

	query.WriteString(" ORDER BY name ASC, section ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*manparse.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}

		doc, err := decodeDocument(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, key manparse.DocumentKey) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ? AND section = ?", key.Name, key.Section)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return manparse.Errorf(manparse.ENOTFOUND, "document %s not found", key)
	}

	return nil
}

func decodeDocument(body string) (*manparse.Document, error) {
	var doc manparse.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}
