package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/manparse"
)

// Ensure LoggingDocumentService implements manparse.DocumentService.
var _ manparse.DocumentService = (*LoggingDocumentService)(nil)

// LoggingDocumentService wraps a DocumentService with debug logging.
type LoggingDocumentService struct {
	next   manparse.DocumentService
	logger *slog.Logger
}

// NewLoggingDocumentService creates a new LoggingDocumentService.
func NewLoggingDocumentService(next manparse.DocumentService, logger *slog.Logger) *LoggingDocumentService {
	return &LoggingDocumentService{next: next, logger: logger}
}

func (s *LoggingDocumentService) CreateDocument(ctx context.Context, doc *manparse.Document) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create document",
			"key", doc.Key().String(),
			"complexity", string(doc.Complexity),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateDocument(ctx, doc)
}

func (s *LoggingDocumentService) FindDocument(ctx context.Context, key manparse.DocumentKey) (doc *manparse.Document, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find document",
			"key", key.String(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindDocument(ctx, key)
}

func (s *LoggingDocumentService) FindDocuments(ctx context.Context, filter manparse.DocumentFilter) (docs []*manparse.Document, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find documents",
			"count", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindDocuments(ctx, filter)
}

func (s *LoggingDocumentService) DeleteDocument(ctx context.Context, key manparse.DocumentKey) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete document",
			"key", key.String(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteDocument(ctx, key)
}
