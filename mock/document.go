package mock

import (
	"context"

	"github.com/fwojciec/manparse"
)

var _ manparse.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of manparse.DocumentService.
type DocumentService struct {
	CreateDocumentFn func(ctx context.Context, doc *manparse.Document) error
	FindDocumentFn   func(ctx context.Context, key manparse.DocumentKey) (*manparse.Document, error)
	FindDocumentsFn  func(ctx context.Context, filter manparse.DocumentFilter) ([]*manparse.Document, error)
	DeleteDocumentFn func(ctx context.Context, key manparse.DocumentKey) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *manparse.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocument(ctx context.Context, key manparse.DocumentKey) (*manparse.Document, error) {
	return s.FindDocumentFn(ctx, key)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter manparse.DocumentFilter) ([]*manparse.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, key manparse.DocumentKey) error {
	return s.DeleteDocumentFn(ctx, key)
}
