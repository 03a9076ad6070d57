package mock

import (
	"context"

	"github.com/fwojciec/manparse"
)

var _ manparse.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of manparse.DocumentWriter.
type DocumentWriter struct {
	CreateDocumentFn func(ctx context.Context, doc *manparse.Document) error
}

func (w *DocumentWriter) CreateDocument(ctx context.Context, doc *manparse.Document) error {
	return w.CreateDocumentFn(ctx, doc)
}

var _ manparse.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of manparse.DocumentStore.
type DocumentStore struct {
	CreateDocumentFn func(ctx context.Context, doc *manparse.Document) error
	WriteIndexFn     func(ctx context.Context, idx *manparse.Index) error
	CommitFn         func() error
	AbortFn          func() error
}

func (s *DocumentStore) CreateDocument(ctx context.Context, doc *manparse.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentStore) WriteIndex(ctx context.Context, idx *manparse.Index) error {
	return s.WriteIndexFn(ctx, idx)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}
