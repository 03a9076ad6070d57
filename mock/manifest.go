package mock

import (
	"context"

	"github.com/fwojciec/manparse"
)

var _ manparse.ManifestService = (*ManifestService)(nil)

// ManifestService is a mock implementation of manparse.ManifestService.
type ManifestService struct {
	FindEntryFn   func(ctx context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error)
	PutEntryFn    func(ctx context.Context, e *manparse.ManifestEntry) error
	DeleteEntryFn func(ctx context.Context, key manparse.DocumentKey) error
}

func (s *ManifestService) FindEntry(ctx context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error) {
	return s.FindEntryFn(ctx, key)
}

func (s *ManifestService) PutEntry(ctx context.Context, e *manparse.ManifestEntry) error {
	return s.PutEntryFn(ctx, e)
}

func (s *ManifestService) DeleteEntry(ctx context.Context, key manparse.DocumentKey) error {
	return s.DeleteEntryFn(ctx, key)
}
