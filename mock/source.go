package mock

import (
	"context"

	"github.com/fwojciec/manparse"
)

var _ manparse.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of manparse.SourceService.
type SourceService struct {
	FetchSourceFn func(ctx context.Context, name string, section int) (*manparse.Fetched, error)
}

func (s *SourceService) FetchSource(ctx context.Context, name string, section int) (*manparse.Fetched, error) {
	return s.FetchSourceFn(ctx, name, section)
}

var _ manparse.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of manparse.Renderer.
type Renderer struct {
	RenderFn func(html string) (string, error)
}

func (r *Renderer) Render(html string) (string, error) {
	return r.RenderFn(html)
}
