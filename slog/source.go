// Package slog provides logging decorators for manparse services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/manparse"
)

// Ensure LoggingSourceService implements manparse.SourceService.
var _ manparse.SourceService = (*LoggingSourceService)(nil)

// LoggingSourceService wraps a SourceService with logging.
type LoggingSourceService struct {
	next   manparse.SourceService
	logger *slog.Logger
}

// NewLoggingSourceService creates a new LoggingSourceService.
func NewLoggingSourceService(next manparse.SourceService, logger *slog.Logger) *LoggingSourceService {
	return &LoggingSourceService{next: next, logger: logger}
}

// FetchSource delegates to the wrapped service and logs the operation.
// Missing pages are logged at debug level.
func (s *LoggingSourceService) FetchSource(ctx context.Context, name string, section int) (f *manparse.Fetched, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if manparse.ErrorCode(err) == manparse.ENOTFOUND {
			level = slog.LevelDebug
		}
		var bytes int
		if f != nil {
			bytes = len(f.Raw) + len(f.Rendered)
		}
		s.logger.Log(ctx, level, "fetch source",
			"name", name,
			"section", section,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchSource(ctx, name, section)
}

// Ensure LoggingRenderer implements manparse.Renderer.
var _ manparse.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with debug logging.
type LoggingRenderer struct {
	next   manparse.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next manparse.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer and logs the operation.
func (r *LoggingRenderer) Render(html string) (text string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("render html",
			"in", len(html),
			"out", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(html)
}
