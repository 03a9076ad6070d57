package batch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/batch"
	"github.com/fwojciec/manparse/mock"
	"github.com/fwojciec/manparse/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchedPage(name string, section int) *manparse.Fetched {
	return &manparse.Fetched{
		Key:      manparse.DocumentKey{Name: name, Section: section},
		Raw:      ".TH " + name + " 1\n.SH NAME\n" + name + " \\- does things\n",
		Rendered: "NAME\n       " + name + " - does things\n",
	}
}

func sources(missing ...string) *mock.SourceService {
	absent := make(map[string]bool)
	for _, name := range missing {
		absent[name] = true
	}
	return &mock.SourceService{
		FetchSourceFn: func(_ context.Context, name string, section int) (*manparse.Fetched, error) {
			if absent[name] {
				return nil, manparse.Errorf(manparse.ENOTFOUND, "no manual entry for %s", name)
			}
			if section == 0 {
				section = 1
			}
			return fetchedPage(name, section), nil
		},
	}
}

func parser(content string) *mock.Parser {
	return &mock.Parser{
		ParseFn: func(key manparse.DocumentKey, src manparse.Source) (*manparse.Document, error) {
			raw := src.(manparse.RawSource)
			return &manparse.Document{
				Name:         key.Name,
				Section:      key.Section,
				Sections:     []manparse.Section{{ID: "name", Title: "NAME", Content: content, Level: 1}},
				ContentHash:  parse.ContentHash(raw.Raw, raw.Rendered),
				ParseVersion: manparse.ParseVersion,
			}, nil
		},
	}
}

type collector struct {
	mu   sync.Mutex
	docs []*manparse.Document
}

func (c *collector) writer() *mock.DocumentWriter {
	return &mock.DocumentWriter{
		CreateDocumentFn: func(_ context.Context, doc *manparse.Document) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.docs = append(c.docs, doc)
			return nil
		},
	}
}

func keys(names ...string) []manparse.DocumentKey {
	out := make([]manparse.DocumentKey, len(names))
	for i, n := range names {
		out[i] = manparse.DocumentKey{Name: n}
	}
	return out
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("parses every request and resolves sections", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ls - list"),
			Documents:   c.writer(),
			Pause:       0,
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls", "cat", "tar"), nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Parsed)
		assert.Equal(t, 3, result.Total())
		assert.Empty(t, result.Failures)
		assert.NotEmpty(t, result.RunID)
		require.Len(t, c.docs, 3)
		for _, doc := range c.docs {
			assert.Equal(t, 1, doc.Section)
		}
	})

	t.Run("counts missing pages without stopping", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources:     sources("nosuchcmd"),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			RetryDelays: []time.Duration{0, 0},
		}

		result, err := r.Run(context.Background(), keys("ls", "nosuchcmd", "cat"), nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Parsed)
		assert.Equal(t, 1, result.NotFound)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "nosuchcmd", result.Failures[0].Key.Name)
		assert.Equal(t, manparse.ENOTFOUND, manparse.ErrorCode(result.Failures[0].Err))
	})

	t.Run("records parse failures and continues", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources: sources(),
			Parser: &mock.Parser{
				ParseFn: func(key manparse.DocumentKey, _ manparse.Source) (*manparse.Document, error) {
					if key.Name == "bad" {
						return nil, manparse.Errorf(manparse.EMALFORMED, "no sections")
					}
					return &manparse.Document{Name: key.Name, Section: key.Section, ParseVersion: manparse.ParseVersion}, nil
				},
			},
			Documents:   c.writer(),
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("bad", "ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Parsed)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(result.Failures[0].Err))
	})

	t.Run("flags documents with residual markup and does not publish them", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser(`\fBls\fR - list`),
			Documents:   c.writer(),
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Flagged)
		assert.Empty(t, c.docs)
		assert.Equal(t, manparse.EARTIFACT, manparse.ErrorCode(result.Failures[0].Err))
	})

	t.Run("drops duplicate requests", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls", "LS", "ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Total())
	})

	t.Run("skips pages whose manifest entry matches", func(t *testing.T) {
		t.Parallel()

		unchanged := fetchedPage("ls", 1)
		var puts []*manparse.ManifestEntry
		var mu sync.Mutex
		manifest := &mock.ManifestService{
			FindEntryFn: func(_ context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error) {
				if key.Name == "ls" {
					return &manparse.ManifestEntry{
						Key:          key,
						ContentHash:  parse.ContentHash(unchanged.Raw, unchanged.Rendered),
						ParseVersion: manparse.ParseVersion,
					}, nil
				}
				return nil, manparse.Errorf(manparse.ENOTFOUND, "not found")
			},
			PutEntryFn: func(_ context.Context, e *manparse.ManifestEntry) error {
				mu.Lock()
				defer mu.Unlock()
				puts = append(puts, e)
				return nil
			},
		}

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			Manifest:    manifest,
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls", "cat"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.Parsed)
		require.Len(t, puts, 1)
		assert.Equal(t, "cat", puts[0].Key.Name)
		assert.Equal(t, result.RunID, puts[0].RunID)
		assert.Equal(t, batch.RenderHash(fetchedPage("cat", 1).Rendered), puts[0].RenderHash)
	})

	t.Run("force re-parses matching pages", func(t *testing.T) {
		t.Parallel()

		page := fetchedPage("ls", 1)
		manifest := &mock.ManifestService{
			FindEntryFn: func(_ context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error) {
				return &manparse.ManifestEntry{Key: key, ContentHash: parse.ContentHash(page.Raw, page.Rendered), ParseVersion: manparse.ParseVersion}, nil
			},
			PutEntryFn: func(_ context.Context, _ *manparse.ManifestEntry) error { return nil },
		}

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			Manifest:    manifest,
			Force:       true,
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Parsed)
		assert.Equal(t, 0, result.Skipped)
	})

	t.Run("re-parses when the parse version changed", func(t *testing.T) {
		t.Parallel()

		page := fetchedPage("ls", 1)
		manifest := &mock.ManifestService{
			FindEntryFn: func(_ context.Context, key manparse.DocumentKey) (*manparse.ManifestEntry, error) {
				return &manparse.ManifestEntry{Key: key, ContentHash: parse.ContentHash(page.Raw, page.Rendered), ParseVersion: "0.0.1"}, nil
			},
			PutEntryFn: func(_ context.Context, _ *manparse.ManifestEntry) error { return nil },
		}

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			Manifest:    manifest,
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Parsed)
	})

	t.Run("processes in groups and reports progress", func(t *testing.T) {
		t.Parallel()

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			GroupSize:   2,
			Pause:       time.Millisecond,
			RetryDelays: []time.Duration{},
		}

		var events []batch.ProgressEvent
		result, err := r.Run(context.Background(), keys("a", "b", "c", "d", "e"), func(e batch.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, 5, result.Parsed)
		require.Len(t, events, 7)
		assert.Equal(t, batch.ProgressStarted, events[0].Type)
		assert.Equal(t, 5, events[0].Total)
		assert.Equal(t, batch.ProgressCompleted, events[1].Type)
		assert.Equal(t, batch.OutcomeParsed, events[1].Outcome)
		assert.Equal(t, batch.ProgressFinished, events[6].Type)
		assert.Equal(t, 5, events[6].Completed)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var c collector
		r := &batch.Runner{
			Sources:     sources(),
			Parser:      parser("ok"),
			Documents:   c.writer(),
			RetryDelays: []time.Duration{},
		}

		_, err := r.Run(ctx, keys("ls"), nil)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("records writer failures", func(t *testing.T) {
		t.Parallel()

		r := &batch.Runner{
			Sources: sources(),
			Parser:  parser("ok"),
			Documents: &mock.DocumentWriter{
				CreateDocumentFn: func(_ context.Context, _ *manparse.Document) error {
					return errors.New("disk full")
				},
			},
			RetryDelays: []time.Duration{},
		}

		result, err := r.Run(context.Background(), keys("ls"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
	})
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("retries transient errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, name string, section int) (*manparse.Fetched, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("busy")
			}
			return fetchedPage(name, 1), nil
		}

		f, err := batch.FetchWithRetry(context.Background(), "ls", 0, fetch, []time.Duration{0, 0, 0})

		require.NoError(t, err)
		assert.Equal(t, "ls", f.Key.Name)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string, _ int) (*manparse.Fetched, error) {
			calls++
			return nil, manparse.Errorf(manparse.ENOTFOUND, "missing")
		}

		_, err := batch.FetchWithRetry(context.Background(), "ls", 0, fetch, []time.Duration{0, 0})

		assert.Equal(t, manparse.ENOTFOUND, manparse.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("returns the last error after all attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(_ context.Context, _ string, _ int) (*manparse.Fetched, error) {
			calls++
			return nil, errors.New("busy")
		}

		_, err := batch.FetchWithRetry(context.Background(), "ls", 0, fetch, []time.Duration{0})

		assert.EqualError(t, err, "busy")
		assert.Equal(t, 2, calls)
	})
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	got := batch.Dedupe([]manparse.DocumentKey{
		{Name: "ls"}, {Name: "printf", Section: 1}, {Name: "printf", Section: 3}, {Name: "Ls"}, {Name: "printf", Section: 1},
	})

	assert.Equal(t, []manparse.DocumentKey{
		{Name: "ls"}, {Name: "printf", Section: 1}, {Name: "printf", Section: 3},
	}, got)
}
