// Package batch parses many manual pages in paced groups, skipping pages
// whose source is unchanged since the last run.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/bloom"
	"github.com/fwojciec/manparse/parse"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Default pacing.
const (
	DefaultGroupSize = 20
	DefaultPause     = 100 * time.Millisecond
)

// Runner parses a list of page requests.
type Runner struct {
	Sources   manparse.SourceService
	Parser    manparse.Parser
	Documents manparse.DocumentWriter

	// Manifest, when set, enables skipping unchanged pages and records
	// every successful parse.
	Manifest manparse.ManifestService

	// Limiter, when set, paces source queries.
	Limiter *rate.Limiter

	GroupSize   int
	Pause       time.Duration
	Concurrency int
	RetryDelays []time.Duration

	// Force re-parses pages even when the manifest matches.
	Force bool
}

// Outcome classifies how a single request ended.
type Outcome string

// Request outcomes.
const (
	OutcomeParsed   Outcome = "parsed"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
	OutcomeFlagged  Outcome = "flagged"
)

// Failure records a request that did not produce a published document.
type Failure struct {
	Key manparse.DocumentKey
	Err error
}

// Result holds the outcome of a batch run.
type Result struct {
	RunID    string
	Parsed   int
	Skipped  int
	NotFound int
	Failed   int
	Flagged  int

	// Failures is sorted by key and includes not-found, failed and flagged
	// requests.
	Failures []Failure
}

// Total returns the number of requests processed.
func (r *Result) Total() int {
	return r.Parsed + r.Skipped + r.NotFound + r.Failed + r.Flagged
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Key       manparse.DocumentKey
	Outcome   Outcome
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// Duplicate requests are dropped using a Bloom filter with this false
// positive rate.
const dedupeFalsePositiveRate = 1e-6

// Dedupe returns requests with repeated keys removed, keeping the first
// occurrence. Names are compared case-insensitively.
func Dedupe(requests []manparse.DocumentKey) []manparse.DocumentKey {
	seen := bloom.NewFilter(uint(len(requests)), dedupeFalsePositiveRate)
	out := make([]manparse.DocumentKey, 0, len(requests))
	for _, req := range requests {
		req.Name = strings.ToLower(req.Name)
		if seen.TestAndAdd(req.String()) {
			continue
		}
		out = append(out, req)
	}
	return out
}

// RenderHash returns the xxhash fingerprint of a rendered page.
func RenderHash(rendered string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(rendered))
}

// Run processes requests in groups of GroupSize, pausing between groups.
// A request with section zero resolves to the first matching section.
// Individual failures are recorded in the result; Run returns an error only
// when ctx is canceled.
func (r *Runner) Run(ctx context.Context, requests []manparse.DocumentKey, progress ProgressFunc) (*Result, error) {
	requests = Dedupe(requests)

	groupSize := r.GroupSize
	if groupSize <= 0 {
		groupSize = DefaultGroupSize
	}
	pause := r.Pause
	if pause < 0 {
		pause = 0
	}
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = groupSize
	}

	result := &Result{RunID: uuid.NewString()}
	total := len(requests)

	var mu sync.Mutex
	completed := 0
	record := func(key manparse.DocumentKey, outcome Outcome, err error) {
		mu.Lock()
		defer mu.Unlock()

		switch outcome {
		case OutcomeParsed:
			result.Parsed++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeNotFound:
			result.NotFound++
		case OutcomeFailed:
			result.Failed++
		case OutcomeFlagged:
			result.Flagged++
		}
		if err != nil {
			result.Failures = append(result.Failures, Failure{Key: key, Err: err})
		}

		completed++
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     total,
				Key:       key,
				Outcome:   outcome,
				Error:     err,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	for start := 0; start < total; start += groupSize {
		if start > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(pause):
			}
		}

		end := min(start+groupSize, total)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, req := range requests[start:end] {
			g.Go(func() error {
				key, outcome, err := r.process(gctx, req, result.RunID)
				if ctx.Err() != nil {
					return ctx.Err()
				}
				record(key, outcome, err)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return result, err
		}
	}

	sort.Slice(result.Failures, func(i, j int) bool {
		a, b := result.Failures[i].Key, result.Failures[j].Key
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Section < b.Section
	})

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: completed, Total: total})
	}

	return result, nil
}

// process fetches, parses and publishes a single page.
func (r *Runner) process(ctx context.Context, req manparse.DocumentKey, runID string) (manparse.DocumentKey, Outcome, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return req, OutcomeFailed, err
		}
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	fetched, err := FetchWithRetry(ctx, req.Name, req.Section, r.Sources.FetchSource, delays)
	if manparse.ErrorCode(err) == manparse.ENOTFOUND {
		return req, OutcomeNotFound, err
	} else if err != nil {
		return req, OutcomeFailed, err
	}

	key := fetched.Key
	if key.Name == "" {
		key = req
	}

	contentHash := parse.ContentHash(fetched.Raw, fetched.Rendered)
	if r.Manifest != nil && !r.Force {
		entry, err := r.Manifest.FindEntry(ctx, key)
		if err != nil && manparse.ErrorCode(err) != manparse.ENOTFOUND {
			return key, OutcomeFailed, err
		}
		if entry.Matches(contentHash, manparse.ParseVersion) {
			return key, OutcomeSkipped, nil
		}
	}

	doc, err := r.Parser.Parse(key, fetched.Source())
	if err != nil {
		return key, OutcomeFailed, err
	}

	if err := parse.CheckArtifacts(doc); err != nil {
		return key, OutcomeFlagged, err
	}

	if err := r.Documents.CreateDocument(ctx, doc); err != nil {
		return key, OutcomeFailed, err
	}

	if r.Manifest != nil {
		err := r.Manifest.PutEntry(ctx, &manparse.ManifestEntry{
			Key:          key,
			ContentHash:  doc.ContentHash,
			RenderHash:   RenderHash(fetched.Rendered),
			ParseVersion: doc.ParseVersion,
			RunID:        runID,
		})
		if err != nil {
			return key, OutcomeFailed, err
		}
	}

	return key, OutcomeParsed, nil
}
