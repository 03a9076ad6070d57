package manparse

import (
	"context"
	"time"
)

// Source is the input to a parse. It is either a RawSource, which must be
// segmented, or a SegmentedSource, whose sections are already known.
type Source interface {
	source()
}

// RawSource holds the markup source of a page and, optionally, a plain-text
// rendering of the same page. The rendering is preferred for segmentation
// when present.
type RawSource struct {
	Raw      string
	Rendered string
}

// SegmentedSource holds a page that was segmented upstream. Synopsis and
// Options, if set, replace the SYNOPSIS and OPTIONS section bodies for field
// extraction. Raw, if set, is used for the content hash and header metadata.
type SegmentedSource struct {
	Sections []Section
	Synopsis string
	Options  string
	Raw      string
}

func (RawSource) source()       {}
func (SegmentedSource) source() {}

// Fetched is a page returned by a SourceService.
type Fetched struct {
	Key      DocumentKey
	Raw      string
	Rendered string
}

// Source returns the fetched text as a parse input.
func (f *Fetched) Source() Source {
	return RawSource{Raw: f.Raw, Rendered: f.Rendered}
}

// SourceService retrieves manual page text from an operating system's
// manual database.
type SourceService interface {
	// FetchSource returns the raw and rendered text of a page. A section of
	// zero selects the first matching section.
	// Returns ENOTFOUND if no such page exists.
	FetchSource(ctx context.Context, name string, section int) (*Fetched, error)
}

// Renderer converts an HTML rendering of a manual page into the plain-text
// layout the segmenter understands.
type Renderer interface {
	Render(html string) (string, error)
}

// ManifestEntry records the last successful parse of a page.
type ManifestEntry struct {
	Key          DocumentKey `json:"key"`
	ContentHash  string      `json:"contentHash"`
	RenderHash   string      `json:"renderHash"`
	ParseVersion string      `json:"parseVersion"`
	RunID        string      `json:"runId"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Matches reports whether the entry was produced from the same input by the
// same parse version, in which case re-parsing can be skipped.
func (e *ManifestEntry) Matches(contentHash, parseVersion string) bool {
	return e != nil && e.ContentHash == contentHash && e.ParseVersion == parseVersion
}

// ManifestService tracks content hashes of parsed pages across batch runs.
type ManifestService interface {
	// FindEntry retrieves the entry for key.
	// Returns ENOTFOUND if the page has never been parsed.
	FindEntry(ctx context.Context, key DocumentKey) (*ManifestEntry, error)

	// PutEntry creates or replaces the entry for e.Key.
	PutEntry(ctx context.Context, e *ManifestEntry) error

	// DeleteEntry removes the entry for key so the next batch run parses the
	// page again. Removing an absent entry is not an error.
	DeleteEntry(ctx context.Context, key DocumentKey) error
}
