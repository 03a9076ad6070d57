package manparse

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Document is the canonical output of parsing one manual page.
// It is built fresh on every parse and never mutated afterwards.
type Document struct {
	Name        string `json:"name"`
	Section     int    `json:"section"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Synopsis    string `json:"synopsis"`
	Category    string `json:"category"`

	Sections        []Section   `json:"sections"`
	Flags           []Flag      `json:"flags"`
	Examples        []Example   `json:"examples"`
	RelatedCommands []string    `json:"relatedCommands"`
	SeeAlso         []Reference `json:"seeAlso"`
	Keywords        []string    `json:"keywords"`
	Complexity      Complexity  `json:"complexity"`
	Metadata        *Metadata   `json:"metadata,omitempty"`

	SearchContent string    `json:"searchContent"`
	ContentHash   string    `json:"contentHash"`
	ParsedAt      time.Time `json:"parsedAt"`
	ParseVersion  string    `json:"parseVersion"`
	IsCommon      bool      `json:"isCommon"`
}

// Key returns the document's natural key.
func (d *Document) Key() DocumentKey {
	return DocumentKey{Name: d.Name, Section: d.Section}
}

var nameRe = regexp.MustCompile(`^[a-z0-9_][a-z0-9._+:-]*$`)

// Validate returns EMALFORMED if fields required for a usable document are
// missing.
func (d *Document) Validate() error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.Name, validation.Required, validation.Match(nameRe)),
		validation.Field(&d.Section, validation.Required, validation.Min(1), validation.Max(8)),
		validation.Field(&d.Sections, validation.Required),
	)
	if err != nil {
		return Errorf(EMALFORMED, "document %s: %v", d.Key(), err)
	}
	return nil
}

// Section is a named region of a manual page. Level is 1 for top-level
// sections and 2 for subsections.
type Section struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Level       int       `json:"level"`
	Subsections []Section `json:"subsections"`
	CodeBlocks  []string  `json:"codeBlocks"`
}

// Flag is a documented command-line option. Flag holds the long spelling when
// one exists; ShortFlag holds the paired short spelling.
type Flag struct {
	Flag        string `json:"flag"`
	ShortFlag   string `json:"shortFlag,omitempty"`
	Description string `json:"description"`
	Argument    string `json:"argument,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Deprecated  bool   `json:"deprecated,omitempty"`
}

// Example is a worked command from the EXAMPLES section.
type Example struct {
	Command     string   `json:"command"`
	Description string   `json:"description"`
	Output      string   `json:"output,omitempty"`
	Tags        []string `json:"tags"`
}

// Example tags. The set is closed; tags derive only from the command text.
const (
	TagPipe         = "pipe"
	TagRedirect     = "redirect"
	TagGlob         = "glob"
	TagSubstitution = "substitution"
	TagSudo         = "sudo"
	TagBackground   = "background"
	TagChain        = "chain"
	TagVariable     = "variable"
)

// Reference is a cross reference to another manual page.
// Section is zero when unknown.
type Reference struct {
	Name    string `json:"name"`
	Section int    `json:"section"`
}

// String returns the reference in name(section) form.
func (r Reference) String() string {
	if r.Section == 0 {
		return r.Name
	}
	return r.Name + "(" + strconv.Itoa(r.Section) + ")"
}

// Metadata holds information recovered from header directives.
type Metadata struct {
	Author  string `json:"author,omitempty"`
	Version string `json:"version,omitempty"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
	Manual  string `json:"manual,omitempty"`
}

// IsZero reports whether no metadata field is set.
func (m *Metadata) IsZero() bool {
	return m == nil || *m == Metadata{}
}

// Complexity is a coarse difficulty tier assigned to a command.
type Complexity string

// Complexity tiers.
const (
	ComplexityBasic        Complexity = "basic"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// IsValid reports whether c is one of the defined tiers.
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityBasic, ComplexityIntermediate, ComplexityAdvanced:
		return true
	}
	return false
}

var categories = [...]string{
	1: "User Commands",
	2: "System Calls",
	3: "Library Functions",
	4: "Special Files",
	5: "File Formats",
	6: "Games",
	7: "Miscellaneous",
	8: "System Administration",
}

// Category returns the manual-section name for section, or "Unknown" when
// section is outside 1-8.
func Category(section int) string {
	if section < 1 || section >= len(categories) {
		return "Unknown"
	}
	return categories[section]
}

// DocumentKey identifies a manual page by name and section.
type DocumentKey struct {
	Name    string `json:"name"`
	Section int    `json:"section"`
}

// String returns the key in name.section form.
func (k DocumentKey) String() string {
	return k.Name + "." + strconv.Itoa(k.Section)
}

// Filename returns the file name a published document is stored under.
func (k DocumentKey) Filename() string {
	return k.String() + ".json"
}

var requestRe = regexp.MustCompile(`^([^\s()]+?)(?:\((\d)[a-z]*\)|\.(\d))?$`)

// ParseRequest parses "name", "name.section" or "name(section)" into a name
// and section. Section is zero when the request does not name one.
func ParseRequest(s string) (name string, section int, err error) {
	m := requestRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, Errorf(EINVALID, "invalid page request %q", s)
	}
	digits := m[2] + m[3]
	if digits != "" {
		section, _ = strconv.Atoi(digits)
		if section < 1 || section > 8 {
			return "", 0, Errorf(EINVALID, "invalid section in %q", s)
		}
	}
	return strings.ToLower(m[1]), section, nil
}

// Parser converts page source into a Document.
type Parser interface {
	// Parse assembles a document for key from src.
	// Returns EMALFORMED if required fields cannot be derived.
	Parse(key DocumentKey, src Source) (*Document, error)
}

// DocumentWriter writes documents to storage.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, doc *Document) error
}

// DocumentService represents a service for managing parsed documents.
type DocumentService interface {
	// CreateDocument stores a document, replacing any document with the same key.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocument retrieves a document by key.
	// Returns ENOTFOUND if the document does not exist.
	FindDocument(ctx context.Context, key DocumentKey) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if the document does not exist.
	DeleteDocument(ctx context.Context, key DocumentKey) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Name       *string     `json:"name"`
	Section    *int        `json:"section"`
	Complexity *Complexity `json:"complexity"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DocumentStore publishes documents with atomic semantics.
// CreateDocument and WriteIndex write to a pending location. Commit makes
// the pending changes permanent and Abort discards them.
type DocumentStore interface {
	DocumentWriter
	WriteIndex(ctx context.Context, idx *Index) error
	Commit() error
	Abort() error
}
