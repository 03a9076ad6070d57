package parse

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/troff"
)

// Ensure Parser implements manparse.Parser.
var _ manparse.Parser = (*Parser)(nil)

// Parser assembles documents from page source. It is immutable after
// construction and safe for concurrent use.
type Parser struct {
	normalizer *troff.Normalizer
	rules      *manparse.Rules
	classifier *Classifier
	relations  *Relations
	keywords   *Keywords

	// Now returns the parse timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewParser returns a Parser using normalizer for raw markup and rules for
// every heuristic.
func NewParser(normalizer *troff.Normalizer, rules *manparse.Rules) *Parser {
	return &Parser{
		normalizer: normalizer,
		rules:      rules,
		classifier: NewClassifier(rules),
		relations:  NewRelations(rules),
		keywords:   NewKeywords(rules),
		Now:        time.Now,
	}
}

// Parse builds the document for key from src.
// Returns EMALFORMED if the document lacks a name, a section in 1-8 or any
// section content.
func (p *Parser) Parse(key manparse.DocumentKey, src manparse.Source) (*manparse.Document, error) {
	name := strings.ToLower(strings.TrimSpace(key.Name))

	var (
		page     *Page
		raw      string
		hash     string
		synopsis string
		options  string
	)
	switch s := src.(type) {
	case manparse.RawSource:
		raw = s.Raw
		page = p.segment(s)
		hash = ContentHash(s.Raw, s.Rendered)
	case manparse.SegmentedSource:
		raw = s.Raw
		page = NewPage(s.Sections)
		hash = ContentHash(s.Raw, page.Text())
		synopsis = collapseSpace(s.Synopsis)
		options = s.Options
	default:
		return nil, manparse.Errorf(manparse.EMALFORMED, "%s: unsupported source %T", key, src)
	}

	if synopsis == "" {
		synopsis = ExtractSynopsis(page)
	}
	if options == "" {
		options = page.Body(p.rules.OptionSections...)
	}
	if options == "" {
		options = page.Body("DESCRIPTION")
	}

	doc := &manparse.Document{
		Name:         name,
		Section:      key.Section,
		Title:        ExtractTitle(page, name),
		Description:  ExtractDescription(page, p.rules.MaxDescription),
		Synopsis:     synopsis,
		Category:     manparse.Category(key.Section),
		Sections:     page.Sections,
		Flags:        ExtractFlags(synopsis, options),
		Examples:     ExtractExamples(page.Body(p.rules.ExampleSections...)),
		Metadata:     p.metadata(raw, page),
		ContentHash:  hash,
		ParsedAt:     p.Now().UTC(),
		ParseVersion: manparse.ParseVersion,
	}
	doc.SeeAlso = ExtractSeeAlso(page.Body("SEE ALSO"), name)
	doc.RelatedCommands = p.relations.ExtractRelated(page.Text(), doc.SeeAlso, name)
	manparse.AssignSectionIDs(doc.Sections)

	doc.Complexity = p.classifier.Classify(name, len(doc.Flags), len(doc.Examples))
	doc.IsCommon = p.classifier.IsCommon(name)
	doc.Keywords = p.keywords.Build(doc)
	doc.SearchContent = BuildSearchContent(doc, p.rules.SearchSectionPrefix)

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// segment prefers the rendered text and falls back to normalized markup.
// Non-empty input whose text cleans away entirely still yields one section.
func (p *Parser) segment(s manparse.RawSource) *Page {
	var text string
	if strings.TrimSpace(s.Rendered) != "" {
		text = CleanRendered(s.Rendered)
	} else {
		text = p.normalizer.Normalize(s.Raw)
	}

	page := Segment(text)
	if len(page.Sections) == 0 && strings.TrimSpace(s.Raw+s.Rendered) != "" {
		page = NewPage([]manparse.Section{{
			Title:       "Content",
			Content:     strings.TrimSpace(text),
			Level:       1,
			Subsections: []manparse.Section{},
			CodeBlocks:  []string{},
		}})
	}
	return page
}

func (p *Parser) metadata(raw string, page *Page) *manparse.Metadata {
	md := p.normalizer.ParseHeader(raw)
	if md == nil {
		md = &manparse.Metadata{}
	}
	if md.Author == "" {
		md.Author = ExtractAuthor(page)
	}
	if md.IsZero() {
		return nil
	}
	return md
}

// ContentHash returns the hex SHA-256 digest of raw, or of rendered when raw
// is empty.
func ContentHash(raw, rendered string) string {
	input := raw
	if input == "" {
		input = rendered
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
