// Package legacy maps documents to and from the simplified shape consumed by
// older clients.
//
// The mapping is lossy toward the legacy side: flag arguments, optional and
// deprecated markers, example descriptions, output and tags, see-also
// sections, subsections, code blocks, keywords, metadata and provenance
// fields are not represented. ToDocument restores what the legacy shape
// carries and leaves the rest at zero values.
package legacy

import (
	"strings"

	"github.com/fwojciec/manparse"
)

// Document is the legacy document shape.
type Document struct {
	Name            string    `json:"name"`
	Section         int       `json:"section"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Synopsis        string    `json:"synopsis"`
	Category        string    `json:"category"`
	Sections        []Section `json:"sections"`
	Flags           []string  `json:"flags"`
	Examples        []string  `json:"examples"`
	SeeAlso         []string  `json:"seeAlso"`
	RelatedCommands []string  `json:"relatedCommands"`
	Complexity      string    `json:"complexity"`
}

// Section is a flat legacy section.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FromDocument converts doc to the legacy shape. Flags become "short, long"
// strings, examples their command text and see-also entries bare names.
func FromDocument(doc *manparse.Document) *Document {
	out := &Document{
		Name:            doc.Name,
		Section:         doc.Section,
		Title:           doc.Title,
		Description:     doc.Description,
		Synopsis:        doc.Synopsis,
		Category:        doc.Category,
		Sections:        make([]Section, 0, len(doc.Sections)),
		Flags:           make([]string, 0, len(doc.Flags)),
		Examples:        make([]string, 0, len(doc.Examples)),
		SeeAlso:         make([]string, 0, len(doc.SeeAlso)),
		RelatedCommands: append([]string{}, doc.RelatedCommands...),
		Complexity:      string(doc.Complexity),
	}

	for _, s := range doc.Sections {
		out.Sections = append(out.Sections, Section{Title: s.Title, Content: s.Content})
	}
	for _, f := range doc.Flags {
		out.Flags = append(out.Flags, FormatFlag(f))
	}
	for _, e := range doc.Examples {
		out.Examples = append(out.Examples, e.Command)
	}
	for _, r := range doc.SeeAlso {
		out.SeeAlso = append(out.SeeAlso, r.Name)
	}

	return out
}

// FormatFlag renders a flag as "short, long", or just the flag when it has no
// short form.
func FormatFlag(f manparse.Flag) string {
	if f.ShortFlag == "" {
		return f.Flag
	}
	return f.ShortFlag + ", " + f.Flag
}

// ParseFlag reverses FormatFlag. The long spelling, when present, becomes
// Flag.
func ParseFlag(s string) manparse.Flag {
	first, second, ok := strings.Cut(s, ",")
	first = strings.TrimSpace(first)
	if !ok {
		return manparse.Flag{Flag: first}
	}
	second = strings.TrimSpace(second)
	if strings.HasPrefix(first, "--") && !strings.HasPrefix(second, "--") {
		first, second = second, first
	}
	return manparse.Flag{Flag: second, ShortFlag: first}
}

// ToDocument converts a legacy document back. Sections are level 1 and get
// fresh IDs; see-also references have an unknown (zero) section; the
// complexity falls back to intermediate when the legacy value is not a known
// tier.
func ToDocument(l *Document) *manparse.Document {
	doc := &manparse.Document{
		Name:            l.Name,
		Section:         l.Section,
		Title:           l.Title,
		Description:     l.Description,
		Synopsis:        l.Synopsis,
		Category:        l.Category,
		Sections:        make([]manparse.Section, 0, len(l.Sections)),
		Flags:           make([]manparse.Flag, 0, len(l.Flags)),
		Examples:        make([]manparse.Example, 0, len(l.Examples)),
		SeeAlso:         make([]manparse.Reference, 0, len(l.SeeAlso)),
		RelatedCommands: append([]string{}, l.RelatedCommands...),
		Keywords:        []string{},
		Complexity:      manparse.Complexity(l.Complexity),
	}
	if doc.Category == "" {
		doc.Category = manparse.Category(l.Section)
	}
	if !doc.Complexity.IsValid() {
		doc.Complexity = manparse.ComplexityIntermediate
	}

	for _, s := range l.Sections {
		doc.Sections = append(doc.Sections, manparse.Section{
			Title:       s.Title,
			Content:     s.Content,
			Level:       1,
			Subsections: []manparse.Section{},
			CodeBlocks:  []string{},
		})
	}
	manparse.AssignSectionIDs(doc.Sections)

	for _, f := range l.Flags {
		doc.Flags = append(doc.Flags, ParseFlag(f))
	}
	for _, cmd := range l.Examples {
		doc.Examples = append(doc.Examples, manparse.Example{Command: cmd, Tags: []string{}})
	}
	for _, name := range l.SeeAlso {
		doc.SeeAlso = append(doc.SeeAlso, manparse.Reference{Name: name})
	}

	return doc
}
