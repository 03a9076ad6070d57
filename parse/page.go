// Package parse recovers the structure of a manual page from cleaned or
// rendered text and assembles it into a manparse.Document.
//
// Every extractor is a pure function of its input. A Parser holds only
// immutable configuration and is safe for concurrent use.
package parse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/fwojciec/manparse"
)

// Page is a manual page split into sections. Alongside the public sections it
// keeps the unprocessed body text of every top-level section, which the field
// extractors consume.
type Page struct {
	Sections []manparse.Section

	titles []string
	bodies map[string]string
}

// Body returns the body text of the first section whose title matches one of
// titles, case-insensitively. Returns "" when no section matches.
func (p *Page) Body(titles ...string) string {
	for _, t := range titles {
		if body, ok := p.bodies[strings.ToUpper(t)]; ok {
			return body
		}
	}
	return ""
}

// Text returns the bodies of all sections joined in source order.
func (p *Page) Text() string {
	parts := make([]string, 0, len(p.titles))
	for _, t := range p.titles {
		parts = append(parts, p.bodies[t])
	}
	return strings.Join(parts, "\n\n")
}

func (p *Page) addBody(title, body string) {
	key := strings.ToUpper(title)
	if _, exists := p.bodies[key]; exists {
		return
	}
	p.titles = append(p.titles, key)
	p.bodies[key] = body
}

// NewPage wraps sections segmented upstream. Section bodies are rebuilt from
// content, code blocks (indented by four spaces) and subsections.
func NewPage(sections []manparse.Section) *Page {
	p := &Page{
		Sections: cloneSections(sections),
		bodies:   make(map[string]string),
	}

	for _, s := range p.Sections {
		var b strings.Builder
		writeBody(&b, s)
		p.addBody(collapseSpace(s.Title), strings.Trim(b.String(), "\n"))
	}

	return p
}

func writeBody(b *strings.Builder, s manparse.Section) {
	if s.Content != "" {
		b.WriteString(s.Content)
		b.WriteString("\n\n")
	}
	for _, code := range s.CodeBlocks {
		for _, line := range strings.Split(code, "\n") {
			if line != "" {
				b.WriteString("    ")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	for _, sub := range s.Subsections {
		b.WriteString("   ")
		b.WriteString(sub.Title)
		b.WriteString("\n")
		writeBody(b, sub)
	}
}

func cloneSections(sections []manparse.Section) []manparse.Section {
	if sections == nil {
		return nil
	}
	out := make([]manparse.Section, len(sections))
	for i, s := range sections {
		s.CodeBlocks = append([]string(nil), s.CodeBlocks...)
		s.Subsections = cloneSections(s.Subsections)
		out[i] = s
	}
	return out
}

var headingRe = regexp.MustCompile(`^[A-Z][A-Z ]*$`)

// IsHeading reports whether line opens a top-level section: upper-case
// letters and spaces only, starting in the first column, with a length
// strictly between 2 and 50.
func IsHeading(line string) bool {
	line = strings.TrimRight(line, " \t")
	return len(line) > 2 && len(line) < 50 && headingRe.MatchString(line)
}

// isSubheading reports whether line opens a subsection: indented by two to
// five columns, shallower than code, and a short capitalized phrase that is
// neither a sentence nor an option.
func isSubheading(line string, indent, base int) bool {
	if indent < 2 || indent > 5 {
		return false
	}
	if base >= 0 && indent >= base+codeIndent {
		return false
	}

	text := strings.TrimSpace(line)
	r := []rune(text)
	if len(r) < 2 || !unicode.IsUpper(r[0]) {
		return false
	}
	if len(strings.Fields(text)) > 6 {
		return false
	}
	switch r[len(r)-1] {
	case '.', ',', ';', '!', '?':
		return false
	}
	return true
}

// codeIndent is the extra indentation, relative to a section's prose, that
// marks a line as code.
const codeIndent = 4

type segmentState int

const (
	outsideSection segmentState = iota
	inSectionBody
	inCodeBlock
)

// builder accumulates one section or subsection.
type builder struct {
	title    string
	level    int
	prose    []string
	code     []string
	blocks   []string
	subs     []*builder
	rawLines []string
}

func (b *builder) addProse(line string) {
	if line == "" {
		if len(b.prose) == 0 || b.prose[len(b.prose)-1] == "" {
			return
		}
	}
	b.prose = append(b.prose, line)
}

func (b *builder) commitCode() {
	if len(b.code) == 0 {
		return
	}
	b.blocks = append(b.blocks, dedent(b.code))
	b.code = nil
}

func (b *builder) section() manparse.Section {
	b.commitCode()
	s := manparse.Section{
		Title:       b.title,
		Content:     strings.TrimSpace(strings.Join(b.prose, "\n")),
		Level:       b.level,
		Subsections: []manparse.Section{},
		CodeBlocks:  b.blocks,
	}
	if s.CodeBlocks == nil {
		s.CodeBlocks = []string{}
	}
	for _, sub := range b.subs {
		s.Subsections = append(s.Subsections, sub.section())
	}
	return s
}

// segmenter is the line-oriented state machine behind Segment.
type segmenter struct {
	state    segmentState
	sections []*builder
	cur      *builder
	sub      *builder

	base         int  // indentation of the current section's prose
	itemIndent   int  // indentation of a hanging item's body, or -1
	prevProse    bool // previous non-blank line was prose
	blankSince   bool // a blank line followed the previous non-blank line
	pendingBlank int  // blank lines seen inside a code run
}

// Segment splits text into top-level sections and subsections and separates
// code blocks from prose. Text before the first heading is discarded. Text
// without any heading becomes a single "Content" section.
func Segment(text string) *Page {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(expandTabs(line), " ")
	}

	sg := &segmenter{}
	if !hasHeading(lines) {
		if strings.TrimSpace(text) == "" {
			return &Page{bodies: make(map[string]string)}
		}
		sg.open("Content")
	}

	for _, line := range lines {
		sg.line(line)
	}
	sg.close()

	p := &Page{bodies: make(map[string]string)}
	for _, b := range sg.sections {
		p.Sections = append(p.Sections, b.section())
		p.addBody(b.title, strings.Trim(strings.Join(b.rawLines, "\n"), "\n"))
	}
	return p
}

func hasHeading(lines []string) bool {
	for _, line := range lines {
		if IsHeading(line) {
			return true
		}
	}
	return false
}

func (sg *segmenter) open(title string) {
	sg.close()
	sg.cur = &builder{title: collapseSpace(title), level: 1}
	sg.sections = append(sg.sections, sg.cur)
	sg.sub = nil
	sg.state = inSectionBody
	sg.base = -1
	sg.resetFlow()
}

func (sg *segmenter) resetFlow() {
	sg.itemIndent = -1
	sg.prevProse = false
	sg.blankSince = false
	sg.pendingBlank = 0
}

// target returns the builder that receives body lines.
func (sg *segmenter) target() *builder {
	if sg.sub != nil {
		return sg.sub
	}
	return sg.cur
}

func (sg *segmenter) close() {
	if sg.cur == nil {
		return
	}
	sg.endCode()
}

func (sg *segmenter) endCode() {
	if sg.state != inCodeBlock {
		return
	}
	t := sg.target()
	t.commitCode()
	if sg.pendingBlank > 0 {
		t.addProse("")
	}
	sg.pendingBlank = 0
	sg.state = inSectionBody
}

func (sg *segmenter) line(line string) {
	if IsHeading(line) {
		sg.open(line)
		return
	}
	if sg.cur == nil {
		return
	}
	sg.cur.rawLines = append(sg.cur.rawLines, line)

	if line == "" {
		if sg.state == inCodeBlock {
			sg.pendingBlank++
		} else {
			sg.target().addProse("")
		}
		sg.blankSince = true
		return
	}

	indent := leadingSpaces(line)

	if isSubheading(line, indent, sg.base) {
		sg.endCode()
		sg.sub = &builder{title: strings.TrimSpace(line), level: 2}
		sg.cur.subs = append(sg.cur.subs, sg.sub)
		sg.resetFlow()
		return
	}

	if sg.base < 0 {
		sg.base = indent
	}

	if sg.isCode(indent) {
		t := sg.target()
		if sg.state == inCodeBlock {
			for ; sg.pendingBlank > 0; sg.pendingBlank-- {
				t.code = append(t.code, "")
			}
		} else {
			sg.state = inCodeBlock
		}
		t.code = append(t.code, line)
		sg.prevProse = false
		sg.blankSince = false
		return
	}

	sg.endCode()
	if indent >= sg.base+codeIndent {
		sg.itemIndent = indent
	} else if indent <= sg.base {
		sg.itemIndent = -1
	}
	sg.target().addProse(strings.TrimSpace(line))
	sg.prevProse = true
	sg.blankSince = false
}

// isCode decides whether a non-blank line at indent belongs to a code block.
// Lines indented at least four columns past the section's prose are code,
// unless they continue the previous prose line (hanging indent) or the body
// of a hanging item after a blank line.
func (sg *segmenter) isCode(indent int) bool {
	if indent < sg.base+codeIndent {
		return false
	}
	if sg.state == inCodeBlock {
		return true
	}
	if sg.prevProse && !sg.blankSince {
		return false
	}
	if sg.itemIndent >= 0 && indent < sg.itemIndent+codeIndent {
		return false
	}
	return true
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// dedent removes the common leading indentation of lines.
func dedent(lines []string) string {
	min := -1
	for _, l := range lines {
		if l == "" {
			continue
		}
		if n := leadingSpaces(l); min < 0 || n < min {
			min = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= min && min > 0 {
			out[i] = l[min:]
		} else {
			out[i] = l
		}
	}
	return strings.Join(out, "\n")
}
