package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/manparse"
)

var _ manparse.Renderer = (*Renderer)(nil)

// Column layout of rendered text.
const (
	subsectionIndent = 3
	proseIndent      = 7
	itemIndent       = 11
	codeIndent       = 15
)

// layout describes where a generator puts the page body and which heading
// levels mark sections and subsections.
type layout struct {
	root       string
	section    string
	subsection string
	skip       string
}

var layouts = map[Generator]layout{
	GeneratorMandoc: {
		root:       "div.manual-text",
		section:    "h1",
		subsection: "h2",
		skip:       "table.head, table.foot",
	},
	GeneratorGroff: {
		root:       "body",
		section:    "h2",
		subsection: "h3",
		skip:       "h1, hr",
	},
	GeneratorMan2HTML: {
		root:       "body",
		section:    "h2",
		subsection: "h3",
		skip:       "h1, hr, a[name='index'] ~ *",
	},
}

// blockTags are elements that start a new line of output.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "pre": true, "dl": true, "dt": true, "dd": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true, "hr": true, "main": true, "article": true, "body": true,
}

// Renderer converts HTML manual pages to rendered text. Section headings
// become upper-case lines in the first column, subsections are indented
// three columns, prose seven, list item bodies eleven and preformatted
// blocks fifteen.
type Renderer struct{}

// NewRenderer creates a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the text layout of html.
// Returns EINVALID if the HTML cannot be parsed.
func (r *Renderer) Render(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", manparse.Errorf(manparse.EINVALID, "failed to parse HTML: %v", err)
	}

	l, ok := layouts[Detect(doc)]
	if !ok {
		l = genericLayout(doc)
	}

	doc.Find("head, script, style, nav").Remove()
	if l.skip != "" {
		doc.Find(l.skip).Remove()
	}

	root := doc.Find(l.root).First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	w := &writer{layout: l}
	w.walk(root, proseIndent)
	w.flush()
	return strings.Join(w.lines, "\n") + "\n", nil
}

// genericLayout treats the shallowest heading level in use as sections,
// unless a single h1 acts as the page title.
func genericLayout(doc *goquery.Document) layout {
	h1 := doc.Find("h1").Length()
	if h1 > 1 || h1 == 1 && doc.Find("h2").Length() == 0 {
		return layout{root: "body", section: "h1", subsection: "h2"}
	}
	return layout{root: "body", section: "h2", subsection: "h3", skip: "h1"}
}

// writer accumulates output lines. Inline text gathers in para until a block
// boundary flushes it at the current indent.
type writer struct {
	layout layout
	lines  []string
	para   strings.Builder
	indent int
}

func (w *writer) walk(s *goquery.Selection, indent int) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		if name == "#text" {
			w.inline(c.Text(), indent)
			return
		}
		if !isBlock(c, name) {
			w.inline(c.Text(), indent)
			return
		}

		switch {
		case c.Is(w.layout.section):
			w.flush()
			w.blank()
			w.lines = append(w.lines, strings.ToUpper(collapse(c.Text())))
		case c.Is(w.layout.subsection):
			w.flush()
			w.blank()
			w.lines = append(w.lines, strings.Repeat(" ", subsectionIndent)+collapse(c.Text()))
		case name == "pre":
			w.flush()
			w.blank()
			w.pre(c.Text())
			w.blank()
		case name == "dt":
			w.flush()
			w.blank()
			w.walk(c, proseIndent)
			w.flush()
		case name == "dd":
			w.flush()
			w.walk(c, itemIndent)
			w.flush()
		case name == "tr":
			w.flush()
			var cells []string
			c.Find("td, th").Each(func(_ int, td *goquery.Selection) {
				if text := collapse(td.Text()); text != "" {
					cells = append(cells, text)
				}
			})
			if len(cells) > 0 {
				w.lines = append(w.lines, strings.Repeat(" ", indent)+strings.Join(cells, "   "))
			}
		case name == "br":
			w.flush()
		case name == "p" || name == "li":
			w.flush()
			w.blank()
			w.walk(c, indent)
			w.flush()
		default:
			w.flush()
			w.walk(c, indent)
			w.flush()
		}
	})
}

func (w *writer) inline(text string, indent int) {
	if w.para.Len() == 0 {
		w.indent = indent
	}
	w.para.WriteString(text)
}

func (w *writer) flush() {
	text := collapse(w.para.String())
	w.para.Reset()
	if text == "" {
		return
	}
	w.lines = append(w.lines, strings.Repeat(" ", w.indent)+text)
}

func (w *writer) blank() {
	if len(w.lines) > 0 && w.lines[len(w.lines)-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func (w *writer) pre(text string) {
	text = strings.Trim(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	pad := strings.Repeat(" ", codeIndent)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			w.lines = append(w.lines, "")
			continue
		}
		w.lines = append(w.lines, pad+line)
	}
}

// isBlock reports whether c starts a new line. A div or span holding only
// inline content stays inline.
func isBlock(c *goquery.Selection, name string) bool {
	if !blockTags[name] {
		return false
	}
	if name == "div" {
		for tag := range blockTags {
			if c.Find(tag).Length() > 0 {
				return true
			}
		}
		return false
	}
	return true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
