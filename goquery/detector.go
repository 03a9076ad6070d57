// Package goquery renders HTML manual pages into the plain-text layout
// produced by man(1), using goquery for HTML traversal.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Generator identifies the tool that converted a manual page to HTML.
type Generator string

// Known HTML generators.
const (
	GeneratorUnknown  Generator = "unknown"
	GeneratorMandoc   Generator = "mandoc"
	GeneratorGroff    Generator = "groff"
	GeneratorMan2HTML Generator = "man2html"
)

// Detect identifies the generator of doc from its meta generator tag and
// structural markers. Returns GeneratorUnknown if it cannot be determined.
func Detect(doc *goquery.Document) Generator {
	if g := detectFromMetaGenerator(doc); g != GeneratorUnknown {
		return g
	}

	// mandoc wraps the page body in div.manual-text
	if hasSelector(doc, "div.manual-text") || hasSelector(doc, "table.head") && hasSelector(doc, "section.Sh") {
		return GeneratorMandoc
	}

	// man2html anchors every heading as lbAB, lbAC, ...
	if hasSelector(doc, "a[name^='lbA']") {
		return GeneratorMan2HTML
	}

	return GeneratorUnknown
}

// DetectHTML parses html and identifies its generator.
func DetectHTML(html string) Generator {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return GeneratorUnknown
	}
	return Detect(doc)
}

func detectFromMetaGenerator(doc *goquery.Document) Generator {
	generator := ""
	doc.Find("meta[name='generator'], meta[name='Generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator = strings.ToLower(content)
		}
	})

	switch {
	case generator == "":
		return GeneratorUnknown
	case strings.Contains(generator, "mandoc"):
		return GeneratorMandoc
	case strings.Contains(generator, "groff"):
		return GeneratorGroff
	case strings.Contains(generator, "man2html"):
		return GeneratorMan2HTML
	}
	return GeneratorUnknown
}

func hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
