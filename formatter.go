package manparse

import (
	"strings"
)

// FormatDocument formats a document as plain text for terminal display.
// Sections are rendered with their title as a heading, subsections indented
// below, and code blocks indented by four spaces.
func FormatDocument(doc *Document) string {
	if doc == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(doc.Key().String())
	if doc.Title != "" {
		b.WriteString(" - ")
		b.WriteString(doc.Title)
	}
	b.WriteString("\n")

	for _, s := range doc.Sections {
		b.WriteString("\n")
		formatSection(&b, s, "")
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatSection(b *strings.Builder, s Section, indent string) {
	b.WriteString(indent)
	b.WriteString(s.Title)
	b.WriteString("\n")

	if s.Content != "" {
		for _, line := range strings.Split(s.Content, "\n") {
			b.WriteString(indent + "  " + line + "\n")
		}
	}
	for _, code := range s.CodeBlocks {
		for _, line := range strings.Split(code, "\n") {
			b.WriteString(indent + "    " + line + "\n")
		}
	}
	for _, sub := range s.Subsections {
		formatSection(b, sub, indent+"  ")
	}
}
