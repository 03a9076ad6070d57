package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/manparse"
)

var (
	referenceRe = regexp.MustCompile(`([A-Za-z0-9_][A-Za-z0-9_.:+-]*)\s*\(([1-8])[A-Za-z]*\)`)
	wordTokenRe = regexp.MustCompile(`[A-Za-z0-9_][A-Za-z0-9_-]*`)
)

// ExtractSeeAlso returns the name(section) references in body in order of
// first appearance, without duplicates or references to self.
func ExtractSeeAlso(body, self string) []manparse.Reference {
	refs := []manparse.Reference{}
	seen := make(map[string]bool)

	for _, m := range referenceRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimRight(m[1], ".-")
		if name == "" || strings.EqualFold(name, self) {
			continue
		}
		section, _ := strconv.Atoi(m[2])

		key := strings.ToLower(name) + "(" + m[2] + ")"
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, manparse.Reference{Name: name, Section: section})
	}
	return refs
}

// Relations holds the rule data used to infer related commands.
type Relations struct {
	stop      map[string]bool
	known     map[string]bool
	knownOnly bool
	minLen    int
	maxLen    int
	max       int
}

// NewRelations returns a Relations configured from rules.
func NewRelations(rules *manparse.Rules) *Relations {
	return &Relations{
		stop:      stringSet(rules.StopWords),
		known:     stringSet(rules.KnownCommands()),
		knownOnly: rules.KnownCommandsOnly,
		minLen:    rules.MinTokenLength,
		maxLen:    rules.MaxTokenLength,
		max:       rules.MaxRelated,
	}
}

// ExtractRelated returns the see-also names followed by command-like tokens
// found anywhere in text, excluding self, capped at the configured size.
func (r *Relations) ExtractRelated(text string, seeAlso []manparse.Reference, self string) []string {
	related := []string{}
	seen := map[string]bool{strings.ToLower(self): true}

	add := func(name string) bool {
		if r.max > 0 && len(related) >= r.max {
			return false
		}
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			related = append(related, name)
		}
		return true
	}

	for _, ref := range seeAlso {
		if !add(ref.Name) {
			return related
		}
	}

	referenced := make(map[string]bool)
	for _, m := range referenceRe.FindAllStringSubmatch(text, -1) {
		referenced[strings.ToLower(m[1])] = true
	}

	for _, loc := range wordTokenRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && strings.ContainsRune("-/.$=\\", rune(text[loc[0]-1])) {
			continue
		}
		tok := text[loc[0]:loc[1]]
		if !r.commandLike(tok, referenced) {
			continue
		}
		if !add(tok) {
			break
		}
	}
	return related
}

func (r *Relations) commandLike(tok string, referenced map[string]bool) bool {
	if len(tok) < r.minLen || (r.maxLen > 0 && len(tok) > r.maxLen) {
		return false
	}
	if tok != strings.ToLower(tok) || strings.Trim(tok, "0123456789_-") == "" {
		return false
	}
	if r.stop[tok] {
		return false
	}
	if r.knownOnly {
		return r.known[tok] || referenced[tok]
	}
	return true
}
