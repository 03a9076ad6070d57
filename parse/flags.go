package parse

import (
	"regexp"
	"strings"

	"github.com/fwojciec/manparse"
)

var (
	shortOptRe    = regexp.MustCompile(`^-[A-Za-z0-9?@#]$`)
	longOptRe     = regexp.MustCompile(`^--[A-Za-z0-9][A-Za-z0-9_.+-]*$`)
	wordOptRe     = regexp.MustCompile(`^-[A-Za-z][A-Za-z0-9_.+-]+$`)
	placeholderRe = regexp.MustCompile(`^(?:<[^>]+>|\[[^\]]+\]|[A-Z][A-Z0-9_-]*)$`)
	descGapRe     = regexp.MustCompile(`\s{2,}|\t`)
	deprecatedRe  = regexp.MustCompile(`(?i)\b(?:deprecated|obsolete)\b`)

	// Groups: option token, "=" or "[=", attached argument, spaced argument.
	synopsisOptRe = regexp.MustCompile(`(--?[A-Za-z0-9?@#][A-Za-z0-9_-]*)(?:(\[?=)([^\s\]|]+)\]?|\s+(<[^>]+>|[A-Z][A-Z0-9_]*\b))?`)
)

func isShort(tok string) bool { return shortOptRe.MatchString(tok) }
func isLong(tok string) bool  { return longOptRe.MatchString(tok) }

func isOption(tok string) bool {
	return isShort(tok) || isLong(tok) || wordOptRe.MatchString(tok)
}

// ExtractFlags collects option definitions from the synopsis line and from the
// body of the options section. Options seen in the synopsis are updated in
// place with the descriptions found in the options body.
func ExtractFlags(synopsis, options string) []manparse.Flag {
	return mergeFlags(synopsisFlags(synopsis), optionFlags(options))
}

func synopsisFlags(syn string) []manparse.Flag {
	var out []manparse.Flag
	seen := make(map[string]bool)

	for _, m := range synopsisOptRe.FindAllStringSubmatchIndex(syn, -1) {
		start := m[0]
		if start > 0 && !strings.ContainsRune(" [|(", rune(syn[start-1])) {
			continue
		}
		token := syn[m[2]:m[3]]
		if !isShort(token) && !isLong(token) || seen[token] {
			continue
		}
		seen[token] = true

		var arg string
		switch {
		case m[6] >= 0:
			arg = syn[m[6]:m[7]]
		case m[8] >= 0:
			arg = syn[m[8]:m[9]]
		}

		out = append(out, manparse.Flag{
			Flag:     token,
			Argument: arg,
			Optional: bracketDepth(syn[:start]) > 0,
		})
	}
	return out
}

func bracketDepth(s string) int {
	return strings.Count(s, "[") - strings.Count(s, "]")
}

type optionSpec struct {
	token string
	arg   string
}

// parseOptionLine splits a line such as "-a, --all  do not ignore entries"
// into its option tokens and any description written on the same line.
func parseOptionLine(line string) (specs []optionSpec, desc string, ok bool) {
	text := strings.TrimSpace(line)
	if !strings.HasPrefix(text, "-") {
		return nil, "", false
	}

	spec := text
	if loc := descGapRe.FindStringIndex(text); loc != nil {
		spec, desc = text[:loc[0]], strings.TrimSpace(text[loc[1]:])
	}

	parts := strings.Split(spec, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		token, rest := splitToken(part)
		if !isOption(token) {
			if i == 0 {
				return nil, "", false
			}
			desc = joinText(strings.TrimSpace(strings.Join(parts[i:], ",")), desc)
			break
		}

		last := i == len(parts)-1 && desc == ""
		arg, extra := parseArgument(rest, last)
		specs = append(specs, optionSpec{token: token, arg: arg})

		if extra != "" {
			tail := extra
			if i+1 < len(parts) {
				tail += "," + strings.Join(parts[i+1:], ",")
			}
			desc = joinText(tail, desc)
			break
		}
	}
	return specs, desc, len(specs) > 0
}

func splitToken(part string) (token, rest string) {
	i := strings.IndexAny(part, "=[ \t")
	if i < 0 {
		return part, ""
	}
	return part[:i], part[i:]
}

// parseArgument reads an argument placeholder from the text following an
// option token. Text that is not a placeholder is returned as extra. A single
// lower-case word is accepted as the argument only when it ends the line.
func parseArgument(rest string, last bool) (arg, extra string) {
	if strings.HasPrefix(rest, "=") || strings.HasPrefix(rest, "[=") {
		word, after, _ := strings.Cut(rest, " ")
		return strings.Trim(word, "[]="), strings.TrimSpace(after)
	}

	words := strings.Fields(rest)
	switch {
	case len(words) == 0:
		return "", ""
	case placeholderRe.MatchString(words[0]):
		return strings.Trim(words[0], "[]"), strings.Join(words[1:], " ")
	case len(words) == 1 && last:
		return words[0], ""
	}
	return "", strings.Join(words, " ")
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// optionFlags runs the line-oriented pass over an options section. A line
// that begins with option tokens starts a new flag; other lines extend the
// current flag's description. A long-only line that directly follows a
// short-only entry is folded into that entry.
func optionFlags(body string) []manparse.Flag {
	var recs []manparse.Flag
	cur := -1
	foldable := false
	optIndent, descIndent := 0, -1
	blank := false

	for _, line := range strings.Split(body, "\n") {
		line = expandTabs(line)
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		indent := leadingSpaces(line)

		if specs, desc, ok := parseOptionLine(line); ok {
			if foldable && cur == len(recs)-1 && longOnly(specs) {
				prev := &recs[cur]
				prev.ShortFlag = prev.Flag
				prev.Flag = specs[0].token
				if prev.Argument == "" {
					prev.Argument = specs[0].arg
				}
				foldable = false
			} else {
				recs = append(recs, flagFromSpecs(specs))
				cur = len(recs) - 1
				foldable = len(specs) == 1 && isShort(specs[0].token)
			}
			recs[cur].Description = joinText(recs[cur].Description, desc)
			optIndent, descIndent = indent, -1
			blank = false
			continue
		}

		if cur < 0 {
			blank = false
			continue
		}
		if descIndent < 0 {
			descIndent = indent
		}
		// Prose back at the option column after a paragraph break ends the
		// definition list when descriptions are indented under their options.
		if blank && descIndent > optIndent && indent <= optIndent {
			cur, foldable = -1, false
			blank = false
			continue
		}
		recs[cur].Description = joinText(recs[cur].Description, strings.TrimSpace(line))
		blank = false
	}
	return recs
}

func longOnly(specs []optionSpec) bool {
	for _, s := range specs {
		if !isLong(s.token) {
			return false
		}
	}
	return len(specs) > 0
}

func flagFromSpecs(specs []optionSpec) manparse.Flag {
	var f manparse.Flag
	for _, s := range specs {
		switch {
		case isLong(s.token) && !isLong(f.Flag):
			if isShort(f.Flag) && f.ShortFlag == "" {
				f.ShortFlag = f.Flag
			}
			f.Flag = s.token
		case f.Flag == "":
			f.Flag = s.token
		case isShort(s.token) && isLong(f.Flag) && f.ShortFlag == "":
			f.ShortFlag = s.token
		}
		if f.Argument == "" {
			f.Argument = s.arg
		}
	}
	return f
}

// mergeFlags folds option-pass records into the synopsis seeds. Records are
// matched on any shared spelling; the result never holds two entries with the
// same Flag.
func mergeFlags(seed, opts []manparse.Flag) []manparse.Flag {
	out := make([]manparse.Flag, 0, len(seed)+len(opts))
	index := make(map[string]int)
	dropped := make(map[int]bool)

	reindex := func(i int) {
		index[out[i].Flag] = i
		if out[i].ShortFlag != "" {
			index[out[i].ShortFlag] = i
		}
	}
	add := func(f manparse.Flag) {
		out = append(out, f)
		reindex(len(out) - 1)
	}

	for _, f := range seed {
		if _, dup := index[f.Flag]; !dup {
			add(f)
		}
	}

	for _, f := range opts {
		i, okI := index[f.Flag]
		j, okJ := -1, false
		if f.ShortFlag != "" {
			j, okJ = index[f.ShortFlag]
		}

		switch {
		case okI && okJ && i != j:
			mergeFlag(&out[i], out[j])
			mergeFlag(&out[i], f)
			dropped[j] = true
			for k, v := range index {
				if v == j {
					index[k] = i
				}
			}
			reindex(i)
		case okI:
			mergeFlag(&out[i], f)
			reindex(i)
		case okJ:
			mergeFlag(&out[j], f)
			reindex(j)
		default:
			add(f)
		}
	}

	flags := make([]manparse.Flag, 0, len(out))
	seen := make(map[string]bool, len(out))
	for i, f := range out {
		if dropped[i] || seen[f.Flag] {
			continue
		}
		seen[f.Flag] = true
		f.Deprecated = f.Deprecated || deprecatedRe.MatchString(f.Description)
		flags = append(flags, f)
	}
	return flags
}

// mergeFlag merges o into e. The long spelling, if either has one, becomes
// the canonical Flag.
func mergeFlag(e *manparse.Flag, o manparse.Flag) {
	spellings := []string{e.Flag, e.ShortFlag, o.Flag, o.ShortFlag}

	long := ""
	for _, s := range spellings {
		if isLong(s) {
			long = s
			break
		}
	}
	if long != "" {
		short := ""
		for _, s := range spellings {
			if s != "" && !isLong(s) {
				short = s
				break
			}
		}
		e.Flag, e.ShortFlag = long, short
	} else if e.ShortFlag == "" && o.ShortFlag != e.Flag {
		e.ShortFlag = o.ShortFlag
	}

	switch {
	case e.Description == "":
		e.Description = o.Description
	case o.Description != "" && o.Description != e.Description:
		e.Description += " " + o.Description
	}
	if e.Argument == "" {
		e.Argument = o.Argument
	}
	e.Optional = e.Optional || o.Optional
	e.Deprecated = e.Deprecated || o.Deprecated
}
