// Package troff cleans troff, groff and mdoc manual-page markup into plain
// text laid out the way the section segmenter expects.
//
// Only a fixed subset of requests and escapes is understood. Anything else
// is either dropped (unknown directive lines) or left as-is (unknown inline
// escapes); normalization never fails.
package troff

import (
	"regexp"
	"sort"
	"strings"
)

// Replacement maps an escape sequence to its plain-text equivalent.
type Replacement struct {
	Escape string
	Text   string
}

// DefaultEscapes returns the standard escape table.
func DefaultEscapes() []Replacement {
	return []Replacement{
		{`\(em`, "--"},
		{`\(en`, "-"},
		{`\(hy`, "-"},
		{`\(mi`, "-"},
		{`\(bu`, "*"},
		{`\(co`, "(c)"},
		{`\(rg`, "(R)"},
		{`\(tm`, "(TM)"},
		{`\(aq`, "'"},
		{`\(dq`, `"`},
		{`\(lq`, `"`},
		{`\(rq`, `"`},
		{`\(oq`, "'"},
		{`\(cq`, "'"},
		{`\(ga`, "`"},
		{`\(ti`, "~"},
		{`\(ha`, "^"},
		{`\(rs`, `\`},
		{`\(sl`, "/"},
		{`\(de`, "°"},
		{`\(>=`, ">="},
		{`\(<=`, "<="},
		{`\(->`, "->"},
		{`\(<-`, "<-"},
		{`\*(lq`, `"`},
		{`\*(rq`, `"`},
		{`\*(Tm`, "(TM)"},
		{`\*R`, "(R)"},
		{`\[em]`, "--"},
		{`\[en]`, "-"},
		{`\[bu]`, "*"},
		{`\[aq]`, "'"},
		{`\[dq]`, `"`},
		{`\[lq]`, `"`},
		{`\[rq]`, `"`},
		{`\[co]`, "(c)"},
		{`\[rg]`, "(R)"},
		{`\[tm]`, "(TM)"},
		{`\[ti]`, "~"},
		{`\[ha]`, "^"},
		{`\[rs]`, `\`},
		{`\\`, `\`},
		{`\e`, `\`},
		{`\-`, "-"},
		{`\ `, " "},
		{`\~`, " "},
		{`\0`, " "},
		{`\'`, "'"},
		{"\\`", "`"},
		{`\.`, "."},
		{`\&`, ""},
		{`\|`, ""},
		{`\^`, ""},
		{`\)`, ""},
		{`\%`, ""},
		{`\c`, ""},
		{`\:`, ""},
		{`\,`, ""},
		{`\/`, ""},
	}
}

// literalBackslash stands for a backslash that renders as itself. It is
// resolved when a line is emitted, once the text that follows it is known.
const literalBackslash = '\uE000'

var (
	// \fB, \fI, \fR, \fP, \f(CW, \f[B], \f[]
	fontEscapeRe = regexp.MustCompile(`^\\f(?:\[[^\]]*\]|\(..|.)`)

	// \s+2, \s-1, \s0, \s[12]
	sizeEscapeRe = regexp.MustCompile(`^\\s(?:\[[^\]]*\]|[+-]?\d+)`)

	// \*(xx, \*[name], \*x string interpolations not in the escape table.
	stringEscapeRe = regexp.MustCompile(`^\\\*(?:\[[^\]]*\]|\(..|.)`)

	inlineEscapeRes = []*regexp.Regexp{fontEscapeRe, sizeEscapeRe, stringEscapeRe}

	// Lines made of a control character followed by two upper-case letters.
	unknownDirectiveRe = regexp.MustCompile(`^[.'][A-Z]{2}\b`)
)

// handledRequests are the man and mdoc requests rewritten into text or
// layout by state.request. Requests without body text are listed too so
// they are recognized and dropped.
var handledRequests = map[string]bool{
	"SH": true, "Sh": true, "SS": true, "Ss": true,
	"PP": true, "LP": true, "P": true, "Pp": true, "Lp": true, "HP": true, "IP": true,
	"B": true, "I": true, "R": true, "SM": true, "SB": true,
	"BR": true, "BI": true, "IB": true, "IR": true, "RB": true, "RI": true,
	"EX": true, "EE": true, "Bd": true, "Ed": true, "Dl": true,
	"Nd": true, "Nm": true, "It": true, "MR": true,
	"TH": true, "TP": true, "TQ": true, "Dd": true, "Dt": true, "Os": true,
	"RS": true, "RE": true, "Bl": true, "El": true,
	"UR": true, "UE": true, "MT": true, "ME": true,
	"PD": true, "SY": true, "YS": true, "OP": true,
}

// ignoredRequests are low-level troff requests; only the ones that open a
// block (de, ig, am) need special handling.
var ignoredRequests = map[string]bool{
	"br": true, "sp": true, "nf": true, "fi": true, "ft": true, "ps": true,
	"vs": true, "in": true, "ti": true, "ad": true, "na": true, "ne": true,
	"nh": true, "hy": true, "ll": true, "ta": true, "so": true, "de": true,
	"ig": true, "am": true, "ds": true, "nr": true, "rm": true, "tr": true,
	"if": true, "ie": true, "el": true, "ce": true, "bp": true, "pl": true,
	"lf": true, "mk": true, "rt": true, "ev": true, "cc": true, "ec": true,
	"eo": true, "ss": true, "cs": true, "bd": true, "pc": true, "po": true,
	"ns": true, "rs": true, "ls": true, "ch": true, "wh": true, "it": true,
	"em": true, "as": true, "di": true, "da": true, "rr": true, "rn": true,
	"mso": true, "tm": true, "hw": true, "hc": true, "lt": true, "tl": true,
	"nm": true, "nn": true, "fam": true, "cu": true, "ul": true, "uf": true,
	"fl": true, "ab": true, "pm": true, "ftr": true, "hla": true, "hlm": true,
}

// Normalizer rewrites manual-page markup into plain text.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	escapes []Replacement
}

// NewNormalizer returns a Normalizer that substitutes the given escapes.
// When several escapes match at the same position the longest wins. \\ is
// always a literal backslash.
func NewNormalizer(escapes []Replacement) *Normalizer {
	sorted := make([]Replacement, 0, len(escapes))
	for _, r := range escapes {
		if r.Escape == "" {
			continue
		}
		sorted = append(sorted, Replacement{
			Escape: r.Escape,
			Text:   strings.ReplaceAll(r.Text, `\`, string(literalBackslash)),
		})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Escape) > len(sorted[j].Escape) })
	return &Normalizer{escapes: sorted}
}

// Normalize removes comments and font directives, substitutes known escape
// sequences and drops unrecognized directive lines. Section and subsection
// requests become heading lines, paragraph requests become blank lines and
// literal blocks are indented by four spaces. Normalizing already-clean text
// returns it unchanged, and normalizing the output again is a no-op: a
// backslash that would start an escape is written doubled, and text lines
// that would read as requests are indented by one space.
func (n *Normalizer) Normalize(raw string) string {
	st := &state{n: n}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	for _, line := range strings.Split(raw, "\n") {
		st.line(line)
	}

	return strings.Join(st.out, "\n")
}

// Inline cleans a single line of running text: comments are stripped and
// font, size and string escapes are removed or substituted.
func (n *Normalizer) Inline(s string) string {
	return n.finish(n.inline(s))
}

// inline scans s left to right, substituting escapes. Backslashes that do
// not start a known escape are kept as literalBackslash.
func (n *Normalizer) inline(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if isInlineComment(s[i:]) {
			return strings.TrimRight(b.String(), " \t")
		}
		size, text, ok := n.escape(s[i:])
		if !ok {
			b.WriteRune(literalBackslash)
			i++
			continue
		}
		b.WriteString(text)
		i += size
	}
	return b.String()
}

// escape matches the escape sequence at the start of s. It returns the
// number of bytes consumed and the replacement text.
func (n *Normalizer) escape(s string) (int, string, bool) {
	if strings.HasPrefix(s, `\\`) {
		return 2, string(literalBackslash), true
	}
	for _, r := range n.escapes {
		if strings.HasPrefix(s, r.Escape) {
			return len(r.Escape), r.Text, true
		}
	}
	for _, re := range inlineEscapeRes {
		if loc := re.FindStringIndex(s); loc != nil {
			return loc[1], "", true
		}
	}
	return 0, "", false
}

// finish resolves literal backslashes. A backslash that would start an
// escape or a comment in front of the text that follows is doubled.
func (n *Normalizer) finish(s string) string {
	if !strings.ContainsRune(s, literalBackslash) {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if r != literalBackslash {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('\\')
		rest := `\` + strings.ReplaceAll(s[i+len(string(literalBackslash)):], string(literalBackslash), `\`)
		if _, _, ok := n.escape(rest); ok || isInlineComment(rest) {
			b.WriteByte('\\')
		}
	}
	return b.String()
}

func isInlineComment(s string) bool {
	return strings.HasPrefix(s, `\"`) || strings.HasPrefix(s, `\#`)
}

// state carries per-document context through a single Normalize call.
type state struct {
	n       *Normalizer
	out     []string
	literal bool
	skip    bool
	name    string
}

// emit resolves literal backslashes and indents text that would otherwise
// be read back as a request or comment.
func (st *state) emit(s string) {
	s = st.n.finish(s)
	if isComment(s) || isControl(s) {
		s = " " + s
	}
	st.out = append(st.out, s)
}

func (st *state) line(line string) {
	if st.skip {
		if strings.HasPrefix(line, "..") {
			st.skip = false
		}
		return
	}
	if isComment(line) {
		return
	}
	if !isControl(line) {
		text := st.n.inline(line)
		if st.literal && strings.TrimSpace(text) != "" {
			text = "    " + text
		}
		st.emit(text)
		return
	}

	macro, args := splitRequest(stripComment(line))
	if macro == "" {
		return
	}
	st.request(macro, args)
}

func (st *state) request(macro string, args []string) {
	switch macro {
	case "SH", "Sh":
		st.literal = false
		st.emit(strings.ToUpper(st.join(args, " ")))
	case "SS", "Ss":
		st.literal = false
		st.emit("   " + st.join(args, " "))
	case "PP", "LP", "P", "Pp", "sp", "HP", "Lp":
		st.emit("")
	case "IP":
		if len(args) > 0 && args[0] != "" {
			st.emit(st.join(args[:1], ""))
		} else {
			st.emit("")
		}
	case "B", "I", "R", "SM", "SB":
		if len(args) > 0 {
			st.emit(st.join(args, " "))
		}
	case "BR", "BI", "IB", "IR", "RB", "RI":
		st.emit(st.join(args, ""))
	case "nf", "EX":
		st.literal = true
	case "fi", "EE", "Ed":
		st.literal = false
	case "Bd":
		for _, a := range args {
			if a == "-literal" || a == "-unfilled" {
				st.literal = true
			}
		}
	case "Dl":
		st.emit("    " + st.mdoc(args))
	case "Nd":
		st.emit("- " + st.mdoc(args))
	case "It":
		st.emit(st.mdoc(args))
	case "Nm":
		if len(args) > 0 && !mdocMacros[args[0]] && st.name == "" {
			st.name = args[0]
		}
		st.emit(st.mdoc(append([]string{"Nm"}, args...)))
	case "MR":
		if len(args) >= 2 {
			st.emit(st.join(args[:1], "") + "(" + args[1] + ")" + st.join(args[2:], ""))
		}
	case "de", "ig", "am", "ds":
		if macro != "ds" {
			st.skip = true
		}
	default:
		if mdocMacros[macro] {
			st.emit(st.mdoc(append([]string{macro}, args...)))
			return
		}
		// Everything else, including unrecognized two-letter requests, is dropped.
	}
}

func (st *state) join(args []string, sep string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = st.n.inline(a)
	}
	return strings.Join(parts, sep)
}

func isComment(line string) bool {
	return strings.HasPrefix(line, `.\"`) ||
		strings.HasPrefix(line, `'\"`) ||
		strings.HasPrefix(line, `.\#`) ||
		strings.HasPrefix(line, `\#`) ||
		strings.TrimRight(line, " \t") == "."
}

// isControl reports whether line is a request this package understands or
// an unrecognized two-letter directive. Other lines that merely start with a
// control character are running text.
func isControl(line string) bool {
	if !strings.HasPrefix(line, ".") && !strings.HasPrefix(line, "'") {
		return false
	}
	if unknownDirectiveRe.MatchString(line) {
		return true
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return true
	}
	name := fields[0]
	return handledRequests[name] || ignoredRequests[name] || mdocMacros[name] || strings.HasPrefix(name, `\`)
}

// stripComment removes a trailing \" or \# comment, ignoring escaped
// backslashes.
func stripComment(s string) string {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		if s[i+1] == '"' || s[i+1] == '#' {
			return strings.TrimRight(s[:i], " \t")
		}
		i++
	}
	return s
}

// splitRequest splits a control line into the request name and its
// arguments. Double-quoted arguments may contain spaces; "" inside quotes is
// a literal quote.
func splitRequest(line string) (string, []string) {
	line = strings.TrimLeft(line[1:], " \t")
	fields := splitArgs(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func splitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)

	flush := func() {
		if started {
			args = append(args, cur.String())
		}
		cur.Reset()
		started = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			cur.WriteByte(c)
			cur.WriteByte(s[i+1])
			started = true
			i++
		case c == '"' && quoted && i+1 < len(s) && s[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"' && quoted:
			quoted = false
		case c == '"' && !started:
			quoted = true
			started = true
		case (c == ' ' || c == '\t') && !quoted:
			flush()
		default:
			cur.WriteByte(c)
			started = true
		}
	}
	flush()

	return args
}
