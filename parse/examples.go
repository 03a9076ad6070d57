package parse

import (
	"regexp"
	"strings"

	"github.com/fwojciec/manparse"
)

var (
	bareCommandRe    = regexp.MustCompile(`^[a-z][a-z0-9._+-]*(?:\s|$)`)
	placeholderArgRe = regexp.MustCompile(`<[A-Za-z0-9_ -]+>`)
)

// tagRule assigns tag when pattern matches a command.
type tagRule struct {
	tag     string
	pattern *regexp.Regexp
}

// tagRules is evaluated in order, so tags come out in vocabulary order.
var tagRules = []tagRule{
	{manparse.TagPipe, regexp.MustCompile(`(?:^|[^|])\|(?:[^|]|$)`)},
	{manparse.TagRedirect, regexp.MustCompile(`(?:^|[^<>-])(?:\d?>>?|<)`)},
	{manparse.TagGlob, regexp.MustCompile(`(?:^|[\s/=])[^\s$]*(?:\*|\?|\[[^\]\s]+\])`)},
	{manparse.TagSubstitution, regexp.MustCompile("\\$\\(|`")},
	{manparse.TagSudo, regexp.MustCompile(`(?:^|[\s;|&(])(?:sudo|doas|su)(?:\s|$)`)},
	{manparse.TagBackground, regexp.MustCompile(`(?:^|[^&])&\s*$`)},
	{manparse.TagChain, regexp.MustCompile(`&&|\|\||;`)},
	{manparse.TagVariable, regexp.MustCompile(`\$\{?[A-Za-z_]`)},
}

// TagCommand derives example tags from the lexical features of cmd.
// The result is never nil.
func TagCommand(cmd string) []string {
	cmd = placeholderArgRe.ReplaceAllString(cmd, "ARG")
	tags := []string{}
	for _, r := range tagRules {
		if r.pattern.MatchString(cmd) {
			tags = append(tags, r.tag)
		}
	}
	return tags
}

// block is a run of non-blank lines.
type block struct {
	lines  []string
	indent int
}

func (b block) text() string {
	return strings.TrimSpace(dedent(b.lines))
}

func (b block) last() string {
	return strings.TrimSpace(b.lines[len(b.lines)-1])
}

func splitBlocks(body string) []block {
	var blocks []block
	var cur []string

	flush := func() {
		if len(cur) == 0 {
			return
		}
		indent := -1
		for _, l := range cur {
			if n := leadingSpaces(l); indent < 0 || n < indent {
				indent = n
			}
		}
		blocks = append(blocks, block{lines: cur, indent: indent})
		cur = nil
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(expandTabs(line), " ")
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return blocks
}

// promptText returns the command following a shell prompt on line.
func promptText(line string) (string, bool) {
	t := strings.TrimSpace(line)
	for _, p := range []string{"$ ", "# ", "% "} {
		if strings.HasPrefix(t, p) {
			return strings.TrimSpace(t[len(p):]), true
		}
	}
	return "", false
}

func isCommandBlock(b block) bool {
	for _, l := range b.lines {
		if _, ok := promptText(l); ok {
			return true
		}
	}
	if strings.HasSuffix(b.last(), ":") {
		return false
	}
	return bareCommandRe.MatchString(strings.TrimSpace(b.lines[0]))
}

// splitCommand separates a command block into command text and any output
// printed after prompt lines.
func splitCommand(b block) (cmd, output string) {
	var cmds, out []string
	prompted := false
	continued := false

	for _, l := range b.lines {
		if c, ok := promptText(l); ok {
			cmds = append(cmds, c)
			prompted = true
			continued = strings.HasSuffix(c, `\`)
			continue
		}
		if !prompted {
			cmds = append(cmds, strings.TrimSpace(l))
			continue
		}
		if continued {
			cmds = append(cmds, strings.TrimSpace(l))
			continued = strings.HasSuffix(l, `\`)
			continue
		}
		out = append(out, l)
	}

	return strings.Join(cmds, "\n"), strings.TrimSpace(dedent(out))
}

// ExtractExamples finds worked commands in the body of an examples section.
// A prose block before a command becomes its description; a following
// non-command block at the same or deeper indentation becomes its output.
func ExtractExamples(body string) []manparse.Example {
	examples := []manparse.Example{}
	blocks := splitBlocks(body)
	consumed := -1

	for i := 0; i < len(blocks); i++ {
		b := blocks[i]
		if !isCommandBlock(b) {
			continue
		}

		cmd, output := splitCommand(b)
		if cmd == "" {
			continue
		}
		ex := manparse.Example{Command: cmd, Output: output}

		if i > 0 && i-1 != consumed && !isCommandBlock(blocks[i-1]) {
			ex.Description = collapseSpace(blocks[i-1].text())
		}
		if ex.Output == "" && i+1 < len(blocks) {
			next := blocks[i+1]
			if !isCommandBlock(next) && next.indent >= b.indent && !strings.HasSuffix(next.last(), ":") {
				ex.Output = next.text()
				i++
				consumed = i
			}
		}

		ex.Tags = TagCommand(cmd)
		examples = append(examples, ex)
	}
	return examples
}
