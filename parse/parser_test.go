package parse_test

import (
	"testing"
	"time"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/parse"
	"github.com/fwojciec/manparse/troff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parsedAt = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newParser() *parse.Parser {
	p := parse.NewParser(troff.NewNormalizer(troff.DefaultEscapes()), manparse.DefaultRules())
	p.Now = func() time.Time { return parsedAt }
	return p
}

const lsMarkup = `.\" Manual page for ls
.TH LS 1 "March 2024" "GNU coreutils 9.4" "User Commands"
.SH NAME
ls \- list directory contents
.SH SYNOPSIS
.B ls
[\fIOPTION\fR]... [\fIFILE\fR]...
.SH DESCRIPTION
List information about the FILEs (the current directory by default).
Sort entries alphabetically.
.TP
\fB\-a\fR, \fB\-\-all\fR
do not ignore entries starting with .
.SH "SEE ALSO"
.BR dir (1),
.BR vdir (1)
`

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("assembles a document from markup", func(t *testing.T) {
		t.Parallel()

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "LS", Section: 1}, manparse.RawSource{Raw: lsMarkup})
		require.NoError(t, err)

		assert.Equal(t, "ls", doc.Name)
		assert.Equal(t, 1, doc.Section)
		assert.Equal(t, "list directory contents", doc.Title)
		assert.Equal(t, "List information about the FILEs (the current directory by default).", doc.Description)
		assert.Equal(t, "ls [OPTION]... [FILE]...", doc.Synopsis)
		assert.Equal(t, "User Commands", doc.Category)

		ids := make([]string, 0, len(doc.Sections))
		for _, s := range doc.Sections {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, []string{"name", "synopsis", "description", "see-also"}, ids)

		assert.Equal(t, []manparse.Flag{
			{Flag: "--all", ShortFlag: "-a", Description: "do not ignore entries starting with ."},
		}, doc.Flags)
		assert.Equal(t, []manparse.Reference{{Name: "dir", Section: 1}, {Name: "vdir", Section: 1}}, doc.SeeAlso)
		require.GreaterOrEqual(t, len(doc.RelatedCommands), 2)
		assert.Equal(t, []string{"dir", "vdir"}, doc.RelatedCommands[:2])
		assert.Contains(t, doc.RelatedCommands, "alphabetically")
		assert.NotContains(t, doc.RelatedCommands, "ls")
		assert.Empty(t, doc.Examples)

		assert.Equal(t, manparse.ComplexityBasic, doc.Complexity)
		assert.True(t, doc.IsCommon)
		assert.Equal(t, &manparse.Metadata{
			Version: "9.4",
			Date:    "March 2024",
			Source:  "GNU coreutils 9.4",
			Manual:  "User Commands",
		}, doc.Metadata)

		assert.Contains(t, doc.Keywords, "ls")
		assert.Contains(t, doc.Keywords, "directory")
		assert.Contains(t, doc.Keywords, "user commands")
		assert.Regexp(t, searchAlphabet, doc.SearchContent)
		assert.Equal(t, parse.ContentHash(lsMarkup, ""), doc.ContentHash)
		assert.Equal(t, parsedAt, doc.ParsedAt)
		assert.Equal(t, manparse.ParseVersion, doc.ParseVersion)
	})

	t.Run("prefers the rendered text for structure", func(t *testing.T) {
		t.Parallel()

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "ls", Section: 1}, manparse.RawSource{Rendered: lsRendered})
		require.NoError(t, err)

		assert.Len(t, doc.Sections, 6)
		assert.Equal(t, "list directory contents", doc.Title)
		require.Len(t, doc.Flags, 2)
		assert.Equal(t, "--width", doc.Flags[1].Flag)
		require.Len(t, doc.Examples, 1)
		assert.Equal(t, "ls -a", doc.Examples[0].Command)
		assert.Equal(t, parse.ContentHash("", lsRendered), doc.ContentHash)
		assert.Nil(t, doc.Metadata)
	})

	t.Run("parses a minimal document", func(t *testing.T) {
		t.Parallel()

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, manparse.RawSource{Raw: "NAME\n    foo - does a thing\n"})
		require.NoError(t, err)

		assert.Equal(t, "does a thing", doc.Title)
		assert.Len(t, doc.Sections, 1)
		assert.Equal(t, []manparse.Flag{}, doc.Flags)
		assert.Equal(t, []manparse.Example{}, doc.Examples)
	})

	t.Run("falls back to a generic title", func(t *testing.T) {
		t.Parallel()

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, manparse.RawSource{Raw: "NAME\nfoo\n"})
		require.NoError(t, err)

		assert.Equal(t, "foo manual page", doc.Title)
	})

	t.Run("classifies curated basic commands regardless of content", func(t *testing.T) {
		t.Parallel()

		raw := "NAME\nls - list\nOPTIONS\n" +
			"-a  one\n-b  two\n-c  three\n-d  four\n-e  five\n-f  six\n-g  seven\n" +
			"EXAMPLES\n$ ls -a\n\n$ ls -b\n\n$ ls -c\n"

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "ls", Section: 1}, manparse.RawSource{Raw: raw})
		require.NoError(t, err)

		assert.Len(t, doc.Flags, 7)
		assert.Len(t, doc.Examples, 3)
		assert.Equal(t, manparse.ComplexityBasic, doc.Complexity)
	})

	t.Run("never returns zero sections for non-empty input", func(t *testing.T) {
		t.Parallel()

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, manparse.RawSource{Raw: ".\\\" only a comment\n"})
		require.NoError(t, err)

		require.Len(t, doc.Sections, 1)
		assert.Equal(t, "Content", doc.Sections[0].Title)
	})

	t.Run("uses the author section when the header has none", func(t *testing.T) {
		t.Parallel()

		raw := "NAME\nfoo - bar\nAUTHOR\nWritten by Jane Roe.\n"

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, manparse.RawSource{Raw: raw})
		require.NoError(t, err)

		require.NotNil(t, doc.Metadata)
		assert.Equal(t, "Jane Roe", doc.Metadata.Author)
	})

	t.Run("accepts pre-segmented sections", func(t *testing.T) {
		t.Parallel()

		src := manparse.SegmentedSource{Sections: []manparse.Section{
			{Title: "NAME", Content: "cat - concatenate files"},
			{Title: "OPTIONS", Content: "-n, --number\nnumber all output lines"},
			{Title: "OPTIONS", Content: "duplicate"},
		}}

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "cat", Section: 1}, src)
		require.NoError(t, err)

		assert.Equal(t, "concatenate files", doc.Title)
		assert.Equal(t, []manparse.Flag{
			{Flag: "--number", ShortFlag: "-n", Description: "number all output lines"},
		}, doc.Flags)
		require.Len(t, doc.Sections, 3)
		assert.Equal(t, "options", doc.Sections[1].ID)
		assert.Equal(t, "options-1", doc.Sections[2].ID)
	})

	t.Run("does not modify pre-segmented input", func(t *testing.T) {
		t.Parallel()

		sections := []manparse.Section{{Title: "NAME", Content: "cat - concatenate files"}}

		_, err := newParser().Parse(manparse.DocumentKey{Name: "cat", Section: 1}, manparse.SegmentedSource{Sections: sections})
		require.NoError(t, err)

		assert.Empty(t, sections[0].ID)
	})

	t.Run("uses synopsis and options supplied with segmented input", func(t *testing.T) {
		t.Parallel()

		src := manparse.SegmentedSource{
			Sections: []manparse.Section{{Title: "NAME", Content: "cat - concatenate files"}},
			Synopsis: "cat [-u]   [FILE]...",
			Options:  "-u  ignored",
		}

		doc, err := newParser().Parse(manparse.DocumentKey{Name: "cat", Section: 1}, src)
		require.NoError(t, err)

		assert.Equal(t, "cat [-u] [FILE]...", doc.Synopsis)
		assert.Equal(t, []manparse.Flag{{Flag: "-u", Description: "ignored", Optional: true}}, doc.Flags)
	})

	t.Run("returns EMALFORMED without a name", func(t *testing.T) {
		t.Parallel()

		_, err := newParser().Parse(manparse.DocumentKey{Name: " ", Section: 1}, manparse.RawSource{Raw: "NAME\nfoo - bar\n"})

		assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(err))
	})

	t.Run("returns EMALFORMED for an invalid section", func(t *testing.T) {
		t.Parallel()

		_, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 9}, manparse.RawSource{Raw: "NAME\nfoo - bar\n"})

		assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(err))
	})

	t.Run("returns EMALFORMED for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, manparse.RawSource{})

		assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(err))
	})

	t.Run("returns EMALFORMED for a nil source", func(t *testing.T) {
		t.Parallel()

		_, err := newParser().Parse(manparse.DocumentKey{Name: "foo", Section: 1}, nil)

		assert.Equal(t, manparse.EMALFORMED, manparse.ErrorCode(err))
	})
}

func TestParser_Properties(t *testing.T) {
	t.Parallel()

	inputs := map[string]manparse.RawSource{
		"markup":   {Raw: lsMarkup},
		"rendered": {Rendered: lsRendered},
		"both":     {Raw: lsMarkup, Rendered: lsRendered},
		"minimal":  {Raw: "NAME\n    foo - does a thing\n"},
		"plain":    {Raw: "no headings at all, ls(1) and grep(1)"},
	}

	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			key := manparse.DocumentKey{Name: "ls", Section: 1}
			first, err := newParser().Parse(key, src)
			require.NoError(t, err)
			second, err := newParser().Parse(key, src)
			require.NoError(t, err)

			assert.Equal(t, first, second, "parsing is idempotent")
			assert.NotEmpty(t, first.Sections)
			assert.Regexp(t, searchAlphabet, first.SearchContent)

			for _, ref := range first.SeeAlso {
				assert.NotEqual(t, "ls", ref.Name)
			}
			assert.NotContains(t, first.RelatedCommands, "ls")

			seen := make(map[string]bool)
			for _, f := range first.Flags {
				assert.False(t, seen[f.Flag], "duplicate flag %s", f.Flag)
				seen[f.Flag] = true
			}

			assert.LessOrEqual(t, len(first.Keywords), 20)
			assert.True(t, first.Complexity.IsValid())
			assert.NoError(t, first.Validate())
		})
	}
}

func TestContentHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", parse.ContentHash("", ""))
	assert.Equal(t, parse.ContentHash("raw", ""), parse.ContentHash("raw", "rendered"))
	assert.NotEqual(t, parse.ContentHash("raw", ""), parse.ContentHash("", "rendered"))
}
