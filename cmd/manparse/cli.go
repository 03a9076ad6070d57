package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/legacy"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Sources   manparse.SourceService
	Renderer  manparse.Renderer
	Parser    manparse.Parser
	Documents manparse.DocumentService
	Manifest  manparse.ManifestService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Parse  ParseCmd  `cmd:"" help:"Parse one manual page and print it as JSON"`
	Batch  BatchCmd  `cmd:"" help:"Parse many manual pages into the database"`
	Show   ShowCmd   `cmd:"" help:"Print a stored document as JSON"`
	List   ListCmd   `cmd:"" help:"List stored documents"`
	Delete DeleteCmd `cmd:"" help:"Delete a stored document"`
	Check  CheckCmd  `cmd:"" help:"Parse a page and report residual markup"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	Page    string `arg:"" help:"Page name, optionally as name(section) or name.section"`
	Section int    `arg:"" optional:"" help:"Manual section (1-8)"`
	File    string `short:"f" type:"existingfile" help:"Parse markup from a file instead of man"`
	HTML    bool   `name:"html" help:"Treat --file as an HTML rendering"`
	Legacy  bool   `help:"Print the legacy document shape"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	Pages       []string      `arg:"" optional:"" help:"Pages to parse"`
	From        string        `help:"Read page requests from a file, one per line (- for stdin)"`
	Out         string        `short:"o" help:"Also publish documents and indexes to this directory"`
	GroupSize   int           `default:"20" help:"Pages per group"`
	Pause       time.Duration `default:"100ms" help:"Pause between groups"`
	Concurrency int           `short:"c" help:"Concurrent pages within a group (default: group size)"`
	Rate        float64       `help:"Maximum source queries per second (0 = unlimited)"`
	Force       bool          `short:"F" help:"Re-parse pages even when unchanged"`
	Legacy      bool          `help:"Publish the legacy document shape"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Page    string `arg:"" help:"Page name"`
	Section int    `arg:"" optional:"" help:"Manual section (1-8)"`
	Legacy  bool   `help:"Print the legacy document shape"`
	Text    bool   `short:"t" help:"Print sections as plain text instead of JSON"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Section    int    `help:"Only list this section"`
	Complexity string `help:"Only list this complexity (basic, intermediate, advanced)"`
	Limit      int    `help:"Maximum number of documents"`
	Offset     int    `help:"Number of documents to skip"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Page    string `arg:"" help:"Page name"`
	Section int    `arg:"" optional:"" help:"Manual section (1-8)"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Page    string `arg:"" help:"Page name"`
	Section int    `arg:"" optional:"" help:"Manual section (1-8)"`
}

// request resolves a page argument and an optional section argument.
func request(page string, section int) (string, int, error) {
	name, parsed, err := manparse.ParseRequest(page)
	if err != nil {
		return "", 0, err
	}
	if section != 0 {
		if section < 1 || section > 8 {
			return "", 0, manparse.Errorf(manparse.EINVALID, "invalid section %d", section)
		}
		parsed = section
	}
	return name, parsed, nil
}

// writeDocument prints doc as indented JSON.
func writeDocument(w io.Writer, doc *manparse.Document, useLegacy bool) error {
	var v any = doc
	if useLegacy {
		v = legacy.FromDocument(doc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
