package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/batch"
	"github.com/fwojciec/manparse/fs"
	"github.com/fwojciec/manparse/legacy"
	"golang.org/x/time/rate"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	requests, err := c.requests(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}
	if len(requests) == 0 {
		err := manparse.Errorf(manparse.EINVALID, "no pages given")
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	runner := &batch.Runner{
		Sources:     deps.Sources,
		Parser:      deps.Parser,
		Documents:   deps.Documents,
		Manifest:    deps.Manifest,
		GroupSize:   c.GroupSize,
		Pause:       c.Pause,
		Concurrency: c.Concurrency,
		Force:       c.Force,
	}
	if c.Rate > 0 {
		runner.Limiter = rate.NewLimiter(rate.Limit(c.Rate), 1)
	}

	progress := func(event batch.ProgressEvent) {
		switch event.Type {
		case batch.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "Processing %d pages\n", event.Total)
		case batch.ProgressCompleted:
			if event.Error != nil {
				fmt.Fprintf(deps.Stderr, "  %s %s: %v\n", event.Outcome, event.Key, event.Error)
				return
			}
			deps.Logger.Debug("page done", "key", event.Key.String(), "outcome", string(event.Outcome),
				"completed", event.Completed, "total", event.Total)
		}
	}

	result, err := runner.Run(deps.Ctx, requests, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	if c.Out != "" {
		store := fs.NewStore(c.Out)
		if c.Legacy {
			store.Encode = func(doc *manparse.Document) any { return legacy.FromDocument(doc) }
		}
		if err := batch.Publish(deps.Ctx, deps.Documents, store); err != nil {
			fmt.Fprintf(deps.Stderr, "error publishing to %s: %v\n", store.Dir(), err)
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Parsed %d, skipped %d, not found %d, failed %d, flagged %d (run %s)\n",
		result.Parsed, result.Skipped, result.NotFound, result.Failed, result.Flagged, result.RunID)
	return nil
}

// requests collects page requests from arguments and the --from file.
func (c *BatchCmd) requests(stdin io.Reader) ([]manparse.DocumentKey, error) {
	lines := append([]string(nil), c.Pages...)

	if c.From != "" {
		var r io.Reader = stdin
		if c.From != "-" {
			f, err := os.Open(c.From)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines = append(lines, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	requests := make([]manparse.DocumentKey, 0, len(lines))
	for _, line := range lines {
		name, section, err := manparse.ParseRequest(line)
		if err != nil {
			return nil, err
		}
		requests = append(requests, manparse.DocumentKey{Name: name, Section: section})
	}
	return requests, nil
}
