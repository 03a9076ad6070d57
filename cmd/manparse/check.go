package main

import (
	"fmt"

	"github.com/fwojciec/manparse"
	"github.com/fwojciec/manparse/parse"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	name, section, err := request(c.Page, c.Section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	fetched, err := deps.Sources.FetchSource(deps.Ctx, name, section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	doc, err := deps.Parser.Parse(fetched.Key, fetched.Source())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	ref := manparse.Reference{Name: doc.Name, Section: doc.Section}
	if err := parse.CheckArtifacts(doc); err != nil {
		fmt.Fprintf(deps.Stdout, "flagged %s: %s\n", ref, manparse.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "ok %s (%d sections, %d flags, %d examples)\n",
		ref, len(doc.Sections), len(doc.Flags), len(doc.Examples))
	return nil
}
