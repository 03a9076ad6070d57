package main

import (
	"fmt"

	"github.com/fwojciec/manparse"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	name, section, err := request(c.Page, c.Section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}
	if section == 0 {
		err := manparse.Errorf(manparse.EINVALID, "a section is required to delete %s", name)
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	// Without its manifest entry the page is reparsed on the next batch run.
	key := manparse.DocumentKey{Name: name, Section: section}
	if err := deps.Manifest.DeleteEntry(deps.Ctx, key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}
	if err := deps.Documents.DeleteDocument(deps.Ctx, key); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %s\n", manparse.Reference{Name: name, Section: section})
	return nil
}
