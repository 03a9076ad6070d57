package main

import (
	"fmt"

	"github.com/fwojciec/manparse"
)

// Run executes the show command. Without a section the lowest stored
// section is shown.
func (c *ShowCmd) Run(deps *Dependencies) error {
	name, section, err := request(c.Page, c.Section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	var doc *manparse.Document
	if section != 0 {
		doc, err = deps.Documents.FindDocument(deps.Ctx, manparse.DocumentKey{Name: name, Section: section})
	} else {
		var docs []*manparse.Document
		docs, err = deps.Documents.FindDocuments(deps.Ctx, manparse.DocumentFilter{Name: &name, Limit: 1})
		if err == nil && len(docs) == 0 {
			err = manparse.Errorf(manparse.ENOTFOUND, "document %s not found", name)
		}
		if err == nil {
			doc = docs[0]
		}
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	if c.Text {
		fmt.Fprintln(deps.Stdout, manparse.FormatDocument(doc))
		return nil
	}
	return writeDocument(deps.Stdout, doc, c.Legacy)
}
