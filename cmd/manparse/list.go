package main

import (
	"fmt"

	"github.com/fwojciec/manparse"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := manparse.DocumentFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Section != 0 {
		filter.Section = &c.Section
	}
	if c.Complexity != "" {
		complexity := manparse.Complexity(c.Complexity)
		if !complexity.IsValid() {
			err := manparse.Errorf(manparse.EINVALID, "unknown complexity %q", c.Complexity)
			fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
			return err
		}
		filter.Complexity = &complexity
	}

	docs, err := deps.Documents.FindDocuments(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'manparse batch' to parse pages.")
		return nil
	}

	for _, doc := range docs {
		ref := manparse.Reference{Name: doc.Name, Section: doc.Section}
		fmt.Fprintf(deps.Stdout, "%-24s %-12s %s\n", ref, doc.Complexity, doc.Title)
	}

	return nil
}
