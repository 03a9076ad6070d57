package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/manparse"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	name, section, err := request(c.Page, c.Section)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	var key manparse.DocumentKey
	var src manparse.Source
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return err
		}
		if section == 0 {
			section = 1
		}
		key = manparse.DocumentKey{Name: name, Section: section}
		if c.HTML {
			text, err := deps.Renderer.Render(string(data))
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
				return err
			}
			src = manparse.RawSource{Rendered: text}
		} else {
			src = manparse.RawSource{Raw: string(data)}
		}
	} else {
		fetched, err := deps.Sources.FetchSource(deps.Ctx, name, section)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
			return err
		}
		key, src = fetched.Key, fetched.Source()
	}

	doc, err := deps.Parser.Parse(key, src)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", manparse.ErrorMessage(err))
		return err
	}

	return writeDocument(deps.Stdout, doc, c.Legacy)
}
