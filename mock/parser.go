package mock

import "github.com/fwojciec/manparse"

var _ manparse.Parser = (*Parser)(nil)

// Parser is a mock implementation of manparse.Parser.
type Parser struct {
	ParseFn func(key manparse.DocumentKey, src manparse.Source) (*manparse.Document, error)
}

func (p *Parser) Parse(key manparse.DocumentKey, src manparse.Source) (*manparse.Document, error) {
	return p.ParseFn(key, src)
}
