package parser

import (
	"io"

	"github.com/lumen-lang/lumen/ast"
)

// ParseReader consumes Lumen source from an io.Reader and returns its AST.
func ParseReader(r io.Reader) (*ast.Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}
