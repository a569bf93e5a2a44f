package parser

import (
	"errors"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lang"
)

// Error represents a lexer or parser error. Incomplete marks input that ended
// before a construct was closed, which a REPL can answer by reading more.
type Error struct {
	Err        error
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(kind lang.ErrorKind, pos ast.Position, format string, args ...interface{}) error {
	return &Error{Err: lang.NewError(kind, pos, format, args...)}
}

func newIncompleteError(kind lang.ErrorKind, pos ast.Position, format string, args ...interface{}) error {
	return &Error{
		Err:        lang.NewError(kind, pos, format, args...),
		Incomplete: true,
	}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}
