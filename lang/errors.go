package lang

import (
	"errors"
	"fmt"

	"github.com/lumen-lang/lumen/ast"
)

// ErrorKind classifies interpreter failures.
type ErrorKind int

const (
	KindLex ErrorKind = iota
	KindParse
	KindNameResolution
	KindDuplicate
	KindTypeMismatch
	KindArity
	KindImmutability
	KindNotCallable
	KindNotIterable
	KindDepth
)

func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "Lex"
	case KindParse:
		return "Parse"
	case KindNameResolution:
		return "NameResolution"
	case KindDuplicate:
		return "Duplicate"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindArity:
		return "Arity"
	case KindImmutability:
		return "Immutability"
	case KindNotCallable:
		return "NotCallable"
	case KindNotIterable:
		return "NotIterable"
	case KindDepth:
		return "Depth"
	default:
		return "Unknown"
	}
}

// Error is the structured failure produced by every stage of the interpreter.
// Pos is the zero Position when no source location is known.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  ast.Position
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, pos ast.Position, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Pos:  pos,
	}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Kind, true
	}
	return 0, false
}

// withPos fills in a missing position, leaving located errors untouched.
func withPos(err error, pos ast.Position) error {
	var lerr *Error
	if errors.As(err, &lerr) && lerr.Pos.Line == 0 {
		lerr.Pos = pos
	}
	return err
}
