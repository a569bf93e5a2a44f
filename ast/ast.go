package ast

import "fmt"

// Position tracks a source location within a Lumen source file.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Program is the root of a parsed Lumen source.
type Program struct {
	Body []Stmt
}

// Stmt represents a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Operator enumerates the binary operators.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLess
	OpGreater
)

func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	default:
		return "?"
	}
}

// ExprStmt evaluates an expression; its value becomes the statement value.
type ExprStmt struct {
	Expr Expr
	Posn Position
}

func (s *ExprStmt) Pos() Position { return s.Posn }
func (*ExprStmt) stmtNode()       {}

// VarDecl declares a binding, optionally initialised. let and let mut
// produce mutable bindings; const produces an immutable one.
type VarDecl struct {
	Mutable bool
	Name    string
	Init    Expr // may be nil
	Posn    Position
}

func (s *VarDecl) Pos() Position { return s.Posn }
func (*VarDecl) stmtNode()       {}

// FuncDecl introduces a named function.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	Posn   Position
}

func (s *FuncDecl) Pos() Position { return s.Posn }
func (*FuncDecl) stmtNode()       {}

// ReturnStmt exits the current function, optionally with a value.
type ReturnStmt struct {
	Result Expr // may be nil
	Posn   Position
}

func (s *ReturnStmt) Pos() Position { return s.Posn }
func (*ReturnStmt) stmtNode()       {}

// IfStmt conditionally executes branches. An else-if chain is an Else
// holding a single IfStmt.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil when absent
	Posn Position
}

func (s *IfStmt) Pos() Position { return s.Posn }
func (*IfStmt) stmtNode()       {}

// ForStmt iterates Body over the elements of an array.
type ForStmt struct {
	Binding  string
	Iterable Expr
	Body     []Stmt
	Posn     Position
}

func (s *ForStmt) Pos() Position { return s.Posn }
func (*ForStmt) stmtNode()       {}

// NumberLit is a numeric literal. Literals too large for a float64 hold +Inf.
type NumberLit struct {
	Value float64
	Posn  Position
}

func (e *NumberLit) Pos() Position { return e.Posn }
func (*NumberLit) exprNode()       {}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
	Posn  Position
}

func (e *StringLit) Pos() Position { return e.Posn }
func (*StringLit) exprNode()       {}

// Ident refers to a binding by name.
type Ident struct {
	Name string
	Posn Position
}

func (e *Ident) Pos() Position { return e.Posn }
func (*Ident) exprNode()       {}

// BinaryExpr represents infix operator application.
type BinaryExpr struct {
	Op          Operator
	Left, Right Expr
	Posn        Position
}

func (e *BinaryExpr) Pos() Position { return e.Posn }
func (*BinaryExpr) exprNode()       {}

// AssignExpr stores Value into Target, which is an *Ident or a *MemberExpr.
type AssignExpr struct {
	Target Expr
	Value  Expr
	Posn   Position
}

func (e *AssignExpr) Pos() Position { return e.Posn }
func (*AssignExpr) exprNode()       {}

// ArrayLit is a literal array [a, b, ...].
type ArrayLit struct {
	Elements []Expr
	Posn     Position
}

func (e *ArrayLit) Pos() Position { return e.Posn }
func (*ArrayLit) exprNode()       {}

// Property is a single object literal entry. A nil Value marks the shorthand
// form { key }, which reads the variable named key.
type Property struct {
	Key   string
	Value Expr
	Posn  Position
}

// ObjectLit is a literal object { key: value, ... }.
type ObjectLit struct {
	Props []Property
	Posn  Position
}

func (e *ObjectLit) Pos() Position { return e.Posn }
func (*ObjectLit) exprNode()       {}

// MemberExpr is object.property or, when Computed, object[property].
// For the dotted form Property is always an *Ident.
type MemberExpr struct {
	Object   Expr
	Property Expr
	Computed bool
	Posn     Position
}

func (e *MemberExpr) Pos() Position { return e.Posn }
func (*MemberExpr) exprNode()       {}

// CallExpr invokes an expression with arguments.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Posn   Position
}

func (e *CallExpr) Pos() Position { return e.Posn }
func (*CallExpr) exprNode()       {}
