package lang

import (
	"io"
	"math"
	"os"

	"github.com/lumen-lang/lumen/ast"
)

// DefaultMaxDepth bounds nested function calls.
const DefaultMaxDepth = 10000

// Evaluator walks Lumen programs against a chain of environments.
type Evaluator struct {
	Global   *Env
	Stdout   io.Writer
	MaxDepth int

	depth int
}

// NewEvaluator constructs an evaluator rooted at a new global environment
// holding the literal bindings true, false and null.
func NewEvaluator() *Evaluator {
	global := NewEnv(nil)
	global.Declare("true", BoolValue(true), false)
	global.Declare("false", BoolValue(false), false)
	global.Declare("null", Null, false)
	return &Evaluator{
		Global:   global,
		Stdout:   os.Stdout,
		MaxDepth: DefaultMaxDepth,
	}
}

// EvalProgram runs every top-level statement and returns the value of the
// last one executed. A top-level ret stops the program early.
func (ev *Evaluator) EvalProgram(prog *ast.Program, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	if prog == nil {
		return Null, nil
	}
	out, err := ev.execBlock(prog.Body, env)
	if err != nil {
		return Value{}, err
	}
	return out.value, nil
}

// Eval evaluates a single expression within the provided environment.
func (ev *Evaluator) Eval(expr ast.Expr, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	return ev.eval(expr, env)
}

// Apply invokes a callable value with already evaluated arguments. env is the
// caller's scope, handed to native functions.
func (ev *Evaluator) Apply(proc Value, args []Value, env *Env) (Value, error) {
	if env == nil {
		env = ev.Global
	}
	switch proc.Type {
	case TypeNative:
		return proc.Native().Fn(ev, args, env)
	case TypeFunction:
		return ev.callFunction(proc.Function(), args)
	default:
		return Value{}, NewError(KindNotCallable, ast.Position{}, "%s is not callable", proc.Type)
	}
}

func (ev *Evaluator) callFunction(fn *Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return Value{}, NewError(KindArity, ast.Position{}, "%s expects %d argument(s), got %d", fn.displayName(), len(fn.Params), len(args))
	}
	if ev.MaxDepth > 0 && ev.depth >= ev.MaxDepth {
		return Value{}, NewError(KindDepth, ast.Position{}, "maximum call depth %d exceeded in %s", ev.MaxDepth, fn.displayName())
	}
	ev.depth++
	defer func() { ev.depth-- }()

	scope := NewEnv(fn.Env)
	for i, name := range fn.Params {
		if _, err := scope.Declare(name, args[i], true); err != nil {
			return Value{}, err
		}
	}
	out, err := ev.execBlock(fn.Body, scope)
	if err != nil {
		return Value{}, err
	}
	return out.value, nil
}

func (fn *Function) displayName() string {
	if fn.Name == "" {
		return "function"
	}
	return fn.Name
}

func (ev *Evaluator) eval(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return NumberValue(e.Value), nil
	case *ast.StringLit:
		return StringValue(e.Value), nil
	case *ast.Ident:
		val, err := env.Lookup(e.Name)
		if err != nil {
			return Value{}, withPos(err, e.Posn)
		}
		return val, nil
	case *ast.BinaryExpr:
		return ev.evalBinary(e, env)
	case *ast.AssignExpr:
		return ev.evalAssign(e, env)
	case *ast.ArrayLit:
		elems := make([]Value, 0, len(e.Elements))
		for _, elemExpr := range e.Elements {
			val, err := ev.eval(elemExpr, env)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, val)
		}
		return ArrayValue(elems), nil
	case *ast.ObjectLit:
		return ev.evalObject(e, env)
	case *ast.MemberExpr:
		return ev.evalMember(e, env)
	case *ast.CallExpr:
		return ev.evalCall(e, env)
	default:
		return Value{}, NewError(KindTypeMismatch, exprPos(expr), "unsupported expression %T", expr)
	}
}

// evalBinary evaluates both operands before dispatching. Operand pairings
// without a rule produce Null.
func (ev *Evaluator) evalBinary(e *ast.BinaryExpr, env *Env) (Value, error) {
	lhs, err := ev.eval(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	rhs, err := ev.eval(e.Right, env)
	if err != nil {
		return Value{}, err
	}
	return binaryOp(e.Op, lhs, rhs), nil
}

func binaryOp(op ast.Operator, lhs, rhs Value) Value {
	switch {
	case lhs.Type == TypeNumber && rhs.Type == TypeNumber:
		a, b := lhs.Number(), rhs.Number()
		switch op {
		case ast.OpAdd:
			return NumberValue(a + b)
		case ast.OpSub:
			return NumberValue(a - b)
		case ast.OpMul:
			return NumberValue(a * b)
		case ast.OpDiv:
			return NumberValue(a / b)
		case ast.OpMod:
			return NumberValue(math.Mod(a, b))
		case ast.OpEq:
			return BoolValue(a == b)
		case ast.OpNotEq:
			return BoolValue(a != b)
		case ast.OpLess:
			return BoolValue(a < b)
		case ast.OpGreater:
			return BoolValue(a > b)
		}
	case lhs.Type == TypeString && rhs.Type == TypeString:
		a, b := lhs.Str(), rhs.Str()
		switch op {
		case ast.OpAdd:
			return StringValue(a + b)
		case ast.OpEq:
			return BoolValue(a == b)
		case ast.OpNotEq:
			return BoolValue(a != b)
		}
	case lhs.Type == TypeBool && rhs.Type == TypeBool:
		a, b := lhs.Bool(), rhs.Bool()
		switch op {
		case ast.OpEq:
			return BoolValue(a == b)
		case ast.OpNotEq:
			return BoolValue(a != b)
		}
	}
	return Null
}

func (ev *Evaluator) evalAssign(e *ast.AssignExpr, env *Env) (Value, error) {
	switch target := e.Target.(type) {
	case *ast.Ident:
		val, err := ev.eval(e.Value, env)
		if err != nil {
			return Value{}, err
		}
		if _, err := env.Assign(target.Name, val); err != nil {
			return Value{}, withPos(err, target.Posn)
		}
		return val, nil
	case *ast.MemberExpr:
		container, key, err := ev.memberLocation(target, env)
		if err != nil {
			return Value{}, err
		}
		val, err := ev.eval(e.Value, env)
		if err != nil {
			return Value{}, err
		}
		if err := storeMember(container, key, val, target.Posn); err != nil {
			return Value{}, err
		}
		return val, nil
	default:
		return Value{}, NewError(KindTypeMismatch, e.Posn, "cannot assign to %T", e.Target)
	}
}

func (ev *Evaluator) evalObject(e *ast.ObjectLit, env *Env) (Value, error) {
	props := make(map[string]Value, len(e.Props))
	for _, prop := range e.Props {
		if prop.Value == nil {
			val, err := env.Lookup(prop.Key)
			if err != nil {
				return Value{}, withPos(err, prop.Posn)
			}
			props[prop.Key] = val
			continue
		}
		val, err := ev.eval(prop.Value, env)
		if err != nil {
			return Value{}, err
		}
		props[prop.Key] = val
	}
	return ObjectValue(props), nil
}

func (ev *Evaluator) evalMember(e *ast.MemberExpr, env *Env) (Value, error) {
	container, key, err := ev.memberLocation(e, env)
	if err != nil {
		return Value{}, err
	}
	return loadMember(container, key, e.Posn)
}

// memberLocation evaluates the container and key of a member expression
// without reading the member itself, so assignment can write through it.
func (ev *Evaluator) memberLocation(e *ast.MemberExpr, env *Env) (Value, Value, error) {
	container, err := ev.eval(e.Object, env)
	if err != nil {
		return Value{}, Value{}, err
	}
	if !e.Computed {
		ident, ok := e.Property.(*ast.Ident)
		if !ok {
			return Value{}, Value{}, NewError(KindTypeMismatch, e.Posn, "expected identifier after '.'")
		}
		return container, StringValue(ident.Name), nil
	}
	key, err := ev.eval(e.Property, env)
	if err != nil {
		return Value{}, Value{}, err
	}
	return container, key, nil
}

func loadMember(container, key Value, pos ast.Position) (Value, error) {
	switch container.Type {
	case TypeObject:
		name, err := propertyName(key, pos)
		if err != nil {
			return Value{}, err
		}
		if val, ok := container.Object().Props[name]; ok {
			return val, nil
		}
		return Null, nil
	case TypeArray:
		idx, ok := arrayIndex(key)
		elems := container.Array().Elements
		if !ok || idx < 0 || idx >= len(elems) {
			if key.Type != TypeNumber {
				return Value{}, NewError(KindTypeMismatch, pos, "array index must be a number, got %s", key.Type)
			}
			return Null, nil
		}
		return elems[idx], nil
	default:
		return Value{}, NewError(KindTypeMismatch, pos, "cannot read member %s of %s", key.Display(), container.Type)
	}
}

func storeMember(container, key, val Value, pos ast.Position) error {
	switch container.Type {
	case TypeObject:
		name, err := propertyName(key, pos)
		if err != nil {
			return err
		}
		container.Object().Props[name] = val
		return nil
	case TypeArray:
		idx, ok := arrayIndex(key)
		arr := container.Array()
		if !ok || idx < 0 || idx >= len(arr.Elements) {
			return NewError(KindTypeMismatch, pos, "array index %s out of range 0..%d", key, len(arr.Elements))
		}
		arr.Elements[idx] = val
		return nil
	default:
		return NewError(KindTypeMismatch, pos, "cannot assign member %s of %s", key.Display(), container.Type)
	}
}

func propertyName(key Value, pos ast.Position) (string, error) {
	switch key.Type {
	case TypeString:
		return key.Str(), nil
	case TypeNumber:
		return FormatNumber(key.Number()), nil
	default:
		return "", NewError(KindTypeMismatch, pos, "object key must be a string, got %s", key.Type)
	}
}

func arrayIndex(key Value) (int, bool) {
	if key.Type != TypeNumber {
		return 0, false
	}
	f := key.Number()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// evalCall evaluates arguments left to right in the caller's scope before
// resolving the callee.
func (ev *Evaluator) evalCall(e *ast.CallExpr, env *Env) (Value, error) {
	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		val, err := ev.eval(argExpr, env)
		if err != nil {
			return Value{}, err
		}
		args = append(args, val)
	}
	callee, err := ev.eval(e.Callee, env)
	if err != nil {
		return Value{}, err
	}
	val, err := ev.Apply(callee, args, env)
	if err != nil {
		return Value{}, withPos(err, e.Posn)
	}
	return val, nil
}

func exprPos(expr ast.Expr) ast.Position {
	if expr == nil {
		return ast.Position{}
	}
	return expr.Pos()
}
