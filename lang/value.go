package lang

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lumen-lang/lumen/ast"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeNumber
	TypeBool
	TypeString
	TypeArray
	TypeObject
	TypeFunction
	TypeNative
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeFunction:
		return "function"
	case TypeNative:
		return "native function"
	default:
		return "unknown"
	}
}

// Value represents any runtime object in the interpreter. The zero Value is
// Null.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Array is a mutable, ordered sequence of values shared by reference.
type Array struct {
	Elements []Value
}

// Object maps property names to values and is shared by reference.
type Object struct {
	Props map[string]Value
}

// Function is a user-defined function together with the scope it captured.
type Function struct {
	Name   string
	Params []string
	Body   []ast.Stmt
	Env    *Env
}

// Native is a host operation exposed to programs. env is the caller's scope.
type Native func(ev *Evaluator, args []Value, env *Env) (Value, error)

// NativeFunc pairs a Native with the name it is reported under.
type NativeFunc struct {
	Name string
	Fn   Native
}

// Null is the singleton null value.
var Null = Value{Type: TypeNull}

// NumberValue constructs a number Value.
func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// ArrayValue wraps elements in a fresh array.
func ArrayValue(elems []Value) Value {
	return Value{Type: TypeArray, payload: &Array{Elements: elems}}
}

// ObjectValue wraps props in a fresh object. A nil map is replaced by an
// empty one.
func ObjectValue(props map[string]Value) Value {
	if props == nil {
		props = make(map[string]Value)
	}
	return Value{Type: TypeObject, payload: &Object{Props: props}}
}

// FunctionValue wraps a user function.
func FunctionValue(fn *Function) Value {
	return Value{Type: TypeFunction, payload: fn}
}

// NativeValue wraps a host function.
func NativeValue(name string, fn Native) Value {
	return Value{Type: TypeNative, payload: &NativeFunc{Name: name, Fn: fn}}
}

func (v Value) Number() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Array() *Array {
	if a, ok := v.payload.(*Array); ok {
		return a
	}
	return nil
}

func (v Value) Object() *Object {
	if o, ok := v.payload.(*Object); ok {
		return o
	}
	return nil
}

func (v Value) Function() *Function {
	if f, ok := v.payload.(*Function); ok {
		return f
	}
	return nil
}

func (v Value) Native() *NativeFunc {
	if n, ok := v.payload.(*NativeFunc); ok {
		return n
	}
	return nil
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// Equal compares two values. Values of different types are never equal.
// Arrays and objects compare structurally; functions by identity.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeNull:
		return true
	case TypeNumber:
		return a.Number() == b.Number()
	case TypeBool:
		return a.Bool() == b.Bool()
	case TypeString:
		return a.Str() == b.Str()
	case TypeArray:
		x, y := a.Array(), b.Array()
		if x == y {
			return true
		}
		if x == nil || y == nil || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		x, y := a.Object(), b.Object()
		if x == y {
			return true
		}
		if x == nil || y == nil || len(x.Props) != len(y.Props) {
			return false
		}
		for k, xv := range x.Props {
			yv, ok := y.Props[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case TypeFunction:
		return a.Function() == b.Function()
	case TypeNative:
		return a.Native() == b.Native()
	default:
		return false
	}
}

// Display renders v the way print! shows it: strings unquoted, arrays as
// [elem, ...] using each element's debug form.
func (v Value) Display() string {
	if v.Type == TypeString {
		return v.Str()
	}
	return v.String()
}

// String renders the debug form of v.
func (v Value) String() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeNumber:
		return FormatNumber(v.Number())
	case TypeBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case TypeString:
		return strconv.Quote(v.Str())
	case TypeArray:
		return arrayToString(v.Array())
	case TypeObject:
		return objectToString(v.Object())
	case TypeFunction:
		if fn := v.Function(); fn != nil && fn.Name != "" {
			return "<func " + fn.Name + ">"
		}
		return "<func>"
	case TypeNative:
		if n := v.Native(); n != nil && n.Name != "" {
			return "<native " + n.Name + ">"
		}
		return "<native>"
	default:
		return "<unknown>"
	}
}

// FormatNumber prints integral numbers without a fractional part.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func arrayToString(arr *Array) string {
	if arr == nil {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, elem := range arr.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(']')
	return b.String()
}

func objectToString(obj *Object) string {
	if obj == nil || len(obj.Props) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(obj.Props))
	for k := range obj.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(obj.Props[k].String())
	}
	b.WriteString(" }")
	return b.String()
}
