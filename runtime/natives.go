package runtime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lumen-lang/lumen/ast"
	"github.com/lumen-lang/lumen/lang"
)

// maxArrayLen bounds Array.new so a huge count fails instead of exhausting
// memory.
const maxArrayLen = 1 << 24

// now is replaced in tests.
var now = time.Now

func installNatives(ev *lang.Evaluator) {
	env := ev.Global
	define := func(name string, val lang.Value) {
		if _, err := env.Declare(name, val, false); err != nil {
			panic(fmt.Errorf("runtime bootstrap failed: %w", err))
		}
	}
	namespace := func(name string, members map[string]lang.Native) lang.Value {
		props := make(map[string]lang.Value, len(members))
		for member, fn := range members {
			props[member] = lang.NativeValue(name+"."+member, fn)
		}
		return lang.ObjectValue(props)
	}

	define("print!", lang.NativeValue("print!", nativePrint))
	define("Date", namespace("Date", map[string]lang.Native{
		"now": nativeDateNow,
	}))
	define("Array", namespace("Array", map[string]lang.Native{
		"new":    nativeArrayNew,
		"from":   nativeArrayFrom,
		"has":    nativeArrayHas,
		"concat": nativeArrayConcat,
	}))
}

func nativePrint(ev *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	var builder strings.Builder
	for _, arg := range args {
		builder.WriteString(arg.Display())
	}
	builder.WriteByte('\n')
	if _, err := fmt.Fprint(ev.Stdout, builder.String()); err != nil {
		return lang.Value{}, err
	}
	return lang.Null, nil
}

func nativeDateNow(_ *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	if err := checkArity("Date.now", args, 0); err != nil {
		return lang.Value{}, err
	}
	t := now()
	return lang.NumberValue(float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)), nil
}

func nativeArrayNew(_ *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	if err := checkArity("Array.new", args, 1); err != nil {
		return lang.Value{}, err
	}
	if args[0].Type != lang.TypeNumber {
		return lang.Value{}, typeError("Array.new", "number", args[0])
	}
	n := args[0].Number()
	if n < 0 || n != math.Trunc(n) || math.IsInf(n, 0) {
		return lang.Value{}, lang.NewError(lang.KindTypeMismatch, ast.Position{}, "Array.new expects a non-negative integer count, got %s", lang.FormatNumber(n))
	}
	if n > maxArrayLen {
		return lang.Value{}, lang.NewError(lang.KindTypeMismatch, ast.Position{}, "Array.new count %s exceeds limit %d", lang.FormatNumber(n), maxArrayLen)
	}
	return lang.ArrayValue(make([]lang.Value, int(n))), nil
}

func nativeArrayFrom(_ *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	elems := make([]lang.Value, len(args))
	copy(elems, args)
	return lang.ArrayValue(elems), nil
}

func nativeArrayHas(_ *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	if err := checkArity("Array.has", args, 2); err != nil {
		return lang.Value{}, err
	}
	if args[0].Type != lang.TypeArray {
		return lang.Value{}, typeError("Array.has", "array", args[0])
	}
	for _, elem := range args[0].Array().Elements {
		if lang.Equal(elem, args[1]) {
			return lang.BoolValue(true), nil
		}
	}
	return lang.BoolValue(false), nil
}

func nativeArrayConcat(_ *lang.Evaluator, args []lang.Value, _ *lang.Env) (lang.Value, error) {
	if err := checkArity("Array.concat", args, 2); err != nil {
		return lang.Value{}, err
	}
	if args[0].Type != lang.TypeArray {
		return lang.Value{}, typeError("Array.concat", "array", args[0])
	}
	src := args[0].Array().Elements
	elems := make([]lang.Value, len(src), len(src)+1)
	copy(elems, src)
	return lang.ArrayValue(append(elems, args[1])), nil
}

func checkArity(name string, args []lang.Value, want int) error {
	if len(args) != want {
		return lang.NewError(lang.KindArity, ast.Position{}, "%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

func typeError(name, expected string, got lang.Value) error {
	return lang.NewError(lang.KindTypeMismatch, ast.Position{}, "%s expects %s, got %s", name, expected, got.Type)
}
