package runtime

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lumen-lang/lumen/lang"
)

func newCapturingEvaluator() (*lang.Evaluator, *bytes.Buffer) {
	ev := NewEvaluator()
	var buf bytes.Buffer
	ev.Stdout = &buf
	return ev, &buf
}

func mustEvaluate(t *testing.T, ev *lang.Evaluator, src string) lang.Value {
	t.Helper()
	val, err := EvaluateString(ev, src)
	if err != nil {
		t.Fatalf("EvaluateString(%q) returned error: %v", src, err)
	}
	return val
}

func expectKind(t *testing.T, src string, want lang.ErrorKind) {
	t.Helper()
	ev, _ := newCapturingEvaluator()
	_, err := EvaluateString(ev, src)
	if err == nil {
		t.Fatalf("EvaluateString(%q): expected %s error, got nil", src, want)
	}
	kind, ok := lang.KindOf(err)
	if !ok || kind != want {
		t.Fatalf("EvaluateString(%q): expected %s error, got %v", src, want, err)
	}
}

func TestPrintWritesDisplayForms(t *testing.T) {
	ev, buf := newCapturingEvaluator()
	val := mustEvaluate(t, ev, `print!("a", 1, true, null, [1, "b"], 2.5);`)
	if !val.IsNull() {
		t.Fatalf("expected print! to return null, got %v", val)
	}
	want := "a1truenull[1, \"b\"]2.5\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintWithoutArguments(t *testing.T) {
	ev, buf := newCapturingEvaluator()
	mustEvaluate(t, ev, `print!();`)
	if buf.String() != "\n" {
		t.Fatalf("expected bare newline, got %q", buf.String())
	}
}

func TestDateNow(t *testing.T) {
	saved := now
	now = func() time.Time { return time.Unix(1700000000, 500000000) }
	defer func() { now = saved }()

	ev, _ := newCapturingEvaluator()
	val := mustEvaluate(t, ev, "Date.now()")
	if val.Type != lang.TypeNumber || val.Number() != 1700000000.5 {
		t.Fatalf("expected 1700000000.5, got %v", val)
	}
	expectKind(t, "Date.now(1)", lang.KindArity)
}

func TestArrayNew(t *testing.T) {
	ev, _ := newCapturingEvaluator()
	val := mustEvaluate(t, ev, "Array::new(3)")
	if val.Type != lang.TypeArray || len(val.Array().Elements) != 3 {
		t.Fatalf("expected 3-element array, got %v", val)
	}
	for i, elem := range val.Array().Elements {
		if !elem.IsNull() {
			t.Fatalf("element %d: expected null, got %v", i, elem)
		}
	}
	if got := mustEvaluate(t, ev, "Array.new(0)"); len(got.Array().Elements) != 0 {
		t.Fatalf("expected empty array, got %v", got)
	}

	expectKind(t, `Array.new("3")`, lang.KindTypeMismatch)
	expectKind(t, "Array.new(0 - 1)", lang.KindTypeMismatch)
	expectKind(t, "Array.new(1.5)", lang.KindTypeMismatch)
	expectKind(t, "Array.new(1"+strings.Repeat("0", 300)+")", lang.KindTypeMismatch)
	expectKind(t, "Array.new(1000000000000)", lang.KindTypeMismatch)
	expectKind(t, "Array.new()", lang.KindArity)
}

func TestArrayFrom(t *testing.T) {
	ev, _ := newCapturingEvaluator()
	val := mustEvaluate(t, ev, `Array::from(1, "two", [3])`)
	if got := val.String(); got != `[1, "two", [3]]` {
		t.Fatalf("unexpected array %s", got)
	}
	if got := mustEvaluate(t, ev, "Array.from()"); len(got.Array().Elements) != 0 {
		t.Fatalf("expected empty array, got %v", got)
	}
}

func TestArrayHas(t *testing.T) {
	ev, _ := newCapturingEvaluator()
	mustEvaluate(t, ev, `let xs = Array.from(1, "a", { k: 1 }, [2]);`)
	cases := []struct {
		src  string
		want bool
	}{
		{"Array.has(xs, 1)", true},
		{`Array.has(xs, "a")`, true},
		{`Array.has(xs, "1")`, false},
		{"Array.has(xs, { k: 1 })", true},
		{"Array.has(xs, [2])", true},
		{"Array.has(xs, 3)", false},
		{"Array.has([], null)", false},
	}
	for _, tc := range cases {
		val := mustEvaluate(t, ev, tc.src)
		if val.Type != lang.TypeBool || val.Bool() != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.src, tc.want, val)
		}
	}
	expectKind(t, "Array.has(1, 1)", lang.KindTypeMismatch)
	expectKind(t, "Array.has([1])", lang.KindArity)
}

func TestArrayConcatCopies(t *testing.T) {
	ev, _ := newCapturingEvaluator()
	mustEvaluate(t, ev, "let xs = [1, 2]; let ys = Array.concat(xs, 3);")
	if got := mustEvaluate(t, ev, "ys").String(); got != "[1, 2, 3]" {
		t.Fatalf("unexpected concat result %s", got)
	}
	if got := mustEvaluate(t, ev, "xs").String(); got != "[1, 2]" {
		t.Fatalf("concat must not modify its input, got %s", got)
	}
	expectKind(t, `Array.concat("x", 1)`, lang.KindTypeMismatch)
}

func TestNativesAreImmutable(t *testing.T) {
	for _, name := range []string{"print!", "Date", "Array", "true", "false", "null"} {
		expectKind(t, name+" = 1;", lang.KindImmutability)
	}
}

func TestNativeErrorsCarryCallPosition(t *testing.T) {
	ev, _ := newCapturingEvaluator()
	_, err := EvaluateString(ev, "\n  Array.new()")
	if err == nil || !strings.HasPrefix(err.Error(), "2:12:") {
		t.Fatalf("expected error at the call site, got %v", err)
	}
}
