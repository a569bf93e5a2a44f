package runtime

import (
	"bytes"
	"io"
	"os"

	"github.com/lumen-lang/lumen/lang"
	"github.com/lumen-lang/lumen/parser"
)

// NewEvaluator constructs an evaluator with the native builtins installed.
func NewEvaluator() *lang.Evaluator {
	ev := lang.NewEvaluator()
	installNatives(ev)
	return ev
}

// SetArgv binds the command-line arguments as the immutable global array argv.
// Calling it again replaces the previous binding.
func SetArgv(ev *lang.Evaluator, args []string) {
	values := make([]lang.Value, len(args))
	for i, arg := range args {
		values[i] = lang.StringValue(arg)
	}
	if ev.Global.Has("argv") {
		ev.Global.Remove("argv")
	}
	ev.Global.Declare("argv", lang.ArrayValue(values), false)
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return skipShebang(data), nil
}

func skipShebang(data []byte) []byte {
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			// Keep the newline so reported line numbers match the file.
			return data[idx:]
		}
		return []byte{}
	}
	return data
}

// EvaluateString parses and evaluates Lumen source, returning the value of
// the last top-level statement. Declarations persist in ev.Global.
func EvaluateString(ev *lang.Evaluator, src string) (lang.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.EvalProgram(prog, nil)
}

// EvaluateReader parses and evaluates Lumen source from the reader.
func EvaluateReader(ev *lang.Evaluator, r io.Reader) (lang.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return lang.Value{}, err
	}
	return EvaluateString(ev, string(skipShebang(data)))
}

// EvaluateFile loads and executes a Lumen source file, allowing a #! line.
func EvaluateFile(ev *lang.Evaluator, path string) (lang.Value, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return lang.Value{}, err
	}
	return EvaluateString(ev, string(data))
}
