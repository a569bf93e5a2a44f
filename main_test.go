package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumen-lang/lumen/config"
)

// runLumen invokes the CLI with colour disabled and an isolated config path.
func runLumen(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	argv := append([]string{"lumen", "-n", "-c", filepath.Join(t.TempDir(), "none.yml")}, args...)
	var stdout, stderr bytes.Buffer
	code := run(argv, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeScript(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunVersionAndHelp(t *testing.T) {
	code, out, _ := runLumen(t, "", "-V")
	if code != 0 || out != "lumen "+version+"\n" {
		t.Fatalf("unexpected -V result %d %q", code, out)
	}
	code, out, _ = runLumen(t, "", "-h")
	if code != 0 || !strings.HasPrefix(out, "usage: lumen") {
		t.Fatalf("unexpected -h result %d %q", code, out)
	}
}

func TestRunBadFlags(t *testing.T) {
	if code, _, errOut := runLumen(t, "", "-z"); code != 2 || !strings.Contains(errOut, "usage:") {
		t.Fatalf("expected usage error for unknown flag, got %d %q", code, errOut)
	}
	if code, _, errOut := runLumen(t, "", "-d", "zero"); code != 2 || !strings.Contains(errOut, "invalid -d value") {
		t.Fatalf("expected invalid depth error, got %d %q", code, errOut)
	}
}

func TestRunExpression(t *testing.T) {
	code, out, errOut := runLumen(t, "", "-e", `"foo" + "bar"`)
	if code != 0 || out != "\"foobar\"\n" || errOut != "" {
		t.Fatalf("unexpected -e result %d %q %q", code, out, errOut)
	}
	code, out, _ = runLumen(t, "", "-q", "-e", "1 + 2")
	if code != 0 || out != "" {
		t.Fatalf("expected -q to suppress echo, got %d %q", code, out)
	}
	code, out, _ = runLumen(t, "", "-e", "print!(argv[0], argv[1])", "a", "b")
	if code != 0 || out != "ab\n" {
		t.Fatalf("expected argv from trailing args, got %d %q", code, out)
	}
}

func TestRunExpressionError(t *testing.T) {
	code, _, errOut := runLumen(t, "", "-e", "const x = 5; x = 6;")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	want := "error[Immutability]: 1:14: cannot assign to constant x\n"
	if errOut != want {
		t.Fatalf("expected %q, got %q", want, errOut)
	}
}

func TestRunScriptFile(t *testing.T) {
	script := writeScript(t, "hello.lm", `#!/usr/bin/env lumen
for (arg in argv) {
	print!("arg: ", arg);
}
`)
	code, out, errOut := runLumen(t, "", script, "x")
	if code != 0 || errOut != "" {
		t.Fatalf("unexpected exit %d, stderr %q", code, errOut)
	}
	want := "arg: " + script + "\narg: x\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	code, _, errOut = runLumen(t, "", filepath.Join(t.TempDir(), "missing.lm"))
	if code != 1 || !strings.HasPrefix(errOut, "error: ") {
		t.Fatalf("expected plain error for missing script, got %d %q", code, errOut)
	}
}

func TestRunScriptFromStdin(t *testing.T) {
	code, out, _ := runLumen(t, "func add(a, b) { ret a + b; }\nprint!(add(2, 3));\n", "-")
	if code != 0 || out != "5\n" {
		t.Fatalf("unexpected stdin script result %d %q", code, out)
	}
}

func TestRunDepthFlag(t *testing.T) {
	code, _, errOut := runLumen(t, "", "-d", "10", "-e", "func f(n) { ret f(n + 1); } f(0)")
	if code != 1 || !strings.HasPrefix(errOut, "error[Depth]:") {
		t.Fatalf("expected Depth error, got %d %q", code, errOut)
	}
}

func TestBufferedREPL(t *testing.T) {
	input := strings.Join([]string{
		"let x = 40;",
		"x + 2",
		"func twice(n) {",
		"  ret n * 2;",
		"}",
		"twice(x)",
		"undefined",
		"print!(\"done\")",
		"",
	}, "\n")
	code, out, errOut := runLumen(t, input)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	wantOut := "40\n42\n<func twice>\n80\ndone\n"
	if out != wantOut {
		t.Fatalf("expected stdout %q, got %q", wantOut, out)
	}
	wantErr := "error[NameResolution]: 1:1: variable undefined is not defined\n"
	if errOut != wantErr {
		t.Fatalf("expected stderr %q, got %q", wantErr, errOut)
	}
}

func TestBufferedREPLKeepsStateAfterErrors(t *testing.T) {
	code, out, errOut := runLumen(t, "let a = 1;\nlet a = 2;\na\n")
	if code != 0 || out != "1\n1\n" {
		t.Fatalf("unexpected output %d %q", code, out)
	}
	if !strings.HasPrefix(errOut, "error[Duplicate]:") {
		t.Fatalf("expected Duplicate error, got %q", errOut)
	}
}

func TestBufferedREPLIncompleteAtEOF(t *testing.T) {
	code, out, errOut := runLumen(t, "func f() {\n  ret 1;\n")
	if code != 0 || out != "" {
		t.Fatalf("unexpected output %d %q", code, out)
	}
	if !strings.Contains(errOut, "error[Parse]:") || !strings.Contains(errOut, "expected } to close block") {
		t.Fatalf("expected parse error at EOF, got %q", errOut)
	}
}

func TestBufferedREPLLastLineWithoutNewline(t *testing.T) {
	_, out, _ := runLumen(t, "1 + 1")
	if out != "2\n" {
		t.Fatalf("expected 2, got %q", out)
	}
}

func TestConfigFileControlsEcho(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "lumenrc.yml")
	if err := os.WriteFile(cfgPath, []byte("echo: false\nmax_depth: 5\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"lumen", "-n", "-c", cfgPath}, strings.NewReader("1 + 1\nprint!(3)\n"), &stdout, &stderr)
	if code != 0 || stdout.String() != "3\n" {
		t.Fatalf("expected only printed output, got %d %q %q", code, stdout.String(), stderr.String())
	}

	if err := os.WriteFile(cfgPath, []byte("bogus: 1\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"lumen", "-c", cfgPath, "-e", "1"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("expected config error exit code, got %d", code)
	}
	if !strings.Contains(stderr.String(), "config: parse") {
		t.Fatalf("expected config parse error, got %q", stderr.String())
	}
}

func TestTrimHistory(t *testing.T) {
	if got := trimHistory("a\nb\nc\n", 2); got != "b\nc\n" {
		t.Fatalf("expected last two lines, got %q", got)
	}
	if got := trimHistory("a\nb\n", 10); got != "a\nb\n" {
		t.Fatalf("expected all lines, got %q", got)
	}
	if got := trimHistory("\n", 10); got != "" {
		t.Fatalf("expected empty history, got %q", got)
	}
}

type fakeHistory struct {
	loaded string
	err    error
}

func (h *fakeHistory) ReadHistory(r io.Reader) (int, error) {
	data, _ := io.ReadAll(r)
	h.loaded = string(data)
	return 0, h.err
}

func (h *fakeHistory) WriteHistory(w io.Writer) (int, error) {
	if h.err != nil {
		return 0, h.err
	}
	n, err := io.WriteString(w, "saved\n")
	return n, err
}

func TestHistoryPersistence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	if err := loadHistory(&fakeHistory{}, path, 10); err != nil {
		t.Fatalf("missing history file must not fail, got %v", err)
	}
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o600); err != nil {
		t.Fatalf("write history: %v", err)
	}
	h := &fakeHistory{}
	if err := loadHistory(h, path, 2); err != nil || h.loaded != "b\nc\n" {
		t.Fatalf("expected trimmed history, got %q (%v)", h.loaded, err)
	}

	broken := &fakeHistory{err: errors.New("corrupt")}
	if err := loadHistory(broken, path, 2); err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Fatalf("expected read failure to surface, got %v", err)
	}
	if err := saveHistory(broken, path); err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Fatalf("expected write failure to surface, got %v", err)
	}
	if err := saveHistory(&fakeHistory{}, filepath.Join(dir, "missing", "history")); err == nil {
		t.Fatalf("expected create failure to surface")
	}

	if err := saveHistory(&fakeHistory{}, path); err != nil {
		t.Fatalf("saveHistory returned error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "saved\n" {
		t.Fatalf("unexpected saved history %q", data)
	}
}

func TestReporterWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	rep := newReporter(&buf, false)
	rep.error(os.ErrNotExist)
	if buf.String() != "error: file does not exist\n" {
		t.Fatalf("unexpected plain error %q", buf.String())
	}
	if !config.Default().Color {
		t.Fatalf("colour must default to on")
	}
}
