package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/lumen-lang/lumen/config"
	"github.com/lumen-lang/lumen/lang"
	"github.com/lumen-lang/lumen/parser"
)

type repl struct {
	ev  *lang.Evaluator
	cfg *config.Config
	out io.Writer
	rep *reporter
}

// submit parses and runs src. It returns false when src is incomplete and
// more input may finish it; final forces incomplete input to be reported.
func (r *repl) submit(src string, final bool) bool {
	prog, err := parser.Parse(src)
	if err != nil {
		if parser.IsIncomplete(err) && !final {
			return false
		}
		r.rep.error(err)
		return true
	}
	val, err := r.ev.EvalProgram(prog, nil)
	if err != nil {
		r.rep.error(err)
		return true
	}
	if r.cfg.Echo && !val.IsNull() {
		r.rep.result(r.out, val)
	}
	return true
}

func (r *repl) runBuffered(reader *bufio.Reader) int {
	var buffer strings.Builder

	for {
		line, err := reader.ReadString('\n')
		atEOF := errors.Is(err, io.EOF)
		if err != nil && !atEOF {
			fmt.Fprintf(r.rep.w, "read error: %v\n", err)
			return 1
		}
		buffer.WriteString(line)
		if atEOF && strings.TrimSpace(buffer.String()) == "" {
			return 0
		}
		if r.submit(buffer.String(), atEOF) {
			buffer.Reset()
		}
		if atEOF {
			return 0
		}
	}
}

func (r *repl) runInteractive() int {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	historyPath := r.cfg.HistoryFile
	if r.cfg.HistoryLimit == 0 {
		historyPath = ""
	}
	if historyPath != "" {
		if err := loadHistory(state, historyPath, r.cfg.HistoryLimit); err != nil {
			fmt.Fprintf(r.rep.w, "history: %v\n", err)
		}
		defer func() {
			if err := saveHistory(state, historyPath); err != nil {
				fmt.Fprintf(r.rep.w, "history: %v\n", err)
			}
		}()
	}

	var buffer strings.Builder

	for {
		prompt := r.cfg.Prompt
		if buffer.Len() > 0 {
			prompt = r.cfg.ContinuationPrompt
		}
		input, err := state.Prompt(prompt)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(r.out)
				buffer.Reset()
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(r.out)
				return 0
			default:
				fmt.Fprintf(r.rep.w, "read error: %v\n", err)
				return 1
			}
		}
		buffer.WriteString(input)
		buffer.WriteString("\n")

		src := buffer.String()
		if !r.submit(src, false) {
			continue
		}
		buffer.Reset()
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			state.AppendHistory(trimmed)
		}
	}
}

// historyStore is the part of liner.State that persists history.
type historyStore interface {
	ReadHistory(r io.Reader) (int, error)
	WriteHistory(w io.Writer) (int, error)
}

// loadHistory reads at most limit entries from path. A missing file is not
// an error.
func loadHistory(h historyStore, path string, limit int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if _, err := h.ReadHistory(strings.NewReader(trimHistory(string(data), limit))); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func saveHistory(h historyStore, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := h.WriteHistory(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// trimHistory keeps the last limit lines of a history file.
func trimHistory(data string, limit int) string {
	if strings.TrimSpace(data) == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return strings.Join(lines, "\n") + "\n"
}

func isInteractive(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
