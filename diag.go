package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lumen-lang/lumen/lang"
)

// reporter writes diagnostics and echoed results. Colour is applied only
// when enabled and the color package detects a capable terminal.
type reporter struct {
	w     io.Writer
	label *color.Color
	echo  *color.Color
}

func newReporter(w io.Writer, enabled bool) *reporter {
	r := &reporter{
		w:     w,
		label: color.New(color.FgRed, color.Bold),
		echo:  color.New(color.Faint),
	}
	if !enabled {
		r.label.DisableColor()
		r.echo.DisableColor()
	}
	return r
}

// error prints err as "error[Kind]: line:col: message".
func (r *reporter) error(err error) {
	prefix := "error:"
	if kind, ok := lang.KindOf(err); ok {
		prefix = fmt.Sprintf("error[%s]:", kind)
	}
	r.label.Fprint(r.w, prefix)
	fmt.Fprintf(r.w, " %v\n", err)
}

func (r *reporter) result(w io.Writer, val lang.Value) {
	r.echo.Fprintln(w, val.String())
}
