package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"git.sr.ht/~sircmpwn/getopt"

	"github.com/lumen-lang/lumen/config"
	"github.com/lumen-lang/lumen/lang"
	"github.com/lumen-lang/lumen/runtime"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	expr       string
	hasExpr    bool
	configPath string
	maxDepth   int
	noColor    bool
	quiet      bool
}

// run executes the command line in argv and returns the process exit code.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, optind, err := getopt.Getopts(argv, "e:c:d:nqhV")
	if err != nil {
		fmt.Fprintf(stderr, "lumen: %v\n", err)
		usage(stderr)
		return 2
	}
	o := options{configPath: config.DefaultPath()}
	for _, opt := range opts {
		switch opt.Option {
		case 'e':
			o.expr = opt.Value
			o.hasExpr = true
		case 'c':
			o.configPath = opt.Value
		case 'd':
			depth, err := strconv.Atoi(opt.Value)
			if err != nil || depth < 1 {
				fmt.Fprintf(stderr, "lumen: invalid -d value %q\n", opt.Value)
				return 2
			}
			o.maxDepth = depth
		case 'n':
			o.noColor = true
		case 'q':
			o.quiet = true
		case 'V':
			fmt.Fprintf(stdout, "lumen %s\n", version)
			return 0
		default: // case 'h':
			usage(stdout)
			return 0
		}
	}
	rest := argv[optind:]

	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "lumen: %v\n", err)
		return 1
	}
	if o.maxDepth > 0 {
		cfg.MaxDepth = o.maxDepth
	}
	if o.noColor {
		cfg.Color = false
	}
	if o.quiet {
		cfg.Echo = false
	}

	rep := newReporter(stderr, cfg.Color)
	ev := runtime.NewEvaluator()
	ev.Stdout = stdout
	ev.MaxDepth = cfg.MaxDepth

	switch {
	case o.hasExpr:
		runtime.SetArgv(ev, rest)
		val, err := runtime.EvaluateString(ev, o.expr)
		if err != nil {
			rep.error(err)
			return 1
		}
		if cfg.Echo && !val.IsNull() {
			rep.result(stdout, val)
		}
		return 0
	case len(rest) > 0:
		runtime.SetArgv(ev, rest)
		if err := runScript(ev, rest[0], stdin); err != nil {
			rep.error(err)
			return 1
		}
		return 0
	default:
		runtime.SetArgv(ev, []string{})
		r := &repl{ev: ev, cfg: cfg, out: stdout, rep: rep}
		if f, ok := stdin.(*os.File); ok && isInteractive(f) {
			return r.runInteractive()
		}
		return r.runBuffered(bufio.NewReader(stdin))
	}
}

func runScript(ev *lang.Evaluator, script string, stdin io.Reader) error {
	if script == "-" {
		_, err := runtime.EvaluateReader(ev, stdin)
		return err
	}
	_, err := runtime.EvaluateFile(ev, script)
	return err
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: lumen [options] [script | -] [args...]

options:
  -e expr   evaluate expr and print its value
  -c path   read settings from path (default $LUMEN_CONFIG or ~/.lumenrc.yml)
  -d depth  maximum function call depth
  -n        disable coloured diagnostics
  -q        do not print expression results
  -h        show this help
  -V        print version

With no script, lumen starts an interactive session.
`)
}
