// Package repl drives the interactive read/compile/eval/print loop
// described by the reference implementation: read_thunk feeds
// compile_thunk feeds eval_thunk feeds print_thunk, looping back to
// read_thunk, all running as host code against one persistent VM.
// Between forms, a parse or compile error resets to a fresh read state
// rather than aborting the session.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/sadderchris/cheshire/internal/config"
	"github.com/sadderchris/cheshire/internal/datum"
	"github.com/sadderchris/cheshire/internal/diag"
	"github.com/sadderchris/cheshire/internal/history"
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/session"
	"github.com/sadderchris/cheshire/internal/vm"
)

// REPL owns one interactive session: a VM, a reader grown incrementally
// from stdin one line at a time, and the optional history store each
// evaluated form is recorded to.
type REPL struct {
	m      *vm.VM
	in     *bufio.Reader
	rd     *reader.Reader
	cfg    *config.Config
	hist   *history.Store
	id     session.ID
	prompt bool // whether stdin is a TTY and prompts should print
}

// New builds a REPL reading from stdin.
func New(m *vm.VM, cfg *config.Config, hist *history.Store) *REPL {
	return &REPL{
		m:      m,
		in:     bufio.NewReader(os.Stdin),
		rd:     reader.New("<stdin>", "", m.Symtab),
		cfg:    cfg,
		hist:   hist,
		id:     session.New(),
		prompt: isatty.IsTerminal(os.Stdin.Fd()),
	}
}

// Run drives the loop until EOF at top level, printing a banner first
// if configured. EOF at top level is a clean exit (§6): Run always
// returns 0.
func (r *REPL) Run() int {
	if r.cfg.Banner && r.prompt {
		fmt.Fprintln(os.Stdout, "cheshire REPL — ^D or (exit) to quit")
	}
	for {
		if r.prompt {
			fmt.Fprint(os.Stdout, r.cfg.Prompt)
		}
		if !r.step() {
			return 0
		}
	}
}

// step runs one iteration of read_thunk -> compile_thunk -> eval_thunk
// -> print_thunk. It returns false at top-level EOF.
func (r *REPL) step() bool {
	d, ok, rerr := r.readThunk()
	if rerr != nil {
		diag.Errorf("%s", rerr)
		r.resetReader()
		return true
	}
	if !ok {
		return false
	}

	start := time.Now()
	fn, cerr := r.compileThunk(d)
	if cerr != nil {
		diag.Errorf("%s", cerr)
		return true
	}
	value, eerr := r.evalThunk(fn)
	elapsed := time.Since(start)
	if eerr != nil {
		diag.Errorf("%s", eerr)
		return true
	}
	r.printThunk(value)
	r.record(vm.FromDatum(d).Write(), elapsed)
	return true
}

// readThunk reads the next top-level form, growing the reader's buffer
// a line at a time when a form is incomplete, and reports ok=false only
// at true top-level EOF (no partial form pending).
func (r *REPL) readThunk() (datum.Datum, bool, *interperr.InterpretError) {
	for {
		d, err := r.rd.Read()
		if err == nil && d.Kind != datum.KindEof {
			return d, true, nil
		}
		if err != nil && !incomplete(err) {
			return datum.Datum{}, false, err
		}
		line, rerr := r.in.ReadString('\n')
		if line == "" && rerr != nil {
			return datum.Datum{}, false, err
		}
		r.rd.Grow(line)
	}
}

func incomplete(err *interperr.InterpretError) bool {
	return strings.Contains(err.Message, "end of input") || strings.Contains(err.Message, "unterminated string")
}

func (r *REPL) resetReader() {
	r.rd = reader.New("<stdin>", "", r.m.Symtab)
}

func (r *REPL) compileThunk(d datum.Datum) (*vm.Function, *interperr.InterpretError) {
	return vm.CompileForm("<stdin>", d, r.m.Symtab)
}

func (r *REPL) evalThunk(fn *vm.Function) (vm.Value, error) {
	return r.m.CallThunk(vm.Box(fn), nil)
}

func (r *REPL) record(form string, elapsed time.Duration) {
	if r.hist == nil {
		return
	}
	if err := r.hist.Record(history.Entry{
		SessionID: r.id.String(),
		Form:      form,
		Duration:  elapsed,
		EvalCount: 1,
	}); err != nil {
		diag.Warnf("history: %v", err)
	}
}

func (r *REPL) printThunk(v vm.Value) {
	if v.IsVoid() {
		return
	}
	fmt.Fprintln(os.Stdout, v.Write())
}

// Load runs a file's forms in order (§6: constructed via (load "path")),
// non-interactively, stopping and reporting the first error.
func Load(m *vm.VM, path string) (vm.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return vm.Value{}, interperr.IO(err)
	}
	rd := reader.New(path, string(src), m.Symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		return vm.Value{}, rerr
	}
	fn, cerr := vm.Compile(path, forms, m.Symtab)
	if cerr != nil {
		return vm.Value{}, cerr
	}
	return m.CallThunk(vm.Box(fn), nil)
}
