package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sadderchris/cheshire/internal/builtins"
	"github.com/sadderchris/cheshire/internal/config"
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/symbol"
	"github.com/sadderchris/cheshire/internal/vm"
)

func newTestVM() *vm.VM {
	m := vm.New(symbol.NewTable(), vm.Void(), vm.Void())
	builtins.Install(m)
	return m
}

func TestLoadRunsFileFormsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.scm")
	src := "(define x 1) (set! x (+ x 41)) x"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("setup: %s", err)
	}

	result, err := Load(newTestVM(), path)
	if err != nil {
		t.Fatalf("load error: %s", err)
	}
	if result.Write() != "42" {
		t.Errorf("got %s, want 42", result.Write())
	}
}

func TestLoadMissingFileReturnsIOError(t *testing.T) {
	_, err := Load(newTestVM(), filepath.Join(t.TempDir(), "missing.scm"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	ie, ok := err.(*interperr.InterpretError)
	if !ok {
		t.Fatalf("expected *interperr.InterpretError, got %T", err)
	}
	if ie.Kind != interperr.IOError {
		t.Errorf("got kind %s, want I/O error", ie.Kind)
	}
}

func TestIncompleteDetectsPartialForms(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"unexpected end of input", "unexpected end of input", true},
		{"unexpected end of input in list", "unexpected end of input in list", true},
		{"unterminated string", "unterminated string", true},
		{"unrelated compile error", "malformed dotted list", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &interperr.InterpretError{Kind: interperr.CompileError, Message: tt.msg}
			if got := incomplete(err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadThunkGrowsAcrossLines(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %s", err)
	}
	if _, err := w.WriteString("(+ 1\n2)\n"); err != nil {
		t.Fatalf("write: %s", err)
	}
	w.Close()

	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	m := newTestVM()
	repl := New(m, config.Default(), nil)

	d, ok, rerr := repl.readThunk()
	if rerr != nil {
		t.Fatalf("read error: %s", rerr)
	}
	if !ok {
		t.Fatal("expected a form, got top-level EOF")
	}
	fn, cerr := repl.compileThunk(d)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	value, eerr := repl.evalThunk(fn)
	if eerr != nil {
		t.Fatalf("eval error: %s", eerr)
	}
	if value.Write() != "3" {
		t.Errorf("got %s, want 3", value.Write())
	}
}
