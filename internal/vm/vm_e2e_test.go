package vm

import (
	"testing"

	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/symbol"
)

// runSource reads, compiles, and runs every top-level form in input on a
// fresh VM that has only the natives from installArithmetic, and returns
// the last form's value.
func runSource(t *testing.T, input string) Value {
	t.Helper()
	symtab := symbol.NewTable()
	rd := reader.New("<test>", input, symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	fn, cerr := Compile("<test>", forms, symtab)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	m := New(symtab, Void(), Void())
	installArithmetic(m)
	result, err := m.Run(Box(fn))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	return result
}

// installArithmetic defines just enough natives for these tests without
// depending on the internal/builtins package (which itself depends on
// this one), keeping this package's tests self-contained.
func installArithmetic(m *VM) {
	define := func(name string, arity int, variadic bool, fn func(m *VM, a []Value) (Value, bool, error)) {
		m.DefineGlobal(name, Box(&Native{Name: name, Arity: arity, Variadic: variadic, Fn: fn}))
	}
	define("+", 0, true, func(m *VM, a []Value) (Value, bool, error) {
		sum := 0.0
		for _, v := range a {
			sum += v.Num
		}
		return Number(sum), true, nil
	})
	define("*", 0, true, func(m *VM, a []Value) (Value, bool, error) {
		prod := 1.0
		for _, v := range a {
			prod *= v.Num
		}
		return Number(prod), true, nil
	})
	define("-", 1, true, func(m *VM, a []Value) (Value, bool, error) {
		if len(a) == 1 {
			return Number(-a[0].Num), true, nil
		}
		diff := a[0].Num
		for _, v := range a[1:] {
			diff -= v.Num
		}
		return Number(diff), true, nil
	})
	define("=", 2, false, func(m *VM, a []Value) (Value, bool, error) {
		return Bool(a[0].Num == a[1].Num), true, nil
	})
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sum", "(+ 1 2 3)", "6"},
		{"factorial", "(define (fact n) (if (= n 0) 1 (* n (fact (- n 1))))) (fact 5)", "120"},
		{"lambda application", "((lambda (x) (+ x 10)) 5)", "15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runSource(t, tt.input)
			if got.Write() != tt.want {
				t.Errorf("got %s, want %s", got.Write(), tt.want)
			}
		})
	}
}

func TestTailCallDoesNotGrowHostStack(t *testing.T) {
	const src = `
(define (loop n) (if (= n 0) 'done (loop (- n 1))))
(loop 100000)
`
	got := runSource(t, src)
	if got.Kind != ValSymbol || got.Sym.Name != "done" {
		t.Fatalf("got %s, want done", got.Write())
	}
}

func TestClosureCaptureSemantics(t *testing.T) {
	const src = `
(define c (let ((x 1)) (lambda () (set! x (+ x 1)) x)))
(c)
(c)
(c)
`
	got := runSource(t, src)
	if got.Write() != "4" {
		t.Errorf("got %s, want 4", got.Write())
	}
}

func TestVariadicPacking(t *testing.T) {
	const src = `
(define (f . xs) xs)
(f 1 2 3)
`
	got := runSource(t, src)
	if got.Write() != "(1 2 3)" {
		t.Errorf("got %s, want (1 2 3)", got.Write())
	}
}

func TestInternedSymbolEquality(t *testing.T) {
	const src = "(eq? 'x 'x)"
	m := New(symbol.NewTable(), Void(), Void())
	symtab := m.Symtab
	m.DefineGlobal("eq?", Box(&Native{Name: "eq?", Arity: 2, Fn: func(m *VM, a []Value) (Value, bool, error) {
		return Bool(a[0].Equal(a[1])), true, nil
	}}))
	rd := reader.New("<test>", src, symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	fn, cerr := Compile("<test>", forms, symtab)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	got, err := m.Run(Box(fn))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	if got.Write() != "#t" {
		t.Errorf("got %s, want #t", got.Write())
	}
}

func TestContinuationLinearity(t *testing.T) {
	const src = `((call-with-current-continuation (lambda (k) k)) (lambda (x) x))`
	symtab := symbol.NewTable()
	rd := reader.New("<test>", src, symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	fn, cerr := Compile("<test>", forms, symtab)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	m := New(symtab, Void(), Void())
	m.DefineGlobal("call-with-current-continuation", Box(&Native{
		Name: "call-with-current-continuation", Arity: 1,
		Fn: func(m *VM, a []Value) (Value, bool, error) {
			// The continuation of this call is whatever invoke() already
			// pushed as m.ParentCont at the call site — not a frame built
			// from this native's own Proc/IP, which would just re-enter
			// the native instead of resuming its caller.
			return Value{}, false, m.TailCallValue(a[0], []Value{Box(m.ParentCont)})
		},
	}))
	result, err := m.Run(Box(fn))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	if !result.IsCallable() {
		t.Fatalf("result %s is not a procedure", result.Write())
	}
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	symtab := symbol.NewTable()
	rd := reader.New("<test>", "(define (f x y) (+ x y)) (f 1)", symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	fn, cerr := Compile("<test>", forms, symtab)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	m := New(symtab, Void(), Void())
	installArithmetic(m)
	_, err := m.Run(Box(fn))
	if err == nil {
		t.Fatal("expected an arity runtime error, got none")
	}
	ie, ok := err.(*interperr.InterpretError)
	if !ok {
		t.Fatalf("expected *interperr.InterpretError, got %T", err)
	}
	if ie.Kind != interperr.RuntimeError {
		t.Errorf("got kind %s, want runtime error", ie.Kind)
	}
}
