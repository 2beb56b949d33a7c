package builtins

import (
	"testing"

	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/symbol"
	"github.com/sadderchris/cheshire/internal/vm"
)

// run reads, compiles, and runs every top-level form in src on a fresh
// VM with the full native surface installed, one form at a time the way
// the REPL does, returning the last form's printed representation.
func run(t *testing.T, src string) string {
	t.Helper()
	symtab := symbol.NewTable()
	rd := reader.New("<test>", src, symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	m := vm.New(symtab, vm.Void(), vm.Void())
	Install(m)
	var result vm.Value
	for _, form := range forms {
		fn, cerr := vm.CompileForm("<test>", form, symtab)
		if cerr != nil {
			t.Fatalf("compile error: %s", cerr)
		}
		v, err := m.Run(vm.Box(fn))
		if err != nil {
			t.Fatalf("runtime error: %s", err)
		}
		result = v
	}
	return result.Write()
}

func TestArithmeticBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"add", "(+ 1 2 3)", "6"},
		{"sub", "(- 10 3 2)", "5"},
		{"mul", "(* 2 3 4)", "24"},
		{"div", "(/ 10 2)", "5"},
		{"quotient", "(quotient 7 2)", "3"},
		{"remainder", "(remainder 7 2)", "1"},
		{"modulo negative", "(modulo -7 2)", "1"},
		{"abs", "(abs -5)", "5"},
		{"min", "(min 3 1 2)", "1"},
		{"max", "(max 3 1 2)", "3"},
		{"zero?", "(zero? 0)", "#t"},
		{"odd?", "(odd? 3)", "#t"},
		{"even?", "(even? 4)", "#t"},
		{"numeric compare", "(< 1 2 3)", "#t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPairAndListBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"cons", "(cons 1 2)", "(1 . 2)"},
		{"car", "(car '(1 2 3))", "1"},
		{"cdr", "(cdr '(1 2 3))", "(2 3)"},
		{"cadr", "(cadr '(1 2 3))", "2"},
		{"list", "(list 1 2 3)", "(1 2 3)"},
		{"length", "(length '(1 2 3))", "3"},
		{"append", "(append '(1 2) '(3 4))", "(1 2 3 4)"},
		{"reverse", "(reverse '(1 2 3))", "(3 2 1)"},
		{"map", "(map (lambda (x) (* x x)) '(1 2 3))", "(1 4 9)"},
		{"member", "(member 2 '(1 2 3))", "(2 3)"},
		{"assoc", "(assoc 'b '((a . 1) (b . 2)))", "(b . 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestEqualityPredicates(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"eq? symbols", "(eq? 'x 'x)", "#t"},
		{"equal? lists", "(equal? '(1 (2 3)) '(1 (2 3)))", "#t"},
		{"equal? strings", `(equal? "ab" "ab")`, "#t"},
		{"not", "(not #f)", "#t"},
		{"procedure?", "(procedure? car)", "#t"},
		{"boolean?", "(boolean? #t)", "#t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCharAndStringBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"char->integer", `(char->integer #\a)`, "97"},
		{"integer->char", `(integer->char 97)`, `#\a`},
		{"char-upcase", `(char-upcase #\a)`, `#\A`},
		{"string-append", `(string-append "foo" "bar")`, `"foobar"`},
		{"string-length", `(string-length "hello")`, "5"},
		{"string->symbol", `(string->symbol "abc")`, "abc"},
		{"string->list", `(string->list "ab")`, `(#\a #\b)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVectorBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"vector-ref", "(vector-ref (vector 1 2 3) 1)", "2"},
		{"vector-length", "(vector-length (vector 1 2 3))", "3"},
		{"vector->list", "(vector->list (vector 1 2 3))", "(1 2 3)"},
		{"list->vector", "(list->vector '(1 2 3))", "#(1 2 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestControlBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"apply", "(apply + '(1 2 3))", "6"},
		{"apply with leading args", "(apply + 1 2 '(3 4))", "10"},
		{"values single passthrough", "(call-with-values (lambda () 1) (lambda (x) x))", "1"},
		{"values multiple", "(call-with-values (lambda () (values 1 2)) (lambda (a b) (+ a b)))", "3"},
		{"call/cc escape", "(+ 1 (call/cc (lambda (k) (k 10) 99)))", "11"},
		{"named let loop", "(let loop ((i 0) (acc 0)) (if (= i 5) acc (loop (+ i 1) (+ acc i))))", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMutablePairBuiltins(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"set-car!", "(define p (cons 1 2)) (set-car! p 9) p", "(9 . 2)"},
		{"set-cdr!", "(define p (cons 1 2)) (set-cdr! p 9) p", "(1 . 9)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStoredContinuationReentry(t *testing.T) {
	got := run(t, `
		(define k #f)
		(+ 1 (call-with-current-continuation (lambda (c) (set! k c) 2)))
		(k 40)`)
	if got != "41" {
		t.Errorf("got %s, want 41", got)
	}
}

func TestProcedureArity(t *testing.T) {
	tests := []struct{ name, src, want string }{
		{"fixed", "(define (f x y) (+ x y)) (procedure-arity f)", "2"},
		{"variadic", "(define (g . xs) xs) (procedure-arity g)", "-1"},
		{"native variadic", "(procedure-arity +)", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
