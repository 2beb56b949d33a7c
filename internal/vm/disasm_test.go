package vm

import (
	"strconv"
	"strings"
	"testing"

	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/symbol"
)

func compileSource(t *testing.T, input string) *Function {
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
	return fn
}

func TestDisassembleOneLinePerInstructionNonDecreasingOffsets(t *testing.T) {
	fn := compileSource(t, "(define (fact n) (if (= n 0) 1 (* n (fact (- n 1))))) (fact 5)")
	out := Disassemble(fn.Chunk, fn.Name)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a header plus at least one instruction line, got %d lines", len(lines))
	}

	lastOffset := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " |")
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		offset, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		if offset < lastOffset {
			t.Errorf("offset went backwards: %d after %d in line %q", offset, lastOffset, line)
		}
		lastOffset = offset
	}
}

func TestRoundTripWriteThenReadProducesEqvDatum(t *testing.T) {
	symtab := symbol.NewTable()
	inputs := []string{
		"42",
		"3.5",
		`"hello world"`,
		"foo",
		"(1 2 3)",
		"#(1 2 3)",
		"#t",
		"#\\a",
	}
	m := New(symtab, Void(), Void())
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			original := evalQuoted(t, m, symtab, in)
			written := original.Write()
			roundTripped := evalQuoted(t, m, symtab, written)

			if !original.Equal(roundTripped) {
				t.Errorf("round-trip mismatch: %s written as %q read back as %s", original.Write(), written, roundTripped.Write())
			}
		})
	}
}

// evalQuoted reads a single datum from src, wraps it in (quote ...) so it
// evaluates to itself rather than as code, and returns its value.
func evalQuoted(t *testing.T, m *VM, symtab *symbol.Table, src string) Value {
	t.Helper()
	rd := reader.New("<test>", "(quote "+src+")", symtab)
	forms, rerr := rd.ReadAll()
	if rerr != nil {
		t.Fatalf("reader error: %s", rerr)
	}
	if len(forms) != 1 {
		t.Fatalf("expected exactly one datum, got %d", len(forms))
	}
	fn, cerr := Compile("<test>", forms, symtab)
	if cerr != nil {
		t.Fatalf("compile error: %s", cerr)
	}
	v, err := m.Run(Box(fn))
	if err != nil {
		t.Fatalf("runtime error: %s", err)
	}
	return v
}
