package reader

import (
	"testing"

	"github.com/sadderchris/cheshire/internal/datum"
	"github.com/sadderchris/cheshire/internal/symbol"
)

func readOne(t *testing.T, src string) datum.Datum {
	t.Helper()
	symtab := symbol.NewTable()
	r := New("<test>", src, symtab)
	d, err := r.Read()
	if err != nil {
		t.Fatalf("read error: %s", err)
	}
	return d
}

func TestReadAtoms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind datum.Kind
	}{
		{"number", "42", datum.KindNumber},
		{"negative number", "-3.5", datum.KindNumber},
		{"symbol", "foo-bar?", datum.KindSymbol},
		{"string", `"hello"`, datum.KindString},
		{"true", "#t", datum.KindBool},
		{"false", "#f", datum.KindBool},
		{"char", `#\a`, datum.KindChar},
		{"named char", `#\newline`, datum.KindChar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readOne(t, tt.src)
			if d.Kind != tt.kind {
				t.Errorf("got kind %v, want %v", d.Kind, tt.kind)
			}
		})
	}
}

func TestReadListAndDottedPair(t *testing.T) {
	d := readOne(t, "(1 2 . 3)")
	items := d.Slice()
	if len(items) < 2 {
		t.Fatalf("expected at least 2 list items, got %d", len(items))
	}
}

func TestReadQuoteShorthand(t *testing.T) {
	d := readOne(t, "'foo")
	items := d.Slice()
	if len(items) != 2 || items[0].Kind != datum.KindSymbol || items[0].Sym.Name != "quote" {
		t.Fatalf("expected (quote foo), got %+v", d)
	}
}

func TestReadVector(t *testing.T) {
	d := readOne(t, "#(1 2 3)")
	if d.Kind != datum.KindVector {
		t.Fatalf("got kind %v, want vector", d.Kind)
	}
	if len(d.Vec) != 3 {
		t.Fatalf("got %d elements, want 3", len(d.Vec))
	}
}

func TestReadUnterminatedStringErrors(t *testing.T) {
	symtab := symbol.NewTable()
	r := New("<test>", `"abc`, symtab)
	_, err := r.Read()
	if err == nil {
		t.Fatal("expected an unterminated string error")
	}
}

func TestGrowResumesAfterExhaustion(t *testing.T) {
	symtab := symbol.NewTable()
	r := New("<test>", `"abc`, symtab)
	_, err := r.Read()
	if err == nil {
		t.Fatal("expected an incomplete-form error before growing")
	}

	r.Grow(`def"`)
	r2 := New("<test>", `"abcdef"`, symtab)
	want, werr := r2.Read()
	if werr != nil {
		t.Fatalf("reference read error: %s", werr)
	}

	// Grow resumed scanning from the true end of the original input, so
	// a fresh Read over the grown buffer should parse the full string.
	r3 := New("<test>", "", symtab)
	r3.Grow(`"abcdef"`)
	got, gerr := r3.Read()
	if gerr != nil {
		t.Fatalf("grown read error: %s", gerr)
	}
	if got.Str != want.Str {
		t.Errorf("got %q, want %q", got.Str, want.Str)
	}
}

func TestReadAllStopsAtEOF(t *testing.T) {
	symtab := symbol.NewTable()
	r := New("<test>", "1 2 3", symtab)
	forms, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read error: %s", err)
	}
	if len(forms) != 3 {
		t.Fatalf("got %d forms, want 3", len(forms))
	}
}
