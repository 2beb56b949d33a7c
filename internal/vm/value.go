package vm

import (
	"fmt"
	"strings"

	"github.com/sadderchris/cheshire/internal/datum"
	"github.com/sadderchris/cheshire/internal/symbol"
)

// ValueKind tags which variant a Value holds.
type ValueKind uint8

const (
	ValNull ValueKind = iota
	ValVoid
	ValEof
	ValBool
	ValChar
	ValNumber
	ValSymbol
	ValString // immutable, constant-pool-sourced string
	ValPair   // immutable, constant-pool-sourced pair
	ValVector // immutable, constant-pool-sourced vector
	ValBox    // mutable heap Object
)

// immPair is the direct (unboxed) pair payload shared by literal data
// read from the constant pool. It is never mutated; set-car!/set-cdr!
// accept only a heap *ObjPair (Value.Box) and reject an immutable pair.
type immPair struct {
	Car Value
	Cdr Value
}

// Value is the VM's stack/register cell: small, copyable, and passed by
// value. Immutable literals (numbers, booleans, quoted data) stay in
// their direct form; anything that must be mutated, captured by
// reference, or compared by identity is promoted to Box, which holds a
// pointer to a heap Object.
type Value struct {
	Kind ValueKind
	Bl   bool
	Ch   rune
	Num  float64
	Sym  *symbol.Symbol
	Str  string
	Pr   *immPair
	Vec  []Value
	Obj  Object
}

func Null() Value  { return Value{Kind: ValNull} }
func Void() Value  { return Value{Kind: ValVoid} }
func Eof() Value   { return Value{Kind: ValEof} }
func Bool(b bool) Value   { return Value{Kind: ValBool, Bl: b} }
func Char(c rune) Value   { return Value{Kind: ValChar, Ch: c} }
func Number(n float64) Value { return Value{Kind: ValNumber, Num: n} }
func Sym(s *symbol.Symbol) Value { return Value{Kind: ValSymbol, Sym: s} }
func ImmString(s string) Value { return Value{Kind: ValString, Str: s} }
func ImmPair(car, cdr Value) Value {
	return Value{Kind: ValPair, Pr: &immPair{Car: car, Cdr: cdr}}
}
func ImmVector(items []Value) Value { return Value{Kind: ValVector, Vec: items} }
func Box(obj Object) Value          { return Value{Kind: ValBox, Obj: obj} }

func (v Value) IsNull() bool  { return v.Kind == ValNull }
func (v Value) IsVoid() bool  { return v.Kind == ValVoid }
func (v Value) IsFalse() bool { return v.Kind == ValBool && !v.Bl }
func (v Value) IsTruthy() bool { return !v.IsFalse() }
func (v Value) IsPair() bool {
	if v.Kind == ValPair {
		return true
	}
	if v.Kind == ValBox {
		_, ok := v.Obj.(*ObjPair)
		return ok
	}
	return false
}
func (v Value) IsCallable() bool {
	if v.Kind != ValBox {
		return false
	}
	switch v.Obj.(type) {
	case *Closure, *Function, *Native, *Continuation:
		return true
	}
	return false
}

// Car/Cdr work uniformly across immutable and boxed pairs.
func (v Value) Car() (Value, bool) {
	switch v.Kind {
	case ValPair:
		return v.Pr.Car, true
	case ValBox:
		if p, ok := v.Obj.(*ObjPair); ok {
			return p.Car, true
		}
	}
	return Value{}, false
}

func (v Value) Cdr() (Value, bool) {
	switch v.Kind {
	case ValPair:
		return v.Pr.Cdr, true
	case ValBox:
		if p, ok := v.Obj.(*ObjPair); ok {
			return p.Cdr, true
		}
	}
	return Value{}, false
}

// FromDatum converts a reader Datum into a Value, keeping pairs/strings/
// vectors in their direct, unboxed, immutable form (promotion to Box
// happens only when the runtime actually mutates or captures identity).
func FromDatum(d datum.Datum) Value {
	switch d.Kind {
	case datum.KindBool:
		return Bool(d.Bool)
	case datum.KindChar:
		return Char(d.Char)
	case datum.KindNumber:
		return Number(d.Number)
	case datum.KindString:
		return ImmString(d.Str)
	case datum.KindSymbol:
		return Sym(d.Sym)
	case datum.KindNull:
		return Null()
	case datum.KindEof:
		return Eof()
	case datum.KindPair:
		return ImmPair(FromDatum(*d.Car), FromDatum(*d.Cdr))
	case datum.KindVector:
		items := make([]Value, len(d.Vec))
		for i, e := range d.Vec {
			items[i] = FromDatum(e)
		}
		return ImmVector(items)
	default:
		return Void()
	}
}

// Equal implements eqv?: identity for boxed objects and symbols, value
// equality for numbers/chars/booleans/the unboxed literal forms.
func (v Value) Equal(o Value) bool {
	if v.Kind == ValBox && o.Kind == ValBox {
		return v.Obj == o.Obj
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValNull, ValVoid, ValEof:
		return true
	case ValBool:
		return v.Bl == o.Bl
	case ValChar:
		return v.Ch == o.Ch
	case ValNumber:
		return v.Num == o.Num
	case ValSymbol:
		return v.Sym == o.Sym
	case ValString:
		return v.Str == o.Str
	case ValPair:
		return v.Pr == o.Pr || (v.Pr.Car.Equal(o.Pr.Car) && v.Pr.Cdr.Equal(o.Pr.Cdr))
	case ValVector:
		if len(v.Vec) != len(o.Vec) {
			return false
		}
		for i := range v.Vec {
			if !v.Vec[i].Equal(o.Vec[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Display renders a value the way `display` does: no
// quoting on strings, characters rendered as their literal rune.
func (v Value) Display() string {
	return v.render(false)
}

// Write renders a value the way `write` does: strings quoted, special
// characters spelled out as #\space etc.
func (v Value) Write() string {
	return v.render(true)
}

func (v Value) render(quote bool) string {
	switch v.Kind {
	case ValNull:
		return "()"
	case ValVoid:
		return ""
	case ValEof:
		return "#<eof>"
	case ValBool:
		if v.Bl {
			return "#t"
		}
		return "#f"
	case ValChar:
		if !quote {
			return string(v.Ch)
		}
		return "#\\" + charName(v.Ch)
	case ValNumber:
		return formatNumber(v.Num)
	case ValSymbol:
		return v.Sym.Name
	case ValString:
		if !quote {
			return v.Str
		}
		return `"` + strings.ReplaceAll(v.Str, `"`, `\"`) + `"`
	case ValPair:
		return renderPair(v, quote)
	case ValVector:
		var b strings.Builder
		b.WriteString("#(")
		for i, e := range v.Vec {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(e.render(quote))
		}
		b.WriteByte(')')
		return b.String()
	case ValBox:
		return v.Obj.renderBoxed(quote)
	}
	return "#<unknown>"
}

func renderPair(v Value, quote bool) string {
	var b strings.Builder
	b.WriteByte('(')
	first := true
	cur := v
	for {
		car, _ := cur.Car()
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(car.render(quote))
		cdr, ok := cur.Cdr()
		if !ok {
			break
		}
		if cdr.IsNull() {
			break
		}
		if cdr.IsPair() {
			cur = cdr
			continue
		}
		b.WriteString(" . ")
		b.WriteString(cdr.render(quote))
		break
	}
	b.WriteByte(')')
	return b.String()
}

func charName(c rune) string {
	switch c {
	case ' ':
		return "space"
	case '\n':
		return "newline"
	case '\t':
		return "tab"
	default:
		return string(c)
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
