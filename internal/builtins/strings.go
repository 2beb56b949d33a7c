package builtins

import (
	"strconv"

	"github.com/sadderchris/cheshire/internal/vm"
)

// stringOf returns the rune content of a string value, whether it is the
// immutable constant-pool form or a mutable heap ObjString.
func stringOf(v vm.Value) ([]rune, bool) {
	if v.Kind == vm.ValString {
		return []rune(v.Str), true
	}
	if v.Kind == vm.ValBox {
		if s, ok := v.Obj.(*vm.ObjString); ok {
			return s.Runes, true
		}
	}
	return nil, false
}

func installStrings(m *vm.VM) {
	define(m, "string?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		_, ok := stringOf(a[0])
		return ret(vm.Bool(ok))
	})
	define(m, "string-length", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string-length", "expected a string, got %s", a[0].Write())
		}
		return ret(vm.Number(float64(len(r))))
	})
	define(m, "string-ref", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string-ref", "expected a string, got %s", a[0].Write())
		}
		i := int(a[1].Num)
		if i < 0 || i >= len(r) {
			return argErr("string-ref", "index %d out of range", i)
		}
		return ret(vm.Char(r[i]))
	})
	define(m, "string-set!", 3, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		s, ok := a[0].Obj.(*vm.ObjString)
		if !ok {
			return argErr("string-set!", "expected a mutable string, got %s", a[0].Write())
		}
		i := int(a[1].Num)
		if i < 0 || i >= len(s.Runes) {
			return argErr("string-set!", "index %d out of range", i)
		}
		s.Runes[i] = a[2].Ch
		return ret(vm.Void())
	})
	define(m, "make-string", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		n := int(a[0].Num)
		fill := ' '
		if len(a) > 1 {
			fill = a[1].Ch
		}
		runes := make([]rune, n)
		for i := range runes {
			runes[i] = fill
		}
		return ret(vm.Box(&vm.ObjString{Runes: runes}))
	})
	define(m, "string", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		runes := make([]rune, len(a))
		for i, c := range a {
			runes[i] = c.Ch
		}
		return ret(vm.Box(&vm.ObjString{Runes: runes}))
	})
	define(m, "string-append", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		var out []rune
		for _, v := range a {
			r, ok := stringOf(v)
			if !ok {
				return argErr("string-append", "expected a string, got %s", v.Write())
			}
			out = append(out, r...)
		}
		return ret(vm.ImmString(string(out)))
	})
	define(m, "substring", 2, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("substring", "expected a string, got %s", a[0].Write())
		}
		start := int(a[1].Num)
		end := len(r)
		if len(a) > 2 {
			end = int(a[2].Num)
		}
		if start < 0 || end > len(r) || start > end {
			return argErr("substring", "index out of range")
		}
		return ret(vm.ImmString(string(r[start:end])))
	})
	define(m, "string-copy", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string-copy", "expected a string, got %s", a[0].Write())
		}
		cp := make([]rune, len(r))
		copy(cp, r)
		return ret(vm.Box(&vm.ObjString{Runes: cp}))
	})
	define(m, "string->list", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string->list", "expected a string, got %s", a[0].Write())
		}
		items := make([]vm.Value, len(r))
		for i, c := range r {
			items[i] = vm.Char(c)
		}
		return ret(sliceToList(items))
	})
	define(m, "list->string", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, err := listToSlice("list->string", a[0])
		if err != nil {
			return vm.Value{}, false, err
		}
		runes := make([]rune, len(items))
		for i, it := range items {
			runes[i] = it.Ch
		}
		return ret(vm.ImmString(string(runes)))
	})
	define(m, "string->symbol", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string->symbol", "expected a string, got %s", a[0].Write())
		}
		return ret(vm.Sym(m.Symtab.Uninterned(string(r))))
	})
	define(m, "symbol->string", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if a[0].Kind != vm.ValSymbol {
			return argErr("symbol->string", "expected a symbol, got %s", a[0].Write())
		}
		return ret(vm.ImmString(a[0].Sym.Name))
	})
	define(m, "string->number", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("string->number", "expected a string, got %s", a[0].Write())
		}
		n, err := strconv.ParseFloat(string(r), 64)
		if err != nil {
			return ret(vm.Bool(false))
		}
		return ret(vm.Number(n))
	})
	define(m, "number->string", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.ImmString(a[0].Write()))
	})
	define(m, "string=?", 2, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return stringCompare("string=?", a, func(x, y string) bool { return x == y })
	})
	define(m, "string<?", 2, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return stringCompare("string<?", a, func(x, y string) bool { return x < y })
	})
	define(m, "string>?", 2, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return stringCompare("string>?", a, func(x, y string) bool { return x > y })
	})
}

func stringCompare(name string, a []vm.Value, ok func(x, y string) bool) (vm.Value, bool, error) {
	for i := 0; i < len(a)-1; i++ {
		x, okx := stringOf(a[i])
		y, oky := stringOf(a[i+1])
		if !okx || !oky {
			return argErr(name, "expected strings")
		}
		if !ok(string(x), string(y)) {
			return ret(vm.Bool(false))
		}
	}
	return ret(vm.Bool(true))
}
