package builtins

import (
	"unicode"

	"github.com/sadderchris/cheshire/internal/vm"
)

func installChars(m *vm.VM) {
	define(m, "char->integer", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if a[0].Kind != vm.ValChar {
			return argErr("char->integer", "expected a char, got %s", a[0].Write())
		}
		return ret(vm.Number(float64(a[0].Ch)))
	})
	define(m, "integer->char", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Char(rune(int(a[0].Num))))
	})
	define(m, "char-upcase", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Char(unicode.ToUpper(a[0].Ch)))
	})
	define(m, "char-downcase", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Char(unicode.ToLower(a[0].Ch)))
	})
	charCompare(m, "char=?", func(x, y rune) bool { return x == y })
	charCompare(m, "char<?", func(x, y rune) bool { return x < y })
	charCompare(m, "char>?", func(x, y rune) bool { return x > y })
	charCompare(m, "char<=?", func(x, y rune) bool { return x <= y })
	charCompare(m, "char>=?", func(x, y rune) bool { return x >= y })
	define(m, "char-alphabetic?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(unicode.IsLetter(a[0].Ch)))
	})
	define(m, "char-numeric?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(unicode.IsDigit(a[0].Ch)))
	})
	define(m, "char-whitespace?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(unicode.IsSpace(a[0].Ch)))
	})
}

func charCompare(m *vm.VM, name string, ok func(x, y rune) bool) {
	define(m, name, 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		for i := 0; i < len(a)-1; i++ {
			if a[i].Kind != vm.ValChar || a[i+1].Kind != vm.ValChar {
				return argErr(name, "expected chars")
			}
			if !ok(a[i].Ch, a[i+1].Ch) {
				return ret(vm.Bool(false))
			}
		}
		return ret(vm.Bool(true))
	})
}
