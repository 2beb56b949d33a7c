// Package builtins installs the native procedure surface the reference
// implementation's builtins/*.rs modules define onto a fresh VM: pairs
// and lists, numbers, equality and type predicates, characters, strings,
// vectors, ports, control-flow primitives, and a small procedures/system
// surface (procedure-arity, compile, disassemble, exit).
package builtins

import (
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/vm"
)

// Install defines every native procedure onto m's globals.
func Install(m *vm.VM) {
	installPairs(m)
	installNumbers(m)
	installPredicates(m)
	installChars(m)
	installStrings(m)
	installVectors(m)
	installPorts(m)
	installControl(m)
	installSystem(m)
}

func define(m *vm.VM, name string, arity int, variadic bool, fn func(m *vm.VM, args []vm.Value) (vm.Value, bool, error)) {
	m.DefineGlobal(name, vm.Box(&vm.Native{Name: name, Arity: arity, Variadic: variadic, Fn: fn}))
}

// ret wraps a plain result as the "native returned normally" shape.
func ret(v vm.Value) (vm.Value, bool, error) { return v, true, nil }

func argErr(name, format string, args ...any) (vm.Value, bool, error) {
	return vm.Value{}, false, interperr.Runtimef(name+": "+format, args...)
}

// listToSlice walks a proper list value into a Go slice, erroring on an
// improper list.
func listToSlice(name string, v vm.Value) ([]vm.Value, error) {
	var out []vm.Value
	cur := v
	for {
		if cur.IsNull() {
			return out, nil
		}
		car, ok := cur.Car()
		if !ok {
			return nil, interperr.Runtimef("%s: expected a proper list", name)
		}
		out = append(out, car)
		cdr, _ := cur.Cdr()
		cur = cdr
	}
}

func sliceToList(items []vm.Value) vm.Value {
	result := vm.Null()
	for i := len(items) - 1; i >= 0; i-- {
		result = vm.ImmPair(items[i], result)
	}
	return result
}
