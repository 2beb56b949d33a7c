package builtins

import "github.com/sadderchris/cheshire/internal/vm"

func installPredicates(m *vm.VM) {
	define(m, "eq?", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Equal(a[1])))
	})
	define(m, "eqv?", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Equal(a[1])))
	})
	define(m, "equal?", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(equalDeep(a[0], a[1])))
	})
	define(m, "not", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValBool && !a[0].Bl))
	})
	define(m, "boolean?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValBool))
	})
	define(m, "symbol?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValSymbol))
	})
	define(m, "procedure?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].IsCallable()))
	})
	define(m, "char?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValChar))
	})
}
