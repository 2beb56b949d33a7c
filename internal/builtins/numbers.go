package builtins

import (
	"math"

	"github.com/sadderchris/cheshire/internal/vm"
)

func installNumbers(m *vm.VM) {
	define(m, "+", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		sum := 0.0
		for _, v := range a {
			if v.Kind != vm.ValNumber {
				return argErr("+", "expected a number, got %s", v.Write())
			}
			sum += v.Num
		}
		return ret(vm.Number(sum))
	})
	define(m, "*", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		prod := 1.0
		for _, v := range a {
			if v.Kind != vm.ValNumber {
				return argErr("*", "expected a number, got %s", v.Write())
			}
			prod *= v.Num
		}
		return ret(vm.Number(prod))
	})
	define(m, "-", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if len(a) == 1 {
			return ret(vm.Number(-a[0].Num))
		}
		diff := a[0].Num
		for _, v := range a[1:] {
			diff -= v.Num
		}
		return ret(vm.Number(diff))
	})
	define(m, "/", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if len(a) == 1 {
			if a[0].Num == 0 {
				return argErr("/", "division by zero")
			}
			return ret(vm.Number(1 / a[0].Num))
		}
		quot := a[0].Num
		for _, v := range a[1:] {
			if v.Num == 0 {
				return argErr("/", "division by zero")
			}
			quot /= v.Num
		}
		return ret(vm.Number(quot))
	})
	define(m, "quotient", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if a[1].Num == 0 {
			return argErr("quotient", "division by zero")
		}
		return ret(vm.Number(math.Trunc(a[0].Num / a[1].Num)))
	})
	define(m, "remainder", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if a[1].Num == 0 {
			return argErr("remainder", "division by zero")
		}
		return ret(vm.Number(math.Mod(a[0].Num, a[1].Num)))
	})
	define(m, "modulo", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if a[1].Num == 0 {
			return argErr("modulo", "division by zero")
		}
		r := math.Mod(a[0].Num, a[1].Num)
		if r != 0 && (r < 0) != (a[1].Num < 0) {
			r += a[1].Num
		}
		return ret(vm.Number(r))
	})
	define(m, "abs", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Abs(a[0].Num)))
	})
	define(m, "min", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		mn := a[0].Num
		for _, v := range a[1:] {
			if v.Num < mn {
				mn = v.Num
			}
		}
		return ret(vm.Number(mn))
	})
	define(m, "max", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		mx := a[0].Num
		for _, v := range a[1:] {
			if v.Num > mx {
				mx = v.Num
			}
		}
		return ret(vm.Number(mx))
	})
	define(m, "floor", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Floor(a[0].Num)))
	})
	define(m, "ceiling", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Ceil(a[0].Num)))
	})
	define(m, "round", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Round(a[0].Num)))
	})
	define(m, "sqrt", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Sqrt(a[0].Num)))
	})
	define(m, "expt", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Number(math.Pow(a[0].Num, a[1].Num)))
	})

	numCompare(m, "=", func(x, y float64) bool { return x == y })
	numCompare(m, "<", func(x, y float64) bool { return x < y })
	numCompare(m, ">", func(x, y float64) bool { return x > y })
	numCompare(m, "<=", func(x, y float64) bool { return x <= y })
	numCompare(m, ">=", func(x, y float64) bool { return x >= y })

	define(m, "zero?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Num == 0))
	})
	define(m, "positive?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Num > 0))
	})
	define(m, "negative?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Num < 0))
	})
	define(m, "odd?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(math.Mod(a[0].Num, 2) != 0))
	})
	define(m, "even?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(math.Mod(a[0].Num, 2) == 0))
	})
	define(m, "number?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValNumber))
	})
}

func numCompare(m *vm.VM, name string, ok func(x, y float64) bool) {
	define(m, name, 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		for i := 0; i < len(a)-1; i++ {
			if a[i].Kind != vm.ValNumber || a[i+1].Kind != vm.ValNumber {
				return argErr(name, "expected numbers")
			}
			if !ok(a[i].Num, a[i+1].Num) {
				return ret(vm.Bool(false))
			}
		}
		return ret(vm.Bool(true))
	})
}
