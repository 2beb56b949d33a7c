package builtins

import "github.com/sadderchris/cheshire/internal/vm"

// vectorOf returns the element slice of a vector value, whether it is
// the immutable constant-pool form or a mutable heap ObjVector.
func vectorOf(v vm.Value) ([]vm.Value, bool) {
	if v.Kind == vm.ValVector {
		return v.Vec, true
	}
	if v.Kind == vm.ValBox {
		if ov, ok := v.Obj.(*vm.ObjVector); ok {
			return ov.Items, true
		}
	}
	return nil, false
}

func installVectors(m *vm.VM) {
	define(m, "vector?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		_, ok := vectorOf(a[0])
		return ret(vm.Bool(ok))
	})
	define(m, "vector", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items := make([]vm.Value, len(a))
		copy(items, a)
		return ret(vm.Box(&vm.ObjVector{Items: items}))
	})
	define(m, "make-vector", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		n := int(a[0].Num)
		fill := vm.Number(0)
		if len(a) > 1 {
			fill = a[1]
		}
		items := make([]vm.Value, n)
		for i := range items {
			items[i] = fill
		}
		return ret(vm.Box(&vm.ObjVector{Items: items}))
	})
	define(m, "vector-length", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, ok := vectorOf(a[0])
		if !ok {
			return argErr("vector-length", "expected a vector, got %s", a[0].Write())
		}
		return ret(vm.Number(float64(len(items))))
	})
	define(m, "vector-ref", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, ok := vectorOf(a[0])
		if !ok {
			return argErr("vector-ref", "expected a vector, got %s", a[0].Write())
		}
		i := int(a[1].Num)
		if i < 0 || i >= len(items) {
			return argErr("vector-ref", "index %d out of range", i)
		}
		return ret(items[i])
	})
	define(m, "vector-set!", 3, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		ov, ok := a[0].Obj.(*vm.ObjVector)
		if !ok {
			return argErr("vector-set!", "expected a mutable vector, got %s", a[0].Write())
		}
		i := int(a[1].Num)
		if i < 0 || i >= len(ov.Items) {
			return argErr("vector-set!", "index %d out of range", i)
		}
		ov.Items[i] = a[2]
		return ret(vm.Void())
	})
	define(m, "vector-fill!", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		ov, ok := a[0].Obj.(*vm.ObjVector)
		if !ok {
			return argErr("vector-fill!", "expected a mutable vector, got %s", a[0].Write())
		}
		for i := range ov.Items {
			ov.Items[i] = a[1]
		}
		return ret(vm.Void())
	})
	define(m, "vector->list", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, ok := vectorOf(a[0])
		if !ok {
			return argErr("vector->list", "expected a vector, got %s", a[0].Write())
		}
		return ret(sliceToList(items))
	})
	define(m, "list->vector", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, err := listToSlice("list->vector", a[0])
		if err != nil {
			return vm.Value{}, false, err
		}
		return ret(vm.Box(&vm.ObjVector{Items: items}))
	})
	define(m, "vector-copy", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, ok := vectorOf(a[0])
		if !ok {
			return argErr("vector-copy", "expected a vector, got %s", a[0].Write())
		}
		cp := make([]vm.Value, len(items))
		copy(cp, items)
		return ret(vm.Box(&vm.ObjVector{Items: cp}))
	})
	define(m, "vector-map", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		proc := a[0]
		vecs := make([][]vm.Value, len(a)-1)
		n := -1
		for i, v := range a[1:] {
			items, ok := vectorOf(v)
			if !ok {
				return argErr("vector-map", "expected a vector, got %s", v.Write())
			}
			vecs[i] = items
			if n == -1 || len(items) < n {
				n = len(items)
			}
		}
		out := make([]vm.Value, n)
		for i := 0; i < n; i++ {
			callArgs := make([]vm.Value, len(vecs))
			for j, v := range vecs {
				callArgs[j] = v[i]
			}
			res, ierr := m.CallSync(proc, callArgs)
			if ierr != nil {
				return vm.Value{}, false, ierr
			}
			out[i] = res
		}
		return ret(vm.Box(&vm.ObjVector{Items: out}))
	})
	define(m, "vector-for-each", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		proc := a[0]
		vecs := make([][]vm.Value, len(a)-1)
		n := -1
		for i, v := range a[1:] {
			items, ok := vectorOf(v)
			if !ok {
				return argErr("vector-for-each", "expected a vector, got %s", v.Write())
			}
			vecs[i] = items
			if n == -1 || len(items) < n {
				n = len(items)
			}
		}
		for i := 0; i < n; i++ {
			callArgs := make([]vm.Value, len(vecs))
			for j, v := range vecs {
				callArgs[j] = v[i]
			}
			if _, ierr := m.CallSync(proc, callArgs); ierr != nil {
				return vm.Value{}, false, ierr
			}
		}
		return ret(vm.Void())
	})
}
