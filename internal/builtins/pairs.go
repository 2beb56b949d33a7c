package builtins

import "github.com/sadderchris/cheshire/internal/vm"

func installPairs(m *vm.VM) {
	define(m, "cons", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Box(&vm.ObjPair{Car: a[0], Cdr: a[1]}))
	})
	define(m, "car", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		v, ok := a[0].Car()
		if !ok {
			return argErr("car", "expected a pair, got %s", a[0].Write())
		}
		return ret(v)
	})
	define(m, "cdr", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		v, ok := a[0].Cdr()
		if !ok {
			return argErr("cdr", "expected a pair, got %s", a[0].Write())
		}
		return ret(v)
	})
	for _, combo := range []string{"caar", "cadr", "cdar", "cddr", "caddr", "cdddr", "cadddr"} {
		combo := combo
		define(m, combo, 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
			v := a[0]
			ops := combo[1 : len(combo)-1]
			for i := len(ops) - 1; i >= 0; i-- {
				var ok bool
				if ops[i] == 'a' {
					v, ok = v.Car()
				} else {
					v, ok = v.Cdr()
				}
				if !ok {
					return argErr(combo, "expected a pair, got %s", a[0].Write())
				}
			}
			return ret(v)
		})
	}

	define(m, "set-car!", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, ok := a[0].Obj.(*vm.ObjPair)
		if !ok {
			return argErr("set-car!", "expected a mutable pair, got %s", a[0].Write())
		}
		p.Car = a[1]
		return ret(vm.Void())
	})
	define(m, "set-cdr!", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, ok := a[0].Obj.(*vm.ObjPair)
		if !ok {
			return argErr("set-cdr!", "expected a mutable pair, got %s", a[0].Write())
		}
		p.Cdr = a[1]
		return ret(vm.Void())
	})

	define(m, "pair?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].IsPair()))
	})
	define(m, "null?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].IsNull()))
	})
	define(m, "list?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		cur := a[0]
		for cur.IsPair() {
			cdr, _ := cur.Cdr()
			cur = cdr
		}
		return ret(vm.Bool(cur.IsNull()))
	})
	define(m, "list", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(sliceToList(a))
	})
	define(m, "length", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, err := listToSlice("length", a[0])
		if err != nil {
			return vm.Value{}, false, err
		}
		return ret(vm.Number(float64(len(items))))
	})
	define(m, "append", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if len(a) == 0 {
			return ret(vm.Null())
		}
		var all []vm.Value
		for i := 0; i < len(a)-1; i++ {
			items, err := listToSlice("append", a[i])
			if err != nil {
				return vm.Value{}, false, err
			}
			all = append(all, items...)
		}
		result := a[len(a)-1]
		for i := len(all) - 1; i >= 0; i-- {
			result = vm.ImmPair(all[i], result)
		}
		return ret(result)
	})
	define(m, "reverse", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		items, err := listToSlice("reverse", a[0])
		if err != nil {
			return vm.Value{}, false, err
		}
		result := vm.Null()
		for _, it := range items {
			result = vm.ImmPair(it, result)
		}
		return ret(result)
	})
	define(m, "list-tail", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		n := int(a[1].Num)
		cur := a[0]
		for i := 0; i < n; i++ {
			cdr, ok := cur.Cdr()
			if !ok {
				return argErr("list-tail", "index out of range")
			}
			cur = cdr
		}
		return ret(cur)
	})
	define(m, "list-ref", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		n := int(a[1].Num)
		cur := a[0]
		for i := 0; i < n; i++ {
			cdr, ok := cur.Cdr()
			if !ok {
				return argErr("list-ref", "index out of range")
			}
			cur = cdr
		}
		v, ok := cur.Car()
		if !ok {
			return argErr("list-ref", "index out of range")
		}
		return ret(v)
	})

	define(m, "memq", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(member(a[0], a[1], vm.Value.Equal))
	})
	define(m, "member", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(member(a[0], a[1], equalDeep))
	})
	define(m, "assq", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(assoc(a[0], a[1], vm.Value.Equal))
	})
	define(m, "assoc", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(assoc(a[0], a[1], equalDeep))
	})

	define(m, "map", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		proc := a[0]
		lists := make([][]vm.Value, len(a)-1)
		n := -1
		for i, lv := range a[1:] {
			items, err := listToSlice("map", lv)
			if err != nil {
				return vm.Value{}, false, err
			}
			lists[i] = items
			if n == -1 || len(items) < n {
				n = len(items)
			}
		}
		results := make([]vm.Value, n)
		for i := 0; i < n; i++ {
			callArgs := make([]vm.Value, len(lists))
			for j, l := range lists {
				callArgs[j] = l[i]
			}
			res, ierr := m.CallSync(proc, callArgs)
			if ierr != nil {
				return vm.Value{}, false, ierr
			}
			results[i] = res
		}
		return ret(sliceToList(results))
	})
	define(m, "for-each", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		proc := a[0]
		lists := make([][]vm.Value, len(a)-1)
		n := -1
		for i, lv := range a[1:] {
			items, err := listToSlice("for-each", lv)
			if err != nil {
				return vm.Value{}, false, err
			}
			lists[i] = items
			if n == -1 || len(items) < n {
				n = len(items)
			}
		}
		for i := 0; i < n; i++ {
			callArgs := make([]vm.Value, len(lists))
			for j, l := range lists {
				callArgs[j] = l[i]
			}
			if _, ierr := m.CallSync(proc, callArgs); ierr != nil {
				return vm.Value{}, false, ierr
			}
		}
		return ret(vm.Void())
	})
}

func member(item, lst vm.Value, eq func(vm.Value, vm.Value) bool) vm.Value {
	cur := lst
	for cur.IsPair() {
		car, _ := cur.Car()
		if eq(car, item) {
			return cur
		}
		cdr, _ := cur.Cdr()
		cur = cdr
	}
	return vm.Bool(false)
}

func assoc(key, lst vm.Value, eq func(vm.Value, vm.Value) bool) vm.Value {
	cur := lst
	for cur.IsPair() {
		entry, _ := cur.Car()
		k, ok := entry.Car()
		if ok && eq(k, key) {
			return entry
		}
		cdr, _ := cur.Cdr()
		cur = cdr
	}
	return vm.Bool(false)
}

// equalDeep implements `equal?`: structural equality over pairs/vectors/
// strings, falling back to Value.Equal (eqv?) for everything else.
func equalDeep(a, b vm.Value) bool {
	if a.IsPair() && b.IsPair() {
		ac, _ := a.Car()
		bc, _ := b.Car()
		if !equalDeep(ac, bc) {
			return false
		}
		ad, _ := a.Cdr()
		bd, _ := b.Cdr()
		return equalDeep(ad, bd)
	}
	if sa, ok := stringOf(a); ok {
		if sb, ok := stringOf(b); ok {
			return string(sa) == string(sb)
		}
	}
	if va, ok := vectorOf(a); ok {
		if vb, ok := vectorOf(b); ok {
			if len(va) != len(vb) {
				return false
			}
			for i := range va {
				if !equalDeep(va[i], vb[i]) {
					return false
				}
			}
			return true
		}
	}
	return a.Equal(b)
}
