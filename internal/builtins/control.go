package builtins

import (
	"github.com/sadderchris/cheshire/internal/session"
	"github.com/sadderchris/cheshire/internal/vm"
)

func installControl(m *vm.VM) {
	define(m, "apply", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		proc := a[0]
		rest := a[1:]
		var args []vm.Value
		if len(rest) > 0 {
			trailing, err := listToSlice("apply", rest[len(rest)-1])
			if err != nil {
				return vm.Value{}, false, err
			}
			args = append(append([]vm.Value(nil), rest[:len(rest)-1]...), trailing...)
		}
		return vm.Value{}, false, tailInvoke(m, proc, args)
	})

	define(m, "call-with-current-continuation", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return callCC(m, a[0])
	})
	define(m, "call/cc", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return callCC(m, a[0])
	})

	// values/call-with-values represent a bundle of more than one value
	// as an immutable vector; a single value passes through unwrapped, so
	// ordinary procedures that ignore multiple-value returns still see a
	// plain result.
	define(m, "values", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		if len(a) == 1 {
			return ret(a[0])
		}
		items := append([]vm.Value(nil), a...)
		return ret(vm.ImmVector(items))
	})
	define(m, "call-with-values", 2, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		producer, consumer := a[0], a[1]
		res, ierr := m.CallSync(producer, nil)
		if ierr != nil {
			return vm.Value{}, false, ierr
		}
		args := []vm.Value{res}
		if res.Kind == vm.ValVector {
			args = res.Vec
		}
		return vm.Value{}, false, tailInvoke(m, consumer, args)
	})
}

// exitNative is the procedure half of the synthetic continuation callCC
// hands out when it is called with no parent frame to return to (call/cc
// itself in tail position at the very top of a program). Invoking it
// just hands its argument back, which — with a nil Parent — is exactly
// the condition returnValue checks to finish the trampoline.
var exitNative = &vm.Native{
	Name:  "call/cc-exit",
	Arity: 1,
	Fn: func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return a[0], true, nil
	},
}

// callCC captures the current continuation as a first-class value and
// tail-invokes proc with it as its sole argument. The continuation of
// the call to call/cc itself is exactly m.ParentCont at this point — it
// was pushed by invoke() at the call site (or, for a tail call, is
// already the caller's own continuation) — not a frame built from the
// call/cc native's own Proc/IP, which would re-enter the native rather
// than resume whatever follows it.
func callCC(m *vm.VM, proc vm.Value) (vm.Value, bool, error) {
	k := m.ParentCont
	if k == nil {
		// No parent frame: synthesize one that resumes straight into
		// exitNative, matching the [proc, args...] layout the Native
		// dispatch in interpretStep expects (slot 0 is the callee).
		stack := vm.NewStack(2)
		stack.Slots = append(stack.Slots, vm.Box(exitNative))
		k = &vm.Continuation{
			State:     vm.ProcState{Proc: vm.Box(exitNative)},
			Stack:     stack,
			Watermark: 1,
			ID:        session.New(),
		}
	}
	return vm.Value{}, false, tailInvoke(m, proc, []vm.Value{vm.Box(k)})
}

func tailInvoke(m *vm.VM, proc vm.Value, args []vm.Value) error {
	if ierr := m.TailCallValue(proc, args); ierr != nil {
		return ierr
	}
	return nil
}
