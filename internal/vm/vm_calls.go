package vm

import (
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/session"
)

// call implements the non-tail Call opcode: peek(argc) is the callee,
// the argc slots above it are arguments.
func (m *VM) call(argc int) *interperr.InterpretError {
	calleeIdx := len(m.Stack.Slots) - 1 - argc
	proc := m.Stack.Slots[calleeIdx]
	args := append([]Value(nil), m.Stack.Slots[calleeIdx+1:]...)
	m.Stack.Slots = m.Stack.Slots[:calleeIdx]
	return m.invoke(proc, args, false)
}

// tailCall implements the TailCall opcode identically except the parent
// continuation chain is reused rather than extended.
func (m *VM) tailCall(argc int) *interperr.InterpretError {
	calleeIdx := len(m.Stack.Slots) - 1 - argc
	proc := m.Stack.Slots[calleeIdx]
	args := append([]Value(nil), m.Stack.Slots[calleeIdx+1:]...)
	m.Stack.Slots = m.Stack.Slots[:calleeIdx]
	return m.invoke(proc, args, true)
}

// CallValue and TailCallValue let native procedures drive control flow
// themselves (apply, call/cc, call-with-values) without growing the
// host stack: a native that calls
// TailCallValue and then returns ok=false tells the trampoline "I already
// performed the transfer, just keep iterating."
func (m *VM) CallValue(proc Value, args []Value) *interperr.InterpretError {
	return m.invoke(proc, args, false)
}

func (m *VM) TailCallValue(proc Value, args []Value) *interperr.InterpretError {
	return m.invoke(proc, args, true)
}

// CallSync lets a native perform a synchronous sub-call and get the
// result back into its own Go code — e.g. map/for-each/vector-map applying a
// user procedure, or call-with-values invoking its producer — by saving
// the VM's register set, driving a nested CallThunk trampoline to
// completion, and restoring the saved registers before returning. This
// is the one place a native's Go call stack grows with the computation;
// deeply recursive uses (a user `map` over a huge list, say) cost Go
// stack the same way the equivalent built-in would in any host language.
func (m *VM) CallSync(proc Value, args []Value) (Value, *interperr.InterpretError) {
	savedProc, savedIP, savedStack, savedParent := m.Proc, m.IP, m.Stack, m.ParentCont
	savedIn, savedOut := m.InPort, m.OutPort

	result, err := m.CallThunk(proc, args)

	m.Proc, m.IP, m.Stack, m.ParentCont = savedProc, savedIP, savedStack, savedParent
	m.InPort, m.OutPort = savedIn, savedOut

	if err != nil {
		if ie, ok := err.(*interperr.InterpretError); ok {
			return Value{}, ie
		}
		return Value{}, interperr.Runtimef("%s", err.Error())
	}
	return result, nil
}

// invoke is the call protocol shared by the Call/TailCall opcodes and by
// natives driving control flow directly (§4.5): arity-check, pack
// trailing variadic arguments right-to-left into one rest list, swap in
// a fresh stack holding the callee and its (possibly packed) arguments,
// and — for a non-tail call — push a continuation capturing everything
// needed to resume the caller.
func (m *VM) invoke(proc Value, args []Value, tail bool) *interperr.InterpretError {
	if proc.Kind != ValBox {
		return interperr.Runtimef("the object %s is not applicable", proc.Write())
	}
	if k, ok := proc.Obj.(*Continuation); ok {
		return m.applyContinuation(k, args)
	}

	arity, variadic, isNative, ok := ProcArity(proc)
	if !ok {
		return interperr.Runtimef("the object %s is not applicable", proc.Write())
	}

	argc := len(args)
	if isNative {
		// Native variadic procedures receive their arguments as-is; no
		// rest-list packing (§4.5).
		if !variadic && argc != arity {
			return interperr.Runtimef("%s: expected %d arguments, got %d", nativeName(proc), arity, argc)
		}
		if variadic && argc < arity {
			return interperr.Runtimef("%s: expected at least %d arguments, got %d", nativeName(proc), arity, argc)
		}
	} else {
		if !variadic {
			if argc != arity {
				return interperr.Runtimef("procedure %s: expected %d arguments, got %d", procName(proc), arity, argc)
			}
		} else {
			if argc < arity {
				return interperr.Runtimef("procedure %s: expected at least %d arguments, got %d", procName(proc), arity, argc)
			}
			rest := Null()
			for i := argc - 1; i >= arity; i-- {
				rest = ImmPair(args[i], rest)
			}
			packed := make([]Value, arity+1)
			copy(packed, args[:arity])
			packed[arity] = rest
			args = packed
		}
	}

	newStack := NewStack(len(args) + 4)
	newStack.Slots = append(newStack.Slots, proc)
	newStack.Slots = append(newStack.Slots, args...)

	if !tail {
		cont := &Continuation{
			Parent:    m.ParentCont,
			State:     ProcState{Proc: m.Proc, IP: m.IP},
			Stack:     m.Stack,
			Watermark: len(m.Stack.Slots),
			InPort:    m.InPort,
			OutPort:   m.OutPort,
			ID:        session.New(),
		}
		m.ParentCont = cont
	}

	m.Proc = proc
	m.IP = 0
	m.Stack = newStack
	return nil
}

// applyContinuation implements invoking a captured continuation as an
// escape: install the snapshot's procedure/ip/stack/ports/parent chain,
// truncate the restored stack back to its watermark, and append the
// supplied values — O(1) re-entry, no copying of the original extent.
func (m *VM) applyContinuation(k *Continuation, args []Value) *interperr.InterpretError {
	m.Proc = k.State.Proc
	m.IP = k.State.IP
	m.Stack = k.Stack
	m.InPort = k.InPort
	m.OutPort = k.OutPort
	m.ParentCont = k.Parent
	m.Stack.Slots = append(m.Stack.Slots[:k.Watermark], args...)
	return nil
}

// ProcArity reports the call contract of any callable Value: its arity,
// whether it is variadic, and whether it is a Native (natives receive
// variadic trailing arguments as-is, with no rest-list packing).
func ProcArity(proc Value) (arity int, variadic bool, isNative bool, ok bool) {
	switch o := proc.Obj.(type) {
	case *Closure:
		return o.Fn.Arity, o.Fn.Variadic, false, true
	case *Function:
		return o.Arity, o.Variadic, false, true
	case *Native:
		return o.Arity, o.Variadic, true, true
	}
	return 0, false, false, false
}

func procName(proc Value) string {
	switch o := proc.Obj.(type) {
	case *Closure:
		return o.Fn.Name
	case *Function:
		return o.Name
	}
	return "<anonymous>"
}

func nativeName(proc Value) string {
	if n, ok := proc.Obj.(*Native); ok {
		return n.Name
	}
	return "<native>"
}
