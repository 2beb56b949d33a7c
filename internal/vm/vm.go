package vm

import (
	"context"

	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/symbol"
)

const (
	initialStackSize = 256
)

// VM holds the single mutable register set the dispatch loop and the
// trampoline share: the current procedure/ip/stack, the parent
// continuation chain, the globals table, the symbol pool, and the
// current ports. One call to interpretStep runs until the next opcode
// that transfers control (Call/TailCall/Return), then returns control to
// the trampoline (Run/CallThunk).
type VM struct {
	ParentCont *Continuation
	Proc       Value // ValBox wrapping *Closure, *Function, or *Native
	IP         int
	Stack      *Stack

	Symtab  *symbol.Table
	Globals *Globals

	InPort  Value
	OutPort Value

	Context context.Context
}

// New creates a VM with empty globals and the given default ports.
func New(symtab *symbol.Table, inPort, outPort Value) *VM {
	return &VM{
		Symtab:  symtab,
		Globals: NewGlobals(),
		InPort:  inPort,
		OutPort: outPort,
		Context: context.Background(),
	}
}

// DefineGlobal binds name to value, e.g. for installing builtins.
func (m *VM) DefineGlobal(name string, value Value) {
	m.Globals = m.Globals.Put(name, value)
}

// currentChunk returns the chunk backing the VM's current procedure;
// only Closure and Function are chunked (natives have none).
func (m *VM) currentChunk() *Chunk {
	switch p := m.Proc.Obj.(type) {
	case *Closure:
		return p.Fn.Chunk
	case *Function:
		return p.Chunk
	}
	return nil
}

// Run installs proc as the VM's initial procedure (a zero-arity thunk,
// typically the result of Compile) on a fresh stack, and drives the
// trampoline to completion, returning the final value or error.
func (m *VM) Run(proc Value) (Value, error) {
	m.Proc = proc
	m.IP = 0
	m.Stack = NewStack(initialStackSize)
	m.Stack.Slots = append(m.Stack.Slots, proc)
	m.ParentCont = nil
	return m.trampoline()
}

// CallThunk installs proc as the current procedure with the given
// already-evaluated arguments on a fresh stack and drives the
// trampoline to completion. Used by CallSync (natives such as `map` and
// `call-with-values`) and by the REPL driver and Load to run each
// compiled thunk.
func (m *VM) CallThunk(proc Value, args []Value) (Value, error) {
	m.Proc = proc
	m.IP = 0
	m.Stack = NewStack(initialStackSize)
	m.Stack.Slots = append(m.Stack.Slots, proc)
	m.Stack.Slots = append(m.Stack.Slots, args...)
	m.ParentCont = nil
	return m.trampoline()
}

// trampoline is the outer loop (§4.6): call interpretStep repeatedly.
// Each call runs the fetch-decode-dispatch loop until a
// control-transferring opcode or a native call, then returns. Natives
// either produce a concrete result (treated exactly like Return) or
// perform their own tail transfer, in which case the loop just
// continues from the VM's already-updated registers.
func (m *VM) trampoline() (Value, error) {
	for {
		if err := m.Context.Err(); err != nil {
			return Value{}, interperr.Runtimef("interrupted: %v", err)
		}
		result, done, err := m.interpretStep()
		if err != nil {
			return Value{}, err
		}
		if done {
			return result, nil
		}
	}
}

// interpretStep runs one interpret() invocation (§4.6): either the
// bytecode dispatch loop for a Closure/Function, or a single Native
// call, and reports whether the whole computation is finished.
func (m *VM) interpretStep() (result Value, done bool, err *interperr.InterpretError) {
	switch proc := m.Proc.Obj.(type) {
	case *Closure, *Function:
		_ = proc
		return m.interpretChunk()
	case *Native:
		args := append([]Value(nil), m.Stack.Slots[1:]...)
		if !proc.Variadic && len(args) != proc.Arity {
			return Value{}, false, interperr.Runtimef("%s: expected %d arguments, got %d", proc.Name, proc.Arity, len(args))
		}
		if proc.Variadic && len(args) < proc.Arity {
			return Value{}, false, interperr.Runtimef("%s: expected at least %d arguments, got %d", proc.Name, proc.Arity, len(args))
		}
		res, ok, nerr := proc.Fn(m, args)
		if nerr != nil {
			if ie, iok := nerr.(*interperr.InterpretError); iok {
				return Value{}, false, ie
			}
			return Value{}, false, interperr.Runtimef("%s", nerr.Error())
		}
		if !ok {
			// Native performed its own tail transfer; registers already
			// point at the next procedure. Keep trampolining.
			return Value{}, false, nil
		}
		return m.returnValue(res)
	default:
		return Value{}, false, interperr.Runtimef("cannot apply a non-procedure")
	}
}

// returnValue implements the shared "pop parent continuation, reinstate
// it, push result" behavior used by both OpReturn and a native's normal
// (non-tail-transferring) return.
func (m *VM) returnValue(result Value) (Value, bool, *interperr.InterpretError) {
	if m.ParentCont == nil {
		return result, true, nil
	}
	cont := m.ParentCont
	m.Proc = cont.State.Proc
	m.IP = cont.State.IP
	m.Stack = cont.Stack
	m.InPort = cont.InPort
	m.OutPort = cont.OutPort
	m.ParentCont = cont.Parent
	m.Stack.Slots = append(m.Stack.Slots, result)
	return Value{}, false, nil
}
