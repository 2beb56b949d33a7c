package vm

import (
	"github.com/sadderchris/cheshire/internal/datum"
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/symbol"
)

const (
	maxLocals = 255
	maxParams = 255
	maxArgs   = 255
)

// localVar is a compile-time local-variable slot.
type localVar struct {
	name *symbol.Symbol
	slot int
}

// ctx is the compiler's per-function scope: one is created per lambda
// (including the implicit top-level thunk), linked to its lexically
// enclosing scope.
type ctx struct {
	parent *ctx
	chunk  *Chunk
	fn     *Function

	local0 *symbol.Symbol // name this function is bound under, if any; resolves to slot 0
	locals []localVar
}

func newCtx(parent *ctx, chunk *Chunk) *ctx {
	return &ctx{parent: parent, chunk: chunk}
}

func (c *ctx) addLocal(name *symbol.Symbol) (int, *interperr.InterpretError) {
	if len(c.locals) >= maxLocals {
		return 0, interperr.Compilef(c.chunk.File, 0, "too many local variables in function")
	}
	for _, l := range c.locals {
		if l.name == name {
			return 0, interperr.Compilef(c.chunk.File, 0, "duplicate local variable %s", name.Name)
		}
	}
	slot := len(c.locals) + 1 // slot 0 is reserved for local0 (the callee itself)
	c.locals = append(c.locals, localVar{name: name, slot: slot})
	return slot, nil
}

func (c *ctx) resolveLocal(name *symbol.Symbol) (int, bool) {
	if c.local0 == name {
		return 0, true
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

// resolveUpvalue finds name in an enclosing scope and threads an upvalue
// capture descriptor through every intervening function, returning the
// upvalue index in the *current* function's environment.
func (c *ctx) resolveUpvalue(name *symbol.Symbol) (int, bool) {
	if c.parent == nil {
		return 0, false
	}
	if slot, ok := c.parent.resolveLocal(name); ok {
		return c.addUpvalue(UpvalueDesc{Index: slot, IsLocal: true}), true
	}
	if idx, ok := c.parent.resolveUpvalue(name); ok {
		return c.addUpvalue(UpvalueDesc{Index: idx, IsLocal: false}), true
	}
	return 0, false
}

func (c *ctx) addUpvalue(desc UpvalueDesc) int {
	for i, d := range c.fn.UpvalueDescs {
		if d == desc {
			return i
		}
	}
	c.fn.UpvalueDescs = append(c.fn.UpvalueDescs, desc)
	return len(c.fn.UpvalueDescs) - 1
}

// Compile lowers a top-level Datum sequence into a zero-arity thunk
// Function whose chunk, when run, evaluates each form in turn (non-tail
// except the last) and returns the last value.
func Compile(file string, forms []datum.Datum, symtab *symbol.Table) (*Function, *interperr.InterpretError) {
	chunk := NewChunk(file)
	fn := &Function{Name: "", Arity: 0, Variadic: false, Chunk: chunk}
	c := newCtx(nil, chunk)
	c.fn = fn

	for i, form := range forms {
		tail := i == len(forms)-1
		if err := c.compileForm(form, tail, symtab); err != nil {
			return nil, err
		}
		if !tail {
			chunk.WriteOp(OpPop, 0, 0)
		}
	}
	if len(forms) == 0 {
		chunk.WriteOp(OpVoid, 0, 0)
	}
	chunk.WriteOp(OpReturn, 0, 0)
	fn.LocalCount = len(c.locals)
	return fn, nil
}

// CompileForm compiles a single top-level form as its own thunk, for the
// REPL driver's form-at-a-time read/compile/eval loop.
func CompileForm(file string, form datum.Datum, symtab *symbol.Table) (*Function, *interperr.InterpretError) {
	return Compile(file, []datum.Datum{form}, symtab)
}
