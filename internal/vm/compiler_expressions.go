package vm

import (
	"github.com/sadderchris/cheshire/internal/datum"
	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/symbol"
)

// compileForm is the single recursive-descent entry point: dispatch on
// the Datum's shape, and for pairs, on the head symbol's name.
func (c *ctx) compileForm(d datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	switch d.Kind {
	case datum.KindSymbol:
		return c.compileVariableRef(d.Sym)
	case datum.KindNull:
		return interperr.Compilef(c.chunk.File, 0, "bad syntax: empty combination ()")
	case datum.KindPair:
		return c.compileCombination(d, tail, symtab)
	default:
		c.chunk.EmitConstant(FromDatum(d), 0, 0)
		return nil
	}
}

func (c *ctx) compileVariableRef(name *symbol.Symbol) *interperr.InterpretError {
	if slot, ok := c.resolveLocal(name); ok {
		c.chunk.WriteOp(OpGetLocal, 0, 0)
		c.chunk.Write(byte(slot), 0, 0)
		return nil
	}
	if idx, ok := c.resolveUpvalue(name); ok {
		c.chunk.WriteOp(OpGetUpvalue, 0, 0)
		c.chunk.Write(byte(idx), 0, 0)
		return nil
	}
	c.chunk.WriteOp(OpGetGlobal, 0, 0)
	c.chunk.Write(byte(c.chunk.AddConstant(Sym(name))), 0, 0)
	return nil
}

func (c *ctx) compileCombination(d datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	head := *d.Car
	rest := *d.Cdr

	if head.Kind == datum.KindSymbol {
		switch head.Sym.Name {
		case "define":
			return c.compileDefine(rest, symtab)
		case "set!":
			return c.compileSet(rest, symtab)
		case "if":
			return c.compileIf(rest, tail, symtab)
		case "lambda":
			return c.compileLambda(rest, nil, symtab)
		case "begin":
			return c.compileBegin(rest, tail, symtab)
		case "quote":
			return c.compileQuote(rest)
		case "let":
			return c.compileLet(rest, tail, symtab)
		}
	}
	return c.compileApplication(head, rest, tail, symtab)
}

func (c *ctx) compileDefine(rest datum.Datum, symtab *symbol.Table) *interperr.InterpretError {
	items := rest.Slice()
	if len(items) < 1 {
		return interperr.Compilef(c.chunk.File, 0, "malformed define: missing name")
	}
	target := items[0]

	if target.Kind == datum.KindSymbol {
		// (define sym expr); (define sym) binds the void object
		if len(items) >= 2 {
			if err := c.compileForm(items[1], false, symtab); err != nil {
				return err
			}
		} else {
			c.chunk.WriteOp(OpVoid, 0, 0)
		}
		c.chunk.WriteOp(OpDefineGlobal, 0, 0)
		c.chunk.Write(byte(c.chunk.AddConstant(Sym(target.Sym))), 0, 0)
		c.chunk.WriteOp(OpVoid, 0, 0)
		return nil
	}

	if target.Kind == datum.KindPair {
		// (define (name formals...) body...) => (define name (lambda (formals...) body...))
		nameD := *target.Car
		if nameD.Kind != datum.KindSymbol {
			return interperr.Compilef(c.chunk.File, 0, "malformed define: function name must be a symbol")
		}
		formals := *target.Cdr
		body := items[1:]
		if err := c.compileLambda(datum.Cons(formals, datum.List(body...)), nameD.Sym, symtab); err != nil {
			return err
		}
		c.chunk.WriteOp(OpDefineGlobal, 0, 0)
		c.chunk.Write(byte(c.chunk.AddConstant(Sym(nameD.Sym))), 0, 0)
		c.chunk.WriteOp(OpVoid, 0, 0)
		return nil
	}

	return interperr.Compilef(c.chunk.File, 0, "malformed define: expected symbol or (name . formals)")
}

func (c *ctx) compileSet(rest datum.Datum, symtab *symbol.Table) *interperr.InterpretError {
	items := rest.Slice()
	if len(items) != 2 || items[0].Kind != datum.KindSymbol {
		return interperr.Compilef(c.chunk.File, 0, "malformed set!: expected (set! symbol expr)")
	}
	name := items[0].Sym
	if err := c.compileForm(items[1], false, symtab); err != nil {
		return err
	}
	if slot, ok := c.resolveLocal(name); ok {
		c.chunk.WriteOp(OpSetLocal, 0, 0)
		c.chunk.Write(byte(slot), 0, 0)
	} else if idx, ok := c.resolveUpvalue(name); ok {
		c.chunk.WriteOp(OpSetUpvalue, 0, 0)
		c.chunk.Write(byte(idx), 0, 0)
	} else {
		c.chunk.WriteOp(OpSetGlobal, 0, 0)
		c.chunk.Write(byte(c.chunk.AddConstant(Sym(name))), 0, 0)
	}
	// Set* leaves the assigned value on the stack (§4.4); set! itself
	// discards it and evaluates to Void (Decision OQ-2), via an explicit
	// Pop rather than leaving a slot buried on the stack.
	c.chunk.WriteOp(OpPop, 0, 0)
	c.chunk.WriteOp(OpVoid, 0, 0)
	return nil
}

func (c *ctx) compileIf(rest datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	items := rest.Slice()
	if len(items) < 2 || len(items) > 3 {
		return interperr.Compilef(c.chunk.File, 0, "malformed if: expected (if test then [else])")
	}
	if err := c.compileForm(items[0], false, symtab); err != nil {
		return err
	}
	elseJump := c.chunk.EmitJump(OpJumpIfFalse, 0, 0)
	c.chunk.WriteOp(OpPop, 0, 0)
	if err := c.compileForm(items[1], tail, symtab); err != nil {
		return err
	}
	endJump := c.chunk.EmitJump(OpJump, 0, 0)
	c.chunk.PatchJump(elseJump)
	c.chunk.WriteOp(OpPop, 0, 0)
	if len(items) == 3 {
		if err := c.compileForm(items[2], tail, symtab); err != nil {
			return err
		}
	} else {
		c.chunk.WriteOp(OpVoid, 0, 0)
	}
	c.chunk.PatchJump(endJump)
	return nil
}

func (c *ctx) compileQuote(rest datum.Datum) *interperr.InterpretError {
	items := rest.Slice()
	if len(items) != 1 {
		return interperr.Compilef(c.chunk.File, 0, "malformed quote: expected (quote datum)")
	}
	d := items[0]
	switch d.Kind {
	case datum.KindBool:
		if d.Bool {
			c.chunk.WriteOp(OpTrue, 0, 0)
		} else {
			c.chunk.WriteOp(OpFalse, 0, 0)
		}
	case datum.KindNull:
		c.chunk.WriteOp(OpNull, 0, 0)
	default:
		c.chunk.EmitConstant(FromDatum(d), 0, 0)
	}
	return nil
}

func (c *ctx) compileBegin(rest datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	// begin is compiled as an immediate call to a zero-argument lambda
	// over its body (Decision OQ-3: kept unoptimized, not inlined).
	return c.compileLambdaCall(datum.Null, rest.Slice(), tail, symtab)
}

func (c *ctx) compileLet(rest datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	items := rest.Slice()
	if len(items) < 1 {
		return interperr.Compilef(c.chunk.File, 0, "malformed let")
	}

	var name *symbol.Symbol
	idx := 0
	if items[0].Kind == datum.KindSymbol {
		name = items[0].Sym
		idx = 1
	}
	if len(items) <= idx {
		return interperr.Compilef(c.chunk.File, 0, "malformed let: missing bindings")
	}
	bindings := items[idx].Slice()
	body := items[idx+1:]

	var formals []datum.Datum
	var args []datum.Datum
	for _, b := range bindings {
		pair := b.Slice()
		if len(pair) != 2 || pair[0].Kind != datum.KindSymbol {
			return interperr.Compilef(c.chunk.File, 0, "malformed let binding")
		}
		formals = append(formals, pair[0])
		args = append(args, pair[1])
	}

	// Call protocol requires callee-first-then-args on the stack, so the
	// lambda is compiled first (the rewrite target is literally
	// `((lambda (v1 .. vn) body) e1 .. en)`), then each argument
	// expression in the *enclosing* scope, then the call.
	lambdaDatum := datum.Cons(datum.List(formals...), datum.List(body...))
	if err := c.compileLambda(lambdaDatum, name, symtab); err != nil {
		return err
	}
	for _, a := range args {
		if err := c.compileForm(a, false, symtab); err != nil {
			return err
		}
	}
	if tail {
		c.chunk.WriteOp(OpTailCall, 0, 0)
	} else {
		c.chunk.WriteOp(OpCall, 0, 0)
	}
	c.chunk.Write(byte(len(args)), 0, 0)
	return nil
}

func (c *ctx) compileLambdaCall(formals datum.Datum, body []datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	lambdaDatum := datum.Cons(formals, datum.List(body...))
	if err := c.compileLambda(lambdaDatum, nil, symtab); err != nil {
		return err
	}
	if tail {
		c.chunk.WriteOp(OpTailCall, 0, 0)
	} else {
		c.chunk.WriteOp(OpCall, 0, 0)
	}
	c.chunk.Write(0, 0, 0)
	return nil
}

func (c *ctx) compileApplication(head datum.Datum, rest datum.Datum, tail bool, symtab *symbol.Table) *interperr.InterpretError {
	if err := c.compileForm(head, false, symtab); err != nil {
		return err
	}
	args := rest.Slice()
	if len(args) > maxArgs {
		return interperr.Compilef(c.chunk.File, 0, "too many arguments in call (max %d)", maxArgs)
	}
	for _, a := range args {
		if err := c.compileForm(a, false, symtab); err != nil {
			return err
		}
	}
	if tail {
		c.chunk.WriteOp(OpTailCall, 0, 0)
	} else {
		c.chunk.WriteOp(OpCall, 0, 0)
	}
	c.chunk.Write(byte(len(args)), 0, 0)
	return nil
}

// compileLambda compiles (formals body...) into a child function and
// either embeds it directly (no captures) or emits OpClosure.
func (c *ctx) compileLambda(rest datum.Datum, name *symbol.Symbol, symtab *symbol.Table) *interperr.InterpretError {
	pairItems := rest.Slice()
	if len(pairItems) < 1 {
		return interperr.Compilef(c.chunk.File, 0, "malformed lambda: missing formals")
	}
	formals := pairItems[0]
	body := pairItems[1:]

	childChunk := NewChunk(c.chunk.File)
	fn := &Function{Chunk: childChunk}
	if name != nil {
		fn.Name = name.Name
	}
	child := newCtx(c, childChunk)
	child.fn = fn
	if name != nil {
		child.local0 = name
	}

	arity, variadic, err := parseFormals(formals, child)
	if err != nil {
		return err
	}
	fn.Arity = arity
	fn.Variadic = variadic

	if len(body) == 0 {
		childChunk.WriteOp(OpVoid, 0, 0)
	}
	for i, b := range body {
		tailPos := i == len(body)-1
		if err := child.compileForm(b, tailPos, symtab); err != nil {
			return err
		}
		if !tailPos {
			childChunk.WriteOp(OpPop, 0, 0)
		}
	}
	childChunk.WriteOp(OpReturn, 0, 0)
	fn.LocalCount = len(child.locals)

	if len(fn.UpvalueDescs) == 0 {
		c.chunk.EmitConstant(Box(fn), 0, 0)
		return nil
	}
	idx := c.chunk.AddConstant(Box(fn))
	c.chunk.WriteOp(OpClosure, 0, 0)
	c.chunk.Write(byte(idx), 0, 0)
	for _, d := range fn.UpvalueDescs {
		if d.IsLocal {
			c.chunk.Write(1, 0, 0)
		} else {
			c.chunk.Write(0, 0, 0)
		}
		c.chunk.Write(byte(d.Index), 0, 0)
	}
	return nil
}

// parseFormals handles a proper list (fixed arity) or a bare symbol
// (fully variadic). A dotted-tail improper list is rejected outright
// per Decision OQ-1, rather than silently compiling a fixed-arity
// function that drops the rest parameter.
func parseFormals(formals datum.Datum, child *ctx) (arity int, variadic bool, err *interperr.InterpretError) {
	if formals.Kind == datum.KindSymbol {
		if _, aerr := child.addLocal(formals.Sym); aerr != nil {
			return 0, false, aerr
		}
		return 0, true, nil
	}
	items, tail := formals.Improper()
	if !tail.IsNull() {
		return 0, false, interperr.Compilef(child.chunk.File, 0,
			"dotted-tail formals are not supported; use a bare rest symbol instead of (%s)", describeFormals(formals))
	}
	if len(items) > maxParams {
		return 0, false, interperr.Compilef(child.chunk.File, 0, "too many parameters (max %d)", maxParams)
	}
	for _, it := range items {
		if it.Kind != datum.KindSymbol {
			return 0, false, interperr.Compilef(child.chunk.File, 0, "malformed formals: expected symbol")
		}
		if _, aerr := child.addLocal(it.Sym); aerr != nil {
			return 0, false, aerr
		}
	}
	return len(items), false, nil
}

func describeFormals(d datum.Datum) string {
	items, tail := d.Improper()
	s := ""
	for i, it := range items {
		if i > 0 {
			s += " "
		}
		if it.Kind == datum.KindSymbol {
			s += it.Sym.Name
		} else {
			s += "?"
		}
	}
	if tail.Kind == datum.KindSymbol {
		s += " . " + tail.Sym.Name
	}
	return s
}
