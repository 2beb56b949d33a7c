package vm

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sadderchris/cheshire/internal/session"
)

// ObjectKind tags which concrete heap object a Value.Box wraps.
type ObjectKind uint8

const (
	KindClosure ObjectKind = iota
	KindContinuation
	KindEnvironment
	KindFunction
	KindNative
	KindString
	KindPair
	KindVector
	KindReadPort
	KindWritePort
)

// Object is the mutable, GC-managed heap inhabitant every Value.Box
// wraps. Polymorphism is a Go type switch at call sites, matching the
// reference implementation's tagged-variant dispatch.
type Object interface {
	Kind() ObjectKind
	renderBoxed(quote bool) string
}

// UpvalueDesc is a compile-time capture descriptor: if IsLocal, Index
// names a slot on the enclosing frame's stack at closure-creation time;
// otherwise it names upvalue Index of the enclosing closure itself.
type UpvalueDesc struct {
	Index   int
	IsLocal bool
}

// Function is an immutable compiled procedure: its arity contract and
// its chunk. A Function with no captured upvalues is embedded directly
// as a constant and is itself callable; one with upvalues is wrapped in
// a Closure at the OpClosure site.
type Function struct {
	Name          string
	Arity         int
	Variadic      bool
	Chunk         *Chunk
	UpvalueDescs  []UpvalueDesc
	LocalCount    int
}

func (f *Function) Kind() ObjectKind { return KindFunction }
func (f *Function) renderBoxed(bool) string {
	if f.Name != "" {
		return fmt.Sprintf("#<procedure %s>", f.Name)
	}
	return "#<procedure>"
}

// Upvalue is the runtime handle a closure's environment holds: a
// (stack, offset) pair that resolves dynamically, so writes through it
// mutate the original slot rather than a copy.
type Upvalue struct {
	Stack  *Stack
	Offset int
}

func (u *Upvalue) Get() Value     { return u.Stack.Slots[u.Offset] }
func (u *Upvalue) Set(v Value)    { u.Stack.Slots[u.Offset] = v }

// Closure pairs a Function with the upvalue handles it captured.
type Closure struct {
	Fn  *Function
	Env []*Upvalue
}

func (c *Closure) Kind() ObjectKind { return KindClosure }
func (c *Closure) renderBoxed(bool) string {
	if c.Fn.Name != "" {
		return fmt.Sprintf("#<procedure %s>", c.Fn.Name)
	}
	return "#<procedure>"
}
// Stack is a growable sequence of Values; every call frame owns its own
// Stack object. Slot 0 of an active frame's stack always holds the
// callee itself.
type Stack struct {
	Slots []Value
}

func NewStack(cap int) *Stack {
	return &Stack{Slots: make([]Value, 0, cap)}
}

// ProcState is the "what to run next" half of a Continuation: either a
// callable procedure plus its resume instruction offset, or nothing
// (the continuation is the initial, outermost one).
type ProcState struct {
	Proc Value // ValBox wrapping *Closure, *Function, or *Native
	IP   int
}

// Continuation is a reified snapshot of "what to do next": the calling
// procedure's resume point, the stack it was running on, and the ports
// in effect, chained to its own parent. Capturing one records a handle
// to the stack (not a copy); reinstating it truncates the stack back to
// the recorded watermark, giving O(1) re-entry.
type Continuation struct {
	Parent    *Continuation
	State     ProcState
	Stack     *Stack
	Watermark int
	InPort    Value
	OutPort   Value
	ID        session.ID
}

func (k *Continuation) Kind() ObjectKind { return KindContinuation }
func (k *Continuation) renderBoxed(bool) string {
	return "#<continuation " + session.ContinuationLabel(k.ID) + ">"
}

// Environment is kept as a type alias of the closure's upvalue slice for
// symmetry with the data model section; closures hold it inline.
type Environment = []*Upvalue

// Native is a built-in procedure implemented in Go that obeys the same
// call protocol as a Function/Closure. Fn returns either a concrete
// result (ok=true) or, if the native performed its own tail transfer via
// the VM's CallValue/TailCallValue, ok=false and the trampoline simply
// continues from the VM's now-updated registers.
type Native struct {
	Name     string
	Arity    int
	Variadic bool
	Fn       func(m *VM, args []Value) (result Value, ok bool, err error)
}

func (n *Native) Kind() ObjectKind { return KindNative }
func (n *Native) renderBoxed(bool) string { return fmt.Sprintf("#<procedure %s>", n.Name) }

// ObjString is the mutable, heap-boxed string produced by make-string or
// by any operation that needs string-set!. Runes, not bytes: Go strings
// are immutable, so in-place character mutation needs a rune slice.
type ObjString struct {
	Runes []rune
}

func (s *ObjString) Kind() ObjectKind { return KindString }
func (s *ObjString) String() string   { return string(s.Runes) }
func (s *ObjString) renderBoxed(quote bool) string {
	if !quote {
		return s.String()
	}
	return `"` + strings.ReplaceAll(s.String(), `"`, `\"`) + `"`
}

// ObjPair is the mutable, heap-boxed cons cell produced by `cons`; it is
// the only pair set-car!/set-cdr! accept (literal pairs stay immutable).
type ObjPair struct {
	Car Value
	Cdr Value
}

func (p *ObjPair) Kind() ObjectKind { return KindPair }
func (p *ObjPair) renderBoxed(quote bool) string {
	return renderPair(Value{Kind: ValBox, Obj: p}, quote)
}

// ObjVector is the mutable, heap-boxed vector produced by make-vector.
type ObjVector struct {
	Items []Value
}

func (v *ObjVector) Kind() ObjectKind { return KindVector }
func (v *ObjVector) renderBoxed(quote bool) string {
	var b strings.Builder
	b.WriteString("#(")
	for i, e := range v.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.render(quote))
	}
	b.WriteByte(')')
	return b.String()
}

// ReadPort wraps an io.Reader with the one-character lookahead the
// reader and the char-ready?/peek-char builtins need.
type ReadPort struct {
	Name   string
	r      *bufio.Reader
	closer io.Closer
	eof    bool
}

func NewReadPort(name string, r io.Reader) *ReadPort {
	rp := &ReadPort{Name: name, r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		rp.closer = c
	}
	return rp
}

func (p *ReadPort) Kind() ObjectKind { return KindReadPort }
func (p *ReadPort) renderBoxed(bool) string { return fmt.Sprintf("#<input-port %s>", p.Name) }

func (p *ReadPort) ReadRune() (rune, bool, error) {
	r, _, err := p.r.ReadRune()
	if err == io.EOF {
		p.eof = true
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return r, false, nil
}

func (p *ReadPort) PeekRune() (rune, bool, error) {
	r, _, err := p.r.ReadRune()
	if err == io.EOF {
		p.eof = true
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	_ = p.r.UnreadRune()
	return r, false, nil
}

func (p *ReadPort) Ready() bool {
	return p.r.Buffered() > 0
}

func (p *ReadPort) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// WritePort wraps an io.Writer.
type WritePort struct {
	Name string
	W    io.Writer
}

func NewWritePort(name string, w io.Writer) *WritePort {
	return &WritePort{Name: name, W: w}
}

func (p *WritePort) Kind() ObjectKind { return KindWritePort }
func (p *WritePort) renderBoxed(bool) string { return fmt.Sprintf("#<output-port %s>", p.Name) }
