package vm

import "github.com/sadderchris/cheshire/internal/interperr"

// interpretChunk is the fetch-decode-dispatch loop over the current
// procedure's chunk. It runs until a Call, TailCall, or Return opcode,
// at which point it mutates the VM's registers and returns to the
// trampoline — this is what lets native procedures re-enter between
// interpretChunk invocations without growing the host stack.
func (m *VM) interpretChunk() (result Value, done bool, err *interperr.InterpretError) {
	chunk := m.currentChunk()
	code := chunk.Code

	for {
		op := Opcode(code[m.IP])
		m.IP++

		switch op {
		case OpConstant:
			idx := readConstantIndex1(code, m.IP)
			m.IP++
			m.push(chunk.Constants[idx])

		case OpConstantLong:
			idx := readConstantIndex3(code, m.IP)
			m.IP += 3
			m.push(chunk.Constants[idx])

		case OpNull:
			m.push(Null())
		case OpVoid:
			m.push(Void())
		case OpTrue:
			m.push(Bool(true))
		case OpFalse:
			m.push(Bool(false))

		case OpPop:
			m.pop()

		case OpDefineGlobal:
			idx := readConstantIndex1(code, m.IP)
			m.IP++
			name := chunk.Constants[idx].Sym.Name
			val := m.pop()
			m.Globals = m.Globals.Put(name, val)

		case OpGetGlobal:
			idx := readConstantIndex1(code, m.IP)
			m.IP++
			name := chunk.Constants[idx].Sym.Name
			val, ok := m.Globals.Get(name)
			if !ok {
				return Value{}, false, interperr.Runtimef("unbound variable: %s", name)
			}
			m.push(val)

		case OpSetGlobal:
			idx := readConstantIndex1(code, m.IP)
			m.IP++
			name := chunk.Constants[idx].Sym.Name
			if _, ok := m.Globals.Get(name); !ok {
				return Value{}, false, interperr.Runtimef("unbound variable: %s", name)
			}
			m.Globals = m.Globals.Put(name, m.peek(0))

		case OpGetLocal:
			slot := int(code[m.IP])
			m.IP++
			m.push(m.Stack.Slots[slot])

		case OpSetLocal:
			slot := int(code[m.IP])
			m.IP++
			m.Stack.Slots[slot] = m.peek(0)

		case OpGetUpvalue:
			idx := int(code[m.IP])
			m.IP++
			up := m.currentEnv()[idx]
			m.push(up.Get())

		case OpSetUpvalue:
			idx := int(code[m.IP])
			m.IP++
			up := m.currentEnv()[idx]
			up.Set(m.peek(0))

		case OpJump:
			offset := readJumpOffset(code, m.IP)
			m.IP += 2
			m.IP += offset

		case OpJumpIfFalse:
			offset := readJumpOffset(code, m.IP)
			m.IP += 2
			if m.peek(0).IsFalse() {
				m.IP += offset
			}

		case OpClosure:
			idx := int(code[m.IP])
			m.IP++
			fnVal := chunk.Constants[idx]
			fn := fnVal.Obj.(*Function)
			env := make([]*Upvalue, len(fn.UpvalueDescs))
			for i := range fn.UpvalueDescs {
				isLocal := code[m.IP]
				index := int(code[m.IP+1])
				m.IP += 2
				if isLocal == 1 {
					env[i] = &Upvalue{Stack: m.Stack, Offset: index}
				} else {
					env[i] = m.currentEnv()[index]
				}
			}
			m.push(Box(&Closure{Fn: fn, Env: env}))

		case OpCall:
			argc := int(code[m.IP])
			m.IP++
			if cerr := m.call(argc); cerr != nil {
				return Value{}, false, cerr
			}
			return Value{}, false, nil

		case OpTailCall:
			argc := int(code[m.IP])
			m.IP++
			if cerr := m.tailCall(argc); cerr != nil {
				return Value{}, false, cerr
			}
			return Value{}, false, nil

		case OpReturn:
			result := m.pop()
			return m.returnValue(result)

		default:
			return Value{}, false, interperr.Runtimef("unknown opcode %d", op)
		}
	}
}

func (m *VM) push(v Value) { m.Stack.Slots = append(m.Stack.Slots, v) }

func (m *VM) pop() Value {
	n := len(m.Stack.Slots)
	v := m.Stack.Slots[n-1]
	m.Stack.Slots = m.Stack.Slots[:n-1]
	return v
}

func (m *VM) peek(distance int) Value {
	return m.Stack.Slots[len(m.Stack.Slots)-1-distance]
}

// currentEnv returns the upvalue environment of the executing Closure,
// or nil for a bare Function (which, having no captures, never emits
// GetUpvalue/SetUpvalue/OpClosure referencing it).
func (m *VM) currentEnv() []*Upvalue {
	if c, ok := m.Proc.Obj.(*Closure); ok {
		return c.Env
	}
	return nil
}
