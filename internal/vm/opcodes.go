// Package vm implements the bytecode compiler and stack-based virtual
// machine for the interpreter: chunks, the value/object model, the
// compiler, and the VM's trampoline-driven dispatch loop all live here,
// mirroring how the reference implementation keeps these tightly
// coupled concerns in one package rather than splitting them across
// module boundaries.
package vm

// Opcode is a single bytecode instruction tag.
type Opcode byte

const (
	OpConstant Opcode = iota
	OpConstantLong
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpJump
	OpJumpIfFalse
	OpCall
	OpTailCall
	OpClosure
	OpPop
	OpVoid
	OpNull
	OpTrue
	OpFalse
	OpReturn
)

// OpcodeNames gives the disassembler mnemonic for each opcode.
var OpcodeNames = map[Opcode]string{
	OpConstant:     "CONSTANT",
	OpConstantLong: "CONSTANT_LONG",
	OpDefineGlobal: "DEFINE_GLOBAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpCall:         "CALL",
	OpTailCall:     "TAIL_CALL",
	OpClosure:      "CLOSURE",
	OpPop:          "POP",
	OpVoid:         "VOID",
	OpNull:         "NULL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpReturn:       "RETURN",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
