// Package opcodes defines the EEL bytecode instruction set at design level
// and its variable-length, byte-oriented encoding.
package opcodes

import "fmt"

// Opcode identifies an instruction. The encoding is a single byte; operands
// follow as 8-, 16- or 32-bit little-endian integers per instruction.
type Opcode byte

const (
	OP_NOP Opcode = iota

	// Register <-> constant pool moves.
	OP_LOAD  // LOAD dst, const_index        dst = constants[const_index]
	OP_STORE // STORE dst, src               dst = src (register to register)
	OP_LOADNIL
	OP_LOADBOOL // LOADBOOL dst, imm8

	// Arithmetic (dispatches to class metamethod for non-primitive
	// operands).
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_NEG
	OP_BAND
	OP_BOR
	OP_BXOR
	OP_BNOT
	OP_SHL
	OP_SHR

	// Comparison; result is always a boolean register.
	OP_CMP_EQ
	OP_CMP_NE
	OP_CMP_LT
	OP_CMP_LE
	OP_CMP_GT
	OP_CMP_GE

	// Indexable dispatch.
	OP_GETINDEX // GETINDEX dst, container, key
	OP_SETINDEX // SETINDEX container, key, value
	OP_LENGTH   // LENGTH dst, container
	OP_IN       // IN dst, container, key         dst = key in container
	OP_DELETE   // DELETE container, key          remove key from container

	// Control flow.
	OP_JMP   // JMP target
	OP_JZ    // JZ cond, target                jump if cond is false
	OP_JNZ   // JNZ cond, target               jump if cond is true
	OP_LOOP  // LOOP counter, limit, target     decrement/compare+branch

	// Calls.
	OP_CALL   // CALL fn, base, nargs, nres     argv=base, resv=base, jump into fn
	OP_RETURN // RETURN src                     writes src into caller's resv, pops frame

	// Exceptions.
	OP_TRY    // TRY target, code_reg           push handler: on throw, jump to target leaving the code in code_reg
	OP_UNTRY  // UNTRY                          pop the innermost handler frame
	OP_THROW  // THROW code, value              raise exception `code` carrying `value`

	// Tuple/vararg unpacking.
	OP_UNPACK // UNPACK dst_base, argv_index     unpack one trailing tuple group

	// Object lifecycle.
	OP_NEWOBJ // NEWOBJ dst, classid, base, nargs   construct an instance
	OP_CAST   // CAST dst, src, classid             apply class cast table
	OP_CLONE  // CLONE dst, src                     deep copy per class `clone`

	opcodeCount
)

var names = map[Opcode]string{
	OP_NOP: "nop", OP_LOAD: "load", OP_STORE: "store", OP_LOADNIL: "loadnil",
	OP_LOADBOOL: "loadbool", OP_ADD: "add", OP_SUB: "sub", OP_MUL: "mul",
	OP_DIV: "div", OP_MOD: "mod", OP_NEG: "neg", OP_BAND: "band", OP_BOR: "bor",
	OP_BXOR: "bxor", OP_BNOT: "bnot", OP_SHL: "shl", OP_SHR: "shr",
	OP_CMP_EQ: "cmp_eq", OP_CMP_NE: "cmp_ne", OP_CMP_LT: "cmp_lt",
	OP_CMP_LE: "cmp_le", OP_CMP_GT: "cmp_gt", OP_CMP_GE: "cmp_ge",
	OP_GETINDEX: "getindex", OP_SETINDEX: "setindex", OP_LENGTH: "length",
	OP_IN: "in", OP_DELETE: "delete", OP_JMP: "jmp", OP_JZ: "jz", OP_JNZ: "jnz", OP_LOOP: "loop",
	OP_CALL: "call", OP_RETURN: "return", OP_TRY: "try", OP_UNTRY: "untry",
	OP_THROW: "throw", OP_UNPACK: "unpack", OP_NEWOBJ: "newobj", OP_CAST: "cast",
	OP_CLONE: "clone",
}

func (op Opcode) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("opcode(%d)", byte(op))
}

// IsValid reports whether op is a recognised member of the closed set.
func (op Opcode) IsValid() bool {
	return op < opcodeCount
}
