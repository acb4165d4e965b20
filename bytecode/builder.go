package bytecode

import "github.com/eel-lang/eel/opcodes"

// Builder hand-assembles a module Image. It is not a compiler front end
// (that is out of scope) — it is the same kind of small
// assembler/test-fixture helper a VM's own test suite needs to construct
// bytecode without a source-level language, and it is what host tooling
// uses to emit a module image for `eel_load`/`eel_load_buffer`.
type Builder struct {
	img       Image
	nameIndex map[string]uint32
}

func NewBuilder() *Builder {
	return &Builder{img: Image{Version: CurrentVersion}, nameIndex: make(map[string]uint32)}
}

// Intern returns the name table index for s, inserting it if new.
func (b *Builder) Intern(s string) uint32 {
	if i, ok := b.nameIndex[s]; ok {
		return i
	}
	i := uint32(len(b.img.Names))
	b.img.Names = append(b.img.Names, s)
	b.nameIndex[s] = i
	return i
}

func (b *Builder) ConstNil() int  { return b.addConst(ConstEntry{Tag: TagNil}) }
func (b *Builder) ConstBool(v bool) int {
	i := int32(0)
	if v {
		i = 1
	}
	return b.addConst(ConstEntry{Tag: TagBool, Int: i})
}
func (b *Builder) ConstInt(v int32) int    { return b.addConst(ConstEntry{Tag: TagInt, Int: v}) }
func (b *Builder) ConstReal(v float64) int { return b.addConst(ConstEntry{Tag: TagReal, Real: v}) }
func (b *Builder) ConstClassID(v int32) int {
	return b.addConst(ConstEntry{Tag: TagClassID, Int: v})
}
func (b *Builder) ConstString(s string) int {
	return b.addConst(ConstEntry{Tag: TagStringRef, NameIndex: b.Intern(s)})
}

// ConstFuncRef records a reference to the function at funcIndex (a value
// previously returned by FuncBuilder.Done) as a loadable constant,
// letting one function's bytecode hold another as a callable Value.
func (b *Builder) ConstFuncRef(funcIndex int) int {
	return b.addConst(ConstEntry{Tag: TagFuncRef, Int: int32(funcIndex)})
}

func (b *Builder) addConst(c ConstEntry) int {
	idx := len(b.img.Constants)
	b.img.Constants = append(b.img.Constants, c)
	return idx
}

// FuncBuilder assembles one function's instruction stream.
type FuncBuilder struct {
	b            *Builder
	name         string
	reqArgs      int
	optArgs      int
	tupArg       int
	results      int
	numRegisters int
	code         []*opcodes.Instruction
}

func (b *Builder) Func(name string, reqArgs, optArgs, tupArg, results, numRegisters int) *FuncBuilder {
	return &FuncBuilder{b: b, name: name, reqArgs: reqArgs, optArgs: optArgs, tupArg: tupArg, results: results, numRegisters: numRegisters}
}

func (fb *FuncBuilder) Emit(op opcodes.Opcode, operands ...int32) *FuncBuilder {
	fb.code = append(fb.code, opcodes.New(op, operands...))
	return fb
}

// Label returns the index the next Emit call will occupy, for patching
// jump targets after forward references are known.
func (fb *FuncBuilder) Label() int32 { return int32(len(fb.code)) }

// Done finalizes the function into the builder's image and returns its
// function-table index.
func (fb *FuncBuilder) Done() int {
	entry := FuncEntry{
		NameIndex:    fb.b.Intern(fb.name),
		ReqArgs:      uint16(fb.reqArgs),
		OptArgs:      uint16(fb.optArgs),
		TupArg:       uint16(fb.tupArg),
		Results:      uint16(fb.results),
		NumRegisters: uint32(fb.numRegisters),
		Code:         opcodes.EncodeAll(fb.code),
	}
	idx := len(fb.b.img.Functions)
	fb.b.img.Functions = append(fb.b.img.Functions, entry)
	return idx
}

// Export records name -> the function at funcIndex in the exports table.
func (b *Builder) Export(name string, funcIndex int) {
	b.img.Exports = append(b.img.Exports, ExportEntry{NameIndex: b.Intern(name), FuncIndex: uint32(funcIndex)})
}

// Build returns the assembled Image.
func (b *Builder) Build() *Image {
	img := b.img
	return &img
}
