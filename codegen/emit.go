package codegen

import (
	"bufio"
	"fmt"
	"io"

	"vslc/internal/emitutil"
)

// x86-64 register operands, AT&T syntax, used throughout the generator.
const (
	RAX = "%rax"
	RBX = "%rbx"
	RCX = "%rcx"
	RDX = "%rdx"
	RSI = "%rsi"
	RDI = "%rdi"
	RBP = "%rbp"
	RSP = "%rsp"
	R8  = "%r8"
	R9  = "%r9"
	RIP = "%rip"
	CL  = "%cl"
)

// ArgRegisters holds the six System V integer argument registers in
// order.
var ArgRegisters = [6]string{RDI, RSI, RDX, RCX, R8, R9}

// Emitter is a thin formatted-output layer over an io.Writer with one
// helper method per x86-64 mnemonic the generator needs. Modeled on the
// generic Instr0/Instr1/Instr2 pattern used for WUT-4 assembly emission
// elsewhere in the retrieved pack, adapted to System V AT&T syntax, and
// wrapped in an ErrWriter so the hundreds of call sites in the generator
// never need an individual error check.
type Emitter struct {
	ew  *emitutil.ErrWriter
	buf *bufio.Writer
}

// NewEmitter returns an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	ew := emitutil.NewErrWriter(w)
	return &Emitter{ew: ew, buf: bufio.NewWriter(ew)}
}

// Flush flushes buffered output and returns the first write error
// encountered, if any.
func (e *Emitter) Flush() error {
	e.buf.Flush()
	return e.ew.Err
}

func (e *Emitter) raw(format string, args ...interface{}) {
	fmt.Fprintf(e.buf, format, args...)
}

// Directive emits a tab-indented assembler directive.
func (e *Emitter) Directive(format string, args ...interface{}) {
	e.raw("\t"+format+"\n", args...)
}

// Label emits a bare label definition.
func (e *Emitter) Label(name string) {
	e.raw("%s:\n", name)
}

// Blank emits an empty line, for readability between functions.
func (e *Emitter) Blank() {
	e.raw("\n")
}

func (e *Emitter) instr0(op string) {
	e.raw("\t%s\n", op)
}

func (e *Emitter) instr1(op, a string) {
	e.raw("\t%s\t%s\n", op, a)
}

func (e *Emitter) instr2(op, src, dst string) {
	e.raw("\t%s\t%s, %s\n", op, src, dst)
}

func (e *Emitter) Movq(src, dst string)  { e.instr2("movq", src, dst) }
func (e *Emitter) Leaq(src, dst string)  { e.instr2("leaq", src, dst) }
func (e *Emitter) Addq(src, dst string)  { e.instr2("addq", src, dst) }
func (e *Emitter) Subq(src, dst string)  { e.instr2("subq", src, dst) }
func (e *Emitter) Andq(src, dst string)  { e.instr2("andq", src, dst) }
func (e *Emitter) Cmpq(src, dst string)  { e.instr2("cmpq", src, dst) }
func (e *Emitter) Imulq(src, dst string) { e.instr2("imulq", src, dst) }
func (e *Emitter) Salq(dst string)       { e.instr2("salq", CL, dst) }
func (e *Emitter) Sarq(dst string)       { e.instr2("sarq", CL, dst) }

func (e *Emitter) Pushq(src string) { e.instr1("pushq", src) }
func (e *Emitter) Popq(dst string)  { e.instr1("popq", dst) }
func (e *Emitter) Negq(dst string)  { e.instr1("negq", dst) }
func (e *Emitter) Idivq(src string) { e.instr1("idivq", src) }
func (e *Emitter) Call(target string) { e.instr1("call", target) }
func (e *Emitter) Jmp(target string)  { e.instr1("jmp", target) }
func (e *Emitter) Je(target string)   { e.instr1("je", target) }
func (e *Emitter) Jne(target string)  { e.instr1("jne", target) }
func (e *Emitter) Jl(target string)   { e.instr1("jl", target) }
func (e *Emitter) Jg(target string)   { e.instr1("jg", target) }
func (e *Emitter) Jle(target string)  { e.instr1("jle", target) }
func (e *Emitter) Jge(target string)  { e.instr1("jge", target) }
func (e *Emitter) Loop(target string) { e.instr1("loop", target) }

func (e *Emitter) Cqo() { e.instr0("cqo") }
func (e *Emitter) Ret() { e.instr0("ret") }

// Mem formats reg as an indirect memory operand, e.g. Mem(RCX) -> "(%rcx)".
func Mem(reg string) string {
	return fmt.Sprintf("(%s)", reg)
}

// StackSlot formats a %rbp-relative operand at the given signed byte offset.
func StackSlot(offset int) string {
	return fmt.Sprintf("%d(%s)", offset, RBP)
}

// RIPRelative formats a name as a %rip-relative operand, e.g. ".x(%rip)".
func RIPRelative(name string) string {
	return fmt.Sprintf("%s(%s)", name, RIP)
}
