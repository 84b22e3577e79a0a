// Copyright © 2018 The ELPS authors

package lisp

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// Disassemble renders fn's instruction stream as one mnemonic per
// instruction, in the manner of the `disassemble` native's original purpose
// of writing to the platform's remote console (spec.md §2's carried-over
// feature list). Output is wrapped at the platform's console width before
// being written line by line.
func (rt *Runtime) Disassemble(fn Ref) Ref {
	c := rt.Pool.At(fn)
	if c.Kind != KindFunction || c.Mode != FnBytecode {
		return rt.Errorf(ErrInvalidArgumentType, "disassemble: not a bytecode function")
	}
	codeCons := c.A
	offset := int(rt.Pool.At(rt.Car(codeCons)).N)
	buf, ok := rt.Pool.At(rt.Cdr(codeCons)).Ext.(ScratchBuffer)
	if !ok {
		return rt.Errorf(ErrInvalidArgumentType, "disassemble: missing code buffer")
	}
	code := buf.Bytes()

	var lines []string
	pc := offset
	for pc < len(code) {
		start := pc
		op := Opcode(code[pc])
		pc++
		text, n := rt.disasmOperand(op, code, pc)
		pc += n
		lines = append(lines, fmt.Sprintf("%04x  %-20s%s", start, op.String(), text))
	}

	width := rt.Platform.ConsoleWidth()
	if width <= 0 {
		width = 80
	}
	wrapped := wordwrap.String(strings.Join(lines, "\n"), width)
	for _, line := range strings.Split(wrapped, "\n") {
		rt.Platform.ConsoleWriteLine(line)
	}
	return RefNil
}

// disasmOperand formats op's operand (if any) and returns the number of
// operand bytes consumed, so the caller can advance pc.
func (rt *Runtime) disasmOperand(op Opcode, code []byte, pc int) (string, int) {
	switch op {
	case OpPushInt32:
		return fmt.Sprintf(" %d", int32(binary.LittleEndian.Uint32(code[pc:]))), 4
	case OpPushSmallInt:
		return fmt.Sprintf(" %d", code[pc]), 1
	case OpSmallJump, OpSmallJumpIfFalse:
		return fmt.Sprintf(" %+d", int8(code[pc])), 1
	case OpPushSymbol, OpPushSymbolRel, OpLoadVar, OpLoadVarRel,
		OpLexicalDef, OpLexicalDefRel, OpLexicalVarLoad:
		off := int32(binary.LittleEndian.Uint16(code[pc:]))
		return fmt.Sprintf(" %s", rt.SymbolName(rt.symbolAt(off))), 2
	case OpPushList, OpFuncall, OpTailCall:
		return fmt.Sprintf(" %d", binary.LittleEndian.Uint16(code[pc:])), 2
	case OpPushLambda, OpJump, OpJumpIfFalse:
		return fmt.Sprintf(" +%d", binary.LittleEndian.Uint16(code[pc:])), 2
	case OpPushString:
		n := int(binary.LittleEndian.Uint16(code[pc:]))
		return fmt.Sprintf(" %q", string(code[pc+2:pc+2+n])), 2 + n
	default:
		return "", 0
	}
}
