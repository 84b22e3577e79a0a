// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"
	"encoding/binary"
	"fmt"
)

// operandWidth returns the number of operand bytes that follow op in an
// instruction stream, not counting the opcode byte itself (spec.md §4.6).
func operandWidth(op Opcode) int {
	switch op {
	case OpPushInt32:
		return 4
	case OpPushSmallInt, OpSmallJump, OpSmallJumpIfFalse:
		return 1
	case OpPushSymbol, OpPushSymbolRel, OpLoadVar, OpLoadVarRel,
		OpPushList, OpPushLambda, OpJump, OpJumpIfFalse,
		OpFuncall, OpTailCall, OpLexicalDef, OpLexicalDefRel, OpLexicalVarLoad:
		return 2
	case OpPushString:
		return -1 // variable-length, length-prefixed; handled specially
	default:
		return 0
	}
}

// LoadModule parses a module blob (spec.md §6's wire format: a
// symbol_count/bytecode_length header, symbol_count null-terminated symbol
// names, then bytecode_length bytes of instructions) and returns a
// zero-argument bytecode function ready to invoke. Relocatable opcodes are
// rewritten in place: each module-local symbol index is replaced by the
// offset the named string receives in this runtime's intern table.
func (rt *Runtime) LoadModule(blob []byte) (result Ref) {
	if len(blob) < 4 {
		return rt.Errorf(ErrInvalidSyntax, "module: truncated header")
	}
	symbolCount := int(binary.LittleEndian.Uint16(blob[0:2]))
	bytecodeLength := int(binary.LittleEndian.Uint16(blob[2:4]))
	done := rt.Tracer.RecordModuleLoad(context.Background(), symbolCount, bytecodeLength)
	defer func() {
		if rt.IsError(result) {
			done(fmt.Errorf("%s", rt.Error(result)))
		} else {
			done(nil)
		}
	}()

	off := 4
	names := make([]string, symbolCount)
	for i := 0; i < symbolCount; i++ {
		start := off
		for off < len(blob) && blob[off] != 0 {
			off++
		}
		if off >= len(blob) {
			return rt.Errorf(ErrInvalidSyntax, "module: unterminated symbol name")
		}
		names[i] = string(blob[start:off])
		off++ // skip the NUL
	}
	if off+bytecodeLength > len(blob) {
		return rt.Errorf(ErrInvalidSyntax, "module: bytecode_length overruns blob")
	}

	code := make([]byte, bytecodeLength)
	copy(code, blob[off:off+bytecodeLength])

	if err := rt.relocate(code, names); err != nil {
		return rt.Errorf(ErrInvalidSyntax, "module: %s", err)
	}

	buf, perr := rt.Platform.MakeScratchBuffer()
	if perr != nil {
		return RefOOM
	}
	if !buf.Append(code) {
		buf.Release()
		return rt.Errorf(ErrOutOfMemory, "module: bytecode exceeds scratch buffer capacity")
	}
	dbRef := rt.MakeDataBuffer(buf)
	if dbRef == RefOOM {
		buf.Release()
		return RefOOM
	}
	unprotect := rt.Protect(dbRef)
	defer unprotect()
	codeCons := rt.MakeCons(rt.MakeInteger(0), dbRef)
	return rt.MakeFunctionBytecode(codeCons, RefNil)
}

// relocOpcode returns the relocatable counterpart of a non-relocatable
// symbol-carrying opcode, for DumpModule's inverse of relocate.
func relocOpcode(op Opcode) (Opcode, bool) {
	switch op {
	case OpLoadVar:
		return OpLoadVarRel, true
	case OpLexicalDef:
		return OpLexicalDefRel, true
	case OpPushSymbol:
		return OpPushSymbolRel, true
	}
	return op, false
}

// DumpModule serializes fn — a whole-buffer, zero-offset bytecode function
// as Compile produces — into the module wire format: a
// symbol_count/bytecode_length header, the symbol_count names referenced
// by the code (null-terminated, in first-use order), then the code itself
// with every symbol-carrying opcode rewritten to its relocatable form and
// its operand replaced by an index into that name table. LoadModule is its
// exact inverse.
func (rt *Runtime) DumpModule(fn Ref) ([]byte, error) {
	c := rt.Pool.At(fn)
	if c.Kind != KindFunction || c.Mode != FnBytecode {
		return nil, fmt.Errorf("module: value is not a bytecode function")
	}
	codeCons := c.A
	offset := rt.Pool.At(rt.Car(codeCons)).N
	if offset != 0 {
		return nil, fmt.Errorf("module: can only dump a function starting at its buffer's offset 0")
	}
	buf, ok := rt.Pool.At(rt.Cdr(codeCons)).Ext.(ScratchBuffer)
	if !ok {
		return nil, fmt.Errorf("module: function has no code buffer")
	}
	code := append([]byte(nil), buf.Bytes()...)

	var names []string
	index := make(map[int32]int)
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		opStart := pc
		pc++
		relOp, relocatable := relocOpcode(op)
		switch {
		case op == OpPushString:
			if pc+2 > len(code) {
				return nil, fmt.Errorf("module: truncated push-string at offset %d", opStart)
			}
			n := int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2 + n
		case relocatable:
			if pc+2 > len(code) {
				return nil, fmt.Errorf("module: truncated operand at offset %d", opStart)
			}
			internOff := int32(binary.LittleEndian.Uint16(code[pc:]))
			idx, seen := index[internOff]
			if !seen {
				idx = len(names)
				index[internOff] = idx
				names = append(names, rt.Intern.NameAt(internOff))
			}
			code[opStart] = byte(relOp)
			binary.LittleEndian.PutUint16(code[pc:], uint16(idx))
			pc += 2
		default:
			pc += operandWidth(op)
		}
	}

	if len(names) > 0xffff || len(code) > 0xffff {
		return nil, fmt.Errorf("module: symbol table or bytecode exceeds the 16-bit wire format limit")
	}

	out := make([]byte, 4)
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(names)))
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(code)))
	for _, n := range names {
		out = append(out, n...)
		out = append(out, 0)
	}
	out = append(out, code...)
	return out, nil
}

// relocate walks code and rewrites every relocatable opcode's module-local
// symbol index into this runtime's interned-name offset for names[index].
func (rt *Runtime) relocate(code []byte, names []string) error {
	pc := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		opStart := pc
		pc++
		switch {
		case op == OpPushString:
			if pc+2 > len(code) {
				return fmt.Errorf("truncated push-string at offset %d", opStart)
			}
			n := int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2 + n
		case op.isRelocatable():
			if pc+2 > len(code) {
				return fmt.Errorf("truncated relocatable operand at offset %d", opStart)
			}
			idx := int(binary.LittleEndian.Uint16(code[pc:]))
			if idx < 0 || idx >= len(names) {
				return fmt.Errorf("symbol index %d out of range at offset %d", idx, opStart)
			}
			sym := rt.MakeSymbol(names[idx])
			offset := rt.Pool.At(sym).N
			binary.LittleEndian.PutUint16(code[pc:], uint16(offset))
			pc += 2
		default:
			pc += operandWidth(op)
		}
	}
	return nil
}
