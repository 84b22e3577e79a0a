// Copyright © 2018 The ELPS authors

package lisp

import "encoding/binary"

// runVM executes code starting at pc until a ret/early-ret/fatal, over a
// flat instruction stream rather than recursive descent. this is the
// function cell currently executing, used for tail-call self-detection.
func (rt *Runtime) runVM(code []byte, pc int, this *Cell) Ref {
	start := pc
	framesOpened := 0

	for {
		rt.vmSteps++
		if pc >= len(code) {
			return rt.Errorf(ErrInvalidSyntax, "bytecode ran off the end of its buffer")
		}
		op := Opcode(code[pc])
		pc++

		switch op {
		case OpPushNil:
			rt.PushOp(RefNil)
		case OpPushInt32:
			v := int32(binary.LittleEndian.Uint32(code[pc:]))
			pc += 4
			rt.PushOp(rt.MakeInteger(v))
		case OpPushSmallInt:
			rt.PushOp(rt.MakeInteger(int32(code[pc])))
			pc++
		case OpPush0:
			rt.PushOp(rt.MakeInteger(0))
		case OpPush1:
			rt.PushOp(rt.MakeInteger(1))
		case OpPush2:
			rt.PushOp(rt.MakeInteger(2))
		case OpPushSymbol, OpPushSymbolRel:
			off := int32(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			rt.PushOp(rt.symbolAt(off))
		case OpPushString:
			n := int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			rt.PushOp(rt.MakeString(string(code[pc : pc+n])))
			pc += n
		case OpPushThis:
			rt.PushOp(rt.This)
		case OpPushList:
			n := int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			vals := make([]Ref, n)
			for i := n - 1; i >= 0; i-- {
				vals[i] = rt.PopOp()
			}
			rt.PushOp(rt.MakeList(vals))
		case OpPushLambda:
			end := int(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			codeStart := pc
			databufRef := rt.Cdr(this.A)
			codeCons := rt.MakeCons(rt.MakeInteger(int32(codeStart)), databufRef)
			rt.PushOp(rt.MakeFunctionBytecode(codeCons, rt.Bindings))
			pc = start + end
		case OpLoadVar, OpLoadVarRel:
			off := int32(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			sym := rt.symbolAt(off)
			rt.PushOp(rt.evalSymbol(sym))
		case OpArg:
			n, e := rt.wantInt("arg", rt.PopOp())
			if rt.IsError(e) {
				rt.PushOp(e)
				continue
			}
			rt.PushOp(rt.argAt(int(n)))
		case OpArg0:
			rt.PushOp(rt.argAt(0))
		case OpArg1:
			rt.PushOp(rt.argAt(1))
		case OpArg2:
			rt.PushOp(rt.argAt(2))
		case OpDup:
			rt.PushOp(rt.TopOp())
		case OpPop:
			rt.PopOp()
		case OpNot:
			rt.PushOp(rt.boolRef(!rt.Truthy(rt.PopOp())))
		case OpFirst:
			rt.PushOp(rt.Car(rt.PopOp()))
		case OpRest:
			rt.PushOp(rt.Cdr(rt.PopOp()))
		case OpMakePair:
			b := rt.PopOp()
			a := rt.PopOp()
			rt.PushOp(rt.MakeCons(a, b))
		case OpJump:
			off := int(int16(binary.LittleEndian.Uint16(code[pc:])))
			pc = start + off
		case OpSmallJump:
			off := int(int8(code[pc]))
			pc = start + off
		case OpJumpIfFalse:
			off := int(int16(binary.LittleEndian.Uint16(code[pc:])))
			pc += 2
			if !rt.Truthy(rt.PopOp()) {
				pc = start + off
			}
		case OpSmallJumpIfFalse:
			off := int(int8(code[pc]))
			pc++
			if !rt.Truthy(rt.PopOp()) {
				pc = start + off
			}
		case OpFuncall, OpFuncall1, OpFuncall2, OpFuncall3:
			n := vmCallArity(op, code, &pc)
			fn := rt.popBelow(n)
			rt.PushOp(rt.funcall(fn, n))
		case OpTailCall, OpTailCall1, OpTailCall2, OpTailCall3:
			n := vmCallArity(op, code, &pc)
			fn := rt.popBelow(n)
			if fn == rt.This && n == rt.argCount {
				args := make([]Ref, n)
				for i := n - 1; i >= 0; i-- {
					args[i] = rt.PopOp()
				}
				for ; framesOpened > 0; framesOpened-- {
					rt.Bindings = rt.FramePop(rt.Bindings)
				}
				for rt.opTop > rt.argBreak { // discard this activation's own arguments
					rt.PopOp()
				}
				for _, a := range args {
					rt.PushOp(a)
				}
				rt.argBreak = rt.opTop - n
				rt.argCount = n
				pc = start
				continue
			}
			rt.PushOp(rt.funcall(fn, n))
		case OpLexicalFramePush:
			rt.Bindings = rt.FramePush(rt.Bindings)
			framesOpened++
		case OpLexicalFramePop:
			rt.Bindings = rt.FramePop(rt.Bindings)
			if framesOpened > 0 {
				framesOpened--
			}
		case OpLexicalDef, OpLexicalDefRel:
			off := int32(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			sym := rt.symbolAt(off)
			val := rt.PopOp()
			rt.Bindings = rt.FrameStore(rt.Bindings, sym, val)
		case OpLexicalVarLoad:
			off := int32(binary.LittleEndian.Uint16(code[pc:]))
			pc += 2
			sym := rt.symbolAt(off)
			v, ok := rt.LookupLexical(rt.Bindings, sym)
			if !ok {
				rt.PushOp(rt.Errorf(ErrUndefinedVariable, "undefined variable: %s", rt.SymbolName(sym)))
				continue
			}
			rt.PushOp(v)
		case OpEarlyRet, OpRet:
			return rt.PopOp()
		case OpFatal:
			return rt.Errorf(ErrInvalidSyntax, "fatal bytecode instruction")
		default:
			return rt.Errorf(ErrInvalidSyntax, "unknown opcode %d", op)
		}
	}
}

func (rt *Runtime) symbolAt(internOffset int32) Ref {
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindSymbol
	c.N = internOffset
	return ref
}

func (rt *Runtime) argAt(n int) Ref {
	if n < 0 || n >= rt.argCount {
		return rt.Errorf(ErrInvalidArgumentType, "arg%d: index out of range", n)
	}
	return rt.GetOp(n)
}

// popBelow pops n argument cells off the stack, then the function cell
// beneath them, returning the function. Arguments are left on the stack in
// call order for funcall/tail-call to consume by count.
func (rt *Runtime) popBelow(n int) Ref {
	args := make([]Ref, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = rt.PopOp()
	}
	fn := rt.PopOp()
	for _, a := range args {
		rt.PushOp(a)
	}
	return fn
}

func vmCallArity(op Opcode, code []byte, pc *int) int {
	switch op {
	case OpFuncall, OpTailCall:
		n := int(binary.LittleEndian.Uint16(code[*pc:]))
		*pc += 2
		return n
	case OpFuncall1, OpTailCall1:
		return 1
	case OpFuncall2, OpTailCall2:
		return 2
	default:
		return 3
	}
}
