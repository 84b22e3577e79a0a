// Copyright © 2018 The ELPS authors

package lisp

import "encoding/binary"

// bytecodeBuilder accumulates an instruction stream one opcode at a time,
// in the manner of an assembler's forward-patchable label: callers record a
// placeholder offset for a not-yet-known jump target and come back to patch
// it once the target is reached.
//
// base is the absolute buffer offset of the function currently being
// compiled's first instruction. The VM computes every jump target as
// `start + operand` where `start` is the executing function's own entry
// offset (vm.go's runVM), so every patched operand here must be relative to
// base, not to the start of the shared buffer — compileLambda rebases it
// around each nested function body it emits.
type bytecodeBuilder struct {
	buf  []byte
	base int
}

func (b *bytecodeBuilder) emit(op Opcode) { b.buf = append(b.buf, byte(op)) }

func (b *bytecodeBuilder) emitU16(v uint16) {
	b.buf = append(b.buf, byte(v), byte(v>>8))
}

func (b *bytecodeBuilder) emitPushInt(n int32) {
	switch {
	case n == 0:
		b.emit(OpPush0)
	case n == 1:
		b.emit(OpPush1)
	case n == 2:
		b.emit(OpPush2)
	case n >= 0 && n <= 0xff:
		b.emit(OpPushSmallInt)
		b.buf = append(b.buf, byte(n))
	default:
		b.emit(OpPushInt32)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(n))
		b.buf = append(b.buf, tmp[:]...)
	}
}

func (b *bytecodeBuilder) emitPushSymbol(internOffset int32) {
	b.emit(OpPushSymbol)
	b.emitU16(uint16(internOffset))
}

func (b *bytecodeBuilder) emitLoadVar(internOffset int32) {
	b.emit(OpLoadVar)
	b.emitU16(uint16(internOffset))
}

func (b *bytecodeBuilder) emitPushString(s string) {
	b.emit(OpPushString)
	b.emitU16(uint16(len(s)))
	b.buf = append(b.buf, s...)
}

// placeholder reserves a 2-byte operand slot, returning its index for a
// later patch call.
func (b *bytecodeBuilder) placeholder() int {
	idx := len(b.buf)
	b.buf = append(b.buf, 0, 0)
	return idx
}

func (b *bytecodeBuilder) patch(idx int, v uint16) {
	binary.LittleEndian.PutUint16(b.buf[idx:], v)
}

func (b *bytecodeBuilder) here() int { return len(b.buf) }

// patchHere patches the placeholder at idx with the current position,
// expressed relative to base (see bytecodeBuilder's doc comment).
func (b *bytecodeBuilder) patchHere(idx int) {
	b.patch(idx, uint16(b.here()-b.base))
}

// Compile walks expr and emits a linear instruction stream (spec.md §4.6,
// §4.8's `compile` primitive), wrapping the result as a zero-argument
// bytecode function body. The compiler covers the forms needed for
// behaviorally-complete arithmetic, conditionals, closures, and
// self-recursive tail calls; a form outside that subset yields an
// `invalid-syntax` error rather than a silent miscompile, since spec.md §2
// notes the bytecode compiler is "not fully shown in core."
func (rt *Runtime) Compile(expr Ref) Ref {
	b := &bytecodeBuilder{}
	if e := rt.compileExpr(b, expr, true); rt.IsError(e) {
		return e
	}
	b.emit(OpRet)

	buf, err := rt.Platform.MakeScratchBuffer()
	if err != nil {
		return RefOOM
	}
	if !buf.Append(b.buf) {
		buf.Release()
		return rt.Errorf(ErrOutOfMemory, "compiled bytecode exceeds scratch buffer capacity")
	}
	dbRef := rt.MakeDataBuffer(buf)
	if dbRef == RefOOM {
		buf.Release()
		return RefOOM
	}
	unprotect := rt.Protect(dbRef)
	defer unprotect()
	codeCons := rt.MakeCons(rt.MakeInteger(0), dbRef)
	return rt.MakeFunctionBytecode(codeCons, rt.Bindings)
}

// compileExpr emits expr's code into b. tail marks a position whose call
// (if expr is one) may be eliminated by the VM's tail-call opcode.
func (rt *Runtime) compileExpr(b *bytecodeBuilder, expr Ref, tail bool) Ref {
	c := rt.Pool.At(expr)
	switch c.Kind {
	case KindNil:
		b.emit(OpPushNil)
		return RefNil
	case KindInt:
		b.emitPushInt(c.N)
		return RefNil
	case KindString:
		b.emitPushString(rt.StringValue(expr))
		return RefNil
	case KindSymbol:
		return rt.compileSymbol(b, expr)
	case KindCons:
		return rt.compileForm(b, expr, tail)
	default:
		return rt.Errorf(ErrInvalidSyntax, "compile: cannot compile a %s literal", c.Kind)
	}
}

func (rt *Runtime) compileSymbol(b *bytecodeBuilder, sym Ref) Ref {
	name := rt.SymbolName(sym)
	if len(name) > 0 && name[0] == '$' {
		switch name {
		case "$0":
			b.emit(OpArg0)
			return RefNil
		case "$1":
			b.emit(OpArg1)
			return RefNil
		case "$2":
			b.emit(OpArg2)
			return RefNil
		}
	}
	b.emitLoadVar(c_N(rt, sym))
	return RefNil
}

func c_N(rt *Runtime, ref Ref) int32 { return rt.Pool.At(ref).N }

func (rt *Runtime) compileForm(b *bytecodeBuilder, form Ref, tail bool) Ref {
	head := rt.Car(form)
	if rt.IsSymbol(head) {
		switch rt.SymbolName(head) {
		case "'":
			rt.compileQuoted(b, rt.Cdr(form))
			return RefNil
		case "if":
			return rt.compileIf(b, form, tail)
		case "lambda":
			return rt.compileLambda(b, form)
		case "let":
			return rt.compileLet(b, form, tail)
		case "`", "macro", "quote-symbol":
			return rt.Errorf(ErrInvalidSyntax, "compile: %s form is not supported", rt.SymbolName(head))
		}
	}
	return rt.compileCall(b, form, tail)
}

func (rt *Runtime) compileIf(b *bytecodeBuilder, form Ref, tail bool) Ref {
	args := rt.ListToSlice(rt.Cdr(form))
	if len(args) < 2 || len(args) > 3 {
		return rt.Errorf(ErrInvalidArgc, "if: expected 2 or 3 arguments")
	}
	if e := rt.compileExpr(b, args[0], false); rt.IsError(e) {
		return e
	}
	b.emit(OpJumpIfFalse)
	falseJump := b.placeholder()
	if e := rt.compileExpr(b, args[1], tail); rt.IsError(e) {
		return e
	}
	b.emit(OpJump)
	endJump := b.placeholder()
	b.patchHere(falseJump)
	if len(args) == 3 {
		if e := rt.compileExpr(b, args[2], tail); rt.IsError(e) {
			return e
		}
	} else {
		b.emit(OpPushNil)
	}
	b.patchHere(endJump)
	return RefNil
}

func (rt *Runtime) compileLambda(b *bytecodeBuilder, form Ref) Ref {
	b.emit(OpPushLambda)
	endPatch := b.placeholder() // relative to the *outer* base; patched after restoring it below
	outerBase := b.base
	b.base = b.here()

	body := rt.ListToSlice(rt.Cdr(form))
	for i, expr := range body {
		last := i == len(body)-1
		if e := rt.compileExpr(b, expr, last); rt.IsError(e) {
			return e
		}
		if !last {
			b.emit(OpPop)
		}
	}
	if len(body) == 0 {
		b.emit(OpPushNil)
	}
	b.emit(OpRet)

	b.base = outerBase
	b.patchHere(endPatch)
	return RefNil
}

func (rt *Runtime) compileLet(b *bytecodeBuilder, form Ref, tail bool) Ref {
	rest := rt.Cdr(form)
	bindings := rt.ListToSlice(rt.Car(rest))
	body := rt.ListToSlice(rt.Cdr(rest))

	b.emit(OpLexicalFramePush)
	for _, pair := range bindings {
		sym := rt.Car(pair)
		valExpr := rt.Car(rt.Cdr(pair))
		if e := rt.compileExpr(b, valExpr, false); rt.IsError(e) {
			return e
		}
		b.emit(OpLexicalDef)
		b.emitU16(uint16(c_N(rt, sym)))
	}
	for i, expr := range body {
		last := i == len(body)-1
		if e := rt.compileExpr(b, expr, last && tail); rt.IsError(e) {
			return e
		}
		if !last {
			b.emit(OpPop)
		}
	}
	if len(body) == 0 {
		b.emit(OpPushNil)
	}
	b.emit(OpLexicalFramePop)
	return RefNil
}

func (rt *Runtime) compileCall(b *bytecodeBuilder, form Ref, tail bool) Ref {
	args := rt.ListToSlice(rt.Cdr(form))
	if e := rt.compileExpr(b, rt.Car(form), false); rt.IsError(e) {
		return e
	}
	for _, a := range args {
		if e := rt.compileExpr(b, a, false); rt.IsError(e) {
			return e
		}
	}
	n := len(args)
	callOp := func(plain, one, two, three Opcode) {
		switch n {
		case 1:
			b.emit(one)
		case 2:
			b.emit(two)
		case 3:
			b.emit(three)
		default:
			b.emit(plain)
			b.emitU16(uint16(n))
		}
	}
	if tail {
		callOp(OpTailCall, OpTailCall1, OpTailCall2, OpTailCall3)
	} else {
		callOp(OpFuncall, OpFuncall1, OpFuncall2, OpFuncall3)
	}
	return RefNil
}

func (rt *Runtime) compileQuoted(b *bytecodeBuilder, val Ref) {
	c := rt.Pool.At(val)
	switch c.Kind {
	case KindInt:
		b.emitPushInt(c.N)
	case KindSymbol:
		b.emitPushSymbol(c.N)
	case KindString:
		b.emitPushString(rt.StringValue(val))
	case KindCons:
		rt.compileQuoted(b, c.A)
		rt.compileQuoted(b, c.B)
		b.emit(OpMakePair)
	default:
		b.emit(OpPushNil)
	}
}
