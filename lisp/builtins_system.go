// Copyright © 2018 The ELPS authors

package lisp

func nativeSet(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("set", argc, 2); rt.IsError(e) {
		return e
	}
	sym := rt.GetOp(0)
	if e := rt.wantKind("set", sym, KindSymbol); rt.IsError(e) {
		return e
	}
	value := rt.GetOp(1)
	rt.Globals = rt.GlobalsPut(rt.Globals, sym, value)
	return value
}

func nativeUnbind(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("unbind", argc, 1); rt.IsError(e) {
		return e
	}
	sym := rt.GetOp(0)
	if e := rt.wantKind("unbind", sym, KindSymbol); rt.IsError(e) {
		return e
	}
	rt.Globals = rt.GlobalsErase(rt.Globals, sym)
	return RefNil
}

func nativeBound(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("bound", argc, 1); rt.IsError(e) {
		return e
	}
	sym := rt.GetOp(0)
	if e := rt.wantKind("bound", sym, KindSymbol); rt.IsError(e) {
		return e
	}
	if _, ok := rt.LookupLexical(rt.Bindings, sym); ok {
		return rt.MakeInteger(1)
	}
	_, ok := rt.GlobalsGet(rt.Globals, sym)
	return rt.boolRef(ok)
}

func nativeSymbol(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("symbol", argc, 1); rt.IsError(e) {
		return e
	}
	s := rt.GetOp(0)
	if e := rt.wantKind("symbol", s, KindString); rt.IsError(e) {
		return e
	}
	return rt.MakeSymbol(rt.StringValue(s))
}

func nativeString(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("string", argc, 1); rt.IsError(e) {
		return e
	}
	return rt.MakeString(rt.Format(rt.GetOp(0)))
}

func nativeType(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("type", argc, 1); rt.IsError(e) {
		return e
	}
	return rt.MakeString(rt.Pool.At(rt.GetOp(0)).Kind.String())
}

func nativeGC(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("gc", argc, 0); rt.IsError(e) {
		return e
	}
	rt.GC()
	return RefNil
}

// nativeGen implements (gen count fn): builds a list of count elements by
// calling fn with each index 0..count-1 in turn and collecting the results.
func nativeGen(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("gen", argc, 2); rt.IsError(e) {
		return e
	}
	count, e := rt.wantInt("gen", rt.GetOp(0))
	if rt.IsError(e) {
		return e
	}
	fn := rt.GetOp(1)
	if count < 0 {
		return rt.Errorf(ErrInvalidArgumentType, "gen: count must be non-negative")
	}
	out := make([]Ref, count)
	for i := int32(0); i < count; i++ {
		rt.PushOp(rt.MakeInteger(i))
		r := rt.funcall(fn, 1)
		if rt.IsError(r) {
			return r
		}
		out[i] = r
	}
	return rt.MakeList(out)
}

func nativeInterpStat(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("interp-stat", argc, 0); rt.IsError(e) {
		return e
	}
	return rt.MakeList([]Ref{
		rt.MakeInteger(int32(rt.cellsAlloc)),
		rt.MakeInteger(int32(rt.cellsFreed)),
		rt.MakeInteger(int32(rt.gcPasses)),
		rt.MakeInteger(int32(rt.Pool.Free())),
	})
}

func nativeProgn(rt *Runtime, argc int) Ref {
	if argc == 0 {
		return RefNil
	}
	return rt.GetOp(argc - 1)
}

func nativeArg(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("arg", argc, 1); rt.IsError(e) {
		return e
	}
	n, e := rt.wantInt("arg", rt.GetOp(0))
	if rt.IsError(e) {
		return e
	}
	if n < 0 || int(n) >= rt.callerCount {
		return rt.Errorf(ErrInvalidArgumentType, "arg: index %d out of range", n)
	}
	return rt.OperandStack[rt.callerBreak+int(n)]
}

func nativeArgc(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("argc", argc, 0); rt.IsError(e) {
		return e
	}
	return rt.MakeInteger(int32(rt.callerCount))
}

func nativeThis(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("this", argc, 0); rt.IsError(e) {
		return e
	}
	return rt.This
}

func nativeEnv(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("env", argc, 0); rt.IsError(e) {
		return e
	}
	return rt.Bindings
}

func nativeGlobals(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("globals", argc, 0); rt.IsError(e) {
		return e
	}
	var pairs []Ref
	rt.forEachGlobal(rt.Globals, func(key, value Ref) {
		pairs = append(pairs, rt.MakeCons(key, value))
	})
	return rt.MakeList(pairs)
}

func nativeRead(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("read", argc, 1); rt.IsError(e) {
		return e
	}
	s := rt.GetOp(0)
	if e := rt.wantKind("read", s, KindString); rt.IsError(e) {
		return e
	}
	ref, err := rt.Read(rt.StringValue(s))
	if err != nil {
		return rt.Errorf(ErrInvalidSyntax, "%v", err)
	}
	return ref
}

func nativeEval(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("eval", argc, 1); rt.IsError(e) {
		return e
	}
	return rt.Eval(rt.GetOp(0))
}

func nativeCompile(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("compile", argc, 1); rt.IsError(e) {
		return e
	}
	return rt.Compile(rt.GetOp(0))
}

func nativeDisassemble(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("disassemble", argc, 1); rt.IsError(e) {
		return e
	}
	fn := rt.GetOp(0)
	if e := rt.wantKind("disassemble", fn, KindFunction); rt.IsError(e) {
		return e
	}
	rt.Disassemble(fn)
	return RefNil
}
