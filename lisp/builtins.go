// Copyright © 2018 The ELPS authors

package lisp

// RegisterNative wraps fn in a native function cell and binds it to name in
// the globals tree.
func (rt *Runtime) RegisterNative(name string, fn NativeFunc) {
	ref := rt.MakeFunctionNative(fn)
	sym := rt.MakeSymbol(name)
	rt.Globals = rt.GlobalsPut(rt.Globals, sym, ref)
}

// registerNatives binds every primitive spec.md §4.8 requires. It runs once
// from NewRuntime, before any host-supplied WithNativeFunc configs, so a
// host can shadow a core primitive by registering its own under the same
// name afterward.
func registerNatives(rt *Runtime) {
	for name, fn := range map[string]NativeFunc{
		"set":    nativeSet,
		"cons":   nativeCons,
		"car":    nativeCar,
		"cdr":    nativeCdr,
		"list":   nativeList,
		"arg":    nativeArg,
		"progn":  nativeProgn,

		"any-true": nativeAnyTrue,
		"all-true": nativeAllTrue,
		"not":      nativeNot,
		"equal":    nativeEqual,
		"apply":    nativeApply,
		"fill":     nativeFill,
		"gen":      nativeGen,
		"length":   nativeLength,

		"<": nativeLessThan,
		">": nativeGreaterThan,
		"=": nativeNumEqual,
		"+": nativeAdd,
		"-": nativeSub,
		"*": nativeMul,
		"/": nativeDiv,

		"interp-stat": nativeInterpStat,
		"range":       nativeRange,
		"unbind":      nativeUnbind,
		"symbol":      nativeSymbol,
		"type":        nativeType,
		"string":      nativeString,
		"bound":       nativeBound,
		"filter":      nativeFilter,
		"map":         nativeMap,
		"reverse":     nativeReverse,
		"select":      nativeSelect,
		"gc":          nativeGC,
		"get":         nativeGet,
		"read":        nativeRead,
		"eval":        nativeEval,
		"globals":     nativeGlobals,
		"this":        nativeThis,
		"argc":        nativeArgc,
		"env":         nativeEnv,
		"compile":     nativeCompile,
		"disassemble": nativeDisassemble,
	} {
		rt.RegisterNative(name, fn)
	}
}

// --- shared argument-checking helpers, used by every primitive below ---

func (rt *Runtime) checkArgc(name string, argc, want int) Ref {
	if argc != want {
		return rt.Errorf(ErrInvalidArgc, "%s: expected %d argument(s), got %d", name, want, argc)
	}
	return RefNil
}

func (rt *Runtime) checkArgcRange(name string, argc, min, max int) Ref {
	if argc < min || argc > max {
		return rt.Errorf(ErrInvalidArgc, "%s: expected %d-%d argument(s), got %d", name, min, max, argc)
	}
	return RefNil
}

func (rt *Runtime) checkArgcMin(name string, argc, min int) Ref {
	if argc < min {
		return rt.Errorf(ErrInvalidArgc, "%s: expected at least %d argument(s), got %d", name, min, argc)
	}
	return RefNil
}

func (rt *Runtime) wantKind(name string, ref Ref, k Kind) Ref {
	if rt.Pool.At(ref).Kind != k {
		return rt.Errorf(ErrInvalidArgumentType, "%s: expected %s, got %s", name, k, rt.Pool.At(ref).Kind)
	}
	return RefNil
}

func (rt *Runtime) wantInt(name string, ref Ref) (int32, Ref) {
	c := rt.Pool.At(ref)
	if c.Kind != KindInt {
		return 0, rt.Errorf(ErrInvalidArgumentType, "%s: expected integer, got %s", name, c.Kind)
	}
	return c.N, RefNil
}

func (rt *Runtime) boolRef(b bool) Ref {
	if b {
		return rt.MakeInteger(1)
	}
	return RefNil
}

// equalValues implements structural equality over the value shapes `equal`
// needs to compare: integers by value, symbols by intern offset, strings by
// content, nil by identity, cons lists recursively.
func (rt *Runtime) equalValues(a, b Ref) bool {
	if a == b {
		return true
	}
	ca, cb := rt.Pool.At(a), rt.Pool.At(b)
	if ca.Kind != cb.Kind {
		return false
	}
	switch ca.Kind {
	case KindInt:
		return ca.N == cb.N
	case KindSymbol:
		return ca.N == cb.N
	case KindString:
		return rt.StringValue(a) == rt.StringValue(b)
	case KindCons:
		return rt.equalValues(ca.A, cb.A) && rt.equalValues(ca.B, cb.B)
	case KindNil:
		return true
	default:
		return false
	}
}
