// Copyright © 2018 The ELPS authors

package lisp

func (rt *Runtime) intArgs(name string, argc int) ([]int32, Ref) {
	out := make([]int32, argc)
	for i := 0; i < argc; i++ {
		n, e := rt.wantInt(name, rt.GetOp(i))
		if rt.IsError(e) {
			return nil, e
		}
		out[i] = n
	}
	return out, RefNil
}

func nativeAdd(rt *Runtime, argc int) Ref {
	args, e := rt.intArgs("+", argc)
	if rt.IsError(e) {
		return e
	}
	var sum int32
	for _, n := range args {
		sum += n
	}
	return rt.MakeInteger(sum)
}

func nativeMul(rt *Runtime, argc int) Ref {
	args, e := rt.intArgs("*", argc)
	if rt.IsError(e) {
		return e
	}
	var product int32 = 1
	for _, n := range args {
		product *= n
	}
	return rt.MakeInteger(product)
}

func nativeSub(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcMin("-", argc, 1); rt.IsError(e) {
		return e
	}
	args, e := rt.intArgs("-", argc)
	if rt.IsError(e) {
		return e
	}
	if len(args) == 1 {
		return rt.MakeInteger(-args[0])
	}
	result := args[0]
	for _, n := range args[1:] {
		result -= n
	}
	return rt.MakeInteger(result)
}

func nativeDiv(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcMin("/", argc, 2); rt.IsError(e) {
		return e
	}
	args, e := rt.intArgs("/", argc)
	if rt.IsError(e) {
		return e
	}
	result := args[0]
	for _, n := range args[1:] {
		if n == 0 {
			return rt.Errorf(ErrInvalidArgumentType, "/: division by zero")
		}
		result /= n
	}
	return rt.MakeInteger(result)
}

func nativeLessThan(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcMin("<", argc, 1); rt.IsError(e) {
		return e
	}
	args, e := rt.intArgs("<", argc)
	if rt.IsError(e) {
		return e
	}
	for i := 1; i < len(args); i++ {
		if !(args[i-1] < args[i]) {
			return RefNil
		}
	}
	return rt.MakeInteger(1)
}

func nativeGreaterThan(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcMin(">", argc, 1); rt.IsError(e) {
		return e
	}
	args, e := rt.intArgs(">", argc)
	if rt.IsError(e) {
		return e
	}
	for i := 1; i < len(args); i++ {
		if !(args[i-1] > args[i]) {
			return RefNil
		}
	}
	return rt.MakeInteger(1)
}

func nativeNumEqual(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcMin("=", argc, 1); rt.IsError(e) {
		return e
	}
	args, e := rt.intArgs("=", argc)
	if rt.IsError(e) {
		return e
	}
	for i := 1; i < len(args); i++ {
		if args[i-1] != args[i] {
			return RefNil
		}
	}
	return rt.MakeInteger(1)
}

func nativeNot(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("not", argc, 1); rt.IsError(e) {
		return e
	}
	return rt.boolRef(!rt.Truthy(rt.GetOp(0)))
}

func nativeEqual(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("equal", argc, 2); rt.IsError(e) {
		return e
	}
	return rt.boolRef(rt.equalValues(rt.GetOp(0), rt.GetOp(1)))
}

func nativeAnyTrue(rt *Runtime, argc int) Ref {
	for i := 0; i < argc; i++ {
		if rt.Truthy(rt.GetOp(i)) {
			return rt.MakeInteger(1)
		}
	}
	return RefNil
}

func nativeAllTrue(rt *Runtime, argc int) Ref {
	for i := 0; i < argc; i++ {
		if !rt.Truthy(rt.GetOp(i)) {
			return RefNil
		}
	}
	return rt.boolRef(argc > 0)
}
