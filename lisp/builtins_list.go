// Copyright © 2018 The ELPS authors

package lisp

func nativeCons(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("cons", argc, 2); rt.IsError(e) {
		return e
	}
	return rt.MakeCons(rt.GetOp(0), rt.GetOp(1))
}

func nativeCar(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("car", argc, 1); rt.IsError(e) {
		return e
	}
	x := rt.GetOp(0)
	if rt.IsNil(x) {
		return RefNil
	}
	if e := rt.wantKind("car", x, KindCons); rt.IsError(e) {
		return e
	}
	return rt.Car(x)
}

func nativeCdr(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("cdr", argc, 1); rt.IsError(e) {
		return e
	}
	x := rt.GetOp(0)
	if rt.IsNil(x) {
		return RefNil
	}
	if e := rt.wantKind("cdr", x, KindCons); rt.IsError(e) {
		return e
	}
	return rt.Cdr(x)
}

func nativeList(rt *Runtime, argc int) Ref {
	args := make([]Ref, argc)
	for i := range args {
		args[i] = rt.GetOp(i)
	}
	return rt.MakeList(args)
}

func nativeLength(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("length", argc, 1); rt.IsError(e) {
		return e
	}
	x := rt.GetOp(0)
	switch rt.Pool.At(x).Kind {
	case KindNil:
		return rt.MakeInteger(0)
	case KindCons:
		return rt.MakeInteger(int32(rt.ListLength(x)))
	case KindString:
		return rt.MakeInteger(int32(len(rt.StringValue(x))))
	default:
		return rt.Errorf(ErrInvalidArgumentType, "length: expected list or string")
	}
}

func nativeReverse(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("reverse", argc, 1); rt.IsError(e) {
		return e
	}
	elems := rt.ListToSlice(rt.GetOp(0))
	out := make([]Ref, len(elems))
	for i, v := range elems {
		out[len(elems)-1-i] = v
	}
	return rt.MakeList(out)
}

func nativeSelect(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("select", argc, 2); rt.IsError(e) {
		return e
	}
	n, e := rt.wantInt("select", rt.GetOp(1))
	if rt.IsError(e) {
		return e
	}
	elems := rt.ListToSlice(rt.GetOp(0))
	if n < 0 || int(n) >= len(elems) {
		return rt.Errorf(ErrInvalidArgumentType, "select: index %d out of range", n)
	}
	return elems[n]
}

func nativeRange(rt *Runtime, argc int) Ref {
	if e := rt.checkArgcRange("range", argc, 1, 2); rt.IsError(e) {
		return e
	}
	var lo, hi int32
	var e Ref
	if argc == 1 {
		hi, e = rt.wantInt("range", rt.GetOp(0))
	} else {
		lo, e = rt.wantInt("range", rt.GetOp(0))
		if !rt.IsError(e) {
			hi, e = rt.wantInt("range", rt.GetOp(1))
		}
	}
	if rt.IsError(e) {
		return e
	}
	if hi < lo {
		return rt.MakeList(nil)
	}
	out := make([]Ref, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, rt.MakeInteger(i))
	}
	return rt.MakeList(out)
}

func nativeFill(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("fill", argc, 2); rt.IsError(e) {
		return e
	}
	n, e := rt.wantInt("fill", rt.GetOp(0))
	if rt.IsError(e) {
		return e
	}
	value := rt.GetOp(1)
	out := make([]Ref, n)
	for i := range out {
		out[i] = value
	}
	return rt.MakeList(out)
}

func nativeApply(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("apply", argc, 2); rt.IsError(e) {
		return e
	}
	fn := rt.GetOp(0)
	args := rt.ListToSlice(rt.GetOp(1))
	for _, a := range args {
		rt.PushOp(a)
	}
	return rt.funcall(fn, len(args))
}

func nativeMap(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("map", argc, 2); rt.IsError(e) {
		return e
	}
	fn := rt.GetOp(0)
	elems := rt.ListToSlice(rt.GetOp(1))
	out := make([]Ref, len(elems))
	for i, v := range elems {
		rt.PushOp(v)
		r := rt.funcall(fn, 1)
		if rt.IsError(r) {
			return r
		}
		out[i] = r
	}
	return rt.MakeList(out)
}

func nativeFilter(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("filter", argc, 2); rt.IsError(e) {
		return e
	}
	fn := rt.GetOp(0)
	elems := rt.ListToSlice(rt.GetOp(1))
	var out []Ref
	for _, v := range elems {
		rt.PushOp(v)
		r := rt.funcall(fn, 1)
		if rt.IsError(r) {
			return r
		}
		if rt.Truthy(r) {
			out = append(out, v)
		}
	}
	return rt.MakeList(out)
}

func nativeGet(rt *Runtime, argc int) Ref {
	if e := rt.checkArgc("get", argc, 2); rt.IsError(e) {
		return e
	}
	key := rt.GetOp(1)
	for assoc := rt.GetOp(0); rt.IsCons(assoc); assoc = rt.Cdr(assoc) {
		pair := rt.Car(assoc)
		if rt.IsCons(pair) && rt.equalValues(rt.Car(pair), key) {
			return rt.Cdr(pair)
		}
	}
	return RefNil
}
