// Copyright © 2018 The ELPS authors

package lisp

// alloc pops a free cell, running the garbage collector once and retrying on
// exhaustion. It never panics and never returns an unusable cell: on
// persistent exhaustion it returns RefOOM, matching spec.md §4.1
// ("never crashes").
func (rt *Runtime) alloc() Ref {
	ref, ok := rt.Pool.alloc()
	if ok {
		rt.cellsAlloc++
		return ref
	}
	rt.GC()
	ref, ok = rt.Pool.alloc()
	if ok {
		rt.cellsAlloc++
		return ref
	}
	return RefOOM
}

// Nil returns the distinguished nil cell.
func (rt *Runtime) Nil() Ref { return RefNil }

// OOM returns the distinguished out-of-memory error cell.
func (rt *Runtime) OOM() Ref { return RefOOM }

// MakeCons allocates a cons cell, protecting car and cdr across the
// allocation so a GC triggered mid-call can't collect a partially-built
// result.
func (rt *Runtime) MakeCons(car, cdr Ref) Ref {
	unprotect := rt.Protect(car)
	defer unprotect()
	unprotect2 := rt.Protect(cdr)
	defer unprotect2()
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindCons
	c.A = car
	c.B = cdr
	return ref
}

// MakeInteger allocates a signed 32-bit integer cell.
func (rt *Runtime) MakeInteger(n int32) Ref {
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindInt
	c.N = n
	return ref
}

// MakeSymbol interns name and returns a symbol cell referencing it. Calling
// MakeSymbol twice with the same name yields two cells whose intern offsets
// (N fields) are equal, matching spec.md §8's symbol-identity property.
func (rt *Runtime) MakeSymbol(name string) Ref {
	off := rt.Intern.Insert(name)
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindSymbol
	c.N = off
	return ref
}

// SymbolName returns the name of a symbol cell.
func (rt *Runtime) SymbolName(ref Ref) string {
	return rt.Intern.NameAt(rt.Pool.At(ref).N)
}

// MakeDataBuffer wraps a host scratch buffer in an owning cell. The cell's
// finalizer releases buf during sweep if the cell becomes unreachable.
func (rt *Runtime) MakeDataBuffer(buf ScratchBuffer) Ref {
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindDataBuffer
	c.Ext = buf
	return ref
}

// MakeString allocates a fresh data-buffer containing s and a string cell
// referencing it at offset 0.
func (rt *Runtime) MakeString(s string) Ref {
	buf, err := rt.Platform.MakeScratchBuffer()
	if err != nil {
		return RefOOM
	}
	if !buf.Append([]byte(s)) {
		buf.Release()
		return rt.Errorf(ErrInvalidArgumentType, "string literal overflow")
	}
	dbRef := rt.MakeDataBuffer(buf)
	if dbRef == RefOOM {
		buf.Release()
		return RefOOM
	}
	unprotect := rt.Protect(dbRef)
	defer unprotect()
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindString
	c.A = dbRef
	c.N = 0
	return ref
}

// StringValue returns the Go string content of a string cell.
func (rt *Runtime) StringValue(ref Ref) string {
	c := rt.Pool.At(ref)
	buf := rt.Pool.At(c.A).Ext.(ScratchBuffer)
	return string(buf.Bytes()[c.N:])
}

// MakeFunctionNative registers fn in the native function registry and
// returns a function cell in native mode referencing it.
func (rt *Runtime) MakeFunctionNative(fn NativeFunc) Ref {
	idx := int32(len(rt.natives))
	rt.natives = append(rt.natives, fn)
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindFunction
	c.Mode = FnNative
	c.N = idx
	return ref
}

// MakeFunctionSource allocates a source-function closure: code is the body
// expression list, bindings is the captured lexical chain.
func (rt *Runtime) MakeFunctionSource(code, bindings Ref) Ref {
	unprotect := rt.Protect(code)
	defer unprotect()
	unprotect2 := rt.Protect(bindings)
	defer unprotect2()
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindFunction
	c.Mode = FnSource
	c.A = code
	c.B = bindings
	return ref
}

// MakeFunctionBytecode allocates a bytecode-function closure: codeCons must
// be a cons cell (offset . databuffer), bindings the captured lexical chain.
func (rt *Runtime) MakeFunctionBytecode(codeCons, bindings Ref) Ref {
	unprotect := rt.Protect(codeCons)
	defer unprotect()
	unprotect2 := rt.Protect(bindings)
	defer unprotect2()
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindFunction
	c.Mode = FnBytecode
	c.A = codeCons
	c.B = bindings
	return ref
}

// MakeUserData wraps an opaque host pointer the GC neither follows nor
// frees.
func (rt *Runtime) MakeUserData(p any) Ref {
	ref := rt.alloc()
	if ref == RefOOM {
		return ref
	}
	c := rt.Pool.At(ref)
	c.Kind = KindUserData
	c.Ext = p
	return ref
}

// MakeList builds an n-element cons list from vals, protecting the partial
// head across each allocation, matching spec.md §4.1.
func (rt *Runtime) MakeList(vals []Ref) Ref {
	head := RefNil
	for i := len(vals) - 1; i >= 0; i-- {
		rt.PushOp(head)
		head = rt.MakeCons(vals[i], head)
		rt.PopOp()
		if head == RefOOM {
			return head
		}
	}
	return head
}

// ListToSlice walks a proper list into a Go slice. It stops (without error)
// at the first non-cons cdr, treating that as the end of the list.
func (rt *Runtime) ListToSlice(ref Ref) []Ref {
	var out []Ref
	for {
		c := rt.Pool.At(ref)
		if c.Kind != KindCons {
			break
		}
		out = append(out, c.A)
		ref = c.B
	}
	return out
}

// ListLength returns the length of a proper list.
func (rt *Runtime) ListLength(ref Ref) int {
	n := 0
	for {
		c := rt.Pool.At(ref)
		if c.Kind != KindCons {
			break
		}
		n++
		ref = c.B
	}
	return n
}

// Car returns the car of a cons cell.
func (rt *Runtime) Car(ref Ref) Ref { return rt.Pool.At(ref).A }

// Cdr returns the cdr of a cons cell.
func (rt *Runtime) Cdr(ref Ref) Ref { return rt.Pool.At(ref).B }

// IsNil reports whether ref is the distinguished nil cell.
func (rt *Runtime) IsNil(ref Ref) bool { return ref == RefNil }

// IsCons reports whether ref is a cons cell.
func (rt *Runtime) IsCons(ref Ref) bool { return rt.Pool.At(ref).Kind == KindCons }

// IsSymbol reports whether ref is a symbol cell.
func (rt *Runtime) IsSymbol(ref Ref) bool { return rt.Pool.At(ref).Kind == KindSymbol }
