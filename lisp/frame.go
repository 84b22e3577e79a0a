// Copyright © 2018 The ELPS authors

package lisp

// Lexical bindings are a value-level linked list of frames: rt.Bindings is
// a list of frames, and each frame is itself a list of (symbol . value)
// pairs. Building frames out of cons cells, rather than a Go map, is
// required here: the GC must be able to trace bindings with the same
// cons-walk it already uses for every other list, and captured closures
// need a cheap, GC-visible snapshot of the chain (a single Ref) rather
// than a fresh map copy.

// FramePush prepends a fresh empty frame onto bindings and returns the new
// chain.
func (rt *Runtime) FramePush(bindings Ref) Ref {
	return rt.MakeCons(RefNil, bindings)
}

// FrameStore prepends a (symbol . value) binding onto the innermost frame of
// bindings and returns the updated chain (the head cons is replaced, callers
// must use the returned Ref).
func (rt *Runtime) FrameStore(bindings, sym, value Ref) Ref {
	if bindings == RefNil {
		bindings = rt.FramePush(RefNil)
	}
	frame := rt.Car(bindings)
	pair := rt.MakeCons(sym, value)
	if pair == RefOOM {
		return pair
	}
	newFrame := rt.MakeCons(pair, frame)
	if newFrame == RefOOM {
		return newFrame
	}
	rt.Pool.At(bindings).A = newFrame
	return bindings
}

// FramePop drops the head frame of bindings and returns the remaining chain.
func (rt *Runtime) FramePop(bindings Ref) Ref {
	if bindings == RefNil {
		return RefNil
	}
	return rt.Cdr(bindings)
}

// LookupLexical walks bindings from innermost frame outward, returning the
// first binding whose symbol shares an intern offset with sym (spec.md §4.5,
// "first match by intern-pointer equality").
func (rt *Runtime) LookupLexical(bindings, sym Ref) (Ref, bool) {
	target := symOffset(rt, sym)
	for bindings != RefNil {
		frame := rt.Car(bindings)
		for frame != RefNil {
			pair := rt.Car(frame)
			if symOffset(rt, rt.Car(pair)) == target {
				return rt.Cdr(pair), true
			}
			frame = rt.Cdr(frame)
		}
		bindings = rt.Cdr(bindings)
	}
	return RefNil, false
}
