// Copyright © 2018 The ELPS authors

package lisp

import (
	"context"

	"github.com/minilisp/minilisp/internal/trace"
)

// GC runs one full stop-the-world mark-and-sweep pass (spec.md §4.2). It is
// not reentrant (the interpreter is single-threaded throughout, spec.md §5)
// and its cost is bounded by the pool size.
func (rt *Runtime) GC() {
	before := rt.cellsFreed
	rt.gcPasses++
	rt.markRoots()
	rt.sweep()
	rt.Tracer.RecordGC(context.Background(), trace.GCStats{
		CellsAllocated: rt.cellsAlloc,
		CellsFreed:     rt.cellsFreed - before,
		PoolFree:       rt.Pool.Free(),
		InternBytes:    rt.Intern.Used(),
	})
	rt.Tracer.RecordVMSteps(context.Background(), rt.vmSteps)
	rt.vmSteps = 0
}

func (rt *Runtime) markRoots() {
	rt.mark(RefNil)
	rt.mark(RefOOM)
	rt.mark(rt.Bindings)
	rt.mark(rt.Macros)
	rt.mark(rt.This)
	rt.mark(rt.Globals)
	if rt.StrBuf != RefNil {
		rt.mark(rt.StrBuf)
	}
	for i := 0; i < rt.opTop; i++ {
		rt.mark(rt.OperandStack[i])
	}
	rt.forEachProtected(func(ref Ref) { rt.mark(ref) })
}

// mark visits ref and everything reachable from it. Cons chains are walked
// iteratively over cdr (spec.md §4.2, "An iterative tail-walk is required
// for cons chains to avoid stack overflow on long lists"); every other edge
// (car, function captures/code, string's data-buffer, error context) is
// plain recursion, since none of those can form the unbounded chains a
// list can.
func (rt *Runtime) mark(ref Ref) {
	for {
		c := rt.Pool.At(ref)
		if !c.Alive || c.Mark {
			return
		}
		c.Mark = true
		switch c.Kind {
		case KindCons:
			rt.mark(c.A)
			ref = c.B
			continue // iterative tail-walk
		case KindFunction:
			switch c.Mode {
			case FnSource:
				rt.mark(c.A)
				rt.mark(c.B)
			case FnBytecode:
				rt.mark(c.A)
				rt.mark(c.B)
			case FnNative:
				// no Ref-valued payload to follow
			}
		case KindError:
			rt.mark(c.A)
		case KindString:
			rt.mark(c.A)
		case KindUserData, KindDataBuffer:
			// GC neither follows nor frees user-data; data-buffer's Ext is
			// a host handle released by its finalizer during sweep, not
			// traced.
		}
		return
	}
}

// sweep scans the pool linearly, finalizing and freeing every cell that
// survived the mark phase unmarked, and clearing mark bits on everything
// else (spec.md §4.2).
func (rt *Runtime) sweep() {
	strBufAlive := rt.StrBuf == RefNil
	rt.Pool.forEachAlive(func(ref Ref, c *Cell) {
		if c.Mark {
			c.Mark = false
			if ref == rt.StrBuf {
				strBufAlive = true
			}
			return
		}
		rt.finalize(c)
		rt.Pool.free(ref)
		rt.cellsFreed++
	})
	if !strBufAlive {
		rt.StrBuf = RefNil
	}
}

// finalize runs the per-kind finalizer (spec.md §4.2: "data-buffer's
// finalizer releases the external scratch buffer handle; all others are
// no-ops").
func (rt *Runtime) finalize(c *Cell) {
	if c.Kind == KindDataBuffer {
		if buf, ok := c.Ext.(ScratchBuffer); ok && buf != nil {
			buf.Release()
		}
	}
}
