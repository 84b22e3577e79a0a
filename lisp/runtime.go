// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"sync/atomic"

	"github.com/minilisp/minilisp/internal/trace"
)

// OperandStackSize is the default operand stack capacity (spec.md §3,
// "≈500 entries").
const OperandStackSize = 512

// Constant is one entry of the host-supplied read-only constants table
// (spec.md §3, "constants table ... consulted on variable lookup only after
// the globals tree reports not found").
type Constant struct {
	Name  string
	Value int32
}

// Runtime is the single, process-wide interpreter context: the pool, the
// globals tree, the operand stack, and every other piece of state the
// reader, evaluator, compiler, and VM share all hang off one Runtime value.
type Runtime struct {
	Pool   *Pool
	Intern *Intern

	Globals Ref // root of the globals BST, RefNil when empty
	Macros  Ref // head of the macro list, built of cons cells

	Bindings Ref // current lexical bindings chain (list of frames)
	This     Ref // the function object currently executing

	OperandStack []Ref
	opTop        int
	argBreak     int // index in OperandStack where the current call's args begin
	argCount     int // number of arguments available to the current call

	// callerBreak/callerCount snapshot the window funcall is about to
	// replace, so natives like `arg` and `argc` that want the *enclosing*
	// call's arguments (rather than their own) have somewhere to look.
	callerBreak int
	callerCount int

	Protected *protectedRoot // head of the intrusive protected-roots list
	StrBuf    Ref             // data-buffer currently being packed with short strings

	Constants []Constant

	Platform Platform

	// Tracer reports GC cycles, module loads, and VM step counts through
	// OpenTelemetry. Nil is valid and records nothing.
	Tracer *trace.Recorder

	natives []NativeFunc // native function registry, indexed by Cell.N

	entryCount int64 // interp_entry_count (spec.md §5)

	gcPasses   int64
	cellsAlloc int64
	cellsFreed int64
	vmSteps    int64

	initialized bool
}

// NewRuntime allocates and initializes a Runtime. Re-initialization of an
// already-initialized Runtime is a no-op, matching spec.md §5's
// "process-wide singleton ... re-init is a no-op" — here expressed as
// constructing a fresh value rather than mutating a package-level global,
// which is the idiomatic Go rendering of the same contract (see DESIGN.md).
func NewRuntime(opts ...Config) *Runtime {
	rt := &Runtime{
		Pool:         NewPool(PoolSize),
		Intern:       NewIntern(InternSize),
		OperandStack: make([]Ref, OperandStackSize),
		Globals:      RefNil,
		Macros:       RefNil,
		Bindings:     RefNil,
		This:         RefNil,
		StrBuf:       RefNil,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.Platform == nil {
		rt.Platform = NopPlatform{}
	}
	registerNatives(rt)
	rt.initialized = true
	return rt
}

// EntryCount returns the number of outstanding nested entries into Eval or
// DoString (spec.md §5, "interp_entry_count is incremented on entry").
func (rt *Runtime) EntryCount() int64 {
	return atomic.LoadInt64(&rt.entryCount)
}

func (rt *Runtime) enter() func() {
	atomic.AddInt64(&rt.entryCount, 1)
	return func() { atomic.AddInt64(&rt.entryCount, -1) }
}

// Reentrant reports whether this call to Eval/DoString is nested inside
// another one, letting host code skip expensive bookkeeping during nested
// entries and do it on the outer call only.
func (rt *Runtime) Reentrant() bool {
	return rt.EntryCount() > 1
}

// PushOp pushes ref onto the operand stack. It panics on overflow: the
// operand stack is a fixed, small capacity and overflow indicates a VM or
// evaluator bug (unbounded argument pushing), not user error.
func (rt *Runtime) PushOp(ref Ref) {
	if rt.opTop >= len(rt.OperandStack) {
		panic("lisp: operand stack overflow")
	}
	rt.OperandStack[rt.opTop] = ref
	rt.opTop++
}

// PopOp pops and returns the top of the operand stack.
func (rt *Runtime) PopOp() Ref {
	rt.opTop--
	return rt.OperandStack[rt.opTop]
}

// TopOp returns the top of the operand stack without popping it.
func (rt *Runtime) TopOp() Ref {
	return rt.OperandStack[rt.opTop-1]
}

// OpHeight returns the current operand stack height.
func (rt *Runtime) OpHeight() int { return rt.opTop }

// GetOp returns the i-th entry counting from the current call's argument
// break, the positional read native functions use (spec.md §4.5,
// "native functions read their arguments from it by positional offset").
func (rt *Runtime) GetOp(i int) Ref {
	return rt.OperandStack[rt.argBreak+i]
}

// Argc returns the argument count visible to the currently executing call.
func (rt *Runtime) Argc() int { return rt.argCount }

func (rt *Runtime) stringify(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
