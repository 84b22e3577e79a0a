// Copyright © 2018 The ELPS authors

package lisp

// ScratchBuffer is a host-owned, externally reference-counted buffer handle.
// Data-buffer cells own one and release it in their finalizer (spec.md §4.2).
type ScratchBuffer interface {
	// Bytes returns the buffer's current contents. The returned slice must
	// not be retained past the next mutation.
	Bytes() []byte
	// Append adds p to the buffer, growing it as the host implementation
	// sees fit, and reports whether the write succeeded (false on the
	// host's own overflow condition).
	Append(p []byte) bool
	// Release returns the buffer to the host. Called at most once: from the
	// owning cell's finalizer during sweep, or directly by the core when the
	// buffer never made it into a cell (a failed append or allocation).
	Release()
}

// Platform is the host collaborator described in spec.md §6. It is the only
// interface the core depends on for anything outside the pool/GC/evaluator;
// every game subsystem (entities, states, graphics, networking, level
// layout) is reached only through it, if at all, and none of that is this
// core's concern.
type Platform interface {
	// Fatal reports an unrecoverable host-abort condition (spec.md §7) and
	// does not return.
	Fatal(msg string)
	// Sleep yields for the given number of engine ticks.
	Sleep(ticks int)
	// MakeScratchBuffer allocates a new host-owned scratch buffer.
	MakeScratchBuffer() (ScratchBuffer, error)
	// ScratchBuffersRemaining reports how many more scratch buffers the host
	// can still hand out.
	ScratchBuffersRemaining() int
	// ConsoleWriteLine writes one line to the host's remote console, used by
	// disassemble (spec.md §6).
	ConsoleWriteLine(line string)
	// ConsoleWidth reports the host remote console's line width in columns,
	// so disassemble output wraps instead of truncating.
	ConsoleWidth() int
}

// NopPlatform is a zero-dependency Platform used when the host has not
// supplied one (tests, `compile`-only CLI invocations). Scratch buffers are
// backed by plain Go byte slices; console output and sleeps are no-ops.
type NopPlatform struct{}

func (NopPlatform) Fatal(msg string)                               { panic("lisp: fatal: " + msg) }
func (NopPlatform) Sleep(ticks int)                                {}
func (NopPlatform) ScratchBuffersRemaining() int                    { return -1 }
func (NopPlatform) ConsoleWriteLine(line string)                   {}
func (NopPlatform) ConsoleWidth() int                               { return 80 }
func (NopPlatform) MakeScratchBuffer() (ScratchBuffer, error) {
	return &memScratchBuffer{}, nil
}

type memScratchBuffer struct {
	buf []byte
}

func (b *memScratchBuffer) Bytes() []byte { return b.buf }
func (b *memScratchBuffer) Append(p []byte) bool {
	b.buf = append(b.buf, p...)
	return true
}
func (b *memScratchBuffer) Release() { b.buf = nil }
