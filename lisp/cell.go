// Copyright © 2018 The ELPS authors

package lisp

// Ref is a compressed reference into a Pool: a 16-bit offset rather than a
// native pointer. All inter-cell references (car/cdr, captured bindings,
// error context, and so on) are expressed as Ref values so that the pool's
// backing array can be the only thing holding live cells.
type Ref uint16

// Distinguished refs. Both are allocated once at Pool initialization and
// live forever; they are always GC roots.
const (
	RefNil Ref = 0
	RefOOM Ref = 1
)

// Kind is the cell's type tag.
type Kind uint8

const (
	KindFree Kind = iota // on the free list; Cell.A is the next free Ref
	KindNil
	KindInt
	KindCons
	KindFunction
	KindError
	KindSymbol
	KindUserData
	KindDataBuffer
	KindString
	KindChar // reserved; the reader/GC preserve it but never construct one
)

var kindNames = [...]string{
	KindFree:       "free",
	KindNil:        "nil",
	KindInt:        "integer",
	KindCons:       "cons",
	KindFunction:   "function",
	KindError:      "error",
	KindSymbol:     "symbol",
	KindUserData:   "user-data",
	KindDataBuffer: "data-buffer",
	KindString:     "string",
	KindChar:       "character",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// FnMode distinguishes the three function payload shapes.
type FnMode uint8

const (
	FnNative FnMode = iota
	FnSource
	FnBytecode
)

// Cell is the fixed-shape runtime object. Go gives no portable static_assert
// over struct layout and no true union, so the pool-and-compression contract
// is honored at the level the language can express it: every field that
// would cross cell boundaries in the original C layout is a 16-bit Ref, and
// Ext is reserved strictly for host-owned data the GC does not interpret
// (native function handles, user-data, and data-buffer scratch handles).
// See DESIGN.md "Core data structures" for the full rationale.
type Cell struct {
	Kind  Kind
	Alive bool
	Mark  bool
	Mode  FnMode // meaningful only when Kind == KindFunction

	A Ref // car / free-list-next / code-ref / (offset.databuffer)-ref / context-ref / string's databuffer-ref
	B Ref // cdr / captured-bindings-ref

	N int32 // integer value / symbol intern offset / string byte offset / native registry index / error kind

	Ext any // opaque host handle: user-data pointer, data-buffer scratch handle, or native Go function
}

func (c *Cell) reset() {
	c.Kind = KindFree
	c.Alive = false
	c.Mark = false
	c.Mode = FnNative
	c.A = RefNil
	c.B = RefNil
	c.N = 0
	c.Ext = nil
}

// Truthy implements spec truthiness: integer zero and nil are false, every
// other value is true.
func (rt *Runtime) Truthy(ref Ref) bool {
	c := rt.Pool.At(ref)
	switch c.Kind {
	case KindNil:
		return false
	case KindInt:
		return c.N != 0
	default:
		return true
	}
}

// NativeFunc is the signature of a host-registered primitive. It reads its
// arguments from the operand stack via rt.GetOp and returns the result Ref;
// argc is the number of arguments the evaluator pushed for this call.
type NativeFunc func(rt *Runtime, argc int) Ref
