// Copyright © 2018 The ELPS authors

package lisp

import "unsafe"

// PoolSize is the nominal cell count (spec.md §3, "nominally 9000").
const PoolSize = 9000

// Pool is a fixed-count arena of Cell values threaded into a LIFO free list
// at startup. It never grows; allocation failure is handled by the GC, not
// by the pool itself.
type Pool struct {
	cells    []Cell
	freeHead Ref
	freeLen  int
}

// NewPool allocates a Pool of n cells (n defaults to PoolSize when <= 0) and
// threads them into the free list, reserving RefNil and RefOOM as permanent
// singleton cells.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = PoolSize
	}
	if n < 2 {
		n = 2
	}
	p := &Pool{cells: make([]Cell, n)}
	p.cells[RefNil] = Cell{Kind: KindNil, Alive: true}
	p.cells[RefOOM] = Cell{Kind: KindError, Alive: true, N: int32(ErrOutOfMemory)}
	p.freeHead = RefNil
	p.freeLen = 0
	// Thread every remaining cell into the free list, LIFO, highest index
	// first so that offset 2 is popped first (matches the order a linear
	// scan at startup would produce).
	var head Ref = 0
	hasHead := false
	for i := n - 1; i >= 2; i-- {
		c := &p.cells[i]
		c.reset()
		c.A = head
		head = Ref(i)
		hasHead = true
		p.freeLen++
	}
	if hasHead {
		p.freeHead = head
	} else {
		p.freeHead = RefNil
	}
	return p
}

// Len returns the total cell count, including the two reserved singletons.
func (p *Pool) Len() int { return len(p.cells) }

// Free returns the number of cells currently on the free list.
func (p *Pool) Free() int { return p.freeLen }

// At dereferences a Ref into the backing cell. Panics on an out-of-range Ref
// since that indicates a bug in the interpreter, not bad user input.
func (p *Pool) At(ref Ref) *Cell {
	return &p.cells[ref]
}

// alloc pops a free cell, marking it alive with a cleared mark bit. It
// returns RefNil's zero value (false) for ok when the pool is exhausted; the
// caller (Runtime.alloc) is responsible for running the GC and retrying.
func (p *Pool) alloc() (Ref, bool) {
	if p.freeLen == 0 {
		return 0, false
	}
	ref := p.freeHead
	c := &p.cells[ref]
	p.freeHead = c.A
	p.freeLen--
	c.reset()
	c.Alive = true
	return ref, true
}

// free pushes ref back onto the free list. The caller must already have
// invoked any finalizer associated with the cell's kind.
func (p *Pool) free(ref Ref) {
	c := &p.cells[ref]
	c.reset()
	c.A = p.freeHead
	p.freeHead = ref
	p.freeLen++
}

// Compress computes the 16-bit offset of a cell pointer within this pool's
// backing array, by address arithmetic, matching spec.md's definition
// literally: offset = (raw_address - pool_base) / sizeof(cell). decompress
// inverts it. Both round-trip identically, including for the nil cell,
// satisfying the pool invariant in spec.md §8.
func (p *Pool) Compress(c *Cell) Ref {
	base := unsafe.Pointer(&p.cells[0])
	target := unsafe.Pointer(c)
	delta := uintptr(target) - uintptr(base)
	return Ref(delta / unsafe.Sizeof(Cell{}))
}

// Decompress is the inverse of Compress.
func (p *Pool) Decompress(ref Ref) *Cell {
	return p.At(ref)
}

// forEachAlive calls fn once per live cell with its Ref, in pool order. Used
// by the sweep phase and by diagnostics.
func (p *Pool) forEachAlive(fn func(ref Ref, c *Cell)) {
	for i := range p.cells {
		c := &p.cells[i]
		if c.Alive {
			fn(Ref(i), c)
		}
	}
}
