// Copyright © 2018 The ELPS authors

package lisp

import "fmt"

// InternSize is the default capacity, in bytes, of the intern region.
const InternSize = 64 * 1024

// Intern is the append-only character region backing every symbol name.
// Each name is stored exactly once, null-terminated, back to back; symbol
// cells never own characters, they only carry an offset into this buffer.
// There is no appropriate third-party library for a bespoke fixed-capacity
// append-only string table: this is a data-structure concern specific to
// the pool design, not a parsing, encoding, or transport concern, so it is
// implemented directly against the byte slice (see DESIGN.md).
type Intern struct {
	buf []byte
	len int
}

// NewIntern allocates an Intern region of the given capacity (InternSize
// when n <= 0).
func NewIntern(n int) *Intern {
	if n <= 0 {
		n = InternSize
	}
	return &Intern{buf: make([]byte, n)}
}

// Insert returns the offset of name within the region, linearly scanning for
// an existing match and appending on a miss. Overflow is fatal, matching
// spec.md §7 ("intern-table full").
func (in *Intern) Insert(name string) int32 {
	if off, ok := in.find(name); ok {
		return off
	}
	need := len(name) + 1
	if in.len+need > len(in.buf) {
		panic(fmt.Sprintf("lisp: intern table full inserting %q", name))
	}
	off := in.len
	copy(in.buf[off:], name)
	in.buf[off+len(name)] = 0
	in.len += need
	return int32(off)
}

// find performs the linear scan used by Insert, reporting a name's offset
// without mutating the table.
func (in *Intern) find(name string) (int32, bool) {
	i := 0
	for i < in.len {
		j := i
		for j < in.len && in.buf[j] != 0 {
			j++
		}
		if j-i == len(name) && string(in.buf[i:j]) == name {
			return int32(i), true
		}
		i = j + 1
	}
	return 0, false
}

// NameAt returns the null-terminated string starting at off.
func (in *Intern) NameAt(off int32) string {
	i := int(off)
	j := i
	for j < in.len && in.buf[j] != 0 {
		j++
	}
	return string(in.buf[i:j])
}

// Used returns the number of bytes consumed in the intern region.
func (in *Intern) Used() int { return in.len }

// Cap returns the region's total capacity.
func (in *Intern) Cap() int { return len(in.buf) }
