// Copyright © 2018 The ELPS authors

package lisp

import "strconv"

// Format renders ref as text in the reader's own syntax, so that for every
// value built from integers, symbols, nil, and proper cons lists,
// read(format(v)) reproduces v structurally (spec.md §8).
func (rt *Runtime) Format(ref Ref) string {
	var buf []byte
	buf = rt.format(ref, buf)
	return string(buf)
}

func (rt *Runtime) format(ref Ref, buf []byte) []byte {
	c := rt.Pool.At(ref)
	switch c.Kind {
	case KindNil:
		return append(buf, "nil"...)
	case KindInt:
		return append(buf, strconv.FormatInt(int64(c.N), 10)...)
	case KindSymbol:
		return append(buf, rt.SymbolName(ref)...)
	case KindString:
		buf = append(buf, '"')
		buf = append(buf, rt.StringValue(ref)...)
		return append(buf, '"')
	case KindCons:
		return rt.formatCons(ref, buf)
	case KindFunction:
		switch c.Mode {
		case FnNative:
			return append(buf, "<native-function>"...)
		case FnSource:
			return append(buf, "<function>"...)
		default:
			return append(buf, "<bytecode-function>"...)
		}
	case KindError:
		return append(buf, rt.Error(ref)...)
	case KindUserData:
		return append(buf, "<user-data>"...)
	case KindDataBuffer:
		return append(buf, "<data-buffer>"...)
	default:
		return append(buf, '?')
	}
}

func (rt *Runtime) formatCons(ref Ref, buf []byte) []byte {
	buf = append(buf, '(')
	first := true
	for {
		c := rt.Pool.At(ref)
		if !first {
			buf = append(buf, ' ')
		}
		first = false
		buf = rt.format(c.A, buf)
		next := rt.Pool.At(c.B)
		switch next.Kind {
		case KindNil:
			return append(buf, ')')
		case KindCons:
			ref = c.B
			continue
		default:
			buf = append(buf, " . "...)
			buf = rt.format(c.B, buf)
			return append(buf, ')')
		}
	}
}
