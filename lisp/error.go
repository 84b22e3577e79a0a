// Copyright © 2018 The ELPS authors

package lisp

import "fmt"

// ErrKind enumerates the error kinds of spec.md §7. Errors are first-class
// values, not exceptions: a native primitive, the evaluator, and the VM all
// return/propagate an error cell exactly like any other value.
type ErrKind int32

const (
	ErrOutOfMemory ErrKind = iota
	ErrUndefinedVariable
	ErrInvalidArgc
	ErrInvalidArgumentType
	ErrValueNotCallable
	ErrInvalidSyntax
	ErrMismatchedParens
)

var errKindNames = [...]string{
	ErrOutOfMemory:         "out-of-memory",
	ErrUndefinedVariable:   "undefined-variable-access",
	ErrInvalidArgc:         "invalid-argc",
	ErrInvalidArgumentType: "invalid-argument-type",
	ErrValueNotCallable:    "value-not-callable",
	ErrInvalidSyntax:       "invalid-syntax",
	ErrMismatchedParens:    "mismatched-parens",
}

func (k ErrKind) String() string {
	if int(k) >= 0 && int(k) < len(errKindNames) {
		return errKindNames[k]
	}
	return "invalid-error-kind"
}

// MakeError allocates a fresh error cell of the given kind with context as
// its context value (RefNil for none). When the allocation itself fails it
// returns the RefOOM singleton instead, through the normal Runtime.alloc
// path.
func (rt *Runtime) MakeError(kind ErrKind, context Ref) Ref {
	ref := rt.alloc()
	c := rt.Pool.At(ref)
	if c.Kind == KindError && ref == RefOOM {
		return ref
	}
	c.Kind = KindError
	c.N = int32(kind)
	c.A = context
	return ref
}

// Errorf is a convenience wrapper that boxes a formatted string as the
// error's context value.
func (rt *Runtime) Errorf(kind ErrKind, format string, args ...any) Ref {
	return rt.MakeError(kind, rt.MakeString(fmt.Sprintf(format, args...)))
}

// IsError reports whether ref refers to an error cell.
func (rt *Runtime) IsError(ref Ref) bool {
	return rt.Pool.At(ref).Kind == KindError
}

// ErrorKind returns the error kind of ref. Callers must check IsError first.
func (rt *Runtime) ErrorKind(ref Ref) ErrKind {
	return ErrKind(rt.Pool.At(ref).N)
}

// ErrorContext returns the context cell of an error, RefNil if absent.
func (rt *Runtime) ErrorContext(ref Ref) Ref {
	return rt.Pool.At(ref).A
}

// Error renders an error cell as a short diagnostic, in the manner of the
// teacher's ErrorVal.Error: condition name, then context if present.
func (rt *Runtime) Error(ref Ref) string {
	c := rt.Pool.At(ref)
	kind := ErrKind(c.N)
	if c.A == RefNil {
		return kind.String()
	}
	return fmt.Sprintf("%s: %s", kind, rt.Format(c.A))
}
