// Copyright © 2018 The ELPS authors

package lisp

// protectedRoot is one node of the intrusive doubly-linked protected-roots
// chain (spec.md §3, "Protected-roots chain"). No third-party container
// models an intrusive GC-root list tied to Go's own call-stack lifetime, so
// this is a small bespoke doubly-linked list rather than container/list:
// container/list's nodes are independent of scope lifetime and would let a
// caller forget to unlink on an error path, exactly the bug this type
// exists to prevent.
type protectedRoot struct {
	ref        Ref
	prev, next *protectedRoot
	rt         *Runtime
}

// Protect registers ref as a GC root for the duration of the caller's scope
// and returns a function that deregisters it. Callers must invoke the
// returned function along every exit path, matching spec.md §5
// ("scoped acquisition ... on construction and deregisters on destruction
// along every exit path").
func (rt *Runtime) Protect(ref Ref) func() {
	node := &protectedRoot{ref: ref, rt: rt}
	node.next = rt.Protected
	if rt.Protected != nil {
		rt.Protected.prev = node
	}
	rt.Protected = node
	unprotected := false
	return func() {
		if unprotected {
			return
		}
		unprotected = true
		if node.prev != nil {
			node.prev.next = node.next
		} else {
			rt.Protected = node.next
		}
		if node.next != nil {
			node.next.prev = node.prev
		}
	}
}

// forEachProtected calls fn once per currently-registered protected root.
func (rt *Runtime) forEachProtected(fn func(ref Ref)) {
	for n := rt.Protected; n != nil; n = n.next {
		fn(n.ref)
	}
}
