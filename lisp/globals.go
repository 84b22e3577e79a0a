// Copyright © 2018 The ELPS authors

package lisp

// The globals tree is an unbalanced binary search tree built entirely out of
// pool cells (spec.md §3): each node is ((key . value) . (left . right)).
// Ordering key is the symbol's intern offset — address comparison, not
// string comparison, which is deterministic because equal-named symbols
// share one intern slot (see lisp/intern.go). Building the tree from cons
// cells (rather than, say, a Go map keyed by string) means the GC's ordinary
// cons-marking logic already covers it; no separate traversal is needed.

func (rt *Runtime) nodeKV(node Ref) Ref    { return rt.Car(node) }
func (rt *Runtime) nodeLR(node Ref) Ref    { return rt.Cdr(node) }
func (rt *Runtime) nodeKey(node Ref) Ref   { return rt.Car(rt.nodeKV(node)) }
func (rt *Runtime) nodeValue(node Ref) Ref { return rt.Cdr(rt.nodeKV(node)) }
func (rt *Runtime) nodeLeft(node Ref) Ref  { return rt.Car(rt.nodeLR(node)) }
func (rt *Runtime) nodeRight(node Ref) Ref { return rt.Cdr(rt.nodeLR(node)) }

func symOffset(rt *Runtime, sym Ref) int32 {
	return rt.Pool.At(sym).N
}

func (rt *Runtime) makeNode(key, value, left, right Ref) Ref {
	unprotect := rt.Protect(key)
	defer unprotect()
	unprotect2 := rt.Protect(value)
	defer unprotect2()
	unprotect3 := rt.Protect(left)
	defer unprotect3()
	unprotect4 := rt.Protect(right)
	defer unprotect4()
	kv := rt.MakeCons(key, value)
	if kv == RefOOM {
		return kv
	}
	unprotectKV := rt.Protect(kv)
	defer unprotectKV()
	lr := rt.MakeCons(left, right)
	if lr == RefOOM {
		return lr
	}
	return rt.MakeCons(kv, lr)
}

// GlobalsPut inserts or overwrites the binding for sym in root, returning
// the (possibly new) tree root. A duplicate insert overwrites value in
// place without rebuilding the spine above it.
func (rt *Runtime) GlobalsPut(root, sym, value Ref) Ref {
	if root == RefNil {
		return rt.makeNode(sym, value, RefNil, RefNil)
	}
	key := symOffset(rt, rt.nodeKey(root))
	target := symOffset(rt, sym)
	switch {
	case target == key:
		kv := rt.nodeKV(root)
		rt.Pool.At(kv).B = value
		return root
	case target < key:
		newLeft := rt.GlobalsPut(rt.nodeLeft(root), sym, value)
		rt.Pool.At(rt.nodeLR(root)).A = newLeft
		return root
	default:
		newRight := rt.GlobalsPut(rt.nodeRight(root), sym, value)
		rt.Pool.At(rt.nodeLR(root)).B = newRight
		return root
	}
}

// GlobalsGet looks up sym in root, returning its value and true on a hit.
func (rt *Runtime) GlobalsGet(root, sym Ref) (Ref, bool) {
	target := symOffset(rt, sym)
	for root != RefNil {
		key := symOffset(rt, rt.nodeKey(root))
		switch {
		case target == key:
			return rt.nodeValue(root), true
		case target < key:
			root = rt.nodeLeft(root)
		default:
			root = rt.nodeRight(root)
		}
	}
	return RefNil, false
}

// GlobalsErase splices sym out of root: the erased node's left subtree is
// kept as the base and every entry of its right subtree is re-inserted into
// it by traversal. Returns the new root.
func (rt *Runtime) GlobalsErase(root, sym Ref) Ref {
	if root == RefNil {
		return RefNil
	}
	target := symOffset(rt, sym)
	key := symOffset(rt, rt.nodeKey(root))
	switch {
	case target < key:
		newLeft := rt.GlobalsErase(rt.nodeLeft(root), sym)
		rt.Pool.At(rt.nodeLR(root)).A = newLeft
		return root
	case target > key:
		newRight := rt.GlobalsErase(rt.nodeRight(root), sym)
		rt.Pool.At(rt.nodeLR(root)).B = newRight
		return root
	default:
		left, right := rt.nodeLeft(root), rt.nodeRight(root)
		result := left
		rt.forEachGlobal(right, func(k, v Ref) {
			result = rt.GlobalsPut(result, k, v)
		})
		return result
	}
}

// forEachGlobal walks the tree rooted at root in-order, calling fn with each
// key/value pair.
func (rt *Runtime) forEachGlobal(root Ref, fn func(key, value Ref)) {
	if root == RefNil {
		return
	}
	rt.forEachGlobal(rt.nodeLeft(root), fn)
	fn(rt.nodeKey(root), rt.nodeValue(root))
	rt.forEachGlobal(rt.nodeRight(root), fn)
}

// GlobalNames returns the name of every currently bound global, in
// ascending intern-offset order. Used by host tooling (repl's line-editor
// completion) that wants to enumerate bound symbols without reaching into
// the tree representation itself.
func (rt *Runtime) GlobalNames() []string {
	var names []string
	rt.forEachGlobal(rt.Globals, func(k, _ Ref) {
		names = append(names, rt.SymbolName(k))
	})
	return names
}
