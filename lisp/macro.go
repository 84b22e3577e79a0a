// Copyright © 2018 The ELPS authors

package lisp

// Macros rewrite syntax before evaluation ever sees it: the reader calls
// ExpandMacros on every top-level form it reads (lisp/reader.go), and Eval
// and DoString call it once more on each top-level form just before
// evaluating it, so a macro defined by an earlier form of the same source
// text also applies to the forms after it. By the time the evaluator walks
// a form, a macro call already looks like whatever it expanded into. A
// macro table entry is
// (name . (params . body)) — a list of symbol parameters and a single body
// expression, built from pool cells rather than Go closures, since body
// must be ordinary evaluable syntax rather than compiled Go.

// DefineMacro registers a macro (the "macro" special form's effect) and
// returns name.
func (rt *Runtime) DefineMacro(name, params, body Ref) Ref {
	unprotect := rt.Protect(name)
	defer unprotect()
	unprotect2 := rt.Protect(params)
	defer unprotect2()
	unprotect3 := rt.Protect(body)
	defer unprotect3()
	entry := rt.MakeCons(params, body)
	if entry == RefOOM {
		return entry
	}
	unprotectEntry := rt.Protect(entry)
	defer unprotectEntry()
	pair := rt.MakeCons(name, entry)
	if pair == RefOOM {
		return pair
	}
	unprotectPair := rt.Protect(pair)
	defer unprotectPair()
	rt.Macros = rt.MakeCons(pair, rt.Macros)
	return name
}

func (rt *Runtime) findMacro(nameSym Ref) (params, body Ref, ok bool) {
	target := symOffset(rt, nameSym)
	for m := rt.Macros; m != RefNil; m = rt.Cdr(m) {
		entry := rt.Car(m)
		if symOffset(rt, rt.Car(entry)) == target {
			rest := rt.Cdr(entry)
			return rt.Car(rest), rt.Cdr(rest), true
		}
	}
	return RefNil, RefNil, false
}

// quoteForm wraps ref as the dotted pair `(' . ref)`, the same shape the
// reader produces for a literal quote, so passing it through eval yields
// ref back unevaluated.
func (rt *Runtime) quoteForm(ref Ref) Ref {
	return rt.MakeCons(rt.MakeSymbol("'"), ref)
}

// ExpandMacros recursively expands macro calls throughout ref, skipping the
// data under a quote or quasiquote so that macros never rewrite literal
// data. It returns ref unchanged (same Ref) when nothing under it changed,
// avoiding needless cell churn on forms with no macro calls at all.
func (rt *Runtime) ExpandMacros(ref Ref) Ref {
	if !rt.IsCons(ref) {
		return ref
	}
	head := rt.Car(ref)
	if rt.IsSymbol(head) {
		switch rt.SymbolName(head) {
		case "'", "`", "quote-symbol":
			return ref
		}
		if params, body, ok := rt.findMacro(head); ok {
			expanded := rt.expandMacroCall(params, body, ref)
			return rt.ExpandMacros(expanded)
		}
	}
	car := rt.ExpandMacros(rt.Car(ref))
	cdr := rt.ExpandMacros(rt.Cdr(ref))
	if car == rt.Car(ref) && cdr == rt.Cdr(ref) {
		return ref
	}
	return rt.MakeCons(car, cdr)
}

// expandMacroCall synthesizes a let form binding each formal parameter to
// its quoted argument and evaluates it (spec.md's macro expansion: a
// pre-eval rewrite, not a second evaluation pass). When the call supplies
// more arguments than there are formals, the last formal absorbs every
// argument from its position onward as a single quoted list, giving macros
// a variadic tail parameter without dedicated syntax; an exact 1:1 call
// binds every formal, including the last, to its single corresponding
// argument.
func (rt *Runtime) expandMacroCall(params, body, callForm Ref) Ref {
	formals := rt.ListToSlice(params)
	args := rt.ListToSlice(rt.Cdr(callForm))

	var bindings []Ref
	for i, formal := range formals {
		last := i == len(formals)-1
		var argForm Ref
		switch {
		case last && len(args) > len(formals):
			// Overflow beyond a 1:1 match collects into the final formal as
			// a list, giving macros a variadic tail parameter.
			argForm = rt.MakeList(args[i:])
		case i < len(args):
			argForm = args[i]
		default:
			argForm = RefNil
		}
		pair := rt.MakeList([]Ref{formal, rt.quoteForm(argForm)})
		bindings = append(bindings, pair)
	}
	letForm := rt.MakeList([]Ref{
		rt.MakeSymbol("let"),
		rt.MakeList(bindings),
		body,
	})
	return rt.Eval(letForm)
}
