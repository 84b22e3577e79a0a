// Copyright © 2018 The ELPS authors

package lisp

import "strconv"

// Eval is the tree-walking evaluator's entry point (spec.md §4.5). It wraps
// the recursive worker with the reentrancy bookkeeping every entry point
// shares (spec.md §5, interp_entry_count). ref is macro-expanded first, so a
// macro defined by a form evaluated after ref was read still applies to it.
func (rt *Runtime) Eval(ref Ref) Ref {
	exit := rt.enter()
	defer exit()
	return rt.eval(rt.ExpandMacros(ref))
}

// DoString reads every top-level form out of src in order and evaluates
// each one against rt's current globals (spec.md §5's `dostring` entry
// point). On the first error it invokes onError with the error value and
// halts without evaluating the remaining forms, matching spec.md §7's
// propagation policy ("the outer dostring caller receives each error via a
// host-supplied callback and halts iteration"). onError may be nil. It
// returns the last value produced, or the error that halted iteration.
func (rt *Runtime) DoString(src string, onError func(Ref)) Ref {
	exit := rt.enter()
	defer exit()
	refs, err := rt.ReadAll(src)
	if err != nil {
		e := rt.Errorf(ErrInvalidSyntax, "%s", err)
		if onError != nil {
			onError(e)
		}
		return e
	}
	var last Ref = RefNil
	for _, ref := range refs {
		last = rt.eval(rt.ExpandMacros(ref))
		if rt.IsError(last) {
			if onError != nil {
				onError(last)
			}
			return last
		}
	}
	return last
}

func (rt *Runtime) eval(ref Ref) Ref {
	c := rt.Pool.At(ref)
	switch c.Kind {
	case KindSymbol:
		return rt.evalSymbol(ref)
	case KindCons:
		return rt.evalForm(ref)
	default:
		return ref // self-evaluating: integers, nil, strings, functions, errors, user-data
	}
}

// evalSymbol implements spec.md §4.5's variable resolution, including the
// `$`-prefixed positional argument references.
func (rt *Runtime) evalSymbol(ref Ref) Ref {
	name := rt.SymbolName(ref)
	if len(name) > 0 && name[0] == '$' {
		return rt.evalPositional(name)
	}
	if v, ok := rt.LookupLexical(rt.Bindings, ref); ok {
		return v
	}
	if v, ok := rt.GlobalsGet(rt.Globals, ref); ok {
		return v
	}
	for _, k := range rt.Constants {
		if k.Name == name {
			return rt.MakeInteger(k.Value)
		}
	}
	return rt.Errorf(ErrUndefinedVariable, "undefined variable: %s", name)
}

func (rt *Runtime) evalPositional(name string) Ref {
	if name == "$" {
		args := make([]Ref, rt.Argc())
		for i := range args {
			args[i] = rt.GetOp(i)
		}
		return rt.MakeList(args)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n >= rt.Argc() {
		return rt.Errorf(ErrUndefinedVariable, "undefined variable: %s", name)
	}
	return rt.GetOp(n)
}

// evalForm dispatches a list form: one of the recognized special forms, or
// a generic call.
func (rt *Runtime) evalForm(ref Ref) Ref {
	head := rt.Car(ref)
	if rt.IsSymbol(head) {
		switch rt.SymbolName(head) {
		case "if":
			return rt.evalIf(ref)
		case "'":
			return rt.Cdr(ref)
		case "`":
			return rt.evalQuasiquote(rt.Cdr(ref))
		case "lambda":
			return rt.evalLambda(ref)
		case "let":
			return rt.evalLet(ref)
		case "macro":
			return rt.evalMacroForm(ref)
		case "quote-symbol":
			return rt.eval(rt.Cdr(ref))
		}
	}
	return rt.evalCall(ref)
}

// evalIf implements `if COND T F`; a missing F defaults to nil.
func (rt *Runtime) evalIf(ref Ref) Ref {
	args := rt.ListToSlice(rt.Cdr(ref))
	if len(args) < 2 || len(args) > 3 {
		return rt.Errorf(ErrInvalidArgc, "if: expected 2 or 3 arguments, got %d", len(args))
	}
	cond := rt.eval(args[0])
	if rt.IsError(cond) {
		return cond
	}
	if rt.Truthy(cond) {
		return rt.eval(args[1])
	}
	if len(args) == 3 {
		return rt.eval(args[2])
	}
	return RefNil
}

// evalQuasiquote traverses form, evaluating any subform shaped `(, . X)`
// (unquote) in place and splicing the list result of `(, . (@ . X))`
// (unquote-splice) into the surrounding list, per spec.md §4.5.
func (rt *Runtime) evalQuasiquote(form Ref) Ref {
	if isUnquote(rt, form) {
		return rt.eval(rt.Cdr(form))
	}
	if !rt.IsCons(form) {
		return form
	}
	return rt.qqList(form)
}

// qqList processes one list cell of a quasiquoted list, expanding an
// unquote-splice element into the result in place of consing it.
func (rt *Runtime) qqList(form Ref) Ref {
	if !rt.IsCons(form) {
		return rt.evalQuasiquote(form)
	}
	elem := rt.Car(form)
	rest := rt.Cdr(form)
	if isUnquoteSplice(rt, elem) {
		spliced := rt.eval(rt.Cdr(rt.Cdr(elem)))
		if rt.IsError(spliced) {
			return spliced
		}
		tail := rt.qqList(rest)
		if rt.IsError(tail) {
			return tail
		}
		return appendList(rt, rt.ListToSlice(spliced), tail)
	}
	var carVal Ref
	if isUnquote(rt, elem) {
		carVal = rt.eval(rt.Cdr(elem))
	} else {
		carVal = rt.evalQuasiquote(elem)
	}
	if rt.IsError(carVal) {
		return carVal
	}
	tail := rt.qqList(rest)
	if rt.IsError(tail) {
		return tail
	}
	return rt.MakeCons(carVal, tail)
}

func isUnquote(rt *Runtime, form Ref) bool {
	return rt.IsCons(form) && rt.IsSymbol(rt.Car(form)) && rt.SymbolName(rt.Car(form)) == ","
}

func isUnquoteSplice(rt *Runtime, form Ref) bool {
	if !isUnquote(rt, form) {
		return false
	}
	arg := rt.Cdr(form)
	return rt.IsCons(arg) && rt.IsSymbol(rt.Car(arg)) && rt.SymbolName(rt.Car(arg)) == "@"
}

func appendList(rt *Runtime, head []Ref, tail Ref) Ref {
	result := tail
	for i := len(head) - 1; i >= 0; i-- {
		unprotect := rt.Protect(result)
		result = rt.MakeCons(head[i], result)
		unprotect()
	}
	return result
}

// evalLambda implements `lambda BODY...`, capturing the current lexical
// bindings into a source-function closure.
func (rt *Runtime) evalLambda(ref Ref) Ref {
	body := rt.Cdr(ref)
	return rt.MakeFunctionSource(body, rt.Bindings)
}

// evalLet implements `let ((S V) …) BODY…`.
func (rt *Runtime) evalLet(ref Ref) Ref {
	rest := rt.Cdr(ref)
	bindingsForm := rt.Car(rest)
	body := rt.Cdr(rest)

	savedBindings := rt.Bindings
	frame := rt.FramePush(savedBindings)
	for b := bindingsForm; b != RefNil; b = rt.Cdr(b) {
		pair := rt.Car(b)
		sym := rt.Car(pair)
		valExpr := rt.Car(rt.Cdr(pair))
		val := rt.eval(valExpr) // evaluated against the outer scope, not sibling bindings
		if rt.IsError(val) {
			return val
		}
		frame = rt.FrameStore(frame, sym, val)
	}

	rt.Bindings = frame
	result := Ref(RefNil)
	for b := body; b != RefNil; b = rt.Cdr(b) {
		result = rt.eval(rt.Car(b))
		if rt.IsError(result) {
			break
		}
	}
	rt.Bindings = savedBindings
	return result
}

// evalMacroForm implements `macro NAME (PARAMS) BODY`.
func (rt *Runtime) evalMacroForm(ref Ref) Ref {
	args := rt.ListToSlice(rt.Cdr(ref))
	if len(args) != 3 {
		return rt.Errorf(ErrInvalidArgc, "macro: expected name, params, body")
	}
	rt.DefineMacro(args[0], args[1], args[2])
	return RefNil
}

// evalCall evaluates a generic call form: head evaluates to a function,
// each argument evaluates left-to-right onto the operand stack, then
// funcall dispatches. If the result is an error whose context is nil, the
// call expression itself is attached as context (spec.md §4.5).
func (rt *Runtime) evalCall(ref Ref) Ref {
	fn := rt.eval(rt.Car(ref))
	if rt.IsError(fn) {
		return fn
	}
	argc := 0
	for a := rt.Cdr(ref); a != RefNil; a = rt.Cdr(a) {
		v := rt.eval(rt.Car(a))
		if rt.IsError(v) {
			for ; argc > 0; argc-- {
				rt.PopOp()
			}
			return v
		}
		rt.PushOp(v)
		argc++
	}
	result := rt.funcall(fn, argc)
	if rt.IsError(result) && rt.ErrorContext(result) == RefNil {
		rt.Pool.At(result).A = ref
	}
	return result
}
