// Copyright © 2018 The ELPS authors

package lisp

// Invoke calls fn with args, the host-facing entry point of the
// read/eval/compile/invoke API (spec.md §2): host code that already holds a
// function value (returned from Eval, Compile, or LoadModule) calls it
// without re-entering the reader or evaluator.
func (rt *Runtime) Invoke(fn Ref, args []Ref) Ref {
	for _, a := range args {
		rt.PushOp(a)
	}
	return rt.funcall(fn, len(args))
}

// funcall dispatches a call: argc arguments already sit on top of the
// operand stack. It saves and restores `this`, lexical bindings, and the
// argument-break/count window across the call (spec.md §4.5), so a nested
// call can never corrupt the caller's view of its own arguments.
func (rt *Runtime) funcall(fn Ref, argc int) Ref {
	c := rt.Pool.At(fn)
	if c.Kind != KindFunction {
		for i := 0; i < argc; i++ {
			rt.PopOp()
		}
		return rt.Errorf(ErrValueNotCallable, "value is not callable")
	}

	savedThis := rt.This
	savedBindings := rt.Bindings
	savedBreak := rt.argBreak
	savedCount := rt.argCount
	savedCallerBreak := rt.callerBreak
	savedCallerCount := rt.callerCount

	rt.This = fn
	rt.callerBreak = rt.argBreak
	rt.callerCount = rt.argCount
	rt.argBreak = rt.opTop - argc
	rt.argCount = argc

	var result Ref
	switch c.Mode {
	case FnNative:
		result = rt.callNative(c, argc)
	case FnSource:
		result = rt.callSource(c, argc)
	case FnBytecode:
		result = rt.callBytecode(c, argc)
	default:
		result = rt.Errorf(ErrValueNotCallable, "function cell has unknown mode")
	}

	for i := 0; i < argc; i++ {
		rt.PopOp()
	}

	rt.This = savedThis
	rt.Bindings = savedBindings
	rt.argBreak = savedBreak
	rt.argCount = savedCount
	rt.callerBreak = savedCallerBreak
	rt.callerCount = savedCallerCount

	return result
}

func (rt *Runtime) callNative(c *Cell, argc int) Ref {
	fn := rt.natives[c.N]
	return fn(rt, argc)
}

func (rt *Runtime) callSource(c *Cell, argc int) Ref {
	rt.Bindings = c.B
	result := Ref(RefNil)
	for body := c.A; body != RefNil; body = rt.Cdr(body) {
		result = rt.eval(rt.Car(body))
		if rt.IsError(result) {
			return result
		}
	}
	return result
}

func (rt *Runtime) callBytecode(c *Cell, argc int) Ref {
	rt.Bindings = c.B
	codeCons := c.A
	offset := rt.Pool.At(rt.Car(codeCons)).N
	buf := rt.Pool.At(rt.Cdr(codeCons)).Ext.(ScratchBuffer)
	return rt.runVM(buf.Bytes(), int(offset), c)
}
