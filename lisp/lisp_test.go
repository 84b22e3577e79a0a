// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/minilisp/minilisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// evalAll reads and evaluates every top-level form in src against a fresh
// runtime, returning the runtime and the last form's result.
func evalAll(t *testing.T, src string) (*lisp.Runtime, lisp.Ref) {
	t.Helper()
	rt := lisp.NewRuntime()
	refs, err := rt.ReadAll(src)
	require.NoError(t, err)
	require.NotEmpty(t, refs)
	var last lisp.Ref
	for _, ref := range refs {
		last = rt.Eval(ref)
	}
	return rt, last
}

// run is evalAll for tests that only care about the formatted result text.
func run(t *testing.T, src string) string {
	t.Helper()
	rt, last := evalAll(t, src)
	require.False(t, rt.IsError(last), "unexpected error: %s", rt.Error(last))
	return rt.Format(last)
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, "6", run(t, `(+ 1 2 3)`))
	assert.Equal(t, "-1", run(t, `(- 5 6)`))
	assert.Equal(t, "-5", run(t, `(- 5)`))
	assert.Equal(t, "24", run(t, `(* 2 3 4)`))
	assert.Equal(t, "2", run(t, `(/ 10 5)`))
}

func TestLetScoping(t *testing.T) {
	assert.Equal(t, "3", run(t, `(let ((x 1) (y 2)) (+ x y))`))
	// parallel-let: y's initializer cannot see x's new binding.
	rt, last := evalAll(t, `(let ((x 1) (y x)) y)`)
	require.True(t, rt.IsError(last))
	assert.Equal(t, lisp.ErrUndefinedVariable, rt.ErrorKind(last))
}

func TestLambdaAndMap(t *testing.T) {
	assert.Equal(t, "(2 3 4)", run(t, `(map (lambda (+ $0 1)) (list 1 2 3))`))
	assert.Equal(t, "(2 4)", run(t, `(filter (lambda (= 0 (- $0 (* 2 (/ $0 2))))) (list 1 2 3 4 5))`))
}

func TestQuasiquote(t *testing.T) {
	assert.Equal(t, "(1 2 3 4 5)", run(t, "`(1 ,(+ 1 1) ,@(list 3 4) 5)"))
}

func TestMacro(t *testing.T) {
	src := `
(macro unless (cond body) ` + "`" + `(if ,cond nil ,body))
(unless nil 42)
`
	assert.Equal(t, "42", run(t, src))
}

func TestMacroSingleFormalExpandsToScalar(t *testing.T) {
	assert.Equal(t, "6", run(t, `(macro inc (x) (+ x 1)) (inc 5)`))
}

func TestMacroVariadicTail(t *testing.T) {
	src := `
(macro mylist (first rest) (cons 'list (cons first rest)))
(mylist 1 2 3)
`
	// rest collects every argument past the first as a quoted list (2 3),
	// so the expansion is (list 1 2 3), which evaluates to the full call
	// argument list.
	assert.Equal(t, "(1 2 3)", run(t, src))
}

// TestTailCallDoesNotOverflow exercises the tree-walking evaluator's
// recursive call path, which has no tail-call elimination: every active
// call keeps its argument on the fixed-size operand stack
// (lisp.OperandStackSize entries), so the depth here stays below that
// capacity. The VM's elimination is tested separately below.
func TestTailCallDoesNotOverflow(t *testing.T) {
	src := `
(set 'count-down (lambda (if (= $0 0) 'done (count-down (- $0 1)))))
(count-down 400)
`
	assert.Equal(t, "done", run(t, src))
}

// TestTailCallEliminationViaCompiledVM exercises the actual invariant
// spec.md §8 asks for: a self-recursive compiled function invoked with an
// arbitrarily large argument never grows the operand stack, because
// OpTailCall rebinds arguments and resets pc instead of recursing.
func TestTailCallEliminationViaCompiledVM(t *testing.T) {
	rt := lisp.NewRuntime()
	form, err := rt.Read(`(lambda (if (= $0 0) 'done (count-down (- $0 1))))`)
	require.NoError(t, err)
	compiledOuter := rt.Compile(form)
	require.False(t, rt.IsError(compiledOuter), rt.Error(compiledOuter))

	fn := rt.Invoke(compiledOuter, nil)
	require.False(t, rt.IsError(fn), rt.Error(fn))

	rt.Globals = rt.GlobalsPut(rt.Globals, rt.MakeSymbol("count-down"), fn)

	before := rt.OpHeight()
	result := rt.Invoke(fn, []lisp.Ref{rt.MakeInteger(1000000)})
	require.False(t, rt.IsError(result), rt.Error(result))
	assert.Equal(t, "done", rt.Format(result))
	assert.Equal(t, before, rt.OpHeight(), "operand stack must return to its starting height")
}

func TestReaderFormatRoundTrip(t *testing.T) {
	rt := lisp.NewRuntime()
	for _, src := range []string{
		`(1 2 3)`,
		`(a b . c)`,
		`nil`,
		`42`,
		`"hello"`,
	} {
		ref, err := rt.Read(src)
		require.NoError(t, err)
		reread, err := rt.Read(rt.Format(ref))
		require.NoError(t, err)
		assert.Equal(t, rt.Format(ref), rt.Format(reread))
	}
}

func TestSymbolIdentity(t *testing.T) {
	rt := lisp.NewRuntime()
	a := rt.MakeSymbol("foo")
	b := rt.MakeSymbol("foo")
	assert.Equal(t, rt.Format(a), rt.Format(b))
}

func TestDivisionByZero(t *testing.T) {
	rt, last := evalAll(t, `(/ 1 0)`)
	require.True(t, rt.IsError(last))
	assert.Equal(t, lisp.ErrInvalidArgumentType, rt.ErrorKind(last))
}

func TestErrorHandlingUndefinedVariable(t *testing.T) {
	rt, last := evalAll(t, `no-such-var`)
	require.True(t, rt.IsError(last))
	assert.Equal(t, lisp.ErrUndefinedVariable, rt.ErrorKind(last))
}
