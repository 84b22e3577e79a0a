// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/minilisp/minilisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModuleRoundTrip compiles an expression that references a global by
// name, dumps it to the module wire format, loads it back into a second,
// independent Runtime (so its intern offsets for the same names differ),
// and checks relocation produced the same behavior.
func TestModuleRoundTrip(t *testing.T) {
	src := `(lambda (+ $0 scale))`

	rt1 := lisp.NewRuntime()
	// Force "scale"'s intern offset in rt1 to differ from whatever it would
	// be in a fresh rt2 by interning a few other names first.
	rt1.MakeSymbol("unrelated-a")
	rt1.MakeSymbol("unrelated-b")
	rt1.Globals = rt1.GlobalsPut(rt1.Globals, rt1.MakeSymbol("scale"), rt1.MakeInteger(10))

	form, err := rt1.Read(src)
	require.NoError(t, err)
	compiled := rt1.Compile(form)
	require.False(t, rt1.IsError(compiled), rt1.Error(compiled))

	blob, derr := rt1.DumpModule(compiled)
	require.NoError(t, derr)
	require.NotEmpty(t, blob)

	rt2 := lisp.NewRuntime()
	rt2.Globals = rt2.GlobalsPut(rt2.Globals, rt2.MakeSymbol("scale"), rt2.MakeInteger(10))

	loaded := rt2.LoadModule(blob)
	require.False(t, rt2.IsError(loaded), rt2.Error(loaded))

	fn := rt2.Invoke(loaded, nil)
	require.False(t, rt2.IsError(fn), rt2.Error(fn))

	result := rt2.Invoke(fn, []lisp.Ref{rt2.MakeInteger(5)})
	require.False(t, rt2.IsError(result), rt2.Error(result))
	assert.Equal(t, "15", rt2.Format(result))
}

func TestLoadModuleRejectsTruncatedHeader(t *testing.T) {
	rt := lisp.NewRuntime()
	result := rt.LoadModule([]byte{1, 2})
	assert.True(t, rt.IsError(result))
}

func TestDumpModuleRejectsNonBytecodeFunction(t *testing.T) {
	rt := lisp.NewRuntime()
	fn, ok := rt.GlobalsGet(rt.Globals, rt.MakeSymbol("cons"))
	require.True(t, ok)
	_, err := rt.DumpModule(fn)
	require.Error(t, err)
}
