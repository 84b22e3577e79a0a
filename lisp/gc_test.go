// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/minilisp/minilisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCompressDecompressRoundTrip(t *testing.T) {
	rt := lisp.NewRuntime()

	ref := rt.MakeInteger(42)
	c := rt.Pool.At(ref)
	assert.Equal(t, ref, rt.Pool.Compress(c))
	assert.Same(t, c, rt.Pool.Decompress(ref))

	nilCell := rt.Pool.At(lisp.RefNil)
	assert.Equal(t, lisp.RefNil, rt.Pool.Compress(nilCell))
	assert.Same(t, nilCell, rt.Pool.Decompress(lisp.RefNil))
}

// TestGCReclaimsGarbageAfterDoStringIdempotently runs a program that leaves
// behind both a reachable binding and a pile of unreachable intermediate
// conses, then checks that a GC pass reclaims the garbage, the reachable
// binding survives, and a second back-to-back pass frees nothing further.
func TestGCReclaimsGarbageAfterDoStringIdempotently(t *testing.T) {
	rt := lisp.NewRuntime()

	result := rt.DoString(`(set 'kept (list 1 2 3)) (list 4 5 6 7 8 9)`, nil)
	require.False(t, rt.IsError(result), rt.Error(result))

	rt.GC()
	freeAfterFirst := rt.Pool.Free()
	rt.GC()
	freeAfterSecond := rt.Pool.Free()
	assert.Equal(t, freeAfterFirst, freeAfterSecond,
		"a second consecutive GC pass must not reclaim anything further")

	kept, ok := rt.GlobalsGet(rt.Globals, rt.MakeSymbol("kept"))
	require.True(t, ok, "'kept must still be reachable through globals after sweeping")
	assert.Equal(t, "(1 2 3)", rt.Format(kept))
}

// TestGCReclaimsUnreachableCellsAcrossPoolExhaustion allocates far more
// cons cells than a small pool can hold at once, none of them kept
// reachable, and checks that rt.alloc()'s GC-and-retry path reclaims the
// garbage as it goes rather than degrading to RefOOM, while a Protect()ed
// root held across the whole loop survives untouched. The pool must still
// be large enough for the primitives NewRuntime binds into the globals
// tree (about 220 cells).
func TestGCReclaimsUnreachableCellsAcrossPoolExhaustion(t *testing.T) {
	const poolSize = 512
	rt := lisp.NewRuntime(lisp.WithPoolSize(poolSize))

	root := rt.MakeCons(rt.MakeInteger(777), lisp.RefNil)
	require.NotEqual(t, lisp.RefOOM, root)
	unprotect := rt.Protect(root)
	defer unprotect()

	for i := 0; i < poolSize+1; i++ {
		garbage := rt.MakeCons(rt.MakeInteger(int32(i)), lisp.RefNil)
		require.NotEqual(t, lisp.RefOOM, garbage,
			"allocation %d should have been satisfied by a reclaiming GC pass", i)
	}

	assert.Equal(t, "(777)", rt.Format(root))
}
