// Copyright © 2018 The ELPS authors

package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minilisp/minilisp/lisp"
)

func TestSymbolCompleter(t *testing.T) {
	rt := lisp.NewRuntime()
	rt.Globals = rt.GlobalsPut(rt.Globals, rt.MakeSymbol("filter"), rt.MakeInteger(1))
	c := &symbolCompleter{rt: rt}

	// "fi" should complete to the natively registered "filter" and
	// "fill" primitives.
	candidates, offset := c.Do([]rune("(fi"), 3)
	assert.Equal(t, 2, offset)
	assert.NotEmpty(t, candidates)

	candidates, _ = c.Do([]rune("(zzz-nonexistent"), 16)
	assert.Empty(t, candidates)

	// No prefix at all (cursor right after an open paren) yields no
	// completions rather than the whole global namespace.
	candidates, _ = c.Do([]rune("("), 1)
	assert.Empty(t, candidates)
}
