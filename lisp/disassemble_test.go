// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"strings"
	"testing"

	"github.com/minilisp/minilisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPlatform struct {
	lisp.NopPlatform
	width int
	lines []string
}

func (p *recordingPlatform) ConsoleWidth() int { return p.width }
func (p *recordingPlatform) ConsoleWriteLine(line string) {
	p.lines = append(p.lines, line)
}

func TestDisassembleWrapsAtConsoleWidth(t *testing.T) {
	plat := &recordingPlatform{width: 24}
	rt := lisp.NewRuntime(lisp.WithPlatform(plat))

	form, err := rt.Read(`(lambda (+ $0 $1 $2 1 2 3 4 5 6 7))`)
	require.NoError(t, err)
	compiled := rt.Compile(form)
	require.False(t, rt.IsError(compiled), rt.Error(compiled))

	result := rt.Disassemble(compiled)
	require.False(t, rt.IsError(result), rt.Error(result))

	require.NotEmpty(t, plat.lines)
	for _, line := range plat.lines {
		assert.LessOrEqual(t, len(line), plat.width,
			"disassembly line %q exceeds configured console width", line)
	}
}

func TestDisassembleRejectsNonFunction(t *testing.T) {
	rt := lisp.NewRuntime()
	result := rt.Disassemble(rt.MakeInteger(5))
	assert.True(t, rt.IsError(result))
}

func TestDisassembleOutputMentionsOpcodes(t *testing.T) {
	plat := &recordingPlatform{width: 80}
	rt := lisp.NewRuntime(lisp.WithPlatform(plat))

	form, err := rt.Read(`(+ 1 2)`)
	require.NoError(t, err)
	compiled := rt.Compile(form)
	require.False(t, rt.IsError(compiled), rt.Error(compiled))

	result := rt.Disassemble(compiled)
	require.False(t, rt.IsError(result), rt.Error(result))

	joined := strings.Join(plat.lines, "\n")
	assert.Contains(t, joined, "funcall")
	assert.Contains(t, joined, "ret")
}
