// Copyright © 2018 The ELPS authors

package platform_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minilisp/minilisp/platform"
)

func TestConsoleWriteLine(t *testing.T) {
	var buf bytes.Buffer
	c := platform.NewConsole(&buf, 40, 0)
	c.ConsoleWriteLine("hello")
	assert.Equal(t, "hello\n", buf.String())
	assert.Equal(t, 40, c.ConsoleWidth())
}

func TestConsoleDefaultsWidthTo80(t *testing.T) {
	c := platform.NewConsole(&bytes.Buffer{}, 0, 0)
	assert.Equal(t, 80, c.ConsoleWidth())
}

func TestConsoleScratchBufferBudget(t *testing.T) {
	c := platform.NewConsole(&bytes.Buffer{}, 0, 1)
	assert.Equal(t, 1, c.ScratchBuffersRemaining())

	buf1, err := c.MakeScratchBuffer()
	require.NoError(t, err)
	assert.Equal(t, 0, c.ScratchBuffersRemaining())

	_, err = c.MakeScratchBuffer()
	require.Error(t, err)

	buf1.Release()
	assert.Equal(t, 1, c.ScratchBuffersRemaining())

	buf2, err := c.MakeScratchBuffer()
	require.NoError(t, err)
	require.True(t, buf2.Append([]byte("abc")))
	assert.Equal(t, "abc", string(buf2.Bytes()))

	buf2.Release()
	assert.False(t, buf2.Append([]byte("x")), "appending to a released buffer must fail")
}

func TestConsoleUnboundedScratchBuffers(t *testing.T) {
	c := platform.NewConsole(&bytes.Buffer{}, 0, 0)
	assert.Equal(t, -1, c.ScratchBuffersRemaining())
	for i := 0; i < 50; i++ {
		_, err := c.MakeScratchBuffer()
		require.NoError(t, err)
	}
}

func TestConsoleWriteLineMultiple(t *testing.T) {
	var buf bytes.Buffer
	c := platform.NewConsole(&buf, 0, 0)
	c.ConsoleWriteLine("one")
	c.ConsoleWriteLine("two")
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{"one", "two"}, lines)
}
