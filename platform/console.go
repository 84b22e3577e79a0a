// Copyright © 2018 The ELPS authors

// Package platform provides concrete lisp.Platform implementations for
// hosting minilisp outside of an embedded game engine: a console-backed
// platform for the CLI and REPL (cmd/, repl/), in the manner of the
// teacher's lisp.RelativeFileSystemLibrary — a concrete collaborator handed
// to lisp.NewRuntime through lisp.WithPlatform, rather than a capability
// baked into the core.
package platform

import (
	"fmt"
	"io"
	"os"

	"github.com/minilisp/minilisp/lisp"
)

// Console is a lisp.Platform backed by an os/io writer, for hosts that run
// on a real terminal instead of the constrained embedded target spec.md
// describes. Scratch buffers are backed by plain Go byte slices capped at
// maxScratch, since a desktop host has no hardware scratch-memory budget to
// enforce but should still exercise the same exhaustion path a constrained
// host would hit.
type Console struct {
	Out        io.Writer
	Width      int
	maxScratch int
	issued     int
}

// NewConsole returns a Console writing to w, reporting width columns (0
// defaults to 80, a conventional terminal fallback), and permitting at
// most maxBuffers live scratch buffers at a time (0 means unbounded).
func NewConsole(w io.Writer, width, maxBuffers int) *Console {
	if width <= 0 {
		width = 80
	}
	return &Console{Out: w, Width: width, maxScratch: maxBuffers}
}

var _ lisp.Platform = (*Console)(nil)

func (c *Console) Fatal(msg string) {
	fmt.Fprintln(os.Stderr, "minilisp: fatal:", msg)
	os.Exit(1)
}

func (c *Console) Sleep(ticks int) {}

func (c *Console) ConsoleWriteLine(line string) {
	fmt.Fprintln(c.Out, line)
}

// ConsoleWidth reports the configured column width.
func (c *Console) ConsoleWidth() int {
	return c.Width
}

func (c *Console) ScratchBuffersRemaining() int {
	if c.maxScratch == 0 {
		return -1
	}
	return c.maxScratch - c.issued
}

func (c *Console) MakeScratchBuffer() (lisp.ScratchBuffer, error) {
	if c.maxScratch != 0 && c.issued >= c.maxScratch {
		return nil, fmt.Errorf("platform: scratch buffer budget exhausted (%d issued)", c.issued)
	}
	c.issued++
	return &consoleBuffer{console: c}, nil
}

type consoleBuffer struct {
	console *Console
	buf     []byte
	freed   bool
}

func (b *consoleBuffer) Bytes() []byte { return b.buf }

func (b *consoleBuffer) Append(p []byte) bool {
	if b.freed {
		return false
	}
	b.buf = append(b.buf, p...)
	return true
}

func (b *consoleBuffer) Release() {
	if b.freed {
		return
	}
	b.freed = true
	b.buf = nil
	b.console.issued--
}
