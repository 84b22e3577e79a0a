// Copyright © 2018 The ELPS authors

package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/minilisp/minilisp/lisp"
)

type config struct {
	stdin  io.ReadCloser
	stderr io.WriteCloser
}

// Option configures RunRepl/RunRuntime.
type Option func(*config)

// WithStdin overrides the REPL's input stream.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) { c.stdin = stdin }
}

// WithStderr overrides the REPL's output stream.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) { c.stderr = stderr }
}

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunRepl starts an interactive read-eval-print loop against a freshly
// constructed lisp.Runtime, the entry point cmd/repl.go calls.
func RunRepl(prompt string, rtOpts []lisp.Config, opts ...Option) {
	rt := lisp.NewRuntime(rtOpts...)
	RunRuntime(rt, prompt, opts...)
}

// RunRuntime runs the REPL against an already-configured Runtime, letting
// cmd/ share one Runtime between, e.g., a preloaded module and the
// interactive session.
func RunRuntime(rt *lisp.Runtime, prompt string, opts ...Option) {
	cfg := newConfig(opts...)
	stderr := io.Writer(os.Stderr)
	if cfg.stderr != nil {
		stderr = cfg.stderr
	}

	histFile := historyPath()
	ensureHistoryFilePermissions(histFile)

	rlCfg := &readline.Config{
		Stdout:            stderr,
		Stderr:            stderr,
		Prompt:            prompt,
		HistoryFile:       histFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{rt: rt},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		os.Exit(1)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	cont := strings.Repeat(" ", len(prompt))
	var pending strings.Builder
	depth := 0

	for {
		if pending.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		line, rerr := rl.ReadSlice()
		if rerr == readline.ErrInterrupt {
			pending.Reset()
			depth = 0
			continue
		}
		if rerr != nil {
			break
		}
		depth += parenDelta(line)
		pending.Write(line)
		pending.WriteByte('\n')
		if depth > 0 {
			continue
		}
		depth = 0

		src := pending.String()
		pending.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}

		result := rt.DoString(src, func(errRef lisp.Ref) {
			fmt.Fprintln(stderr, rt.Error(errRef))
		})
		if !rt.IsError(result) {
			fmt.Fprintln(stderr, rt.Format(result))
		}
	}
}

// parenDelta counts the net change in open-paren depth a line of source
// contributes, ignoring parens inside a double-quoted string. The reader is
// a one-shot parser-combinator grammar with no incremental token stream to
// drive a multi-line prompt, so the REPL tracks paren balance itself to
// decide when a form is complete.
func parenDelta(line []byte) int {
	delta := 0
	inString := false
	escaped := false
	for _, b := range line {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '(':
			delta++
		case ')':
			delta--
		case ';':
			return delta // line comment: ignore the remainder
		}
	}
	return delta
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".minilisp_history")
}

// ensureHistoryFilePermissions restricts the REPL history file to
// owner-only read/write, creating it if needed, so command history (which
// can contain anything typed at the prompt) isn't left world-readable.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, ferr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
		if ferr != nil {
			return
		}
		f.Close() //nolint:errcheck // best-effort
		return
	}
	os.Chmod(path, 0o600) //nolint:errcheck // best-effort
}
