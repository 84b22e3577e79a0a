// Copyright © 2018 The ELPS authors

package lisp

import "github.com/minilisp/minilisp/internal/trace"

// Config is a function that configures a Runtime during NewRuntime.
type Config func(rt *Runtime)

// WithPoolSize returns a Config that replaces the default-sized value pool
// with one of n cells.
func WithPoolSize(n int) Config {
	return func(rt *Runtime) {
		rt.Pool = NewPool(n)
	}
}

// WithInternSize returns a Config that replaces the default-sized intern
// region with one of n bytes.
func WithInternSize(n int) Config {
	return func(rt *Runtime) {
		rt.Intern = NewIntern(n)
	}
}

// WithOperandStackSize returns a Config that replaces the default-sized
// operand stack with one of n entries.
func WithOperandStackSize(n int) Config {
	return func(rt *Runtime) {
		rt.OperandStack = make([]Ref, n)
	}
}

// WithPlatform returns a Config that attaches the host platform
// collaborator described in spec.md §6.
func WithPlatform(p Platform) Config {
	return func(rt *Runtime) {
		rt.Platform = p
	}
}

// WithConstants returns a Config that registers the host's read-only
// constants table (spec.md §3, §6 "set_constants").
func WithConstants(table []Constant) Config {
	return func(rt *Runtime) {
		rt.Constants = table
	}
}

// WithTracer returns a Config that attaches an OpenTelemetry recorder for
// GC cycles, module loads, and VM step counts.
func WithTracer(r *trace.Recorder) Config {
	return func(rt *Runtime) {
		rt.Tracer = r
	}
}

// WithNativeFunc returns a Config that binds a host-supplied native
// function into the globals tree under name, in the manner of the
// teacher's RegisterDefaultBuiltin (lisp/builtins.go).
func WithNativeFunc(name string, fn NativeFunc) Config {
	return func(rt *Runtime) {
		rt.RegisterNative(name, fn)
	}
}
