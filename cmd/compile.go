// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minilisp/minilisp/lisp"
)

var compileOut string

// compileCmd compiles a source file to a module blob (spec.md §6's wire
// format), the host-side counterpart to the core's `compile` primitive.
var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a minilisp source file to a module blob",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		opts, err := loadRuntimeOptions().configs()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		rt := lisp.NewRuntime(opts...)

		forms, rerr := rt.ReadAll(string(b))
		if rerr != nil {
			fmt.Fprintln(os.Stderr, rerr)
			os.Exit(1)
		}
		if len(forms) != 1 {
			fmt.Fprintln(os.Stderr, "compile: expected exactly one top-level form")
			os.Exit(1)
		}

		compiled := rt.Compile(forms[0])
		if rt.IsError(compiled) {
			fmt.Fprintln(os.Stderr, rt.Error(compiled))
			os.Exit(1)
		}

		blob, derr := rt.DumpModule(compiled)
		if derr != nil {
			fmt.Fprintln(os.Stderr, derr)
			os.Exit(1)
		}

		out := compileOut
		if out == "" {
			out = strings.TrimSuffix(args[0], ".lisp") + ".mod"
		}
		if err := os.WriteFile(out, blob, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "output module path (default: input with a .mod extension)")
}
