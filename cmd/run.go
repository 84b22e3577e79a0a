// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minilisp/minilisp/internal/trace"
	"github.com/minilisp/minilisp/lisp"
	"github.com/minilisp/minilisp/platform"
)

var (
	runExpression bool
	runPrint      bool
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run minilisp source",
	Long:  `Run minilisp source supplied as a file path, or as an expression via -e.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src, err := runReadSource(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		opts, err := loadRuntimeOptions().configs()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts = append(opts,
			lisp.WithPlatform(platform.NewConsole(os.Stdout, viper.GetInt("console-width"), 0)),
			lisp.WithTracer(trace.NewRecorder()),
		)
		rt := lisp.NewRuntime(opts...)

		forms, rerr := rt.ReadAll(src)
		if rerr != nil {
			fmt.Fprintln(os.Stderr, rerr)
			os.Exit(1)
		}
		// -e evaluates a one-off expression interactively, so it prints its
		// value the way the REPL would even without -p; a file argument only
		// prints per-form when -p is given explicitly.
		shouldPrint := runPrint || runExpression
		for _, form := range forms {
			result := rt.Eval(form)
			if rt.IsError(result) {
				fmt.Fprintln(os.Stderr, rt.Error(result))
				os.Exit(1)
			}
			if shouldPrint {
				fmt.Println(rt.Format(result))
			}
		}
	},
}

func runReadSource(arg string) (string, error) {
	if runExpression {
		return arg, nil
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runExpression, "expression", "e", false,
		"interpret the argument as a minilisp expression rather than a file path")
	runCmd.Flags().BoolVarP(&runPrint, "print", "p", false,
		"print the value of every top-level form")
}
