// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minilisp/minilisp/internal/trace"
	"github.com/minilisp/minilisp/lisp"
	"github.com/minilisp/minilisp/platform"
	"github.com/minilisp/minilisp/repl"
)

// replCmd represents the repl command.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive minilisp REPL",
	Long: `Start an interactive read-eval-print loop.

Line editing and in-session command history are supported via readline.
Use Ctrl-D to exit, Ctrl-C to abandon the current input.

Example session:
  minilisp> (+ 1 2)
  3
  minilisp> (set 'square (lambda (* $0 $0)))
  <function>
  minilisp> (square 5)
  25`,
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := loadRuntimeOptions().configs()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		opts = append(opts,
			lisp.WithPlatform(platform.NewConsole(os.Stdout, viper.GetInt("console-width"), 0)),
			lisp.WithTracer(trace.NewRecorder()),
		)
		repl.RunRepl(filepath.Base(os.Args[0])+"> ", opts)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
