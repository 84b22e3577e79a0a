// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/minilisp/minilisp/lisp"
	"github.com/minilisp/minilisp/platform"
)

// disassembleCmd disassembles a compiled module blob, printing one line per
// instruction through the same Platform.ConsoleWriteLine path the core's
// `disassemble` native uses.
var disassembleCmd = &cobra.Command{
	Use:   "disassemble <module>",
	Short: "Disassemble a compiled module blob",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		rt := lisp.NewRuntime(
			lisp.WithPlatform(platform.NewConsole(os.Stdout, viper.GetInt("console-width"), 0)),
		)

		fn := rt.LoadModule(blob)
		if rt.IsError(fn) {
			fmt.Fprintln(os.Stderr, rt.Error(fn))
			os.Exit(1)
		}

		result := rt.Disassemble(fn)
		if rt.IsError(result) {
			fmt.Fprintln(os.Stderr, rt.Error(result))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(disassembleCmd)
}
