// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "minilisp",
	Short: "minilisp — a memory-constrained embedded Lisp",
	Long: `minilisp is a small Lisp interpreter and bytecode VM designed to run inside
a memory-constrained embedded host. This binary hosts it on a normal
desktop console for development: running scripts, compiling and
disassembling bytecode, and an interactive REPL.

Getting started:
  minilisp run file.lisp         Run a Lisp source file
  minilisp run -e '(+ 1 2)'      Evaluate an expression
  minilisp repl                  Start an interactive REPL
  minilisp compile file.lisp     Compile a file to a module blob
  minilisp disassemble file.mod  Disassemble a compiled module`,
}

// Execute adds all child commands to rootCmd and runs it. Called once from
// cmd/minilisp/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.minilisp.yaml)")
	rootCmd.PersistentFlags().Int("pool-size", 0, "cell pool size (0 uses the runtime default)")
	rootCmd.PersistentFlags().Int("intern-size", 0, "intern region size in bytes (0 uses the runtime default)")
	rootCmd.PersistentFlags().Int("stack-size", 0, "operand stack capacity (0 uses the runtime default)")
	rootCmd.PersistentFlags().String("constants", "", "path to a host constants table file")
	rootCmd.PersistentFlags().Int("console-width", 80, "remote console width used by disassemble output")

	viper.BindPFlag("pool-size", rootCmd.PersistentFlags().Lookup("pool-size"))         //nolint:errcheck
	viper.BindPFlag("intern-size", rootCmd.PersistentFlags().Lookup("intern-size"))     //nolint:errcheck
	viper.BindPFlag("stack-size", rootCmd.PersistentFlags().Lookup("stack-size"))       //nolint:errcheck
	viper.BindPFlag("constants", rootCmd.PersistentFlags().Lookup("constants"))         //nolint:errcheck
	viper.BindPFlag("console-width", rootCmd.PersistentFlags().Lookup("console-width")) //nolint:errcheck
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".minilisp")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
