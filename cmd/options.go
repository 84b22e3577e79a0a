// Copyright © 2018 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/minilisp/minilisp/lisp"
)

// runtimeOptions collects the pool size, operand-stack capacity,
// intern-region size, and constants-table path viper resolves from flags,
// environment, and $HOME/.minilisp.yaml, and turns them into the
// lisp.Config functional options a Runtime takes.
type runtimeOptions struct {
	poolSize     int
	internSize   int
	stackSize    int
	constantsTSV string
}

func loadRuntimeOptions() *runtimeOptions {
	return &runtimeOptions{
		poolSize:     viper.GetInt("pool-size"),
		internSize:   viper.GetInt("intern-size"),
		stackSize:    viper.GetInt("stack-size"),
		constantsTSV: viper.GetString("constants"),
	}
}

// configs turns the resolved options into lisp.Config values, skipping any
// option left at its zero value so lisp.NewRuntime's own defaults apply.
func (o *runtimeOptions) configs() ([]lisp.Config, error) {
	var opts []lisp.Config
	if o.poolSize > 0 {
		opts = append(opts, lisp.WithPoolSize(o.poolSize))
	}
	if o.internSize > 0 {
		opts = append(opts, lisp.WithInternSize(o.internSize))
	}
	if o.stackSize > 0 {
		opts = append(opts, lisp.WithOperandStackSize(o.stackSize))
	}
	if o.constantsTSV != "" {
		table, err := readConstantsFile(o.constantsTSV)
		if err != nil {
			return nil, err
		}
		opts = append(opts, lisp.WithConstants(table))
	}
	return opts, nil
}

// readConstantsFile parses a host constants table: one `name value` pair
// per line, blank lines and lines starting with `;` ignored. The wire spec
// (spec.md §6) says only that the host supplies such a table, not a file
// format for it, so this format is the CLI's own open-question decision
// (see DESIGN.md).
func readConstantsFile(path string) ([]lisp.Constant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("constants table: %w", err)
	}
	defer f.Close()

	var table []lisp.Constant
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("constants table: %s:%d: expected `name value`", path, lineNo)
		}
		n, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("constants table: %s:%d: %w", path, lineNo, err)
		}
		table = append(table, lisp.Constant{Name: fields[0], Value: int32(n)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}
