// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/minilisp/minilisp/lisp"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the
// globals currently bound in rt, against a flat global namespace (this
// runtime has no package-qualified symbols to complete against).
type symbolCompleter struct {
	rt *lisp.Runtime
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		result = append(result, []rune(sym[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	var result []string
	for _, name := range c.rt.GlobalNames() {
		if strings.HasPrefix(name, prefix) {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}
