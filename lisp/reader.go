// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"strconv"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// The reader is built from parser combinators, in the manner of the
// teacher's parser/regexparser/parser.go, rather than a hand-rolled
// character scanner: grammar rules are expressed once as goparsec Parsers
// and the text-to-AST pass never touches the Runtime. A second pass
// (astToRef) walks the resulting generic AST and allocates pool cells,
// which is the point at which the reader needs a Runtime at all.

type nodeKind uint8

const (
	nodeTerm nodeKind = iota
	nodeList
	nodePrefix
)

type readAST struct {
	kind     nodeKind
	children []parsec.ParsecNode
}

func astNode(k nodeKind) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		clean, ok := flattenComments(nodes)
		if !ok {
			return clean[0] // propagate the error node
		}
		if len(clean) == 0 {
			return nil
		}
		return &readAST{kind: k, children: clean}
	}
}

func flattenComments(nodes []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var out []parsec.ParsecNode
	for _, n := range nodes {
		switch v := n.(type) {
		case *parsec.Terminal:
			if v.Name == "COMMENT" {
				continue
			}
			out = append(out, v)
		case error:
			return []parsec.ParsecNode{v}, false
		case []parsec.ParsecNode:
			sub, ok := flattenComments(v)
			if !ok {
				return sub, false
			}
			out = append(out, sub...)
		case nil:
			continue
		default:
			out = append(out, v)
		}
	}
	return out, true
}

var readerGrammar = buildGrammar()

func buildGrammar() parsec.Parser {
	openP := parsec.OrdChoice(nil, parsec.Atom("(", "OPENP"), parsec.Atom("[", "OPENB"))
	closeP := parsec.OrdChoice(nil, parsec.Atom(")", "CLOSEP"), parsec.Atom("]", "CLOSEB"))
	prefixChar := parsec.OrdChoice(nil,
		parsec.Atom("'", "QUOTE"),
		parsec.Atom("`", "QUASI"),
		parsec.Atom(",", "UNQUOTE"),
		parsec.Atom("@", "SPLICE"))
	comment := parsec.Token(`;[^\n]*`, "COMMENT")
	dot := parsec.Atom(".", "DOT")
	hexint := parsec.Token(`0x[0-9a-f]+`, "HEXINT")
	decint := parsec.Token(`-?[0-9]+`, "DECINT")
	symbol := parsec.Token(`[^\s()\[\]";]+`, "SYMBOL")
	str := parsec.String()

	term := parsec.OrdChoice(astNode(nodeTerm), str, hexint, decint, dot, symbol)

	var expr parsec.Parser
	exprList := parsec.Kleene(nil, &expr)
	listForm := parsec.And(astNode(nodeList), openP, exprList, closeP)
	listFormUnmatched := parsec.And(mismatchedParens, openP, exprList, parsec.End())
	prefixForm := parsec.And(astNode(nodePrefix), prefixChar, &expr)

	expr = parsec.OrdChoice(nil, comment, prefixForm, term, listForm, listFormUnmatched)
	return expr
}

func mismatchedParens(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return fmt.Errorf("mismatched parens")
}

// ReadAll reads every top-level datum out of text, applying macro expansion
// to each (spec.md §4.3, "After each successful list read, the macro
// expander runs on the result") before returning it.
func (rt *Runtime) ReadAll(text string) ([]Ref, error) {
	var out []Ref
	s := parsec.NewScanner([]byte(text))
	s = s.TrackLineno()
	for {
		_, s2 := s.SkipWS()
		if s2.Endof() {
			break
		}
		node, next := readerGrammar(s2)
		if node == nil {
			break
		}
		s = next
		ref, err := rt.astToRef(node, true)
		if err != nil {
			return out, err
		}
		if ref == RefNil && node == nil {
			continue
		}
		ref = rt.ExpandMacros(ref)
		out = append(out, ref)
	}
	return out, nil
}

// Read reads a single top-level datum, the entry point described in
// spec.md §4.3.
func (rt *Runtime) Read(text string) (Ref, error) {
	vals, err := rt.ReadAll(text)
	if err != nil {
		return RefNil, err
	}
	if len(vals) == 0 {
		return RefNil, nil
	}
	return vals[0], nil
}

// astToRef converts one parsed node into pool cells. topLevel is true only
// for the outermost call for a given top-level datum; it controls the
// spec.md §4.3 "top-level quote/quasiquote survives" packaging.
func (rt *Runtime) astToRef(node parsec.ParsecNode, topLevel bool) (Ref, error) {
	switch n := node.(type) {
	case nil:
		return RefNil, nil
	case error:
		return rt.Errorf(ErrInvalidSyntax, "%v", n), nil
	case *readAST:
		switch n.kind {
		case nodeTerm:
			return rt.astTerm(n.children[0])
		case nodeList:
			return rt.astList(n.children)
		case nodePrefix:
			return rt.astPrefix(n.children, topLevel)
		}
	case *parsec.Terminal:
		return rt.astTerm(n)
	case []parsec.ParsecNode: // a nil-callback OrdChoice wraps its match in a slice
		if clean, _ := flattenComments(n); len(clean) == 1 {
			return rt.astToRef(clean[0], topLevel)
		}
	}
	return RefNil, fmt.Errorf("reader: unexpected node %T", node)
}

func (rt *Runtime) astTerm(node parsec.ParsecNode) (Ref, error) {
	term, ok := node.(*parsec.Terminal)
	if !ok {
		if s, ok := node.(string); ok { // goparsec's String() parser result
			return rt.MakeString(unquoteGoparsecString(s)), nil
		}
		return RefNil, fmt.Errorf("reader: malformed term")
	}
	switch term.Name {
	case "HEXINT":
		v, err := strconv.ParseInt(term.Value[2:], 16, 64)
		if err != nil {
			return rt.Errorf(ErrInvalidSyntax, "bad hex literal: %s", term.Value), nil
		}
		return rt.MakeInteger(int32(v)), nil
	case "DECINT":
		v, err := strconv.ParseInt(term.Value, 10, 64)
		if err != nil {
			return rt.Errorf(ErrInvalidSyntax, "bad integer literal: %s", term.Value), nil
		}
		return rt.MakeInteger(int32(v)), nil
	case "SYMBOL", "DOT", "QUOTE", "QUASI", "UNQUOTE", "SPLICE":
		if term.Value == "nil" {
			return RefNil, nil
		}
		return rt.MakeSymbol(term.Value), nil
	case "STRING":
		return rt.MakeString(unquoteGoparsecString(term.Value)), nil
	}
	return RefNil, fmt.Errorf("reader: unknown terminal %s", term.Name)
}

func unquoteGoparsecString(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// astList converts a parenthesized list, supporting exactly one dotted-pair
// marker (spec.md §4.3).
func (rt *Runtime) astList(children []parsec.ParsecNode) (Ref, error) {
	var elems []parsec.ParsecNode
	dotIdx := -1
	for _, c := range children {
		t, ok := c.(*parsec.Terminal)
		if a, isAST := c.(*readAST); isAST && a.kind == nodeTerm {
			t, ok = a.children[0].(*parsec.Terminal) // DOT reaches here wrapped as a term
		}
		if ok {
			switch t.Name {
			case "OPENP", "OPENB", "CLOSEP", "CLOSEB":
				continue
			case "DOT":
				if dotIdx != -1 {
					return rt.Errorf(ErrInvalidSyntax, "more than one dot in list"), nil
				}
				dotIdx = len(elems)
				continue
			}
		}
		elems = append(elems, c)
	}
	if dotIdx == -1 {
		refs := make([]Ref, len(elems))
		for i, e := range elems {
			ref, err := rt.astToRef(e, false)
			if err != nil {
				return RefNil, err
			}
			refs[i] = ref
		}
		return rt.MakeList(refs), nil
	}
	if dotIdx != len(elems)-1 {
		return rt.Errorf(ErrInvalidSyntax, "dotted pair must have exactly one trailing value"), nil
	}
	head := elems[:dotIdx]
	tailNode := elems[dotIdx]
	tailRef, err := rt.astToRef(tailNode, false)
	if err != nil {
		return RefNil, err
	}
	result := tailRef
	for i := len(head) - 1; i >= 0; i-- {
		ref, err := rt.astToRef(head[i], false)
		if err != nil {
			return RefNil, err
		}
		unprotect := rt.Protect(result)
		result = rt.MakeCons(ref, result)
		unprotect()
	}
	return result, nil
}

// astPrefix converts a leading '/`/,/@ into the dotted pair `(char . expr)`:
// `'X` reads as `(' . X)`, `,@X` reads as `(, . (@ . X))`, and so on, giving
// the evaluator's quote special form ("returns the tail of the cons") and
// the quasiquote walker a uniform shape to match on regardless of nesting
// depth. At the outermost call for a leading ' or `, the result is
// additionally wrapped as `(quote-symbol . value)` per spec.md §4.3.
func (rt *Runtime) astPrefix(children []parsec.ParsecNode, topLevel bool) (Ref, error) {
	charTerm, ok := children[0].(*parsec.Terminal)
	if !ok {
		return RefNil, fmt.Errorf("reader: malformed prefix form")
	}
	inner, err := rt.astToRef(children[1], false)
	if err != nil {
		return RefNil, err
	}
	unprotect := rt.Protect(inner)
	defer unprotect()
	sym := rt.MakeSymbol(charTerm.Value)
	wrapped := rt.MakeCons(sym, inner)
	if !topLevel {
		return wrapped, nil
	}
	if charTerm.Value != "'" && charTerm.Value != "`" {
		return wrapped, nil
	}
	unprotect2 := rt.Protect(wrapped)
	defer unprotect2()
	return rt.MakeCons(rt.MakeSymbol("quote-symbol"), wrapped), nil
}
