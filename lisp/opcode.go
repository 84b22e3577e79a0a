// Copyright © 2018 The ELPS authors

package lisp

// Opcode is one instruction of the bytecode VM's instruction stream
// (spec.md §4.6). Multi-byte operands are little-endian, matching the wire
// format used for loadable modules (spec.md §6).
type Opcode byte

const (
	OpPushNil Opcode = iota
	OpPushInt32
	OpPushSmallInt
	OpPush0
	OpPush1
	OpPush2
	OpPushSymbol
	OpPushSymbolRel // relocatable, see OpLoadVarRel
	OpPushString
	OpPushThis
	OpPushList
	OpPushLambda
	OpLoadVar
	OpLoadVarRel // relocatable: operand is a module-local symbol index, rewritten on load
	OpArg
	OpArg0
	OpArg1
	OpArg2
	OpDup
	OpPop
	OpNot
	OpFirst
	OpRest
	OpMakePair
	OpJump
	OpSmallJump
	OpJumpIfFalse
	OpSmallJumpIfFalse
	OpFuncall
	OpFuncall1
	OpFuncall2
	OpFuncall3
	OpTailCall
	OpTailCall1
	OpTailCall2
	OpTailCall3
	OpLexicalFramePush
	OpLexicalFramePop
	OpLexicalDef
	OpLexicalDefRel // relocatable, see OpLoadVarRel
	OpLexicalVarLoad
	OpEarlyRet
	OpRet
	OpFatal
)

var opcodeNames = [...]string{
	OpPushNil:           "push-nil",
	OpPushInt32:         "push-integer",
	OpPushSmallInt:      "push-small-integer",
	OpPush0:             "push-0",
	OpPush1:             "push-1",
	OpPush2:             "push-2",
	OpPushSymbol:        "push-symbol",
	OpPushSymbolRel:     "push-symbol-rel",
	OpPushString:        "push-string",
	OpPushThis:          "push-this",
	OpPushList:          "push-list",
	OpPushLambda:        "push-lambda",
	OpLoadVar:           "load-var",
	OpLoadVarRel:        "load-var-rel",
	OpArg:               "arg",
	OpArg0:              "arg0",
	OpArg1:              "arg1",
	OpArg2:              "arg2",
	OpDup:               "dup",
	OpPop:               "pop",
	OpNot:               "not",
	OpFirst:             "first",
	OpRest:              "rest",
	OpMakePair:          "make-pair",
	OpJump:               "jump",
	OpSmallJump:          "small-jump",
	OpJumpIfFalse:        "jump-if-false",
	OpSmallJumpIfFalse:   "small-jump-if-false",
	OpFuncall:            "funcall",
	OpFuncall1:           "funcall1",
	OpFuncall2:           "funcall2",
	OpFuncall3:           "funcall3",
	OpTailCall:           "tail-call",
	OpTailCall1:          "tail-call1",
	OpTailCall2:          "tail-call2",
	OpTailCall3:          "tail-call3",
	OpLexicalFramePush:   "lexical-frame-push",
	OpLexicalFramePop:    "lexical-frame-pop",
	OpLexicalDef:         "lexical-def",
	OpLexicalDefRel:      "lexical-def-rel",
	OpLexicalVarLoad:     "lexical-var-load",
	OpEarlyRet:           "early-ret",
	OpRet:                "ret",
	OpFatal:              "fatal",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "invalid-opcode"
}

// isRelocatable reports whether op carries a module-local symbol index that
// module loading must rewrite into an interned-name offset (spec.md §4.7).
func (op Opcode) isRelocatable() bool {
	switch op {
	case OpLoadVarRel, OpLexicalDefRel, OpPushSymbolRel:
		return true
	}
	return false
}
