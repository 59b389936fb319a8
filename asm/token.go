package asm

import "github.com/jacmba/iridium-vm/opcode"

// Kind identifies which variant of the token sum type a Token holds.
type Kind int

const (
	KindOp Kind = iota
	KindRegister
	KindInteger
	KindLabelDecl
	KindLabelUsage
	KindDirective
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindOp:
		return "op"
	case KindRegister:
		return "register"
	case KindInteger:
		return "integer"
	case KindLabelDecl:
		return "label declaration"
	case KindLabelUsage:
		return "label usage"
	case KindDirective:
		return "directive"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Token is the lexer's output unit: a tagged variant mirroring spec.md's
// token sum type (Op, Register, IntegerOperand, LabelDeclaration,
// LabelUsage, Directive, IrString). Only the fields relevant to Kind are
// populated.
type Token struct {
	Kind Kind
	Line int

	Op       opcode.Opcode // KindOp
	Register byte          // KindRegister: 0..255, semantically 0..31
	Integer  int32         // KindInteger
	Name     string        // KindLabelDecl, KindLabelUsage, KindDirective
	Text     string        // KindString
}

// isOperand reports whether the token may appear in operand position
// (register, immediate, label reference, or string literal).
func (t Token) isOperand() bool {
	switch t.Kind {
	case KindRegister, KindInteger, KindLabelUsage, KindString:
		return true
	default:
		return false
	}
}
