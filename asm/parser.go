package asm

import (
	"fmt"

	"github.com/jacmba/iridium-vm/opcode"
)

// Instruction is a parsed instruction record: optional opcode, optional
// directive, optional label, and up to three operand tokens. Exactly one
// of {Op, Directive} is set — see spec.md §3.
type Instruction struct {
	Line int

	Label    string
	HasLabel bool

	Op    opcode.Opcode
	HasOp bool

	Directive    string
	HasDirective bool

	Operands []Token
}

// parse turns a token stream into a program: a sequence of parsed
// instructions. A label declaration with nothing following it, an operand
// token with no preceding opcode or directive, or leftover unconsumed
// tokens, are all parse errors — spec.md requires instruction+ to
// consume the entire token stream.
func parse(tokens []Token) ([]Instruction, error) {
	var program []Instruction
	i := 0

	for i < len(tokens) {
		var label string
		hasLabel := false

		if tokens[i].Kind == KindLabelDecl {
			label = tokens[i].Name
			hasLabel = true
			i++
			if i >= len(tokens) {
				return nil, fmt.Errorf("asm: line %d: label %q has no instruction to attach to", tokens[i-1].Line, label)
			}
		}

		tok := tokens[i]
		var instr Instruction
		instr.Line = tok.Line
		instr.Label = label
		instr.HasLabel = hasLabel

		switch tok.Kind {
		case KindOp:
			instr.Op = tok.Op
			instr.HasOp = true
			i++
		case KindDirective:
			instr.Directive = tok.Name
			instr.HasDirective = true
			i++
		default:
			return nil, fmt.Errorf("asm: line %d: expected an opcode or directive, found a %s", tok.Line, tok.Kind)
		}

		for len(instr.Operands) < 3 && i < len(tokens) && tokens[i].isOperand() {
			instr.Operands = append(instr.Operands, tokens[i])
			i++
		}

		program = append(program, instr)
	}

	if len(program) == 0 {
		return nil, fmt.Errorf("asm: empty program")
	}

	return program, nil
}
