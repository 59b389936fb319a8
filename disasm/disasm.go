// Package disasm renders bytecode back into assembly-like text, one
// instruction per line, the way go6502's disasm package renders a single
// 6502 instruction.
package disasm

import (
	"fmt"

	"github.com/jacmba/iridium-vm/opcode"
)

// Instruction disassembles the four-byte instruction at code[offset:offset+4]
// and returns a human-readable line plus the offset of the next instruction.
// It never fails: an illegal opcode renders as "illegal" with its raw bytes.
func Instruction(code []byte, offset uint32) (line string, next uint32) {
	instr := code[offset : offset+4]
	op := opcode.FromByte(instr[0])
	next = offset + 4

	switch op.Shape() {
	case opcode.ShapeNone:
		line = op.String()
	case opcode.ShapeReg:
		line = fmt.Sprintf("%-4s $%d", op, instr[1])
	case opcode.ShapeRegImm16:
		imm := uint16(instr[2])<<8 | uint16(instr[3])
		line = fmt.Sprintf("%-4s $%d #%d", op, instr[1], imm)
	case opcode.ShapeRegRegReg:
		line = fmt.Sprintf("%-4s $%d $%d $%d", op, instr[1], instr[2], instr[3])
	case opcode.ShapeRegRegPad:
		line = fmt.Sprintf("%-4s $%d $%d", op, instr[1], instr[2])
	case opcode.ShapeRegPad2:
		line = fmt.Sprintf("%-4s $%d", op, instr[1])
	}

	if op.IsIllegal() {
		line = fmt.Sprintf("illegal %02X %02X %02X %02X", instr[0], instr[1], instr[2], instr[3])
	}

	return line, next
}

// All disassembles an entire code section, four bytes at a time.
func All(code []byte) []string {
	var lines []string
	for offset := uint32(0); int(offset)+4 <= len(code); {
		var line string
		line, offset = Instruction(code, offset)
		lines = append(lines, line)
	}
	return lines
}
