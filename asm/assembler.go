// Package asm implements the two-pass assembler described in spec.md: a
// lexer/parser front end, a symbol table, and a driver that resolves labels
// in pass one and emits code in pass two.
package asm

import (
	"errors"
	"fmt"
	"log"

	"github.com/jacmba/iridium-vm/container"
)

// ErrParse is returned when the source text fails to parse into at least
// one well-formed instruction, or leaves unconsumed input behind.
var ErrParse = errors.New("asm: parse error")

// ErrLabelOutOfRange is returned when a resolved label offset doesn't fit
// in the 16-bit field the bytecode encoding allots for it (spec.md §9).
var ErrLabelOutOfRange = errors.New("asm: label address exceeds 16-bit operand range")

// knownSections are the directive names recognized as section headers when
// they appear with no operands.
var knownSections = map[string]bool{
	"data": true,
	"code": true,
}

// Assembler is a stateful object that may be reused across Assemble calls.
// Each call resets its diagnostics, symbol table, and read-only buffer; the
// results of the most recent call stay readable through Diagnostics,
// Symbols, and ReadOnlyData until the next call.
type Assembler struct {
	logger *log.Logger

	diagnostics []Diagnostic
	readOnly    []byte
	symbols     *SymbolTable
}

// NewAssembler returns a ready-to-use Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// SetLogger installs a logger that receives pass-by-pass tracing. A nil
// logger (the default) disables tracing entirely.
func (a *Assembler) SetLogger(l *log.Logger) {
	a.logger = l
}

func (a *Assembler) logf(format string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

// Diagnostics returns the non-fatal diagnostics produced by the most recent
// Assemble call. Fatal problems are not recorded here; Assemble returns them
// as its error.
func (a *Assembler) Diagnostics() []Diagnostic {
	return a.diagnostics
}

// ReadOnlyData returns the accumulated .asciiz string buffer from the most
// recent Assemble call. It is assembler-only metadata: spec.md §9 resolves
// the read-only-section placement question by keeping this data out of the
// container itself.
func (a *Assembler) ReadOnlyData() []byte {
	return a.readOnly
}

// Symbols returns the symbol table built by the most recent Assemble call.
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}

// Assemble translates assembly text into a bytecode container: a 64-byte
// header followed by code, four bytes per instruction. It returns an error
// only for the fatal cases: a parse error, an illegal operand token, an
// undefined label, a label offset above 0xFFFF, or operands that do not fit
// in four bytes. Everything else is reported through Diagnostics and
// assembly still succeeds.
func (a *Assembler) Assemble(text string) ([]byte, error) {
	a.diagnostics = nil
	a.readOnly = nil
	a.symbols = NewSymbolTable()

	tokens, err := newLexer(text).tokenize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	program, err := parse(tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	a.logf("pass 1: extracting labels (%d instructions)", len(program))
	if err := a.extractLabels(program); err != nil {
		return nil, err
	}

	a.logf("pass 2: emitting code")
	code, sectionHeaders, err := a.emit(program)
	if err != nil {
		return nil, err
	}

	if sectionHeaders < 2 {
		a.diagnostics = append(a.diagnostics, Diagnostic{
			Message: "fewer than two section headers observed",
		})
	}

	return container.Wrap(code), nil
}

// extractLabels is assembler pass one: it walks the program maintaining a
// byte cursor that advances by four for every instruction, recording a
// symbol for each label declaration, and handling .asciiz's read-only
// placement as it goes (spec.md §4.3).
func (a *Assembler) extractLabels(program []Instruction) error {
	cursor := uint32(0)
	roCursor := uint32(0)

	for _, instr := range program {
		if instr.HasLabel {
			a.symbols.Add(Symbol{Name: instr.Label, Offset: cursor})
		}

		if instr.HasDirective && instr.Directive == "asciiz" {
			if !instr.HasLabel {
				a.diagnostics = append(a.diagnostics, Diagnostic{
					Line:    instr.Line,
					Message: "asciiz directive has no label; string discarded",
				})
			} else {
				str, ok := firstString(instr.Operands)
				if !ok {
					a.diagnostics = append(a.diagnostics, Diagnostic{
						Line:    instr.Line,
						Message: "asciiz directive has no string operand; string discarded",
					})
				} else {
					a.symbols.SetOffset(instr.Label, roCursor)
					a.readOnly = append(a.readOnly, []byte(str)...)
					a.readOnly = append(a.readOnly, 0)
					roCursor += uint32(len(str)) + 1
					a.logf("asciiz %-16s ro-offset:$%04X len:%d", instr.Label, roCursor-uint32(len(str))-1, len(str)+1)
				}
			}
		}

		cursor += 4
	}

	return nil
}

// emit is assembler pass two: it walks the program again and produces code
// bytes for every opcode-bearing instruction, interpreting operand-less
// directives as section headers and dispatching operand-bearing directives
// by name (spec.md §4.3).
func (a *Assembler) emit(program []Instruction) (code []byte, sectionHeaders int, err error) {
	for _, instr := range program {
		switch {
		case instr.HasOp:
			b, ferr := a.encodeInstruction(instr)
			if ferr != nil {
				return nil, 0, ferr
			}
			a.logf("%04X  %-4s %v", len(code), instr.Op, b)
			code = append(code, b[:]...)

		case instr.HasDirective && len(instr.Operands) == 0:
			if knownSections[instr.Directive] {
				sectionHeaders++
				a.logf("section .%s", instr.Directive)
			} else {
				a.diagnostics = append(a.diagnostics, Diagnostic{
					Line:    instr.Line,
					Message: fmt.Sprintf("unknown section name %q", instr.Directive),
				})
			}

		case instr.HasDirective:
			switch instr.Directive {
			case "asciiz":
				// Already took effect in pass one; re-encountering it
				// here is a deliberate no-op.
			default:
				a.diagnostics = append(a.diagnostics, Diagnostic{
					Line:    instr.Line,
					Message: fmt.Sprintf("unknown directive %q", instr.Directive),
				})
			}
		}
	}

	return code, sectionHeaders, nil
}

// encodeInstruction emits the four-byte code for a single opcode-bearing
// instruction: the opcode byte followed by each operand's bytes in
// declaration order, zero-padded to four bytes (spec.md §4.4).
func (a *Assembler) encodeInstruction(instr Instruction) ([4]byte, error) {
	var out [4]byte
	out[0] = instr.Op.ToByte()

	n := 1
	for _, operand := range instr.Operands {
		switch operand.Kind {
		case KindRegister:
			if n >= 4 {
				return out, fmt.Errorf("asm: line %d: instruction operands exceed four bytes", instr.Line)
			}
			out[n] = operand.Register
			n++

		case KindInteger:
			if n+1 >= 4 {
				return out, fmt.Errorf("asm: line %d: instruction operands exceed four bytes", instr.Line)
			}
			v := uint16(operand.Integer)
			out[n] = byte(v >> 8)
			out[n+1] = byte(v)
			n += 2

		case KindLabelUsage:
			offset, ok := a.symbols.Lookup(operand.Name)
			if !ok {
				return out, fmt.Errorf("asm: line %d: undefined label %q", instr.Line, operand.Name)
			}
			if offset > 0xFFFF {
				return out, fmt.Errorf("%w: label %q resolves to $%X", ErrLabelOutOfRange, operand.Name, offset)
			}
			if n+1 >= 4 {
				return out, fmt.Errorf("asm: line %d: instruction operands exceed four bytes", instr.Line)
			}
			out[n] = byte(offset >> 8)
			out[n+1] = byte(offset)
			n += 2

		default:
			return out, fmt.Errorf("asm: line %d: illegal operand token (%s) in instruction position", instr.Line, operand.Kind)
		}
	}

	return out, nil
}

func firstString(operands []Token) (string, bool) {
	for _, op := range operands {
		if op.Kind == KindString {
			return op.Text, true
		}
	}
	return "", false
}
