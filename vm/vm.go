// Package vm implements the fetch-decode-execute core: 32 signed
// registers, a growable heap, and a dispatch loop modeled on the
// register-direct instruction set in opcode.
package vm

import (
	"errors"
	"fmt"
	"log"

	"github.com/jacmba/iridium-vm/opcode"
)

// NumRegisters is the fixed register file size.
const NumRegisters = 32

// ErrIllegalOpcode is returned by Step when the byte at PC does not decode
// to a known opcode.
var ErrIllegalOpcode = errors.New("vm: illegal opcode")

// ErrDivideByZero is returned by Step when a DIV instruction's divisor
// register holds zero. It halts the VM the same way an illegal opcode
// does, rather than a runtime panic escaping Step.
var ErrDivideByZero = errors.New("vm: divide by zero")

// HaltHandler is implemented by types that want to be notified when the VM
// halts, whether from HLT, an illegal opcode, a divide by zero, or running
// past the end of the program.
type HaltHandler interface {
	OnHalt(vm *VM, err error)
}

// VM is a single register-machine instance. It holds its own register
// file, heap, and program bytes; nothing about it is safe for concurrent
// use from multiple goroutines.
type VM struct {
	Registers [NumRegisters]int32
	Remainder uint32
	EqualFlag bool

	pc      uint32
	program []byte
	heap    []byte

	Halted bool

	logger      *log.Logger
	haltHandler HaltHandler
}

// NewVM returns a VM with all registers, the heap, and the program empty.
func NewVM() *VM {
	return &VM{}
}

// SetLogger installs a logger that receives per-instruction tracing. A nil
// logger (the default) disables tracing entirely.
func (vm *VM) SetLogger(l *log.Logger) {
	vm.logger = l
}

func (vm *VM) logf(format string, args ...interface{}) {
	if vm.logger != nil {
		vm.logger.Printf(format, args...)
	}
}

// AttachHaltHandler installs a handler notified whenever the VM halts.
func (vm *VM) AttachHaltHandler(h HaltHandler) {
	vm.haltHandler = h
}

// LoadProgram replaces the VM's program with code and resets PC to zero.
// code must already have had its container header stripped (container.Split).
func (vm *VM) LoadProgram(code []byte) {
	vm.program = append([]byte(nil), code...)
	vm.pc = 0
	vm.Halted = false
}

// AppendByte appends a single byte to the end of the program. This is how
// the interactive shell grows a program one typed instruction at a time.
func (vm *VM) AppendByte(b byte) {
	vm.program = append(vm.program, b)
}

// Program returns a copy of the VM's current program bytes.
func (vm *VM) Program() []byte {
	return append([]byte(nil), vm.program...)
}

// PC returns the current program counter, a byte offset into Program().
func (vm *VM) PC() uint32 {
	return vm.pc
}

// Heap returns a copy of the VM's heap.
func (vm *VM) Heap() []byte {
	return append([]byte(nil), vm.heap...)
}

// Clear empties the program, resets PC to zero, and clears Halted. The
// registers, the heap, Remainder, and EqualFlag keep their values.
func (vm *VM) Clear() {
	vm.pc = 0
	vm.program = nil
	vm.Halted = false
}

// Run executes instructions until the VM halts or Step returns an error.
func (vm *VM) Run() error {
	for !vm.Halted {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step decodes and executes exactly one instruction. Every instruction
// occupies four bytes; PC advances by four before the instruction executes
// so that jump opcodes can overwrite it with an absolute or relative
// target. Step returns a non-nil error only for an illegal opcode or a
// divide by zero, in both of which cases it also sets Halted.
func (vm *VM) Step() error {
	if vm.Halted {
		return nil
	}

	if int(vm.pc)+4 > len(vm.program) {
		vm.halt(nil)
		return nil
	}

	instr := vm.program[vm.pc : vm.pc+4]
	op := opcode.FromByte(instr[0])
	next := vm.pc + 4
	vm.pc = next

	switch op {
	case opcode.HLT:
		vm.logf("%04X  hlt", next-4)
		vm.halt(nil)

	case opcode.LOAD:
		reg := instr[1]
		imm := int32(uint16(instr[2])<<8 | uint16(instr[3]))
		vm.Registers[reg] = imm
		vm.logf("%04X  ld   $%d #%d", next-4, reg, imm)

	case opcode.ADD:
		r1, r2, r3 := instr[1], instr[2], instr[3]
		vm.Registers[r3] = vm.Registers[r1] + vm.Registers[r2]

	case opcode.SUB:
		r1, r2, r3 := instr[1], instr[2], instr[3]
		vm.Registers[r3] = vm.Registers[r1] - vm.Registers[r2]

	case opcode.MUL:
		r1, r2, r3 := instr[1], instr[2], instr[3]
		vm.Registers[r3] = vm.Registers[r1] * vm.Registers[r2]

	case opcode.DIV:
		r1, r2, r3 := instr[1], instr[2], instr[3]
		divisor := vm.Registers[r2]
		if divisor == 0 {
			err := fmt.Errorf("%w: register $%d at pc $%04X", ErrDivideByZero, r2, next-4)
			vm.halt(err)
			return err
		}
		vm.Registers[r3] = vm.Registers[r1] / divisor
		vm.Remainder = uint32(vm.Registers[r1] % divisor)

	case opcode.JMP:
		reg := instr[1]
		vm.pc = uint32(vm.Registers[reg])

	case opcode.JMPF:
		// JMPF's operand layout is reg(1) only, not the padded 4-byte
		// stride: the relative base is the PC immediately after the
		// opcode and register bytes (orig+2), not after the full
		// instruction (orig+4).
		reg := instr[1]
		vm.pc = (next - 2) + uint32(vm.Registers[reg])

	case opcode.JMPB:
		reg := instr[1]
		vm.pc = (next - 2) - uint32(vm.Registers[reg])

	case opcode.EQ:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] == vm.Registers[r2]

	case opcode.NEQ:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] != vm.Registers[r2]

	case opcode.GT:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] > vm.Registers[r2]

	case opcode.LT:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] < vm.Registers[r2]

	case opcode.GTE:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] >= vm.Registers[r2]

	case opcode.LTE:
		r1, r2 := instr[1], instr[2]
		vm.EqualFlag = vm.Registers[r1] <= vm.Registers[r2]

	case opcode.JEQ:
		reg := instr[1]
		if vm.EqualFlag {
			vm.pc = uint32(vm.Registers[reg])
		}

	case opcode.ALOC:
		reg := instr[1]
		n := vm.Registers[reg]
		if n > 0 {
			vm.heap = append(vm.heap, make([]byte, n)...)
		}
		vm.logf("%04X  aloc $%d -> heap len %d", next-4, reg, len(vm.heap))

	case opcode.INC:
		reg := instr[1]
		vm.Registers[reg]++

	case opcode.DEC:
		reg := instr[1]
		vm.Registers[reg]--

	default:
		err := fmt.Errorf("%w: byte %d at pc $%04X", ErrIllegalOpcode, instr[0], next-4)
		vm.halt(err)
		return err
	}

	return nil
}

func (vm *VM) halt(err error) {
	vm.Halted = true
	if vm.haltHandler != nil {
		vm.haltHandler.OnHalt(vm, err)
	}
}
