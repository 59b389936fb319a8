// Package shell implements an interactive REPL over an assembler and a VM,
// built on the teacher's own host-shell stack: a cmd.Tree of meta-commands,
// prefixtree-backed unambiguous name lookup, and raw-terminal input.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/term"

	"github.com/jacmba/iridium-vm/asm"
	"github.com/jacmba/iridium-vm/container"
	"github.com/jacmba/iridium-vm/disasm"
	"github.com/jacmba/iridium-vm/opcode"
	"github.com/jacmba/iridium-vm/vm"
)

// Shell is a REPL bound to one VM and one Assembler. Every non-meta line
// of input is tried as a line of assembly, appended to the VM's program,
// and single-stepped; meta-commands (prefixed with '.') inspect or control
// the VM instead.
type Shell struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool

	vm       *vm.VM
	asm      *asm.Assembler
	settings *settings
	history  []string
	quit     bool
}

// New returns a Shell bound to the given VM and assembler. Both may be
// freshly constructed or already hold state from a prior session.
func New(m *vm.VM, a *asm.Assembler) *Shell {
	return &Shell{
		vm:       m,
		asm:      a,
		settings: newSettings(),
	}
}

// Run drives the REPL, reading lines from r and writing output to w, until
// the user quits, an input error occurs, or EOF is reached. When
// interactive is true and r is a terminal, raw input mode is enabled for the
// duration of Run, while input is still read a line at a time; this mirrors main.go's
// EnableRawMode/EnableProcessedMode split, falling back to processed mode
// whenever the input isn't backed by a real terminal.
func (s *Shell) Run(r io.Reader, w io.Writer, interactive bool) error {
	s.input = bufio.NewScanner(r)
	s.output = bufio.NewWriter(w)
	s.interactive = interactive

	var restore func()
	if interactive {
		if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if state, err := term.MakeRawInput(int(f.Fd())); err == nil {
				restore = func() { term.Restore(int(f.Fd()), state) }
			}
		}
	}
	if restore != nil {
		defer restore()
	}

	for !s.quit {
		s.prompt()

		line, err := s.readLine()
		if err != nil {
			return nil
		}

		if err := s.process(line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) readLine() (string, error) {
	if s.input.Scan() {
		return s.input.Text(), nil
	}
	if s.input.Err() != nil {
		return "", s.input.Err()
	}
	return "", io.EOF
}

func (s *Shell) prompt() {
	if s.interactive {
		s.printf("rvm> ")
	}
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.output, format, args...)
	s.output.Flush()
}

func (s *Shell) println(args ...any) {
	fmt.Fprintln(s.output, args...)
	s.output.Flush()
}

// process dispatches a single input line: a meta-command if it starts with
// '.', otherwise a line of assembly (with a raw hex-byte fallback).
func (s *Shell) process(line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	s.history = append(s.history, trimmed)

	if strings.HasPrefix(trimmed, ".") {
		return s.processMetaCommand(trimmed[1:])
	}

	return s.processAssemblyLine(trimmed)
}

func (s *Shell) processMetaCommand(line string) error {
	sel, err := cmds.Lookup(line)
	switch {
	case err == cmd.ErrNotFound:
		s.println("Unknown command. Type .help for a list of commands.")
		return nil
	case err == cmd.ErrAmbiguous:
		s.println("Ambiguous command.")
		return nil
	case err != nil:
		s.printf("ERROR: %v\n", err)
		return nil
	}

	if sel.Command.Data == nil && sel.Command.Subtree != nil {
		s.displayCommands(sel.Command.Subtree)
		return nil
	}

	handler := sel.Command.Data.(func(*Shell, cmd.Selection) error)
	return handler(s, sel)
}

// processAssemblyLine tries to assemble a single line of source text and,
// if that produces nothing but an unrecognized mnemonic, falls back to
// treating the line as a sequence of space-separated hex byte pairs
// appended directly to the running program. The grammar never fails to
// parse a bare word (it decodes to the Illegal opcode instead), so the
// fallback is keyed off that outcome rather than a parse error.
func (s *Shell) processAssemblyLine(line string) error {
	if bytes, ok := parseHexBytes(line); ok {
		out, err := s.asm.Assemble(line)
		if err == nil {
			if code, cerr := container.Split(out); cerr == nil && len(code) > 0 && opcode.FromByte(code[0]) != opcode.Illegal {
				for _, b := range code {
					s.vm.AppendByte(b)
				}
				return s.stepOnce()
			}
		}
		for _, b := range bytes {
			s.vm.AppendByte(b)
		}
		return s.stepOnce()
	}

	out, err := s.asm.Assemble(line)
	if err != nil {
		s.printf("Could not assemble: %v\n", err)
		return nil
	}
	code, cerr := container.Split(out)
	if cerr != nil {
		s.printf("%v\n", cerr)
		return nil
	}
	for _, b := range code {
		s.vm.AppendByte(b)
	}
	return s.stepOnce()
}

// parseHexBytes reports whether every whitespace-separated field in line is
// a two-hex-digit byte, returning the decoded bytes if so.
func parseHexBytes(line string) ([]byte, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(fields))
	for _, f := range fields {
		if len(f) != 2 {
			return nil, false
		}
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, false
		}
		out = append(out, byte(v))
	}
	return out, true
}

func (s *Shell) stepOnce() error {
	if err := s.vm.Step(); err != nil {
		s.printf("%v\n", err)
	}
	return nil
}

func (s *Shell) displayCommands(t *cmd.Tree) {
	s.printf("%s commands:\n", t.Title)
	for _, c := range t.Commands {
		if c.Brief != "" {
			s.printf("    %-12s  %s\n", c.Name, c.Brief)
		}
	}
}

func (s *Shell) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		s.displayCommands(cmds)
		return nil
	}
	sel, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err != nil {
		s.printf("%v\n", err)
		return nil
	}
	if sel.Command.Usage != "" {
		s.printf("Usage: %s\n", sel.Command.Usage)
	}
	return nil
}

func (s *Shell) cmdQuit(c cmd.Selection) error {
	s.quit = true
	return nil
}

func (s *Shell) cmdRun(c cmd.Selection) error {
	if err := s.vm.Run(); err != nil {
		s.printf("%v\n", err)
	}
	s.cmdRegisters(c)
	return nil
}

// cmdStep steps the VM count times, printing register state after each
// step only within the last settings.MaxStepLines of the run (with a single
// "..." marking the elided middle), mirroring the teacher's
// cmdStepIn/cmdStepOver elision of long step runs.
func (s *Shell) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		if n, err := strconv.Atoi(c.Args[0]); err == nil {
			count = n
		}
	}

	if count <= 0 {
		return s.cmdRegisters(c)
	}

	for i := count - 1; i >= 0 && !s.vm.Halted; i-- {
		if err := s.vm.Step(); err != nil {
			s.printf("%v\n", err)
			break
		}
		switch {
		case i == s.settings.MaxStepLines:
			s.println("...")
		case i < s.settings.MaxStepLines:
			s.cmdRegisters(c)
		}
	}
	return nil
}

func (s *Shell) cmdRegisters(c cmd.Selection) error {
	s.printf("PC=$%04X  remainder=%d  equal=%v  halted=%v\n", s.vm.PC(), s.vm.Remainder, s.vm.EqualFlag, s.vm.Halted)
	for i := 0; i < vm.NumRegisters; i += 8 {
		s.printf("  ")
		for j := i; j < i+8; j++ {
			s.printf("$%-2d=%-8d ", j, s.vm.Registers[j])
		}
		s.println()
	}
	return nil
}

// cmdProgram disassembles the loaded program, honoring settings.DisasmLines
// as the default number of instructions to show (overridable by an explicit
// argument, like the teacher's cmdDisassemble) and settings.CompactMode to
// drop the leading byte-offset column.
func (s *Shell) cmdProgram(c cmd.Selection) error {
	limit := s.settings.DisasmLines
	if len(c.Args) > 0 {
		if n, err := strconv.Atoi(c.Args[0]); err == nil {
			limit = n
		}
	}

	code := s.vm.Program()
	offset := uint32(0)
	for i := 0; i < limit && int(offset)+4 <= len(code); i++ {
		var line string
		line, offset = disasm.Instruction(code, offset)
		if s.settings.CompactMode {
			s.println(line)
		} else {
			s.printf("%04X  %s\n", offset-4, line)
		}
	}
	return nil
}

// cmdDump renders a slice of the heap starting at settings.DumpOffset (or an
// explicit offset given as the first argument), the number of bytes given by
// settings.DumpBytes (or as a second argument), and advances
// settings.DumpOffset past what was shown so a bare ".dump" continues where
// the previous one left off, mirroring the teacher's NextMemDumpAddr/
// cmdMemoryDump continuation behavior.
func (s *Shell) cmdDump(c cmd.Selection) error {
	offset := s.settings.DumpOffset
	if len(c.Args) > 0 {
		if v, err := strconv.ParseUint(c.Args[0], 0, 32); err == nil {
			offset = uint32(v)
		}
	}

	n := s.settings.DumpBytes
	if len(c.Args) > 1 {
		if v, err := strconv.Atoi(c.Args[1]); err == nil {
			n = v
		}
	}

	heap := s.vm.Heap()
	start := int(offset)
	if start > len(heap) {
		start = len(heap)
	}
	end := start + n
	if end > len(heap) {
		end = len(heap)
	}

	s.printf("heap: %d bytes total, showing $%04X..$%04X\n", len(heap), start, end)
	for i := start; i < end; i += 16 {
		lineEnd := i + 16
		if lineEnd > end {
			lineEnd = end
		}
		s.printf("  %04X  % X\n", i, heap[i:lineEnd])
	}

	s.settings.DumpOffset = uint32(end)
	return nil
}

func (s *Shell) cmdSymbols(c cmd.Selection) error {
	if s.asm.Symbols() == nil {
		s.println("No symbols.")
		return nil
	}
	for _, sym := range s.asm.Symbols().Symbols() {
		s.printf("  %-16s $%04X\n", sym.Name, sym.Offset)
	}
	return nil
}

func (s *Shell) cmdHistory(c cmd.Selection) error {
	for i, line := range s.history {
		s.printf("%4d  %s\n", i+1, line)
	}
	return nil
}

func (s *Shell) cmdClear(c cmd.Selection) error {
	s.vm.Clear()
	s.println("VM cleared.")
	return nil
}

func (s *Shell) cmdLoadFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		s.println("Usage: load_file <filename>")
		return nil
	}
	data, err := os.ReadFile(c.Args[0])
	if err != nil {
		s.printf("%v\n", err)
		return nil
	}
	out, err := s.asm.Assemble(string(data))
	if err != nil {
		s.printf("Failed to assemble %s: %v\n", c.Args[0], err)
		return nil
	}
	code, cerr := container.Split(out)
	if cerr != nil {
		s.printf("%v\n", cerr)
		return nil
	}
	s.vm.LoadProgram(code)
	s.printf("Loaded %s.\n", c.Args[0])
	return nil
}

func (s *Shell) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		s.settings.Display(s.output)
		s.output.Flush()
	case 1:
		s.println("Usage: set <name> <value>")
	default:
		key, value := c.Args[0], strings.Join(c.Args[1:], " ")
		var err error
		switch s.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting %q not found", key)
		default:
			if n, perr := strconv.Atoi(value); perr == nil {
				err = s.settings.Set(key, n)
			} else if b, perr := strconv.ParseBool(value); perr == nil {
				err = s.settings.Set(key, b)
			} else {
				err = s.settings.Set(key, value)
			}
		}
		if err != nil {
			s.printf("%v\n", err)
		} else {
			s.println("Setting updated.")
		}
	}
	return nil
}
