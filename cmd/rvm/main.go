// Command rvm is the assembler/VM front end: assemble a file to a bytecode
// container, assemble and run one in a single step, or fall back to an
// interactive shell when no file is given, mirroring the teacher's own
// args-vs-interactive split in app/main.go.
package main

import (
	"fmt"
	"os"

	"github.com/jacmba/iridium-vm/asm"
	"github.com/jacmba/iridium-vm/container"
	"github.com/jacmba/iridium-vm/shell"
	"github.com/jacmba/iridium-vm/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	assembleOnly, files := parseArgs(args)

	switch {
	case assembleOnly != "":
		return assembleToStdout(assembleOnly)
	case len(files) > 0:
		return assembleAndRun(files[0])
	default:
		m := vm.NewVM()
		a := asm.NewAssembler()
		s := shell.New(m, a)
		if err := s.Run(os.Stdin, os.Stdout, true); err != nil {
			exitOnError(err)
			return 1
		}
		return 0
	}
}

// parseArgs is a small hand-rolled flag split rather than the standard
// library's flag package, since the only flag is "-a <file>" and the
// remaining bare arguments are file paths, matching the shape of the
// teacher's own args handling in app/main.go.
func parseArgs(args []string) (assembleOnly string, files []string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "-a" && i+1 < len(args) {
			assembleOnly = args[i+1]
			i++
			continue
		}
		files = append(files, args[i])
	}
	return assembleOnly, files
}

func assembleToStdout(filename string) int {
	data, err := os.ReadFile(filename)
	if err != nil {
		exitOnError(err)
		return 1
	}

	a := asm.NewAssembler()
	out, err := a.Assemble(string(data))
	if err != nil {
		exitOnError(err)
		return 1
	}
	for _, d := range a.Diagnostics() {
		fmt.Fprintf(os.Stderr, "%s\n", d.String())
	}

	if _, err := os.Stdout.Write(out); err != nil {
		exitOnError(err)
		return 1
	}
	return 0
}

func assembleAndRun(filename string) int {
	data, err := os.ReadFile(filename)
	if err != nil {
		exitOnError(err)
		return 1
	}

	a := asm.NewAssembler()
	out, err := a.Assemble(string(data))
	if err != nil {
		exitOnError(err)
		return 1
	}

	code, err := container.Split(out)
	if err != nil {
		exitOnError(err)
		return 1
	}

	m := vm.NewVM()
	m.LoadProgram(code)
	if err := m.Run(); err != nil {
		exitOnError(err)
		return 1
	}
	return 0
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
}
