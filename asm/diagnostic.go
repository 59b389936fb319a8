package asm

import "fmt"

// Diagnostic is a single assembler message: a line number, a human-readable
// message, and whether it aborted assembly. Non-fatal diagnostics (unknown
// directive, unknown section name, missing label on .asciiz, the
// fewer-than-two-section-headers warning) accumulate and are still
// available after a successful Assemble call — spec.md §7's permissive
// recovery policy.
type Diagnostic struct {
	Line    int
	Message string
	Fatal   bool
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}
