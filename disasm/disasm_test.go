package disasm_test

import (
	"strings"
	"testing"

	"github.com/jacmba/iridium-vm/asm"
	"github.com/jacmba/iridium-vm/container"
	"github.com/jacmba/iridium-vm/disasm"
)

func TestAllRendersEveryInstruction(t *testing.T) {
	a := asm.NewAssembler()
	out, err := a.Assemble(".data\n.code\nld $0 #100\nadd $0 $1 $2\nhlt\n")
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	code, err := container.Split(out)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}

	lines := disasm.All(code)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "ld") || !strings.Contains(lines[0], "#100") {
		t.Errorf("lines[0] = %q, want it to mention ld and #100", lines[0])
	}
	if !strings.HasPrefix(lines[2], "hlt") {
		t.Errorf("lines[2] = %q, want it to start with hlt", lines[2])
	}
}

func TestInstructionRendersIllegalOpcode(t *testing.T) {
	line, next := disasm.Instruction([]byte{19, 1, 2, 3}, 0)
	if next != 4 {
		t.Errorf("next = %d, want 4", next)
	}
	if !strings.HasPrefix(line, "illegal") {
		t.Errorf("line = %q, want it to start with illegal", line)
	}
}
