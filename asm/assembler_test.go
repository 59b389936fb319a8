package asm

import (
	"bytes"
	"testing"

	"github.com/jacmba/iridium-vm/container"
)

func assembleCode(t *testing.T, text string) []byte {
	t.Helper()
	a := NewAssembler()
	out, err := a.Assemble(text)
	if err != nil {
		t.Fatalf("Assemble(%q) returned error: %v", text, err)
	}
	code, err := container.Split(out)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	return code
}

func TestEncodeLoadImmediate(t *testing.T) {
	code := assembleCode(t, ".data\n.code\nld $0 #100\n")
	want := []byte{1, 0, 0, 100}
	if !bytes.Equal(code, want) {
		t.Errorf("code = %v, want %v", code, want)
	}
}

func TestEncodeEqRegisters(t *testing.T) {
	code := assembleCode(t, ".data\n.code\neq $0 $1\n")
	want := []byte{9, 0, 1, 0}
	if !bytes.Equal(code, want) {
		t.Errorf("code = %v, want %v", code, want)
	}
}

func TestAssembleSevenInstructionProgram(t *testing.T) {
	text := `.data
.code
ld $0 #100
ld $1 #1
ld $2 #0
add $0 $1 $2
sub $0 $1 $2
mul $0 $1 $2
hlt
`
	a := NewAssembler()
	out, err := a.Assemble(text)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(out) != container.HeaderSize+7*4 {
		t.Fatalf("container length = %d, want %d", len(out), container.HeaderSize+7*4)
	}
	if (len(out)-container.HeaderSize)%4 != 0 {
		t.Errorf("code length not a multiple of 4")
	}
}

func TestAssembleReportsFewSectionHeaders(t *testing.T) {
	a := NewAssembler()
	if _, err := a.Assemble("hlt\n"); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	found := false
	for _, d := range a.Diagnostics() {
		if d.Message == "fewer than two section headers observed" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a fewer-than-two-section-headers diagnostic, got %+v", a.Diagnostics())
	}
}

func TestAssembleAsciizReadOnlyData(t *testing.T) {
	a := NewAssembler()
	text := ".data\ngreeting: .asciiz 'hi'\n.code\nhlt\n"
	if _, err := a.Assemble(text); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	want := append([]byte("hi"), 0)
	if !bytes.Equal(a.ReadOnlyData(), want) {
		t.Errorf("ReadOnlyData() = %v, want %v", a.ReadOnlyData(), want)
	}

	off, ok := a.Symbols().Lookup("greeting")
	if !ok || off != 0 {
		t.Errorf("Lookup(greeting) = %d, %v, want 0, true", off, ok)
	}
}

// Pass one advances its cursor by four for every parsed line, directives
// included: .data and .code take offsets 0 and 4, so "loop" lands on 12 even
// though inc is emitted at code offset 4.
func TestAssembleLabelOffsetCountsEveryParsedLine(t *testing.T) {
	a := NewAssembler()
	text := ".data\n.code\nld $0 #1\nloop: inc $0\njmp $0\n"
	if _, err := a.Assemble(text); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	off, ok := a.Symbols().Lookup("loop")
	if !ok || off != 12 {
		t.Errorf("Lookup(loop) = %d, %v, want 12, true", off, ok)
	}
}

func TestAssembleUndefinedLabelIsFatal(t *testing.T) {
	a := NewAssembler()
	_, err := a.Assemble(".data\n.code\nld $0 @nope\n")
	if err == nil {
		t.Fatalf("expected an error for an undefined label usage")
	}
}

func TestAssembleRejectsLabelWithNoInstruction(t *testing.T) {
	a := NewAssembler()
	_, err := a.Assemble("loop:\n")
	if err == nil {
		t.Fatalf("expected a parse error for a dangling label declaration")
	}
}
