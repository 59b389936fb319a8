package shell

import (
	"bufio"
	"io"
	"testing"

	"github.com/jacmba/iridium-vm/asm"
	"github.com/jacmba/iridium-vm/vm"
)

func newDiscardWriter() *bufio.Writer {
	return bufio.NewWriter(io.Discard)
}

func TestProcessAssemblyLineStepsVM(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()

	if err := s.process("ld $0 #42"); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if got := s.vm.Registers[0]; got != 42 {
		t.Errorf("$0 = %d, want 42", got)
	}
}

func TestProcessHexFallback(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()

	// byte 1 (LOAD), reg 0, imm16 = 0x000A
	if err := s.process("01 00 00 0A"); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if got := s.vm.Registers[0]; got != 10 {
		t.Errorf("$0 = %d, want 10", got)
	}
}

func TestProcessMetaCommandQuit(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()

	if err := s.process(".quit"); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if !s.quit {
		t.Errorf(".quit did not set quit")
	}
}

func TestProcessUnknownMetaCommand(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()

	if err := s.process(".bogus"); err != nil {
		t.Fatalf("process returned error: %v", err)
	}
}

func TestDumpContinuesFromLastOffset(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()
	s.vm.LoadProgram([]byte{16, 0, 0, 0}) // aloc $0
	s.vm.Registers[0] = 200
	if err := s.vm.Step(); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}

	if err := s.process(".dump 16 32"); err != nil { // offset=16, bytes=32
		t.Fatalf("process returned error: %v", err)
	}
	if s.settings.DumpOffset != 48 {
		t.Fatalf("DumpOffset after first dump = %d, want 48 (16+32)", s.settings.DumpOffset)
	}

	if err := s.process(".dump"); err != nil { // continues from offset 48, default bytes
		t.Fatalf("process returned error: %v", err)
	}
	want := uint32(48) + uint32(s.settings.DumpBytes)
	if s.settings.DumpOffset != want {
		t.Fatalf("DumpOffset after continuation dump = %d, want %d", s.settings.DumpOffset, want)
	}
}

func TestHistoryRecordsLines(t *testing.T) {
	s := New(vm.NewVM(), asm.NewAssembler())
	s.output = newDiscardWriter()

	s.process("ld $0 #1")
	s.process(".registers")

	if len(s.history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(s.history))
	}
}
