package container

import "testing"

func TestWrapSplitRoundTrip(t *testing.T) {
	code := []byte{1, 0, 0, 100, 9, 0, 1, 0}
	wrapped := Wrap(code)

	if len(wrapped) != HeaderSize+len(code) {
		t.Fatalf("wrapped length = %d, want %d", len(wrapped), HeaderSize+len(code))
	}
	if (len(wrapped)-HeaderSize)%4 != 0 {
		t.Fatalf("(length - header) not a multiple of 4")
	}

	got, err := Split(wrapped)
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if string(got) != string(code) {
		t.Errorf("Split code = %v, want %v", got, code)
	}
}

func TestSplitRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderSize+4)
	if _, err := Split(buf); err == nil {
		t.Error("expected error for zeroed (non-magic) header")
	}
}

func TestSplitRejectsShortBuffer(t *testing.T) {
	if _, err := Split(make([]byte, 10)); err == nil {
		t.Error("expected error for buffer shorter than header")
	}
}

func TestSplitRejectsMisalignedCode(t *testing.T) {
	buf := Wrap([]byte{1, 2, 3})
	if _, err := Split(buf); err == nil {
		t.Error("expected error for code length not a multiple of 4")
	}
}
