package asm

import "testing"

func TestSymbolTableFirstMatchLookup(t *testing.T) {
	st := NewSymbolTable()
	st.Add(Symbol{Name: "loop", Offset: 4})
	st.Add(Symbol{Name: "loop", Offset: 40}) // duplicate name, later insertion

	off, ok := st.Lookup("loop")
	if !ok || off != 4 {
		t.Fatalf("Lookup(loop) = %d, %v, want 4, true (first match)", off, ok)
	}
}

func TestSymbolTableSetOffsetRewritesFirstMatch(t *testing.T) {
	st := NewSymbolTable()
	st.Add(Symbol{Name: "msg", Offset: 0})
	st.Add(Symbol{Name: "msg", Offset: 0})

	if ok := st.SetOffset("msg", 99); !ok {
		t.Fatalf("SetOffset(msg) returned false")
	}

	off, ok := st.Lookup("msg")
	if !ok || off != 99 {
		t.Fatalf("Lookup(msg) after SetOffset = %d, %v, want 99, true", off, ok)
	}

	syms := st.Symbols()
	if len(syms) != 2 || syms[1].Offset != 0 {
		t.Fatalf("SetOffset must rewrite only the first match, got %+v", syms)
	}
}

func TestSymbolTableLookupMissing(t *testing.T) {
	st := NewSymbolTable()
	if _, ok := st.Lookup("nope"); ok {
		t.Fatalf("Lookup of undeclared symbol returned ok=true")
	}
}

func TestSymbolTableSymbolsIsDefensiveCopy(t *testing.T) {
	st := NewSymbolTable()
	st.Add(Symbol{Name: "a", Offset: 1})

	syms := st.Symbols()
	syms[0].Offset = 999

	off, _ := st.Lookup("a")
	if off != 1 {
		t.Fatalf("Symbols() copy mutation leaked into table: Lookup(a) = %d, want 1", off)
	}
}
