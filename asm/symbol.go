package asm

// Symbol is a named offset recorded during pass one: either the pass-one
// cursor of a labelled instruction (four bytes for every parsed line before
// it, directive lines included), or the byte address of a labelled .asciiz
// string within the read-only section.
type Symbol struct {
	Name   string
	Offset uint32
}

// SymbolTable is an insertion-ordered, append-only collection of symbols.
// It intentionally does not reject duplicate names: Lookup always returns
// the first-inserted match, and SetOffset rewrites that same first match so
// the two operations stay consistent with each other (spec.md §3/§9).
type SymbolTable struct {
	symbols []Symbol
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Add appends a new symbol to the table.
func (t *SymbolTable) Add(s Symbol) {
	t.symbols = append(t.symbols, s)
}

// Lookup returns the offset of the first symbol with the given name.
func (t *SymbolTable) Lookup(name string) (uint32, bool) {
	for _, s := range t.symbols {
		if s.Name == name {
			return s.Offset, true
		}
	}
	return 0, false
}

// SetOffset rewrites the offset of the first symbol with the given name. It
// reports whether a matching symbol was found.
func (t *SymbolTable) SetOffset(name string, offset uint32) bool {
	for i := range t.symbols {
		if t.symbols[i].Name == name {
			t.symbols[i].Offset = offset
			return true
		}
	}
	return false
}

// Symbols returns a copy of every symbol in insertion order, for use by
// inspection tools like the shell's .symbols command.
func (t *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	return out
}
