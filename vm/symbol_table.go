package vm

import "strings"

// Symbol is either an address (labels, data-section variables) or a
// plain integer literal (constants assigned with `name=value`).
// Data variables additionally carry shadow _SIZE_/_TYPE_ entries
// recorded alongside them in the same table (spec.md §3, Symbol table).
type Symbol struct {
	Value int64
}

// SymbolTable maps lower-cased names to resolved values. Names are
// case-insensitive everywhere in the source dialect, so lookups and
// definitions fold case at the boundary rather than scattering
// strings.ToLower calls through the parser and executor.
type SymbolTable struct {
	symbols map[string]Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]Symbol)}
}

func fold(name string) string { return strings.ToLower(name) }

// Define records name -> value, overwriting any prior value. Directive
// parsing never needs to detect redefinition of data/constant symbols;
// only label redeclaration is checked, and that happens in
// checker.CheckStatic against the instruction stream, not here.
func (t *SymbolTable) Define(name string, value int64) {
	t.symbols[fold(name)] = Symbol{Value: value}
}

// DefineSized additionally records the <name>_SIZE_ and <name>_TYPE_
// shadow entries for a data-section declaration (spec.md §3).
func (t *SymbolTable) DefineSized(name string, addr int64, size int64, typ SymbolType) {
	t.Define(name, addr)
	t.Define(name+"_size_", size)
	t.Define(name+"_type_", int64(typ))
}

// Lookup returns the value bound to name, if any.
func (t *SymbolTable) Lookup(name string) (int64, bool) {
	sym, ok := t.symbols[fold(name)]
	return sym.Value, ok
}

// Size returns the shadow _SIZE_ entry for a data-section symbol.
func (t *SymbolTable) Size(name string) (int64, bool) {
	return t.Lookup(name + "_size_")
}

// Type returns the shadow _TYPE_ entry for a data-section symbol.
func (t *SymbolTable) Type(name string) (SymbolType, bool) {
	v, ok := t.Lookup(name + "_type_")
	if !ok {
		return 0, false
	}
	return SymbolType(v), true
}

// Has reports whether name is bound at all.
func (t *SymbolTable) Has(name string) bool {
	_, ok := t.symbols[fold(name)]
	return ok
}

// Reset clears every binding.
func (t *SymbolTable) Reset() {
	t.symbols = make(map[string]Symbol)
}
