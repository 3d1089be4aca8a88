package compiler

import (
	"fmt"
	"sort"
	"strings"
)

type SymbolType int

const (
	SymInt SymbolType = iota
	SymBool
)

func (t SymbolType) String() string {
	if t == SymBool {
		return "bool"
	}
	return "int"
}

type Symbol struct {
	Name   string
	Type   SymbolType
	IsTemp bool
}

// SymbolTable maps names to symbols. The language has one flat scope:
// a declaration inside a block is visible everywhere, and redeclaring a
// name just updates its type (last declaration wins).
type SymbolTable struct {
	syms map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: make(map[string]*Symbol)}
}

func (s *SymbolTable) Define(name string, typ SymbolType, isTemp bool) *Symbol {
	if sym, ok := s.syms[name]; ok {
		sym.Type = typ
		return sym
	}
	sym := &Symbol{Name: name, Type: typ, IsTemp: isTemp}
	s.syms[name] = sym
	return sym
}

// Lookup returns the symbol and whether it was found.
func (s *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.syms[name]
	return sym, ok
}

func (s *SymbolTable) Len() int {
	return len(s.syms)
}

// Names returns every defined name in lexicographic order. Address
// assignment iterates this, so the order is load-bearing: it is what makes
// compilation deterministic.
func (s *SymbolTable) Names() []string {
	names := make([]string, 0, len(s.syms))
	for name := range s.syms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	sb.WriteString("Symbols:\n")
	if len(s.syms) == 0 {
		sb.WriteString("  (empty)\n")
		return sb.String()
	}
	for _, name := range s.Names() {
		sym := s.syms[name]
		kind := ""
		if sym.IsTemp {
			kind = " (temp)"
		}
		fmt.Fprintf(&sb, "  %-20s %s%s\n", name, sym.Type, kind)
	}
	return sb.String()
}
