package compiler

import (
	"fmt"
	"strings"
)

// Memory layout. Four disjoint regions inside the machine's 1000 words,
// plus two fixed constant slots at the top. Everything below CodeCap is
// instruction space; the emitter checks that emitted code fits.
const (
	CodeBase = 0
	CodeCap  = 850 // addresses 0-849

	VarBase = 850
	VarCap  = 50 // addresses 850-899

	TempBase = 900
	TempCap  = 30 // addresses 900-929

	FlagBase = 930
	FlagCap  = 6 // addresses 930-935

	// Well-known constant slots. The artifact format guarantees unset
	// words are zero, so the prologue only has to ZERO one and INCR the
	// other to establish them.
	ZeroConstName = "_zero"
	OneConstName  = "_one"
	ZeroConstAddr = 998
	OneConstAddr  = 999
)

// MemoryMap assigns every symbol a fixed data address. Assignment walks
// the symbol names in lexicographic order and hands out first-free slots
// per region, so the same symbol table always produces the same map.
type MemoryMap struct {
	addrs map[string]uint16

	vars  []string // address order within the variable region
	temps []string
	flags []string
}

// NewMemoryMap places each symbol: temporaries in the temporary region,
// bool variables in the flag region, everything else in the variable
// region. Overflowing a region is a CapacityError.
func NewMemoryMap(syms *SymbolTable) (*MemoryMap, error) {
	m := &MemoryMap{addrs: make(map[string]uint16)}

	for _, name := range syms.Names() {
		sym, _ := syms.Lookup(name)
		switch {
		case sym.IsTemp:
			if len(m.temps) >= TempCap {
				return nil, &CapacityError{Region: "temporary", Cap: TempCap}
			}
			m.addrs[name] = uint16(TempBase + len(m.temps))
			m.temps = append(m.temps, name)

		case sym.Type == SymBool:
			if len(m.flags) >= FlagCap {
				return nil, &CapacityError{Region: "flag", Cap: FlagCap}
			}
			m.addrs[name] = uint16(FlagBase + len(m.flags))
			m.flags = append(m.flags, name)

		default:
			if len(m.vars) >= VarCap {
				return nil, &CapacityError{Region: "variable", Cap: VarCap}
			}
			m.addrs[name] = uint16(VarBase + len(m.vars))
			m.vars = append(m.vars, name)
		}
	}
	return m, nil
}

// Address resolves a name to its data address. Mapped symbols win, so a
// program declaring its own _zero or _one gets an ordinary slot; the two
// constant names fall back to their fixed addresses (the generator never
// resolves them by name, it uses the addresses directly). Anything else
// unknown is an UndefinedSymbolError. This lookup is where an undeclared
// identifier finally surfaces.
func (m *MemoryMap) Address(name string) (uint16, error) {
	if addr, ok := m.addrs[name]; ok {
		return addr, nil
	}
	switch name {
	case ZeroConstName:
		return ZeroConstAddr, nil
	case OneConstName:
		return OneConstAddr, nil
	}
	return 0, &UndefinedSymbolError{Name: name}
}

// TempSlotsUsed reports how many temporary-region slots the mapped
// symbols occupy. The code generator allocates its scratch slots above
// them.
func (m *MemoryMap) TempSlotsUsed() int {
	return len(m.temps)
}

// Report renders the map as a fixed-order table, one region per section.
func (m *MemoryMap) Report() string {
	var sb strings.Builder
	sb.WriteString("Memory map:\n")

	section := func(title string, base, capacity int, names []string) {
		fmt.Fprintf(&sb, "  %-11s (%d-%d)  %d of %d used\n", title, base, base+capacity-1, len(names), capacity)
		for i, name := range names {
			fmt.Fprintf(&sb, "    %3d  %s\n", base+i, name)
		}
	}

	section("variables", VarBase, VarCap, m.vars)
	section("temporaries", TempBase, TempCap, m.temps)
	section("flags", FlagBase, FlagCap, m.flags)
	sb.WriteString("  constants\n")
	fmt.Fprintf(&sb, "    %3d  %s\n", ZeroConstAddr, ZeroConstName)
	fmt.Fprintf(&sb, "    %3d  %s\n", OneConstAddr, OneConstName)
	return sb.String()
}
