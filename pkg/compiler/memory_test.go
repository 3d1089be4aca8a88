package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMemoryMapPlacement(t *testing.T) {
	syms := NewSymbolTable()
	syms.Define("zeta", SymInt, false)
	syms.Define("alpha", SymInt, false)
	syms.Define("done", SymBool, false)
	syms.Define("_t1", SymInt, true)
	syms.Define("_t0", SymInt, true)

	mm, err := NewMemoryMap(syms)
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}

	// Variables take the variable region in name order.
	tests := []struct {
		name string
		want uint16
	}{
		{"alpha", VarBase},
		{"zeta", VarBase + 1},
		{"_t0", TempBase},
		{"_t1", TempBase + 1},
		{"done", FlagBase},
	}
	for _, tc := range tests {
		addr, err := mm.Address(tc.name)
		if err != nil {
			t.Fatalf("Address(%s): %v", tc.name, err)
		}
		if addr != tc.want {
			t.Errorf("Address(%s): expected %d, got %d", tc.name, tc.want, addr)
		}
	}

	if used := mm.TempSlotsUsed(); used != 2 {
		t.Errorf("TempSlotsUsed: expected 2, got %d", used)
	}
}

func TestMemoryMapDeterministic(t *testing.T) {
	// Insertion order must not matter; names decide addresses.
	a := NewSymbolTable()
	a.Define("x", SymInt, false)
	a.Define("y", SymInt, false)

	b := NewSymbolTable()
	b.Define("y", SymInt, false)
	b.Define("x", SymInt, false)

	ma, err := NewMemoryMap(a)
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}
	mb, err := NewMemoryMap(b)
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}

	for _, name := range []string{"x", "y"} {
		addrA, _ := ma.Address(name)
		addrB, _ := mb.Address(name)
		if addrA != addrB {
			t.Errorf("%s: address differs by insertion order: %d vs %d", name, addrA, addrB)
		}
	}
}

func TestMemoryMapConstants(t *testing.T) {
	mm, err := NewMemoryMap(NewSymbolTable())
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}

	addr, err := mm.Address(ZeroConstName)
	if err != nil || addr != ZeroConstAddr {
		t.Errorf("_zero: expected %d, got %d (err %v)", ZeroConstAddr, addr, err)
	}
	addr, err = mm.Address(OneConstName)
	if err != nil || addr != OneConstAddr {
		t.Errorf("_one: expected %d, got %d (err %v)", OneConstAddr, addr, err)
	}
}

func TestMemoryMapUndefinedSymbol(t *testing.T) {
	mm, err := NewMemoryMap(NewSymbolTable())
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}
	_, err = mm.Address("ghost")
	if err == nil {
		t.Fatalf("expected error for unmapped name")
	}
	var undefErr *UndefinedSymbolError
	if !errors.As(err, &undefErr) {
		t.Fatalf("expected *UndefinedSymbolError, got %T: %v", err, err)
	}
	if undefErr.Name != "ghost" {
		t.Errorf("expected name %q, got %q", "ghost", undefErr.Name)
	}
}

func TestMemoryMapCapacity(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		typ        SymbolType
		isTemp     bool
		wantRegion string
		wantCap    int
	}{
		{"variables", VarCap + 1, SymInt, false, "variable", VarCap},
		{"flags", FlagCap + 1, SymBool, false, "flag", FlagCap},
		{"temporaries", TempCap + 1, SymInt, true, "temporary", TempCap},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			syms := NewSymbolTable()
			for i := 0; i < tc.count; i++ {
				syms.Define(fmt.Sprintf("s%03d", i), tc.typ, tc.isTemp)
			}
			_, err := NewMemoryMap(syms)
			if err == nil {
				t.Fatalf("expected capacity error for %d symbols", tc.count)
			}
			var capErr *CapacityError
			if !errors.As(err, &capErr) {
				t.Fatalf("expected *CapacityError, got %T: %v", err, err)
			}
			if capErr.Region != tc.wantRegion || capErr.Cap != tc.wantCap {
				t.Errorf("expected %s/%d, got %s/%d", tc.wantRegion, tc.wantCap, capErr.Region, capErr.Cap)
			}
		})
	}

	// Exactly at capacity still fits.
	syms := NewSymbolTable()
	for i := 0; i < VarCap; i++ {
		syms.Define(fmt.Sprintf("v%03d", i), SymInt, false)
	}
	mm, err := NewMemoryMap(syms)
	if err != nil {
		t.Fatalf("expected %d variables to fit: %v", VarCap, err)
	}
	addr, _ := mm.Address(fmt.Sprintf("v%03d", VarCap-1))
	if addr != VarBase+VarCap-1 {
		t.Errorf("last variable: expected %d, got %d", VarBase+VarCap-1, addr)
	}
}

func TestMemoryMapReport(t *testing.T) {
	syms := NewSymbolTable()
	syms.Define("count", SymInt, false)
	syms.Define("ok", SymBool, false)
	syms.Define("_t0", SymInt, true)

	mm, err := NewMemoryMap(syms)
	if err != nil {
		t.Fatalf("NewMemoryMap: %v", err)
	}
	report := mm.Report()

	for _, want := range []string{
		"variables",
		"1 of 50 used",
		"850  count",
		"900  _t0",
		"930  ok",
		"998  _zero",
		"999  _one",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
