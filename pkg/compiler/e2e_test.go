package compiler

import (
	"fmt"
	"testing"

	"accum/pkg/cpu"
)

// runSource compiles source, runs the image to halt and returns the machine
// together with the memory map for reading variables back by name.
func runSource(t *testing.T, source string) (*cpu.CPU, *MemoryMap) {
	t.Helper()
	prog, mm, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	vm := cpu.NewCPU()
	if err := vm.LoadWords(prog.Words[:]); err != nil {
		t.Fatalf("LoadWords failed: %v", err)
	}
	if err := vm.Run(1_000_000); err != nil {
		t.Fatalf("Run failed: %v\nListing:\n%s", err, prog.Listing())
	}
	return vm, mm
}

// varValue reads a named variable out of halted machine memory.
func varValue(t *testing.T, vm *cpu.CPU, mm *MemoryMap, name string) uint16 {
	t.Helper()
	addr, err := mm.Address(name)
	if err != nil {
		t.Fatalf("Address(%s): %v", name, err)
	}
	return vm.Memory[addr]
}

func TestArithmeticE2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected uint16
	}{
		{"2 + 3", 5},
		{"10 + 10", 20},
		{"7 - 3", 4},
		{"3 - 7", 0}, // subtraction saturates at zero
		{"0 - 0", 0},
		{"4 * 5", 20},
		{"6 * 7", 42},
		{"0 * 9", 0},
		{"9 * 0", 0},
		{"1 * 9", 9},
		{"-5", 0}, // no negative numbers; clamps to zero
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 * 10 - 1", 99},
	}
	for _, tt := range tests {
		src := fmt.Sprintf("int r = %s;\nhalt;\n", tt.expr)
		vm, mm := runSource(t, src)
		if got := varValue(t, vm, mm, "r"); got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.expr, tt.expected, got)
		}
	}
}

func TestComparisonE2E(t *testing.T) {
	tests := []struct {
		expr     string
		expected uint16
	}{
		{"5 < 10", 1},
		{"10 < 5", 0},
		{"5 < 5", 0},
		{"5 > 3", 1},
		{"3 > 5", 0},
		{"3 > 3", 0},
		{"1 != 2", 1},
		{"1 != 1", 0},
		{"2 == 2", 1},
		{"2 == 3", 0},
		{"4 >= 4", 1},
		{"4 >= 5", 0},
		{"5 >= 4", 1},
		{"4 <= 4", 1},
		{"5 <= 4", 0},
		{"4 <= 5", 1},
	}
	for _, tt := range tests {
		src := fmt.Sprintf("bool r = %s;\nhalt;\n", tt.expr)
		vm, mm := runSource(t, src)
		if got := varValue(t, vm, mm, "r"); got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.expr, tt.expected, got)
		}
	}
}

func TestRelationalConsistencyE2E(t *testing.T) {
	toFlag := func(b bool) uint16 {
		if b {
			return 1
		}
		return 0
	}

	values := []int{0, 1, 2, 5, 9}
	for _, a := range values {
		for _, b := range values {
			src := fmt.Sprintf(`int a = %d;
int b = %d;
bool gt;
bool lt;
bool eq;
bool ge;
bool le;
gt = a > b;
lt = a < b;
eq = a == b;
ge = a >= b;
le = a <= b;
halt;
`, a, b)
			vm, mm := runSource(t, src)

			gt := varValue(t, vm, mm, "gt")
			lt := varValue(t, vm, mm, "lt")
			eq := varValue(t, vm, mm, "eq")
			ge := varValue(t, vm, mm, "ge")
			le := varValue(t, vm, mm, "le")

			if gt != toFlag(a > b) || lt != toFlag(a < b) || eq != toFlag(a == b) {
				t.Errorf("%d vs %d: gt=%d lt=%d eq=%d", a, b, gt, lt, eq)
			}
			if gt+lt+eq != 1 {
				t.Errorf("%d vs %d: expected exactly one of gt/lt/eq, got %d/%d/%d", a, b, gt, lt, eq)
			}
			if ge != toFlag(a >= b) || le != toFlag(a <= b) {
				t.Errorf("%d vs %d: ge=%d le=%d", a, b, ge, le)
			}
		}
	}
}

func TestEqualityComplementE2E(t *testing.T) {
	pairs := [][2]int{{0, 0}, {0, 1}, {1, 0}, {5, 5}, {5, 7}, {7, 5}, {9, 9}}
	for _, p := range pairs {
		src := fmt.Sprintf(`int a = %d;
int b = %d;
bool e;
bool n;
e = a == b;
n = a != b;
halt;
`, p[0], p[1])
		vm, mm := runSource(t, src)
		e := varValue(t, vm, mm, "e")
		n := varValue(t, vm, mm, "n")
		if e+n != 1 {
			t.Errorf("%d vs %d: == and != are not complements: e=%d n=%d", p[0], p[1], e, n)
		}
		wantE := uint16(0)
		if p[0] == p[1] {
			wantE = 1
		}
		if e != wantE {
			t.Errorf("%d == %d: expected %d, got %d", p[0], p[1], wantE, e)
		}
	}
}

func TestIfElseE2E(t *testing.T) {
	// Then branch.
	vm, mm := runSource(t, "int x = 5;\nint r;\nif (x > 3) { r = 1; } else { r = 2; }\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 1 {
		t.Errorf("then branch: expected 1, got %d", got)
	}

	// Else branch.
	vm, mm = runSource(t, "int x = 2;\nint r;\nif (x > 3) { r = 1; } else { r = 2; }\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 2 {
		t.Errorf("else branch: expected 2, got %d", got)
	}

	// No else, condition false: nothing happens.
	vm, mm = runSource(t, "int x;\nint r;\nif (x > 3) { r = 9; }\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 0 {
		t.Errorf("skipped then: expected 0, got %d", got)
	}

	// Bool variable as condition.
	vm, mm = runSource(t, "bool f = true;\nint r;\nif (f) { r = 7; }\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 7 {
		t.Errorf("bool condition: expected 7, got %d", got)
	}

	// Nested ifs pick the innermost matching branch.
	vm, mm = runSource(t, `int x = 5;
int r;
if (x > 1) {
    if (x > 8) {
        r = 1;
    } else {
        r = 2;
    }
} else {
    r = 3;
}
halt;
`)
	if got := varValue(t, vm, mm, "r"); got != 2 {
		t.Errorf("nested if: expected 2, got %d", got)
	}
}

func TestWhileE2E(t *testing.T) {
	// Accumulate 0+1+2+3+4.
	vm, mm := runSource(t, `int i;
int sum;
while (i < 5) {
    sum = sum + i;
    i = i + 1;
}
halt;
`)
	if got := varValue(t, vm, mm, "sum"); got != 10 {
		t.Errorf("sum: expected 10, got %d", got)
	}
	if got := varValue(t, vm, mm, "i"); got != 5 {
		t.Errorf("i: expected 5, got %d", got)
	}

	// False on entry: zero iterations.
	vm, mm = runSource(t, "int i = 9;\nwhile (i < 5) { i = i + 1; }\nhalt;\n")
	if got := varValue(t, vm, mm, "i"); got != 9 {
		t.Errorf("zero iterations: expected 9, got %d", got)
	}

	// Factorial by countdown.
	vm, mm = runSource(t, `int n = 5;
int f = 1;
while (n > 1) {
    f = f * n;
    n = n - 1;
}
halt;
`)
	if got := varValue(t, vm, mm, "f"); got != 120 {
		t.Errorf("factorial: expected 120, got %d", got)
	}
}

func TestMultiplyCostE2E(t *testing.T) {
	// Multiplication counts the right operand down, so 2*9 steps longer
	// than 9*2 while computing the same product.
	vmA, mmA := runSource(t, "int r = 9 * 2;\nhalt;\n")
	vmB, mmB := runSource(t, "int r = 2 * 9;\nhalt;\n")

	if got := varValue(t, vmA, mmA, "r"); got != 18 {
		t.Errorf("9*2: expected 18, got %d", got)
	}
	if got := varValue(t, vmB, mmB, "r"); got != 18 {
		t.Errorf("2*9: expected 18, got %d", got)
	}
	if vmB.Steps <= vmA.Steps {
		t.Errorf("expected 2*9 (%d steps) to cost more than 9*2 (%d steps)", vmB.Steps, vmA.Steps)
	}
}

func TestSaturationE2E(t *testing.T) {
	// 10^5 overflows the word range and pins at the ceiling.
	vm, mm := runSource(t, "int a = 10;\nint r = a * a * a * a * a;\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != cpu.MaxWord {
		t.Errorf("expected saturation at %d, got %d", cpu.MaxWord, got)
	}
}

func TestHaltStopsExecutionE2E(t *testing.T) {
	// Code after halt assembles but never runs.
	vm, mm := runSource(t, "int x = 1;\nhalt;\nx = 2;\nhalt;\n")
	if got := varValue(t, vm, mm, "x"); got != 1 {
		t.Errorf("expected halt to stop before x = 2, got %d", got)
	}
}

func TestImplicitTrailingHaltE2E(t *testing.T) {
	// A program without halt still halts: the generator appends one.
	vm, mm := runSource(t, "int x = 4;\n")
	if !vm.Halted {
		t.Errorf("expected machine halted")
	}
	if got := varValue(t, vm, mm, "x"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
}

func TestDefaultsAndConstantSlotsE2E(t *testing.T) {
	vm, mm := runSource(t, "int x;\nbool b;\nint r = 2 * 3;\nhalt;\n")
	if got := varValue(t, vm, mm, "x"); got != 0 {
		t.Errorf("x: expected zero default, got %d", got)
	}
	if got := varValue(t, vm, mm, "b"); got != 0 {
		t.Errorf("b: expected zero default, got %d", got)
	}
	if vm.Memory[ZeroConstAddr] != 0 {
		t.Errorf("zero slot: expected 0, got %d", vm.Memory[ZeroConstAddr])
	}
	if vm.Memory[OneConstAddr] != 1 {
		t.Errorf("one slot: expected 1, got %d", vm.Memory[OneConstAddr])
	}
}

func TestConstantNameShadowingE2E(t *testing.T) {
	// A program may declare its own _zero and _one; they get ordinary
	// variable slots and the fixed constant slots stay intact.
	vm, mm := runSource(t, "int _zero = 5;\nint _one = 7;\nint r = _zero + _one;\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 12 {
		t.Errorf("r: expected 12, got %d", got)
	}
	if got := varValue(t, vm, mm, "_zero"); got != 5 {
		t.Errorf("_zero variable: expected 5, got %d", got)
	}
	if vm.Memory[ZeroConstAddr] != 0 || vm.Memory[OneConstAddr] != 1 {
		t.Errorf("constant slots disturbed: zero=%d one=%d",
			vm.Memory[ZeroConstAddr], vm.Memory[OneConstAddr])
	}

	addr, err := mm.Address("_zero")
	if err != nil {
		t.Fatalf("Address(_zero): %v", err)
	}
	if addr < VarBase || addr >= VarBase+VarCap {
		t.Errorf("_zero: expected a variable region slot, got %d", addr)
	}
}

func TestBoolArithmeticE2E(t *testing.T) {
	// No type checking: a bool in arithmetic contributes its 0/1 value.
	vm, mm := runSource(t, "bool f = true;\nint r = f + 3;\nhalt;\n")
	if got := varValue(t, vm, mm, "r"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
}

func TestShowcaseProgramE2E(t *testing.T) {
	// The classic demo: sum of i*i for i in 1..4 = 30, with a flag for
	// whether the total cleared a threshold.
	src := `int i = 1;
int total;
bool crossed;
while (i <= 4) {
    total = total + i * i;
    i = i + 1;
}
if (total > 9) {
    crossed = true;
}
halt;
`
	vm, mm := runSource(t, src)
	if got := varValue(t, vm, mm, "total"); got != 30 {
		t.Errorf("total: expected 30, got %d", got)
	}
	if got := varValue(t, vm, mm, "crossed"); got != 1 {
		t.Errorf("crossed: expected 1, got %d", got)
	}
	if got := varValue(t, vm, mm, "i"); got != 5 {
		t.Errorf("i: expected 5, got %d", got)
	}
}
