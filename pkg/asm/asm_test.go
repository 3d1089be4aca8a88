package asm

import (
	"reflect"
	"strings"
	"testing"

	"accum/pkg/cpu"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"LOAD 850", "LOAD 850"},
		{"LOAD 850 ; a comment", "LOAD 850 "},
		{"LOAD 850 // other style", "LOAD 850 "},
		{"; whole line", ""},
		{"HALT ; first // second", "HALT "},
		{"HALT // first ; second", "HALT "},
	}
	for _, tc := range tests {
		if got := stripComments(tc.input); got != tc.want {
			t.Errorf("stripComments(%q) = %q; want %q", tc.input, got, tc.want)
		}
	}

	if got := normalizeLabel("loop"); got != "LOOP" {
		t.Errorf("normalizeLabel(\"loop\") = %q; want \"LOOP\"", got)
	}
}

func TestAssembleBasic(t *testing.T) {
	src := `
; load, add, store, stop
LOAD 850
ADD 851
STORE 852
HALT
`
	words, labels, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []uint16{1850, 2851, 4852, 10000}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v; want %v", words, want)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestAssembleLabels(t *testing.T) {
	// Forward and backward references resolve through pass one.
	src := `
        JUMP start
loop:   INCR 900
        JUMP done
start:  SKIPZ 901
        JUMP loop
done:   HALT
`
	words, labels, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []uint16{
		cpu.EncodeInstruction(cpu.OpJUMP, 3),  // JUMP start
		cpu.EncodeInstruction(cpu.OpINCR, 900),
		cpu.EncodeInstruction(cpu.OpJUMP, 5),  // JUMP done
		cpu.EncodeInstruction(cpu.OpSKIPZ, 901),
		cpu.EncodeInstruction(cpu.OpJUMP, 1),  // JUMP loop
		cpu.EncodeInstruction(cpu.OpHALT, 0),
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v; want %v", words, want)
	}

	wantLabels := map[string]uint16{"LOOP": 1, "START": 3, "DONE": 5}
	if !reflect.DeepEqual(labels, wantLabels) {
		t.Errorf("labels = %v; want %v", labels, wantLabels)
	}
}

func TestAssembleLabelOnOwnLine(t *testing.T) {
	// A bare label names the next emitted instruction.
	src := `
top:
    DECR 900
    JUMP top
`
	words, labels, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if labels["TOP"] != 0 {
		t.Errorf("TOP: expected address 0, got %d", labels["TOP"])
	}
	if words[1] != cpu.EncodeInstruction(cpu.OpJUMP, 0) {
		t.Errorf("expected JUMP 0, got %05d", words[1])
	}
}

func TestAssembleCaseInsensitive(t *testing.T) {
	src := `
Loop:  incr 900
       jump LOOP
       halt
`
	words, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if words[1] != cpu.EncodeInstruction(cpu.OpJUMP, 0) {
		t.Errorf("expected lowercase jump to resolve Loop, got %05d", words[1])
	}
}

func TestAssembleOperandDefaults(t *testing.T) {
	// DATA and HALT may omit their operand; DATA may also carry a value.
	words, _, err := Assemble("DATA\nDATA 42\nHALT\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []uint16{0, 42, 10000}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v; want %v", words, want)
	}
}

func TestAssembleLineShapes(t *testing.T) {
	// One program covering every line form the grammar accepts: labeled
	// instruction, tab-separated fields, bare mnemonic, bare label, and
	// numeric vs symbolic operands.
	src := "start: LOAD 850\n" +
		"\tADD\t851\n" +
		"STORE 852\n" +
		"loop:\n" +
		"DECR 900\n" +
		"JUMP loop\n" +
		"HALT\n"
	words, labels, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []uint16{
		cpu.EncodeInstruction(cpu.OpLOAD, 850),
		cpu.EncodeInstruction(cpu.OpADD, 851),
		cpu.EncodeInstruction(cpu.OpSTORE, 852),
		cpu.EncodeInstruction(cpu.OpDECR, 900),
		cpu.EncodeInstruction(cpu.OpJUMP, 3),
		cpu.EncodeInstruction(cpu.OpHALT, 0),
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v; want %v", words, want)
	}
	wantLabels := map[string]uint16{"START": 0, "LOOP": 3}
	if !reflect.DeepEqual(labels, wantLabels) {
		t.Errorf("labels = %v; want %v", labels, wantLabels)
	}
}

func TestAssembleRejectsTrailingTokens(t *testing.T) {
	_, _, err := Assemble("LOAD 850 junk\n")
	if err == nil {
		t.Fatalf("expected syntax error for trailing tokens")
	}
	if !strings.Contains(err.Error(), "invalid syntax on line 1") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown instruction", "FLY 900\n", "unknown instruction on line 1: FLY"},
		{"missing operand", "LOAD\n", "LOAD expects an operand on line 1"},
		{"operand too large", "LOAD 1000\n", "operand out of range on line 1: 1000"},
		{"undefined label", "JUMP nowhere\nHALT\n", "undefined label 'nowhere' on line 1"},
		{"duplicate label", "x: HALT\nx: HALT\n", "duplicate label 'x' on line 2"},
		{"operand without instruction", "loop: 42\n", "operand without instruction on line 1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Assemble(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q; want substring %q", err, tc.want)
			}
		})
	}
}

func TestAssembleDuplicateLabelCaseFold(t *testing.T) {
	_, _, err := Assemble("loop: HALT\nLOOP: HALT\n")
	if err == nil {
		t.Fatalf("expected duplicate label error across case")
	}
	if !strings.Contains(err.Error(), "duplicate label") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAssembleProgramTooLarge(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < cpu.MemorySize+1; i++ {
		sb.WriteString("DATA 1\n")
	}
	_, _, err := Assemble(sb.String())
	if err == nil {
		t.Fatalf("expected too-large error")
	}
	if !strings.Contains(err.Error(), "program too large") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAssembleRoundTripThroughCPU(t *testing.T) {
	// Count 930 down from 3 to 0 and halt.
	src := `
        ZERO 930
        INCR 930
        INCR 930
        INCR 930
loop:   SKIPZ 930
        JUMP body
        JUMP done
body:   DECR 930
        JUMP loop
done:   HALT
`
	words, _, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	vm := cpu.NewCPU()
	if err := vm.LoadWords(words); err != nil {
		t.Fatalf("LoadWords: %v", err)
	}
	if err := vm.Run(1000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if vm.Memory[930] != 0 {
		t.Errorf("expected counter drained to 0, got %d", vm.Memory[930])
	}
	if !vm.Halted {
		t.Errorf("expected halt")
	}
}
