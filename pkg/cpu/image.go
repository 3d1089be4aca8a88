package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// The program artifact is a text image: one memory word per line as a
// 5-digit zero-padded decimal, optionally followed by a comment. Line N is
// memory word N. Images shorter than memory are zero-extended.

func stripImageComment(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// ParseImage reads a text image into a memory array. Blank lines and
// comments are ignored for value purposes but still occupy their line's
// address, so partial images load at the right offsets.
func ParseImage(text string) ([MemorySize]uint16, error) {
	var words [MemorySize]uint16

	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > MemorySize {
		return words, fmt.Errorf("image has %d lines, memory holds %d words", len(lines), MemorySize)
	}

	for i, raw := range lines {
		line := stripImageComment(raw)
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return words, fmt.Errorf("bad word %q on line %d", line, i+1)
		}
		if n < 0 || n > int(MaxWord) {
			return words, fmt.Errorf("word %d out of range 0-%d on line %d", n, MaxWord, i+1)
		}
		words[i] = uint16(n)
	}
	return words, nil
}

// RenderImage writes a full memory image as artifact text, annotating each
// nonzero word with its disassembly.
func RenderImage(words [MemorySize]uint16) string {
	var b strings.Builder
	for _, w := range words {
		if w == 0 {
			fmt.Fprintf(&b, "%05d\n", w)
			continue
		}
		fmt.Fprintf(&b, "%05d ; %s\n", w, Disassemble(w))
	}
	return b.String()
}

// Disassemble renders one word as "MNEMONIC operand". HALT's operand is
// ignored by the machine and omitted; an undecodable word is shown raw.
func Disassemble(word uint16) string {
	opcode, operand := DecodeInstruction(word)
	if opcode > MaxOpcode {
		return fmt.Sprintf("? (%05d)", word)
	}
	if opcode == OpHALT {
		return "HALT"
	}
	return fmt.Sprintf("%s %d", Mnemonic(opcode), operand)
}

// ValidateImage statically checks a loaded image the way the emitter
// checks compiled output: some nonzero word, at least one HALT, and every
// word decodable as a valid instruction.
func ValidateImage(words [MemorySize]uint16) error {
	empty := true
	hasHalt := false
	for addr, w := range words {
		if w != 0 {
			empty = false
		}
		opcode, _ := DecodeInstruction(w)
		if opcode > MaxOpcode {
			return fmt.Errorf("invalid opcode %d in word %05d at address %d", opcode, w, addr)
		}
		if opcode == OpHALT {
			hasHalt = true
		}
	}
	if empty {
		return fmt.Errorf("image is empty")
	}
	if !hasHalt {
		return fmt.Errorf("image contains no HALT instruction")
	}
	return nil
}
