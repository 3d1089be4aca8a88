// Package asm assembles mnemonic source for the accumulator machine into
// word images. It exists for hand-written programs and tests; the compiler
// emits words directly and never goes through here.
package asm

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"

	"accum/pkg/cpu"
)

var opcodes = map[string]uint16{
	"DATA":  cpu.OpDATA,
	"LOAD":  cpu.OpLOAD,
	"ADD":   cpu.OpADD,
	"SUB":   cpu.OpSUB,
	"STORE": cpu.OpSTORE,
	"JUMP":  cpu.OpJUMP,
	"SKIPZ": cpu.OpSKIPZ,
	"INCR":  cpu.OpINCR,
	"DECR":  cpu.OpDECR,
	"ZERO":  cpu.OpZERO,
	"HALT":  cpu.OpHALT,
}

// needsOperand lists the address-taking opcodes. DATA and HALT default
// their operand to zero.
var needsOperand = map[uint16]bool{
	cpu.OpLOAD:  true,
	cpu.OpADD:   true,
	cpu.OpSUB:   true,
	cpu.OpSTORE: true,
	cpu.OpJUMP:  true,
	cpu.OpSKIPZ: true,
	cpu.OpINCR:  true,
	cpu.OpDECR:  true,
	cpu.OpZERO:  true,
}

// One source line: an optional label, an optional mnemonic, an optional
// operand. Comments are stripped before the line reaches the parser.
type asmLine struct {
	Label    *string     `[ @Ident ":" ]`
	Mnemonic *string     `[ @Ident ]`
	Operand  *asmOperand `[ @@ ]`

	lineNo int
}

type asmOperand struct {
	Number *int    `  @Int`
	Symbol *string `| @Ident`
}

var lineLexer = lexer.Must(lexer.Regexp(`(\s+)` +
	`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*)` +
	`|(?P<Int>\d+)` +
	`|(?P<Colon>:)`,
))

// Two tokens of lookahead separate "label:" from a bare mnemonic.
var lineParser = participle.MustBuild(&asmLine{},
	participle.Lexer(lineLexer),
	participle.UseLookahead(2),
)

type Assembler struct {
	labels map[string]uint16
}

func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]uint16)}
}

// Assemble translates source into a word image and the resolved label
// map. The image is exactly as long as the emitted code; callers wanting
// a full memory image pad with zeros.
func Assemble(src string) ([]uint16, map[string]uint16, error) {
	return NewAssembler().Assemble(src)
}

func (a *Assembler) Assemble(src string) ([]uint16, map[string]uint16, error) {
	parsed, err := parseLines(src)
	if err != nil {
		return nil, nil, err
	}

	if err := a.pass1(parsed); err != nil {
		return nil, nil, err
	}

	words, err := a.pass2(parsed)
	if err != nil {
		return nil, nil, err
	}
	return words, a.labels, nil
}

func parseLines(src string) ([]asmLine, error) {
	var parsed []asmLine
	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(stripComments(raw))
		if line == "" {
			continue
		}

		var p asmLine
		if err := lineParser.ParseString(line, &p); err != nil {
			return nil, fmt.Errorf("invalid syntax on line %d: %v", lineNo, err)
		}
		if p.Mnemonic == nil && p.Operand != nil {
			return nil, fmt.Errorf("operand without instruction on line %d", lineNo)
		}
		p.lineNo = lineNo
		parsed = append(parsed, p)
	}
	return parsed, nil
}

// pass1 assigns addresses: every instruction occupies one word, and a
// label names the address of the next instruction emitted after it.
func (a *Assembler) pass1(parsed []asmLine) error {
	var address uint16

	for _, p := range parsed {
		if p.Label != nil {
			key := normalizeLabel(*p.Label)
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", *p.Label, p.lineNo)
			}
			if address > cpu.MaxOperand {
				return fmt.Errorf("label '%s' on line %d points past addressable memory", *p.Label, p.lineNo)
			}
			a.labels[key] = address
		}

		if p.Mnemonic == nil {
			continue
		}
		if address >= cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", p.lineNo)
		}
		address++
	}
	return nil
}

func (a *Assembler) pass2(parsed []asmLine) ([]uint16, error) {
	var words []uint16

	for _, p := range parsed {
		if p.Mnemonic == nil {
			continue
		}

		mnemonic := strings.ToUpper(*p.Mnemonic)
		opcode, ok := opcodes[mnemonic]
		if !ok {
			return nil, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, *p.Mnemonic)
		}

		var operand uint16
		switch {
		case p.Operand == nil:
			if needsOperand[opcode] {
				return nil, fmt.Errorf("%s expects an operand on line %d", mnemonic, p.lineNo)
			}

		case p.Operand.Number != nil:
			n := *p.Operand.Number
			if n < 0 || n > int(cpu.MaxOperand) {
				return nil, fmt.Errorf("operand out of range on line %d: %d", p.lineNo, n)
			}
			operand = uint16(n)

		default:
			addr, ok := a.labels[normalizeLabel(*p.Operand.Symbol)]
			if !ok {
				return nil, fmt.Errorf("undefined label '%s' on line %d", *p.Operand.Symbol, p.lineNo)
			}
			operand = addr
		}

		words = append(words, cpu.EncodeInstruction(opcode, operand))
	}
	return words, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// Labels are case-insensitive.
func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
