package compiler

import (
	"fmt"
	"strings"

	"accum/pkg/cpu"
)

// Program is the emitted artifact: the full machine image, the resolved
// label map (for listings and tests) and a comment per word for the
// rendered text. Words beyond CodeLen are the zero-filled data space.
type Program struct {
	Words    [cpu.MemorySize]uint16
	Labels   map[string]uint16
	Comments [cpu.MemorySize]string
	CodeLen  int
}

// Emit resolves labels and encodes the instruction list into an image.
// Pass one records the address of every carried label (instruction index
// is address, since each instruction is one word). Pass two encodes, with
// jump targets looked up from pass one.
func Emit(instrs []Instr) (*Program, error) {
	if len(instrs) > CodeCap {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("program needs %d words but the code region holds %d", len(instrs), CodeCap),
		}
	}

	p := &Program{
		Labels:  make(map[string]uint16),
		CodeLen: len(instrs),
	}

	resolved := make(map[*Label]uint16)
	for i, in := range instrs {
		if in.Lbl != nil {
			resolved[in.Lbl] = uint16(i)
			p.Labels[in.Lbl.Name] = uint16(i)
		}
	}

	for i, in := range instrs {
		operand := in.Operand
		if in.Target != nil {
			addr, ok := resolved[in.Target]
			if !ok {
				return nil, &UndefinedLabelError{Name: in.Target.Name}
			}
			operand = addr
		}
		if operand > cpu.MaxOperand {
			return nil, &ValidationError{
				Msg: fmt.Sprintf("operand %d out of range 0-%d at address %d", operand, cpu.MaxOperand, i),
			}
		}
		p.Words[i] = cpu.EncodeInstruction(in.Op, operand)
		p.Comments[i] = in.Comment
	}
	return p, nil
}

// Validate runs the machine's static image checks: some code, a HALT,
// all opcodes defined.
func (p *Program) Validate() error {
	if err := cpu.ValidateImage(p.Words); err != nil {
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

// Render produces the artifact text: one 5-digit word per line for all
// 1000 words, with the emitter's comment where one exists. Two identical
// compilations render byte-identically.
func (p *Program) Render() string {
	var sb strings.Builder
	for i, word := range p.Words {
		if c := p.Comments[i]; c != "" {
			fmt.Fprintf(&sb, "%05d ; %s\n", word, c)
		} else {
			fmt.Fprintf(&sb, "%05d\n", word)
		}
	}
	return sb.String()
}

// Listing dumps only the code prefix, one address per line, for the
// driver's instruction listing mode.
func (p *Program) Listing() string {
	var sb strings.Builder
	for i := 0; i < p.CodeLen; i++ {
		fmt.Fprintf(&sb, "%3d: %05d  %s\n", i, p.Words[i], p.Comments[i])
	}
	return sb.String()
}
