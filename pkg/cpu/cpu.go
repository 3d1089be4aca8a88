package cpu

import "fmt"

const (
	// MemorySize is the number of addressable words.
	MemorySize = 1000
	// MaxWord is the largest value a memory word or the accumulator can hold.
	MaxWord uint16 = 19999
	// MaxOpcode is the highest valid opcode.
	MaxOpcode uint16 = 10
	// MaxOperand is the largest encodable operand, one below MemorySize.
	MaxOperand uint16 = 999
)

// Opcodes. An instruction word encodes opcode*1000 + operand, so a word is
// at most 10999; anything above that decodes to an invalid opcode.
const (
	OpDATA  uint16 = 0 // no-op; how data words read when executed
	OpLOAD  uint16 = 1 // acc = mem[addr]
	OpADD   uint16 = 2 // acc += mem[addr], saturating at MaxWord
	OpSUB   uint16 = 3 // acc -= mem[addr], saturating at 0
	OpSTORE uint16 = 4 // mem[addr] = acc
	OpJUMP  uint16 = 5 // pc = addr
	OpSKIPZ uint16 = 6 // skip next instruction if mem[addr] == 0
	OpINCR  uint16 = 7 // mem[addr] += 1, wrapping MaxWord -> 0
	OpDECR  uint16 = 8 // mem[addr] -= 1, saturating at 0
	OpZERO  uint16 = 9 // mem[addr] = 0
	OpHALT  uint16 = 10
)

var mnemonics = [...]string{
	OpDATA:  "DATA",
	OpLOAD:  "LOAD",
	OpADD:   "ADD",
	OpSUB:   "SUB",
	OpSTORE: "STORE",
	OpJUMP:  "JUMP",
	OpSKIPZ: "SKIPZ",
	OpINCR:  "INCR",
	OpDECR:  "DECR",
	OpZERO:  "ZERO",
	OpHALT:  "HALT",
}

// Mnemonic returns the assembly mnemonic for an opcode, or "?" if the
// opcode is invalid.
func Mnemonic(opcode uint16) string {
	if opcode > MaxOpcode {
		return "?"
	}
	return mnemonics[opcode]
}

func EncodeInstruction(opcode, operand uint16) uint16 {
	return opcode*1000 + operand
}

func DecodeInstruction(word uint16) (opcode, operand uint16) {
	return word / 1000, word % 1000
}

// CPU is the accumulator machine: one accumulator, a program counter, and
// a flat 1000-word memory. Steps counts executed instructions so callers
// can observe runtime cost.
type CPU struct {
	Acc    uint16
	PC     uint16
	Memory [MemorySize]uint16
	Halted bool
	Steps  int
}

func NewCPU() *CPU {
	return &CPU{}
}

// LoadWords copies a program image into memory starting at address 0 and
// resets the registers. The rest of memory is zeroed.
func (c *CPU) LoadWords(words []uint16) error {
	if len(words) > MemorySize {
		return fmt.Errorf("program is %d words, memory holds %d", len(words), MemorySize)
	}
	c.Memory = [MemorySize]uint16{}
	copy(c.Memory[:], words)
	c.Acc = 0
	c.PC = 0
	c.Halted = false
	c.Steps = 0
	return nil
}

// Step executes one instruction. Stepping a halted CPU does nothing. An
// invalid opcode or a program counter that runs past the end of memory is
// an error; the machine does not guess.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	at := c.PC
	word := c.Memory[at]
	opcode, operand := DecodeInstruction(word)
	c.PC++
	c.Steps++

	switch opcode {
	case OpDATA:
		// Executing a data word is a no-op.

	case OpLOAD:
		c.Acc = c.Memory[operand]

	case OpADD:
		sum := uint32(c.Acc) + uint32(c.Memory[operand])
		if sum > uint32(MaxWord) {
			sum = uint32(MaxWord)
		}
		c.Acc = uint16(sum)

	case OpSUB:
		v := c.Memory[operand]
		if v >= c.Acc {
			c.Acc = 0
		} else {
			c.Acc -= v
		}

	case OpSTORE:
		c.Memory[operand] = c.Acc

	case OpJUMP:
		c.PC = operand

	case OpSKIPZ:
		if c.Memory[operand] == 0 {
			c.PC++
		}

	case OpINCR:
		if c.Memory[operand] >= MaxWord {
			c.Memory[operand] = 0
		} else {
			c.Memory[operand]++
		}

	case OpDECR:
		if c.Memory[operand] > 0 {
			c.Memory[operand]--
		}

	case OpZERO:
		c.Memory[operand] = 0

	case OpHALT:
		c.Halted = true

	default:
		return fmt.Errorf("invalid opcode %d in word %05d at address %d", opcode, word, at)
	}

	if !c.Halted && c.PC >= MemorySize {
		return fmt.Errorf("program counter ran past end of memory (last instruction at %d)", at)
	}
	return nil
}

// Run steps the machine until it halts or maxSteps instructions have
// executed. A program that does not halt within the budget is an error.
func (c *CPU) Run(maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		if c.Halted {
			return nil
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	if c.Halted {
		return nil
	}
	return fmt.Errorf("program did not halt within %d steps", maxSteps)
}
