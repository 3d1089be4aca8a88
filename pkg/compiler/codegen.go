package compiler

import (
	"fmt"

	"accum/pkg/cpu"
)

// Label marks an instruction address. The code generator hands them out;
// the emitter turns them into addresses. Identity is the pointer, the
// name only feeds listings and the label report.
type Label struct {
	Name string
}

// Instr is one machine instruction before label resolution. Data operands
// are already absolute addresses; only jump targets still point at Labels.
// An instruction carrying Lbl marks the address that label resolves to.
type Instr struct {
	Op      uint16
	Operand uint16
	Target  *Label // jump target, nil for everything but JUMP-to-label
	Lbl     *Label // label carried by this instruction, if any
	Comment string
}

func (in Instr) String() string {
	switch {
	case in.Lbl != nil:
		return in.Lbl.Name + ":"
	case in.Target != nil:
		return fmt.Sprintf("%s @%s", cpu.Mnemonic(in.Op), in.Target.Name)
	case in.Op == cpu.OpHALT:
		return "HALT"
	default:
		return fmt.Sprintf("%s %d", cpu.Mnemonic(in.Op), in.Operand)
	}
}

// CodeGen lowers the block graph into machine instructions. Every
// accumulator value is dead between IR instructions: each template loads
// what it needs and stores its result, so templates compose freely.
type CodeGen struct {
	mm        *MemoryMap
	instrs    []Instr
	nextLabel int

	blockLabels map[*Block]*Label

	// Scratch slots for the synthesized multiply and comparison
	// sequences, allocated from the temporary region above the mapped
	// temps. One slot per purpose, reset at each block boundary.
	scratch     map[string]uint16
	scratchBase uint16
}

func newCodeGen(mm *MemoryMap) *CodeGen {
	return &CodeGen{
		mm:          mm,
		blockLabels: make(map[*Block]*Label),
		scratch:     make(map[string]uint16),
		scratchBase: uint16(TempBase + mm.TempSlotsUsed()),
	}
}

func (cg *CodeGen) newLabel() *Label {
	l := &Label{Name: fmt.Sprintf("L%d", cg.nextLabel)}
	cg.nextLabel++
	return l
}

func (cg *CodeGen) addr(name string) (uint16, error) {
	return cg.mm.Address(name)
}

// scratchSlot returns the temporary-region address reserved for purpose,
// claiming the next free slot on first use within the current block.
func (cg *CodeGen) scratchSlot(purpose string) (uint16, error) {
	if addr, ok := cg.scratch[purpose]; ok {
		return addr, nil
	}
	addr := cg.scratchBase + uint16(len(cg.scratch))
	if addr >= TempBase+TempCap {
		return 0, &CapacityError{Region: "temporary", Cap: TempCap}
	}
	cg.scratch[purpose] = addr
	return addr, nil
}

func (cg *CodeGen) resetScratch() {
	cg.scratch = make(map[string]uint16)
}

func (cg *CodeGen) emitAddr(op, addr uint16, name string) {
	cg.instrs = append(cg.instrs, Instr{
		Op:      op,
		Operand: addr,
		Comment: fmt.Sprintf("%s %s", cpu.Mnemonic(op), name),
	})
}

func (cg *CodeGen) emitJumpTo(lbl *Label) {
	cg.instrs = append(cg.instrs, Instr{
		Op:      cpu.OpJUMP,
		Target:  lbl,
		Comment: fmt.Sprintf("JUMP %s", lbl.Name),
	})
}

// emitLabel places lbl on a DATA no-op of its own. Carrying every label,
// block or internal, on a dedicated word means two labels can never
// compete for one address.
func (cg *CodeGen) emitLabel(lbl *Label) {
	cg.instrs = append(cg.instrs, Instr{
		Op:      cpu.OpDATA,
		Lbl:     lbl,
		Comment: lbl.Name + ":",
	})
}

func (cg *CodeGen) emitHalt() {
	cg.instrs = append(cg.instrs, Instr{Op: cpu.OpHALT, Comment: "HALT"})
}

// GenCode lowers the whole program. Block order is program order; the
// prologue establishing the constant slots runs first, and a HALT is
// appended if the program does not already end in one.
func GenCode(ir *IRProgram, mm *MemoryMap) ([]Instr, error) {
	cg := newCodeGen(mm)
	for _, b := range ir.Blocks {
		cg.blockLabels[b] = &Label{Name: b.Name}
	}

	// The artifact format zero-fills unset words, so the zero slot only
	// needs clearing and the one slot a single increment.
	cg.emitAddr(cpu.OpZERO, ZeroConstAddr, ZeroConstName)
	cg.emitAddr(cpu.OpINCR, OneConstAddr, OneConstName)

	for _, b := range ir.Blocks {
		cg.resetScratch()
		cg.emitLabel(cg.blockLabels[b])
		for _, in := range b.Instrs {
			if err := cg.genInstr(in); err != nil {
				return nil, err
			}
		}
	}

	if n := len(cg.instrs); n == 0 || cg.instrs[n-1].Op != cpu.OpHALT {
		cg.emitHalt()
	}
	return cg.instrs, nil
}

func (cg *CodeGen) genInstr(instr IRInstr) error {
	switch in := instr.(type) {

	case *ConstInstr:
		return cg.genConst(in)

	case *AssignInstr:
		src, err := cg.addr(in.Src)
		if err != nil {
			return err
		}
		dest, err := cg.addr(in.Dest)
		if err != nil {
			return err
		}
		cg.emitAddr(cpu.OpLOAD, src, in.Src)
		cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
		return nil

	case *UnOpInstr:
		return cg.genUnOp(in)

	case *BinOpInstr:
		return cg.genBinOp(in)

	case *JumpInstr:
		cg.emitJumpTo(cg.blockLabels[in.Target])
		return nil

	case *CondJumpInstr:
		cond, err := cg.addr(in.Cond)
		if err != nil {
			return err
		}
		// Nonzero falls through the skip and takes the jump.
		cg.emitAddr(cpu.OpSKIPZ, cond, in.Cond)
		cg.emitJumpTo(cg.blockLabels[in.Target])
		return nil

	case *HaltInstr:
		cg.emitHalt()
		return nil

	default:
		return fmt.Errorf("unhandled IR instruction %T", instr)
	}
}

// genConst materializes a small constant. Zero is one ZERO; one is a copy
// of the constant slot; anything up to ten is counted out with INCRs.
// Larger literals are not worth a synthesis loop on this machine and stay
// unsupported.
func (cg *CodeGen) genConst(in *ConstInstr) error {
	if in.Value > 10 {
		return &UnsupportedConstructError{
			Line: in.Line,
			What: fmt.Sprintf("integer literal %d (largest supported is 10)", in.Value),
		}
	}
	dest, err := cg.addr(in.Dest)
	if err != nil {
		return err
	}

	switch in.Value {
	case 0:
		cg.emitAddr(cpu.OpZERO, dest, in.Dest)
	case 1:
		cg.emitAddr(cpu.OpLOAD, OneConstAddr, OneConstName)
		cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	default:
		cg.emitAddr(cpu.OpZERO, dest, in.Dest)
		for i := 0; i < in.Value; i++ {
			cg.emitAddr(cpu.OpINCR, dest, in.Dest)
		}
	}
	return nil
}

// genUnOp handles unary minus. The machine has no negative numbers;
// 0 - x saturates to zero, which is the defined result.
func (cg *CodeGen) genUnOp(in *UnOpInstr) error {
	operand, err := cg.addr(in.Operand)
	if err != nil {
		return err
	}
	dest, err := cg.addr(in.Dest)
	if err != nil {
		return err
	}
	cg.emitAddr(cpu.OpLOAD, ZeroConstAddr, ZeroConstName)
	cg.emitAddr(cpu.OpSUB, operand, in.Operand)
	cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	return nil
}

func (cg *CodeGen) genBinOp(in *BinOpInstr) error {
	switch in.Op {
	case PLUS, MINUS:
		op := cpu.OpADD
		if in.Op == MINUS {
			op = cpu.OpSUB
		}
		left, err := cg.addr(in.Left)
		if err != nil {
			return err
		}
		right, err := cg.addr(in.Right)
		if err != nil {
			return err
		}
		dest, err := cg.addr(in.Dest)
		if err != nil {
			return err
		}
		cg.emitAddr(cpu.OpLOAD, left, in.Left)
		cg.emitAddr(op, right, in.Right)
		cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
		return nil

	case STAR:
		return cg.genMultiply(in)

	case SLASH:
		return &UnsupportedConstructError{Line: in.Line, What: "division"}

	case EQUALS, NOT_EQ:
		return cg.genEquality(in)

	case GREATER, LESS, GREATER_EQ, LESS_EQ:
		return cg.genOrdered(in)

	default:
		return fmt.Errorf("unhandled binary operator %s", in.Op)
	}
}

// genMultiply synthesizes dest = left * right by repeated addition,
// counting the right operand down to zero. Runtime cost is linear in the
// right operand's value; overflow saturates the way ADD saturates.
func (cg *CodeGen) genMultiply(in *BinOpInstr) error {
	left, err := cg.addr(in.Left)
	if err != nil {
		return err
	}
	right, err := cg.addr(in.Right)
	if err != nil {
		return err
	}
	dest, err := cg.addr(in.Dest)
	if err != nil {
		return err
	}
	acc, err := cg.scratchSlot("mulacc")
	if err != nil {
		return err
	}
	cnt, err := cg.scratchSlot("mulcnt")
	if err != nil {
		return err
	}

	head := cg.newLabel()
	body := cg.newLabel()
	done := cg.newLabel()

	cg.emitAddr(cpu.OpZERO, acc, "mulacc")
	cg.emitAddr(cpu.OpLOAD, right, in.Right)
	cg.emitAddr(cpu.OpSTORE, cnt, "mulcnt")
	cg.emitLabel(head)
	cg.emitAddr(cpu.OpSKIPZ, cnt, "mulcnt")
	cg.emitJumpTo(body)
	cg.emitJumpTo(done)
	cg.emitLabel(body)
	cg.emitAddr(cpu.OpLOAD, acc, "mulacc")
	cg.emitAddr(cpu.OpADD, left, in.Left)
	cg.emitAddr(cpu.OpSTORE, acc, "mulacc")
	cg.emitAddr(cpu.OpDECR, cnt, "mulcnt")
	cg.emitJumpTo(head)
	cg.emitLabel(done)
	cg.emitAddr(cpu.OpLOAD, acc, "mulacc")
	cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	return nil
}

// genEquality computes dest = (left == right) or its negation without any
// jumps. Saturating subtraction in both directions yields |l-r|: one side
// is always zero, so their sum is zero exactly when the operands match.
func (cg *CodeGen) genEquality(in *BinOpInstr) error {
	left, err := cg.addr(in.Left)
	if err != nil {
		return err
	}
	right, err := cg.addr(in.Right)
	if err != nil {
		return err
	}
	dest, err := cg.addr(in.Dest)
	if err != nil {
		return err
	}
	d1, err := cg.scratchSlot("cmpd1")
	if err != nil {
		return err
	}
	d2, err := cg.scratchSlot("cmpd2")
	if err != nil {
		return err
	}
	d3, err := cg.scratchSlot("cmpd3")
	if err != nil {
		return err
	}
	flag, err := cg.scratchSlot("cmpflag")
	if err != nil {
		return err
	}

	cg.emitAddr(cpu.OpLOAD, left, in.Left)
	cg.emitAddr(cpu.OpSUB, right, in.Right)
	cg.emitAddr(cpu.OpSTORE, d1, "cmpd1")
	cg.emitAddr(cpu.OpLOAD, right, in.Right)
	cg.emitAddr(cpu.OpSUB, left, in.Left)
	cg.emitAddr(cpu.OpSTORE, d2, "cmpd2")
	cg.emitAddr(cpu.OpLOAD, d1, "cmpd1")
	cg.emitAddr(cpu.OpADD, d2, "cmpd2")
	cg.emitAddr(cpu.OpSTORE, d3, "cmpd3")
	cg.emitAddr(cpu.OpZERO, flag, "cmpflag")
	cg.emitAddr(cpu.OpSKIPZ, d3, "cmpd3")
	cg.emitAddr(cpu.OpINCR, flag, "cmpflag") // flag = 1 iff operands differ

	if in.Op == NOT_EQ {
		cg.emitAddr(cpu.OpLOAD, flag, "cmpflag")
		cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
		return nil
	}
	// == is the complement; flag is always 0 or 1.
	cg.emitAddr(cpu.OpLOAD, OneConstAddr, OneConstName)
	cg.emitAddr(cpu.OpSUB, flag, "cmpflag")
	cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	return nil
}

// genOrdered lowers <, >, <= and >= onto one saturating difference and a
// skip. For the strict forms a nonzero difference means true; for the
// inclusive forms the difference is taken the other way round and zero
// means true.
func (cg *CodeGen) genOrdered(in *BinOpInstr) error {
	a, b := in.Left, in.Right
	nonzeroIsTrue := true
	switch in.Op {
	case GREATER: // l - r > 0
	case LESS: // r - l > 0
		a, b = b, a
	case GREATER_EQ: // r - l == 0
		a, b = b, a
		nonzeroIsTrue = false
	case LESS_EQ: // l - r == 0
		nonzeroIsTrue = false
	}

	aAddr, err := cg.addr(a)
	if err != nil {
		return err
	}
	bAddr, err := cg.addr(b)
	if err != nil {
		return err
	}
	dest, err := cg.addr(in.Dest)
	if err != nil {
		return err
	}
	d, err := cg.scratchSlot("cmpd1")
	if err != nil {
		return err
	}

	onZero, onNonzero := uint16(ZeroConstAddr), uint16(OneConstAddr)
	zeroName, nonzeroName := ZeroConstName, OneConstName
	if !nonzeroIsTrue {
		onZero, onNonzero = OneConstAddr, ZeroConstAddr
		zeroName, nonzeroName = OneConstName, ZeroConstName
	}

	nz := cg.newLabel()
	join := cg.newLabel()

	cg.emitAddr(cpu.OpLOAD, aAddr, a)
	cg.emitAddr(cpu.OpSUB, bAddr, b)
	cg.emitAddr(cpu.OpSTORE, d, "cmpd1")
	cg.emitAddr(cpu.OpSKIPZ, d, "cmpd1")
	cg.emitJumpTo(nz)
	cg.emitAddr(cpu.OpLOAD, onZero, zeroName)
	cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	cg.emitJumpTo(join)
	cg.emitLabel(nz)
	cg.emitAddr(cpu.OpLOAD, onNonzero, nonzeroName)
	cg.emitAddr(cpu.OpSTORE, dest, in.Dest)
	cg.emitLabel(join)
	return nil
}
