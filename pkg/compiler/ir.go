package compiler

import (
	"fmt"
	"strings"
)

// Block is one straight-line run of IR instructions. Control transfers
// between blocks only through Jump and CondJump instructions holding
// *Block handles; no textual markers survive past the parser. Blocks are
// appended to the program in the order they are created, and that order is
// the order the code generator lays them out, so it is load-bearing.
type Block struct {
	Name   string
	Instrs []IRInstr
	Preds  []*Block
	Succs  []*Block
}

func (b *Block) addEdgeTo(target *Block) {
	b.Succs = append(b.Succs, target)
	target.Preds = append(target.Preds, b)
}

// IRInstr is the closed set of three-address instructions.
type IRInstr interface {
	irInstr()
	String() string
}

// AssignInstr copies one place into another: Dest = Src.
type AssignInstr struct {
	Dest string
	Src  string
}

// ConstInstr materializes an integer constant: Dest = Value.
// Whether the value can actually be built on the machine is the code
// generator's call, so the source line rides along for its diagnostics.
type ConstInstr struct {
	Dest  string
	Value int
	Line  int
}

// BinOpInstr is Dest = Left op Right.
type BinOpInstr struct {
	Dest  string
	Left  string
	Op    TokenType
	Right string
	Line  int
}

// UnOpInstr is Dest = op Operand.
type UnOpInstr struct {
	Dest    string
	Op      TokenType
	Operand string
	Line    int
}

// JumpInstr transfers unconditionally to Target.
type JumpInstr struct {
	Target *Block
}

// CondJumpInstr transfers to Target when Cond holds a nonzero value,
// otherwise falls through to the next instruction.
type CondJumpInstr struct {
	Cond   string
	Target *Block
}

// HaltInstr stops the machine.
type HaltInstr struct{}

func (*AssignInstr) irInstr()   {}
func (*ConstInstr) irInstr()    {}
func (*BinOpInstr) irInstr()    {}
func (*UnOpInstr) irInstr()     {}
func (*JumpInstr) irInstr()     {}
func (*CondJumpInstr) irInstr() {}
func (*HaltInstr) irInstr()     {}

func (i *AssignInstr) String() string { return fmt.Sprintf("%s = %s", i.Dest, i.Src) }
func (i *ConstInstr) String() string  { return fmt.Sprintf("%s = %d", i.Dest, i.Value) }
func (i *BinOpInstr) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dest, i.Left, opLexemes[i.Op], i.Right)
}
func (i *UnOpInstr) String() string {
	return fmt.Sprintf("%s = %s%s", i.Dest, opLexemes[i.Op], i.Operand)
}
func (i *JumpInstr) String() string { return fmt.Sprintf("jump %s", i.Target.Name) }
func (i *CondJumpInstr) String() string {
	return fmt.Sprintf("if %s jump %s", i.Cond, i.Target.Name)
}
func (i *HaltInstr) String() string { return "halt" }

// IRProgram is the control-flow graph plus the symbol table collected
// while building it.
type IRProgram struct {
	Blocks []*Block
	Entry  *Block
	Syms   *SymbolTable
}

// String dumps every block with its instructions, one per line. Tests and
// the driver's listing mode read this.
func (p *IRProgram) String() string {
	var sb strings.Builder
	for _, b := range p.Blocks {
		fmt.Fprintf(&sb, "%s:\n", b.Name)
		for _, in := range b.Instrs {
			fmt.Fprintf(&sb, "  %s\n", in.String())
		}
	}
	return sb.String()
}

// irGen holds the generation state. Counters are per-generator, so every
// compilation starts from _t0 and block id 1 and identical source yields
// an identical graph.
type irGen struct {
	prog      *IRProgram
	current   *Block
	nextTemp  int
	nextBlock int
}

// Generate lowers a parsed program into the block graph.
func Generate(stmts []Stmt) (*IRProgram, error) {
	g := &irGen{
		prog: &IRProgram{Syms: NewSymbolTable()},
	}
	entry := g.newBlock("entry")
	g.prog.Entry = entry
	g.current = entry

	if err := g.genStmts(stmts); err != nil {
		return nil, err
	}
	return g.prog, nil
}

func (g *irGen) newBlock(name string) *Block {
	b := &Block{Name: name}
	g.prog.Blocks = append(g.prog.Blocks, b)
	return b
}

// blockID hands out the serial number shared by all blocks of one source
// construct, so nested and repeated ifs and whiles never collide.
func (g *irGen) blockID() int {
	g.nextBlock++
	return g.nextBlock
}

func (g *irGen) newTemp() string {
	name := fmt.Sprintf("_t%d", g.nextTemp)
	g.nextTemp++
	g.prog.Syms.Define(name, SymInt, true)
	return name
}

func (g *irGen) emit(in IRInstr) {
	g.current.Instrs = append(g.current.Instrs, in)
}

func (g *irGen) emitJump(target *Block) {
	g.emit(&JumpInstr{Target: target})
	g.current.addEdgeTo(target)
}

func (g *irGen) emitCondJump(cond string, target *Block) {
	g.emit(&CondJumpInstr{Cond: cond, Target: target})
	g.current.addEdgeTo(target)
}

func (g *irGen) genStmts(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *irGen) genStmt(stmt Stmt) error {
	switch s := stmt.(type) {

	case *VariableDecl:
		typ := SymInt
		if s.Type == BOOL {
			typ = SymBool
		}
		g.prog.Syms.Define(s.Name, typ, false)
		if s.Init == nil {
			g.emit(&ConstInstr{Dest: s.Name, Value: 0, Line: s.Line})
			return nil
		}
		place, err := g.genExpr(s.Init)
		if err != nil {
			return err
		}
		g.emit(&AssignInstr{Dest: s.Name, Src: place})
		return nil

	case *Assignment:
		place, err := g.genExpr(s.Value)
		if err != nil {
			return err
		}
		g.emit(&AssignInstr{Dest: s.Name, Src: place})
		return nil

	case *IfStmt:
		cond, err := g.genExpr(s.Condition)
		if err != nil {
			return err
		}
		id := g.blockID()
		thenB := g.newBlock(fmt.Sprintf("then_%d", id))
		var elseB *Block
		if s.Else != nil {
			elseB = g.newBlock(fmt.Sprintf("else_%d", id))
		}
		endB := g.newBlock(fmt.Sprintf("endif_%d", id))

		g.emitCondJump(cond, thenB)
		if elseB != nil {
			g.emitJump(elseB)
		} else {
			g.emitJump(endB)
		}

		g.current = thenB
		if err := g.genStmts(s.Then); err != nil {
			return err
		}
		g.emitJump(endB)

		if elseB != nil {
			g.current = elseB
			if err := g.genStmts(s.Else); err != nil {
				return err
			}
			g.emitJump(endB)
		}

		g.current = endB
		return nil

	case *WhileStmt:
		id := g.blockID()
		condB := g.newBlock(fmt.Sprintf("while_cond_%d", id))
		bodyB := g.newBlock(fmt.Sprintf("while_body_%d", id))
		endB := g.newBlock(fmt.Sprintf("while_end_%d", id))

		g.emitJump(condB)

		g.current = condB
		cond, err := g.genExpr(s.Condition)
		if err != nil {
			return err
		}
		g.emitCondJump(cond, bodyB)
		g.emitJump(endB)

		g.current = bodyB
		if err := g.genStmts(s.Body); err != nil {
			return err
		}
		g.emitJump(condB)

		g.current = endB
		return nil

	case *HaltStmt:
		g.emit(&HaltInstr{})
		return nil

	default:
		return fmt.Errorf("unhandled statement %T", stmt)
	}
}

// genExpr lowers an expression and returns the place holding its value.
// Identifiers evaluate to themselves; everything else lands in a fresh
// temporary.
func (g *irGen) genExpr(expr Expr) (string, error) {
	switch e := expr.(type) {

	case *Literal:
		t := g.newTemp()
		g.emit(&ConstInstr{Dest: t, Value: e.Value, Line: e.Line})
		return t, nil

	case *BoolLiteral:
		v := 0
		if e.Value {
			v = 1
		}
		t := g.newTemp()
		g.emit(&ConstInstr{Dest: t, Value: v, Line: e.Line})
		return t, nil

	case *VarRef:
		return e.Name, nil

	case *UnaryExpr:
		operand, err := g.genExpr(e.Operand)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(&UnOpInstr{Dest: t, Op: e.Op, Operand: operand, Line: e.Line})
		return t, nil

	case *BinaryExpr:
		left, err := g.genExpr(e.Left)
		if err != nil {
			return "", err
		}
		right, err := g.genExpr(e.Right)
		if err != nil {
			return "", err
		}
		t := g.newTemp()
		g.emit(&BinOpInstr{Dest: t, Left: left, Op: e.Op, Right: right, Line: e.Line})
		return t, nil

	default:
		return "", fmt.Errorf("unhandled expression %T", expr)
	}
}
