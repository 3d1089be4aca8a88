package compiler

import "fmt"

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Literal is a compile-time integer constant.
//
//	int x = 7;
//	        ^  Literal{Value: 7}
type Literal struct {
	Value int
	Line  int
	Col   int
}

func (*Literal) exprNode()        {}
func (l *Literal) String() string { return fmt.Sprintf("%d", l.Value) }

// BoolLiteral is "true" or "false".
type BoolLiteral struct {
	Value bool
	Line  int
	Col   int
}

func (*BoolLiteral) exprNode() {}
func (b *BoolLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// VarRef is a read of a named variable.
//
//	r = x + 1;
//	    ^  VarRef{Name: "x"}
type VarRef struct {
	Name string
	Line int
	Col  int
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Name }

// BinaryExpr represents Left Op Right.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int
	Col   int
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, opLexemes[b.Op], b.Right)
}

// UnaryExpr represents Op Operand; the only unary operator is minus.
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
	Line    int
	Col     int
}

func (*UnaryExpr) exprNode()        {}
func (u *UnaryExpr) String() string { return fmt.Sprintf("(%s%s)", opLexemes[u.Op], u.Operand) }

// opLexemes maps operator token types back to their source spelling for
// diagnostics and dumps.
var opLexemes = map[TokenType]string{
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	EQUALS:     "==",
	NOT_EQ:     "!=",
	LESS:       "<",
	GREATER:    ">",
	LESS_EQ:    "<=",
	GREATER_EQ: ">=",
}

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// VariableDecl represents  int name;  or  bool name = expr;
type VariableDecl struct {
	Type TokenType // INT or BOOL
	Name string
	Init Expr // nil when the declaration has no initializer
	Line int
	Col  int
}

func (*VariableDecl) stmtNode() {}
func (d *VariableDecl) String() string {
	typeStr := "int"
	if d.Type == BOOL {
		typeStr = "bool"
	}
	if d.Init == nil {
		return fmt.Sprintf("VariableDecl(%s %s)", typeStr, d.Name)
	}
	return fmt.Sprintf("VariableDecl(%s %s = %s)", typeStr, d.Name, d.Init)
}

// Assignment represents  name = expr;
type Assignment struct {
	Name  string
	Value Expr
	Line  int
	Col   int
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s = %s)", a.Name, a.Value)
}

// IfStmt represents if (cond) { then } [else { else }].
// Branches are brace-delimited statement lists; the grammar has no
// unbraced single-statement form.
type IfStmt struct {
	Condition Expr
	Then      []Stmt
	Else      []Stmt // nil when there is no else branch
	Line      int
	Col       int
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	if i.Else != nil {
		return fmt.Sprintf("IfStmt(if %s then %d stmts else %d stmts)", i.Condition, len(i.Then), len(i.Else))
	}
	return fmt.Sprintf("IfStmt(if %s then %d stmts)", i.Condition, len(i.Then))
}

// WhileStmt represents while (cond) { body }.
type WhileStmt struct {
	Condition Expr
	Body      []Stmt
	Line      int
	Col       int
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	return fmt.Sprintf("WhileStmt(while %s do %d stmts)", w.Condition, len(w.Body))
}

// HaltStmt represents  halt;
type HaltStmt struct {
	Line int
	Col  int
}

func (*HaltStmt) stmtNode()        {}
func (s *HaltStmt) String() string { return "HaltStmt" }
