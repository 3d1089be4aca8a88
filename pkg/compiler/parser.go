package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = statement* EOF
//	statement  = varDecl | assignment | ifStmt | whileStmt | haltStmt
//	varDecl    = ("int" | "bool") IDENTIFIER ("=" expression)? ";"
//	assignment = IDENTIFIER "=" expression ";"
//	ifStmt     = "if" "(" expression ")" block ("else" block)?
//	whileStmt  = "while" "(" expression ")" block
//	haltStmt   = "halt" ";"
//	block      = "{" statement* "}"
//	expression = equality
//	equality   = relational (("==" | "!=") relational)*
//	relational = additive (("<" | ">" | "<=" | ">=") additive)*
//	additive   = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/") unary)*
//	unary      = "-" unary | primary
//	primary    = INTEGER | "true" | "false" | IDENTIFIER | "(" expression ")"
//
// All binary operators are left-associative. One token of lookahead is
// enough everywhere. The parser does no type checking; a bool mixed into
// arithmetic flows through and means whatever its 0/1 slot holds.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError builds a SyntaxError carrying the source line where the token
// appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	lineIdx := tok.Line - 1 // lines are 1-based

	snippet := ""
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return &SyntaxError{
		Line:    tok.Line,
		Col:     tok.Col,
		Msg:     fmt.Sprintf(format, args...),
		Snippet: snippet,
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseEquality()
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == EQUALS || p.peek().Type == NOT_EQ {
		op := p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseRelational handles <, >, <= and >=
func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == LESS || p.peek().Type == GREATER ||
		p.peek().Type == LESS_EQ || p.peek().Type == GREATER_EQ {
		op := p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseMultiplicative handles * and /. Division parses fine; the code
// generator is the stage that refuses it.
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op.Type, Left: expr, Right: right, Line: op.Line, Col: op.Col}
	}
	return expr, nil
}

// parseUnary handles unary minus.
func (p *Parser) parseUnary() (Expr, error) {
	if p.peek().Type == MINUS {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Type, Operand: operand, Line: op.Line, Col: op.Col}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		val, err := strconv.Atoi(tok.Lexeme)
		if err != nil {
			return nil, p.fmtError(tok, "integer literal %q too large", tok.Lexeme)
		}
		return &Literal{Value: val, Line: tok.Line, Col: tok.Col}, nil

	case TRUE:
		p.advance()
		return &BoolLiteral{Value: true, Line: tok.Line, Col: tok.Col}, nil

	case FALSE:
		p.advance()
		return &BoolLiteral{Value: false, Line: tok.Line, Col: tok.Col}, nil

	case IDENTIFIER:
		p.advance()
		return &VarRef{Name: tok.Lexeme, Line: tok.Line, Col: tok.Col}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parseBlock parses "{" statement* "}" and returns the statement list.
func (p *Parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	var stmts []Stmt
	for p.peek().Type != RBRACE && p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseVarDecl parses ("int" | "bool") IDENT ("=" expr)? ";".
// The leading type keyword is still at p.peek().
func (p *Parser) parseVarDecl() (Stmt, error) {
	typeTok := p.advance()
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}

	var init Expr
	if p.peek().Type == ASSIGN {
		p.advance()
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &VariableDecl{
		Type: typeTok.Type,
		Name: nameTok.Lexeme,
		Init: init,
		Line: typeTok.Line,
		Col:  typeTok.Col,
	}, nil
}

// parseAssignment parses IDENT "=" expression ";".
// The identifier is still at p.peek().
func (p *Parser) parseAssignment() (Stmt, error) {
	nameTok := p.advance()
	if _, err := p.expect(ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Assignment{Name: nameTok.Lexeme, Value: value, Line: nameTok.Line, Col: nameTok.Col}, nil
}

// parseIf parses if ( cond ) block [ else block ].
// The leading IF token has already been consumed by parseStatement.
func (p *Parser) parseIf(ifTok Token) (Stmt, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseStmts []Stmt
	if p.peek().Type == ELSE {
		p.advance()
		elseStmts, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		if elseStmts == nil {
			elseStmts = []Stmt{} // present but empty: else {} is not no-else
		}
	}

	return &IfStmt{Condition: cond, Then: then, Else: elseStmts, Line: ifTok.Line, Col: ifTok.Col}, nil
}

// parseWhile parses while ( cond ) block.
// The leading WHILE token has already been consumed by parseStatement.
func (p *Parser) parseWhile(whileTok Token) (Stmt, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Condition: cond, Body: body, Line: whileTok.Line, Col: whileTok.Col}, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {

	case INT, BOOL:
		return p.parseVarDecl()

	case IDENTIFIER:
		return p.parseAssignment()

	case IF:
		p.advance()
		return p.parseIf(tok)

	case WHILE:
		p.advance()
		return p.parseWhile(tok)

	case HALT:
		p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &HaltStmt{Line: tok.Line, Col: tok.Col}, nil

	default:
		p.advance()
		return nil, p.fmtError(tok, "unexpected token %s (%q), expected a statement", tok.Type, tok.Lexeme)
	}
}

// resync skips forward to the next statement boundary: past the next
// semicolon, or up to (not past) the next statement-starting keyword or a
// closing brace.
func (p *Parser) resync() {
	for {
		switch p.peek().Type {
		case EOF, RBRACE, INT, BOOL, IF, WHILE, HALT:
			return
		case SEMICOLON:
			p.advance()
			return
		}
		p.advance()
	}
}

// Parse builds the full program, failing on the first grammar violation.
func Parse(tokens []Token, rawSource string) ([]Stmt, error) {
	p := NewParser(tokens, rawSource)
	var stmts []Stmt
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ParseAll parses the same grammar but resynchronizes after each broken
// statement so every diagnostic in the file is collected. The returned
// statements are only the ones that parsed cleanly; callers wanting an
// artifact must see an empty error slice.
func ParseAll(tokens []Token, rawSource string) ([]Stmt, []error) {
	p := NewParser(tokens, rawSource)
	var stmts []Stmt
	var errs []error
	for p.peek().Type != EOF {
		before := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			errs = append(errs, err)
			if p.pos == before {
				p.advance() // guarantee progress
			}
			p.resync()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, errs
}
