package compiler

import "unicode"

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":   INT,
	"bool":  BOOL,
	"if":    IF,
	"else":  ELSE,
	"while": WHILE,
	"halt":  HALT,
	"true":  TRUE,
	"false": FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to end-of-line.
// The opening "//" must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanInt collects a decimal integer literal. The value is not range
// checked here; the code generator decides what it can materialize.
// The first digit must still be at l.peek().
func (l *Lexer) scanInt() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: INTEGER, Lexeme: string(l.src[start:l.pos]), Line: line, Col: col}
}

// nextToken skips whitespace/comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	// Skip whitespace and comments in a loop so that a comment followed
	// immediately by more whitespace is handled.
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Lexeme: "", Line: l.line, Col: l.col}, nil
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), nil
	}
	if unicode.IsDigit(ch) {
		return l.scanInt(), nil
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line, col}, nil
	case '}':
		return Token{RBRACE, "}", line, col}, nil
	case '(':
		return Token{LPAREN, "(", line, col}, nil
	case ')':
		return Token{RPAREN, ")", line, col}, nil
	case ';':
		return Token{SEMICOLON, ";", line, col}, nil

	case '+':
		return Token{PLUS, "+", line, col}, nil
	case '-':
		return Token{MINUS, "-", line, col}, nil
	case '*':
		return Token{STAR, "*", line, col}, nil
	case '/':
		return Token{SLASH, "/", line, col}, nil

	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line, col}, nil
		}
		// A lone '!' matches no rule; the language has no logical not.
		return Token{}, &LexicalError{Line: line, Col: col, Ch: ch}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line, col}, nil
		}
		return Token{LESS, "<", line, col}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line, col}, nil
		}
		return Token{GREATER, ">", line, col}, nil
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", line, col}, nil
		}
		return Token{ASSIGN, "=", line, col}, nil
	default:
		return Token{}, &LexicalError{Line: line, Col: col, Ch: ch}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Lexing is all-or-nothing: the first illegal character aborts with a
// LexicalError.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
