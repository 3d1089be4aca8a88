package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal

	// Keywords
	INT   // "int"
	BOOL  // "bool"
	IF    // "if"
	ELSE  // "else"
	WHILE // "while"
	HALT  // "halt"
	TRUE  // "true"
	FALSE // "false"

	// Paired delimiters
	LBRACE // {
	RBRACE // }
	LPAREN // (
	RPAREN // )

	// Punctuation
	SEMICOLON // ;

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Assignment / comparison  (order matters: ASSIGN before EQUALS)
	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	INT:        "INT",
	BOOL:       "BOOL",
	IF:         "IF",
	ELSE:       "ELSE",
	WHILE:      "WHILE",
	HALT:       "HALT",
	TRUE:       "TRUE",
	FALSE:      "FALSE",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	SEMICOLON:  "SEMICOLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	ASSIGN:     "ASSIGN",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	GREATER:    "GREATER",
	LESS_EQ:    "LESS_EQ",
	GREATER_EQ: "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based column of the lexeme's first character
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d, col %d", t.Type, t.Lexeme, t.Line, t.Col)
}
