package compiler

import "fmt"

// The pipeline never recovers locally: every stage either succeeds or
// returns one of these. Callers that need to branch on the kind use
// errors.As; the messages carry enough location to stand alone.

// LexicalError is an input character that matches no token rule.
type LexicalError struct {
	Line int
	Col  int
	Ch   rune
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("unexpected character %q on line %d, column %d", e.Ch, e.Line, e.Col)
}

// SyntaxError is a grammar violation. Snippet is the trimmed source line
// the offending token sits on, when available.
type SyntaxError struct {
	Line    int
	Col     int
	Msg     string
	Snippet string
}

func (e *SyntaxError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s\n  |> %s", e.Line, e.Msg, e.Snippet)
}

// UnsupportedConstructError is source the grammar accepts but the target
// machine cannot express: division, or an integer literal above 10.
type UnsupportedConstructError struct {
	Line int
	What string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.What)
}

// CapacityError is a memory region running out of slots.
type CapacityError struct {
	Region string
	Cap    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s region is full (capacity %d slots)", e.Region, e.Cap)
}

// UndefinedSymbolError is an address lookup for a name the memory map
// never assigned. An undeclared identifier surfaces here and nowhere
// earlier.
type UndefinedSymbolError struct {
	Name string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q", e.Name)
}

// UndefinedLabelError is a branch to a label no instruction defines.
// Unreachable if the code generator is correct; the emitter checks anyway.
type UndefinedLabelError struct {
	Name string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label %q", e.Name)
}

// ValidationError is an emitted program failing a final sanity check.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "invalid program: " + e.Msg
}
