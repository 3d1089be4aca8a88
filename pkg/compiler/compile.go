package compiler

// Compile runs the whole pipeline on one source text and returns the
// emitted program together with its memory map. The first failing stage
// wins; no artifact is produced on any error. The pipeline keeps no state
// between calls, so compiling the same source twice renders byte-identical
// artifacts.
func Compile(src string) (*Program, *MemoryMap, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, nil, err
	}

	stmts, err := Parse(tokens, src)
	if err != nil {
		return nil, nil, err
	}

	ir, err := Generate(stmts)
	if err != nil {
		return nil, nil, err
	}

	mm, err := NewMemoryMap(ir.Syms)
	if err != nil {
		return nil, nil, err
	}

	instrs, err := GenCode(ir, mm)
	if err != nil {
		return nil, nil, err
	}

	prog, err := Emit(instrs)
	if err != nil {
		return nil, nil, err
	}

	if err := prog.Validate(); err != nil {
		return nil, nil, err
	}
	return prog, mm, nil
}

// CompileAll is Compile with parser recovery: every syntax diagnostic in
// the file is collected instead of stopping at the first. Later stages
// only run once the source parses cleanly, and they still stop at their
// first error.
func CompileAll(src string) (*Program, *MemoryMap, []error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, nil, []error{err}
	}

	stmts, errs := ParseAll(tokens, src)
	if len(errs) > 0 {
		return nil, nil, errs
	}

	ir, err := Generate(stmts)
	if err != nil {
		return nil, nil, []error{err}
	}

	mm, err := NewMemoryMap(ir.Syms)
	if err != nil {
		return nil, nil, []error{err}
	}

	instrs, err := GenCode(ir, mm)
	if err != nil {
		return nil, nil, []error{err}
	}

	prog, err := Emit(instrs)
	if err != nil {
		return nil, nil, []error{err}
	}

	if err := prog.Validate(); err != nil {
		return nil, nil, []error{err}
	}
	return prog, mm, nil
}
