// Package compiler turns source in a small C-like language into a machine
// image for the accumulator CPU in pkg/cpu.
//
// Pipeline: source → Lex → Parse → Generate → NewMemoryMap → GenCode → Emit
package compiler
