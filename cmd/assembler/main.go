// Assembles a mnemonic source file into a full artifact image.
//
// Usage: assembler program.asm [out]
package main

import (
	"fmt"
	"log"
	"os"

	"accum/pkg/asm"
	"accum/pkg/cpu"
	"accum/pkg/utils"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <asm file> [output file]", os.Args[0])
	}
	inPath := os.Args[1]
	outPath := utils.OutputPath(inPath, ".out")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	words, labels, err := asm.Assemble(string(data))
	if err != nil {
		log.Fatalf("Assembly failed: %v", err)
	}

	var image [cpu.MemorySize]uint16
	copy(image[:], words)
	if err := os.WriteFile(outPath, []byte(cpu.RenderImage(image)), 0o644); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}
	fmt.Printf("assembled %d words (%d labels) -> %s\n", len(words), len(labels), outPath)
}
