// Prints a disassembly listing of an artifact's code prefix.
//
// Usage: disasm program.out
package main

import (
	"fmt"
	"log"
	"os"

	"accum/pkg/cpu"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <artifact file>", os.Args[0])
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read artifact: %v", err)
	}
	words, err := cpu.ParseImage(string(data))
	if err != nil {
		log.Fatalf("Bad artifact: %v", err)
	}

	end := len(words)
	for end > 0 && words[end-1] == 0 {
		end--
	}
	for addr := 0; addr < end; addr++ {
		fmt.Printf("%3d: %05d  %s\n", addr, words[addr], cpu.Disassemble(words[addr]))
	}
}
