// Runs a compiled artifact in the terminal and prints the final machine
// state.
//
// Usage: console program.out
package main

import (
	"fmt"
	"log"
	"os"

	"accum/pkg/cpu"
	"accum/pkg/utils"
)

const maxSteps = 10_000_000

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <artifact file>", os.Args[0])
	}

	fullPath, err := utils.ResolvePath(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		log.Fatalf("Failed to read artifact: %v", err)
	}

	words, err := cpu.ParseImage(string(data))
	if err != nil {
		log.Fatalf("Bad artifact %s: %v", fullPath, err)
	}
	if err := cpu.ValidateImage(words); err != nil {
		log.Fatalf("Bad artifact %s: %v", fullPath, err)
	}

	vm := cpu.NewCPU()
	if err := vm.LoadWords(words[:]); err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	if err := vm.Run(maxSteps); err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	fmt.Printf("run complete: acc=%d pc=%d steps=%d\n", vm.Acc, vm.PC, vm.Steps)
	fmt.Println("nonzero memory:")
	for addr, word := range vm.Memory {
		if word != 0 {
			fmt.Printf("  %3d: %05d\n", addr, word)
		}
	}
}
