package main

import (
	"flag"
	"fmt"
	"os"

	"accum/pkg/compiler"
	"accum/pkg/cpu"
	"accum/pkg/utils"
)

// Step budget for -run; generous enough for any program that terminates.
const runBudget = 10_000_000

func main() {
	inPath := flag.String("in", "", "input source file path")
	outPath := flag.String("out", "", "output artifact path (default: input with .out extension)")
	mapPath := flag.String("map", "", "write the memory map report to this path")
	allErrors := flag.Bool("all-errors", false, "report every syntax error instead of stopping at the first")
	run := flag.Bool("run", false, "execute the compiled artifact and print the final CPU state")
	showAsm := flag.Bool("show-asm", false, "print the instruction listing")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <source file>")
		flag.Usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	var prog *compiler.Program
	var mm *compiler.MemoryMap
	if *allErrors {
		var errs []error
		prog, mm, errs = compiler.CompileAll(string(source))
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, e)
			}
			fmt.Fprintf(os.Stderr, "compilation failed with %d error(s)\n", len(errs))
			os.Exit(1)
		}
	} else {
		prog, mm, err = compiler.Compile(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "compilation failed: %v\n", err)
			os.Exit(1)
		}
	}

	output := *outPath
	if output == "" {
		output = utils.OutputPath(*inPath, ".out")
	}
	if err := os.WriteFile(output, []byte(prog.Render()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write artifact %q: %v\n", output, err)
		os.Exit(1)
	}
	fullPath, err := utils.ResolvePath(output)
	if err != nil {
		fullPath = output
	}
	fmt.Printf("compiled %d words -> %s\n", prog.CodeLen, fullPath)

	if *mapPath != "" {
		if err := os.WriteFile(*mapPath, []byte(mm.Report()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write memory map %q: %v\n", *mapPath, err)
			os.Exit(1)
		}
	}

	if *showAsm {
		fmt.Print(prog.Listing())
	}

	if *run {
		vm := cpu.NewCPU()
		if err := vm.LoadWords(prog.Words[:]); err != nil {
			fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
			os.Exit(1)
		}
		if err := vm.Run(runBudget); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("run complete: acc=%d pc=%d steps=%d\n", vm.Acc, vm.PC, vm.Steps)
	}
}
