// Visual debugger: shows all 1000 memory words as a grid, colored by
// region, with the program counter highlighted. Space runs and pauses,
// right-arrow single-steps, R reloads the program.
//
// Usage: desktop program.src | program.out
package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"accum/pkg/compiler"
	"accum/pkg/cpu"
	"accum/pkg/grid"
	"accum/pkg/utils"
)

const (
	gridCols = 40
	gridRows = 25
	cellW    = 16
	cellH    = 14

	screenW = gridCols * cellW
	screenH = gridRows*cellH + 130

	// Instructions executed per frame while running; keeps long multiply
	// loops watchable instead of instant.
	stepsPerFrame = 50
)

type Game struct {
	vm      *cpu.CPU
	image   [cpu.MemorySize]uint16 // pristine program, for reset
	running bool
	lastErr error
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.running = !g.running
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) && !g.running {
		g.stepOnce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reset()
	}

	if g.running {
		for i := 0; i < stepsPerFrame; i++ {
			if g.vm.Halted {
				g.running = false
				break
			}
			if err := g.vm.Step(); err != nil {
				g.lastErr = err
				g.running = false
				break
			}
		}
	}
	return nil
}

func (g *Game) stepOnce() {
	if g.vm.Halted {
		return
	}
	if err := g.vm.Step(); err != nil {
		g.lastErr = err
	}
}

func (g *Game) reset() {
	g.running = false
	g.lastErr = nil
	if err := g.vm.LoadWords(g.image[:]); err != nil {
		g.lastErr = err
	}
}

// nextInstr describes the word at the program counter. The counter sits
// one past the last address after a halt in the final word or a run past
// the end of memory, where there is no word to show.
func (g *Game) nextInstr() string {
	if int(g.vm.PC) >= cpu.MemorySize {
		return "next: ---"
	}
	return fmt.Sprintf("next: %3d  %s", g.vm.PC, cpu.Disassemble(g.vm.Memory[g.vm.PC]))
}

// cellColor picks a cell's fill from its memory region, brighter when the
// word is nonzero.
func cellColor(addr int, word uint16) color.RGBA {
	var base color.RGBA
	switch {
	case addr < compiler.CodeCap:
		base = color.RGBA{40, 40, 70, 255} // code
	case addr < compiler.VarBase+compiler.VarCap:
		base = color.RGBA{30, 70, 30, 255} // variables
	case addr < compiler.TempBase+compiler.TempCap:
		base = color.RGBA{70, 70, 30, 255} // temporaries
	case addr < compiler.FlagBase+compiler.FlagCap:
		base = color.RGBA{70, 30, 70, 255} // flags
	case addr >= compiler.ZeroConstAddr:
		base = color.RGBA{70, 40, 30, 255} // constants
	default:
		base = color.RGBA{25, 25, 25, 255} // unused
	}
	if word != 0 {
		base.R += 90
		base.G += 90
		base.B += 90
	}
	return base
}

func (g *Game) Draw(screen *ebiten.Image) {
	pcColor := color.RGBA{255, 180, 0, 255}

	for i, word := range g.vm.Memory {
		px, py := grid.GetCellOrigin(i, gridCols, cellW, cellH)
		clr := cellColor(i, word)
		if uint16(i) == g.vm.PC && !g.vm.Halted {
			clr = pcColor
		}
		vector.DrawFilledRect(screen, float32(px), float32(py), cellW-1, cellH-1, clr, false)
	}

	face := basicfont.Face7x13
	baseY := gridRows*cellH + 20

	status := fmt.Sprintf("acc=%d  pc=%d  steps=%d  halted=%v", g.vm.Acc, g.vm.PC, g.vm.Steps, g.vm.Halted)
	text.Draw(screen, status, face, 8, baseY, color.White)

	text.Draw(screen, g.nextInstr(), face, 8, baseY+18, color.White)

	if g.lastErr != nil {
		text.Draw(screen, "error: "+g.lastErr.Error(), face, 8, baseY+36, color.RGBA{255, 90, 90, 255})
	}

	ebitenutil.DebugPrintAt(screen, "[space] run/pause   [right] step   [r] reset", 8, screenH-22)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <source or artifact file>", os.Args[0])
	}

	fullPath, err := utils.ResolvePath(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	var image [cpu.MemorySize]uint16
	if strings.HasSuffix(fullPath, ".out") {
		image, err = cpu.ParseImage(string(data))
		if err != nil {
			log.Fatalf("Bad artifact: %v", err)
		}
		if err := cpu.ValidateImage(image); err != nil {
			log.Fatalf("Bad artifact: %v", err)
		}
	} else {
		prog, _, err := compiler.Compile(string(data))
		if err != nil {
			log.Fatalf("Compilation failed: %v", err)
		}
		image = prog.Words
	}

	vm := cpu.NewCPU()
	if err := vm.LoadWords(image[:]); err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenW*3/2, screenH*3/2)
	ebiten.SetWindowTitle("accum debugger")

	game := &Game{vm: vm, image: image}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
