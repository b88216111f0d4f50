package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/kmarberry/chip-8/chip8"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// The CHIP-8 virtual machine.
	///
	VM *chip8.VM

	/// The SDL window and renderer.
	///
	Window   *sdl.Window
	Renderer *sdl.Renderer

	/// Program is the loaded ROM image, kept so reset can reload it.
	///
	Program []byte
)

func init() {
	runtime.LockOSThread()
}

func main() {
	strict := flag.Bool("strict", false, "standards-compliant opcode semantics")
	speed := flag.Int("speed", 700, "instructions per second")
	listing := flag.Bool("disasm", false, "print a disassembly of the ROM and exit")
	src := flag.String("asm", "", "assemble a source file into a ROM and exit")
	out := flag.String("o", "a.ch8", "output file for -asm")
	flag.Parse()

	log.SetFlags(0)

	if *src != "" {
		assembleROM(*src, *out)
		return
	}

	// take the ROM from the command line, or ask
	rom := flag.Arg(0)
	if rom == "" {
		file, err := dialog.File().Title("Load ROM").Load()
		if err != nil {
			log.Fatal(err)
		}

		rom = file
	}

	program, err := os.ReadFile(rom)
	if err != nil {
		log.Fatal(err)
	}

	// create the virtual machine, must happen before any rendering
	VM = chip8.New()
	VM.Strict = *strict

	if err := VM.Load(program); err != nil {
		log.Fatal(err)
	}

	// keep the image around for reboots
	Program = program

	if *listing {
		printListing(len(program))
		return
	}

	// initialize SDL or give up
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		log.Fatal(err)
	}
	defer sdl.Quit()

	// create the main window and renderer
	w := int32(chip8.ScreenWidth * Scale)
	h := int32(chip8.ScreenHeight * Scale)

	Window, Renderer, err = sdl.CreateWindowAndRenderer(w, h, sdl.WINDOW_OPENGL)
	if err != nil {
		log.Fatal(err)
	}
	defer Window.Destroy()

	Window.SetTitle("CHIP-8")

	if err := InitAudio(); err != nil {
		log.Fatal(err)
	}

	log.Printf("loaded %s (%d bytes)", rom, len(program))

	// instruction and frame cadences are independent; the instruction
	// ticker is resettable so the speed keys work
	Speed = *speed
	Clock = time.NewTicker(time.Second / time.Duration(Speed))
	video := time.NewTicker(time.Second / 60)

	// loop until the window closes or the user quits
	for ProcessEvents() {
		select {
		case <-video.C:
			if !Paused && !Halted {
				if VM.StepTimers() {
					Beep()
				}
			}

			Refresh()
		case <-Clock.C:
			if !Paused && !Halted {
				StepVM()
			}
		}
	}
}

/// assembleROM assembles a source file and writes the ROM image.
///
func assembleROM(src, out string) {
	program, err := os.ReadFile(src)
	if err != nil {
		log.Fatal(err)
	}

	a, err := chip8.Assemble(program)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(out, a.ROM, 0644); err != nil {
		log.Fatal(err)
	}

	log.Printf("wrote %s (%d bytes)", out, len(a.ROM))
}

/// printListing disassembles the loaded program to stdout.
///
func printListing(size int) {
	for i := 0; i < size; i += 2 {
		fmt.Println(VM.Disassemble(chip8.StartAddr + uint16(i)))
	}
}
