package main

import (
	"log"
	"os"
	"time"

	"github.com/sqweek/dialog"
)

var (
	/// True while emulation is suspended for single stepping.
	///
	Paused bool

	/// Set when the machine faults; only a reboot clears it.
	///
	Halted bool

	/// Speed is the instruction rate in steps per second.
	///
	Speed int

	/// Clock paces instruction steps; reset whenever Speed changes.
	///
	Clock *time.Ticker
)

/// StepVM runs one instruction, halting the machine on a fault.
///
func StepVM() {
	if err := VM.Step(); err != nil {
		log.Printf("halted: %v", err)

		// leave the display up for inspection
		Halted = true
	}
}

/// TraceStep single-steps while paused, logging the disassembly of the
/// instruction about to run.
///
func TraceStep() {
	if Halted {
		return
	}

	log.Println(VM.Disassemble(VM.PC))

	StepVM()
}

/// SetSpeed clamps and applies a new instruction rate.
///
func SetSpeed(ips int) {
	if ips < 100 {
		ips = 100
	}

	if ips > 5000 {
		ips = 5000
	}

	Speed = ips
	Clock.Reset(time.Second / time.Duration(Speed))

	log.Printf("speed: %d instructions/sec", Speed)
}

/// ResetVM reboots the machine and reloads the current program.
///
func ResetVM() {
	VM.Reset()
	Halted = false

	// reset discards the program; put it back
	if err := VM.Load(Program); err != nil {
		log.Fatal(err)
	}

	log.Println("reset")
}

/// LoadDialog asks for a new ROM and boots it.
///
func LoadDialog() {
	file, err := dialog.File().Title("Load ROM").Load()
	if err != nil {
		// cancelled
		return
	}

	program, err := os.ReadFile(file)
	if err != nil {
		log.Println(err)
		return
	}

	VM.Reset()
	Halted = false

	if err := VM.Load(program); err != nil {
		log.Println(err)
		return
	}

	Program = program

	log.Printf("loaded %s (%d bytes)", file, len(program))
}
