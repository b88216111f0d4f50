package chip8_test

import (
	"testing"

	"github.com/kmarberry/chip-8/chip8"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		name string
		code [2]byte
		want string
	}{
		{"cls", [2]byte{0x00, 0xE0}, "0200 - CLS"},
		{"ret", [2]byte{0x00, 0xEE}, "0200 - RET"},
		{"jp", [2]byte{0x13, 0x00}, "0200 - JP     #0300"},
		{"jp v0", [2]byte{0xB3, 0x00}, "0200 - JP     V0, #0300"},
		{"call", [2]byte{0x22, 0x08}, "0200 - CALL   #0208"},
		{"se", [2]byte{0x31, 0x0A}, "0200 - SE     V1, #0A"},
		{"se regs", [2]byte{0x51, 0x20}, "0200 - SE     V1, V2"},
		{"sne", [2]byte{0x41, 0x0A}, "0200 - SNE    V1, #0A"},
		{"sne regs", [2]byte{0x91, 0x20}, "0200 - SNE    V1, V2"},
		{"ld imm", [2]byte{0x6A, 0x0F}, "0200 - LD     VA, #0F"},
		{"ld reg", [2]byte{0x81, 0x20}, "0200 - LD     V1, V2"},
		{"add imm", [2]byte{0x70, 0x05}, "0200 - ADD    V0, #05"},
		{"add reg", [2]byte{0x81, 0x24}, "0200 - ADD    V1, V2"},
		{"or", [2]byte{0x81, 0x21}, "0200 - OR     V1, V2"},
		{"and", [2]byte{0x81, 0x22}, "0200 - AND    V1, V2"},
		{"xor", [2]byte{0x81, 0x23}, "0200 - XOR    V1, V2"},
		{"sub", [2]byte{0x81, 0x25}, "0200 - SUB    V1, V2"},
		{"subn", [2]byte{0x81, 0x27}, "0200 - SUBN   V1, V2"},
		{"shr", [2]byte{0x83, 0x36}, "0200 - SHR    V3"},
		{"shl", [2]byte{0x83, 0x3E}, "0200 - SHL    V3"},
		{"ld i", [2]byte{0xA2, 0x06}, "0200 - LD     I, #0206"},
		{"rnd", [2]byte{0xC6, 0x3F}, "0200 - RND    V6, #3F"},
		{"drw", [2]byte{0xD1, 0x25}, "0200 - DRW    V1, V2, 5"},
		{"skp", [2]byte{0xE7, 0x9E}, "0200 - SKP    V7"},
		{"sknp", [2]byte{0xE7, 0xA1}, "0200 - SKNP   V7"},
		{"ld from dt", [2]byte{0xF4, 0x07}, "0200 - LD     V4, DT"},
		{"ld key", [2]byte{0xF5, 0x0A}, "0200 - LD     V5, K"},
		{"ld dt", [2]byte{0xF4, 0x15}, "0200 - LD     DT, V4"},
		{"ld st", [2]byte{0xF5, 0x18}, "0200 - LD     ST, V5"},
		{"add i", [2]byte{0xF1, 0x1E}, "0200 - ADD    I, V1"},
		{"ld font", [2]byte{0xF1, 0x29}, "0200 - LD     F, V1"},
		{"ld bcd", [2]byte{0xF3, 0x33}, "0200 - LD     B, V3"},
		{"save regs", [2]byte{0xF2, 0x55}, "0200 - LD     [I], V2"},
		{"load regs", [2]byte{0xF2, 0x65}, "0200 - LD     V2, [I]"},
		{"empty", [2]byte{0x00, 0x00}, "0200 -"},
		{"unknown", [2]byte{0x0F, 0xFF}, "0200 - ??"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := boot(t, tt.code[0], tt.code[1])

			if got := vm.Disassemble(chip8.StartAddr); got != tt.want {
				t.Errorf("Disassemble() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisassembleOutOfRange(t *testing.T) {
	vm := chip8.New()

	if got := vm.Disassemble(chip8.MemSize - 1); got != "" {
		t.Errorf("Disassemble() = %q, want empty", got)
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	out := asm(t, "        LD      V1, #0A")

	vm := chip8.New()
	if err := vm.Load(out.ROM); err != nil {
		t.Fatal(err)
	}

	if got, want := vm.Disassemble(chip8.StartAddr), "0200 - LD     V1, #0A"; got != want {
		t.Errorf("Disassemble() = %q, want %q", got, want)
	}
}
