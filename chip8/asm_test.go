package chip8_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kmarberry/chip-8/chip8"
)

/// asm assembles a source fragment, failing the test on error.
///
func asm(t *testing.T, src string) *chip8.Assembly {
	t.Helper()

	out, err := chip8.Assemble([]byte(src))
	if err != nil {
		t.Fatal(err)
	}

	return out
}

func TestAssembleInstructions(t *testing.T) {
	out := asm(t, `
        CLS
        LD      V0, #0A
        ADD     V0, 5
        LD      I, #20A
        DRW     V0, V1, 5
        RET
`)

	want := []byte{
		0x00, 0xE0,
		0x60, 0x0A,
		0x70, 0x05,
		0xA2, 0x0A,
		0xD0, 0x15,
		0x00, 0xEE,
	}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleRegisterOps(t *testing.T) {
	out := asm(t, `
        LD      V1, V2
        OR      V1, V2
        AND     V1, V2
        XOR     V1, V2
        ADD     V1, V2
        SUB     V1, V2
        SUBN    V1, V2
        SHR     V3
        SHL     V3
        SE      V1, V2
        SNE     V1, V2
`)

	want := []byte{
		0x81, 0x20,
		0x81, 0x21,
		0x81, 0x22,
		0x81, 0x23,
		0x81, 0x24,
		0x81, 0x25,
		0x81, 0x27,
		0x83, 0x36,
		0x83, 0x3E,
		0x51, 0x20,
		0x91, 0x20,
	}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleLoadForms(t *testing.T) {
	out := asm(t, `
        LD      V4, DT
        LD      DT, V4
        LD      ST, V5
        LD      V5, K
        LD      F, V1
        LD      B, V3
        LD      [I], V2
        LD      V2, [I]
        ADD     I, V1
        JP      V0, #300
        SKP     V7
        SKNP    V7
        RND     V6, #3F
`)

	want := []byte{
		0xF4, 0x07,
		0xF4, 0x15,
		0xF5, 0x18,
		0xF5, 0x0A,
		0xF1, 0x29,
		0xF3, 0x33,
		0xF2, 0x55,
		0xF2, 0x65,
		0xF1, 0x1E,
		0xB3, 0x00,
		0xE7, 0x9E,
		0xE7, 0xA1,
		0xC6, 0x3F,
	}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleLabels(t *testing.T) {
	// DONE is a forward reference patched during resolution, LOOP is
	// resolved inline
	out := asm(t, `
.MAIN
        CALL    DONE
.LOOP
        JP      LOOP
.DONE
        RET
`)

	want := []byte{
		0x22, 0x04,
		0x12, 0x02,
		0x00, 0xEE,
	}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}

	if len(out.Unresolved) != 0 {
		t.Errorf("%d labels left unresolved", len(out.Unresolved))
	}

	if len(out.Labels) != 3 {
		t.Errorf("%d labels recorded, want 3", len(out.Labels))
	}
}

func TestAssembleEquVar(t *testing.T) {
	out := asm(t, `
.SPEED  EQU     #42
.SCORE  VAR     VA
        LD      SCORE, SPEED
`)

	want := []byte{0x6A, 0x42}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleDirectives(t *testing.T) {
	out := asm(t, `
        BYTE    1, 2, "HI"
        WORD    #1234
        PAD     2
        BYTE    $1111....
`)

	want := []byte{1, 2, 'H', 'I', 0x12, 0x34, 0, 0, 0xF0}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleAlign(t *testing.T) {
	out := asm(t, `
        BYTE    1
        ALIGN   4
        BYTE    2
`)

	want := []byte{1, 0, 0, 0, 2}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}

	// aligning an already-aligned address reserves nothing
	out = asm(t, `
        WORD    #0102
        ALIGN   2
        BYTE    3
`)

	want = []byte{1, 2, 3}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleWordLabel(t *testing.T) {
	out := asm(t, `
        WORD    TABLE
.TABLE
        BYTE    #AA
`)

	want := []byte{0x02, 0x02, 0xAA}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleComments(t *testing.T) {
	out := asm(t, `
; a full-line comment
        CLS     ; a trailing comment
`)

	want := []byte{0x00, 0xE0}

	if diff := cmp.Diff(want, out.ROM); diff != "" {
		t.Errorf("ROM mismatch: (-want +got)\n%s", diff)
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"naked identifier", "BADOP"},
		{"missing operand", "        JP"},
		{"unresolved label", "        JP NOWHERE"},
		{"duplicate label", ".A\n.A"},
		{"byte out of range", "        LD V0, #100"},
		{"literal too wide", "        BYTE 300"},
		{"bad indirection", "        LD [V0], V1"},
		{"equ needs a literal", ".A EQU V0"},
		{"unterminated string", "        BYTE \"OOPS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := chip8.Assemble([]byte(tt.src))

			if err == nil {
				t.Fatal("Assemble() accepted bad source")
			}

			if out != nil {
				t.Error("Assemble() returned output alongside an error")
			}
		})
	}
}

func TestAssembleAndRun(t *testing.T) {
	out := asm(t, `
        LD      V0, 7
        ADD     V0, 8
`)

	vm := chip8.New()
	if err := vm.Load(out.ROM); err != nil {
		t.Fatal(err)
	}

	step(t, vm, 2)

	if vm.V[0] != 15 {
		t.Errorf("V0 = %d, want 15", vm.V[0])
	}
}
