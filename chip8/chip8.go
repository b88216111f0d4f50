package chip8

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	/// ScreenWidth and ScreenHeight are the display dimensions in pixels.
	///
	ScreenWidth  = 64
	ScreenHeight = 32

	/// MemSize is the amount of addressable memory.
	///
	MemSize = 0x1000

	/// StartAddr is where program images load and execution begins.
	///
	StartAddr = 0x200
)

const (
	fontAddr   = 0x0
	fontHeight = 5

	numKeys   = 16
	stackSize = 16
)

/// Faults that stop the machine. A program that trips one of these is
/// corrupt or incompatible; there is no recovery short of a reset.
///
var (
	ErrProgramTooLarge = errors.New("program too large to fit in memory")
	ErrStackOverflow   = errors.New("stack overflow")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrBadAddress      = errors.New("memory access out of bounds")
	ErrBadKey          = errors.New("key index out of range")
)

/// VM is a CHIP-8 virtual machine.
///
type VM struct {
	/// Memory addressable by CHIP-8. The first 512 bytes are reserved;
	/// the font sprites occupy the bottom of them. Programs load at
	/// 0x200.
	///
	Memory [MemSize]byte

	/// V are the 16 virtual registers. VF doubles as the implicit
	/// carry, borrow, and collision flag.
	///
	V [16]byte

	/// I is the address register. It is a full 16 bits and ADD I, VX
	/// lets it run past the end of Memory; opcodes that dereference it
	/// bounds check the access instead of clamping.
	///
	I uint16

	/// PC is the program counter. All programs begin at 0x200.
	///
	PC uint16

	/// Stack holds subroutine return addresses, at most 16 deep. SP
	/// indexes the next free cell.
	///
	Stack [stackSize]uint16
	SP    byte

	/// Screen is the monochrome display, row-major, one bool per pixel
	/// (index = x + ScreenWidth*y). Pixels are only ever flipped by DRW
	/// and cleared by CLS.
	///
	Screen [ScreenWidth * ScreenHeight]bool

	/// Keys holds the current state of the 16-key pad. Only SetKey
	/// writes to it.
	///
	Keys [numKeys]bool

	/// DT and ST are the delay and sound timers. They count down to 0
	/// at 60Hz, driven externally through StepTimers.
	///
	DT byte
	ST byte

	/// Strict switches 5XY0, FX33, FX55 and FX65 to their COSMAC VIP
	/// semantics. The default reproduces this interpreter's historical
	/// quirks; see the notes on each opcode.
	///
	Strict bool

	// rnd drives the RND opcode; see Seed
	rnd *rand.Rand
}

/// New creates a CHIP-8 virtual machine at its power-on state.
///
func New() *VM {
	vm := &VM{}
	vm.Reset()

	return vm
}

/// Reset returns the machine to its power-on state: memory, registers,
/// stack, display, keys and timers cleared and the font table reloaded.
/// Any loaded program is discarded; the caller must Load again.
///
func (vm *VM) Reset() {
	vm.Memory = [MemSize]byte{}

	// preload the font sprites
	copy(vm.Memory[fontAddr:], font[:])

	// clear the display and key pad
	vm.Screen = [ScreenWidth * ScreenHeight]bool{}
	vm.Keys = [numKeys]bool{}

	// reset registers and the stack
	vm.V = [16]byte{}
	vm.Stack = [stackSize]uint16{}
	vm.SP = 0
	vm.I = 0
	vm.PC = StartAddr

	// reset timers
	vm.DT = 0
	vm.ST = 0

	if vm.rnd == nil {
		vm.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

/// Seed pins the source of randomness used by the RND opcode so that
/// runs are reproducible.
///
func (vm *VM) Seed(seed int64) {
	vm.rnd = rand.New(rand.NewSource(seed))
}

/// Load copies a program image into memory at 0x200. The image is raw,
/// big-endian instruction words with no header.
///
func (vm *VM) Load(program []byte) error {
	if len(program) > MemSize-StartAddr {
		return fmt.Errorf("%w: %d bytes", ErrProgramTooLarge, len(program))
	}

	copy(vm.Memory[StartAddr:], program)

	return nil
}

/// Pixels returns a snapshot of the display, row-major.
///
func (vm *VM) Pixels() []bool {
	p := make([]bool, len(vm.Screen))
	copy(p, vm.Screen[:])

	return p
}

/// SetKey records a key of the 16-key pad being pressed or released.
///
func (vm *VM) SetKey(key uint, pressed bool) error {
	if key >= numKeys {
		return fmt.Errorf("%w: %d", ErrBadKey, key)
	}

	vm.Keys[key] = pressed

	return nil
}

/// StepTimers advances both countdown timers one tick. Call it at 60Hz,
/// independent of the instruction rate. It reports true exactly when
/// the sound timer reaches zero, the cue for the driver to beep.
///
func (vm *VM) StepTimers() bool {
	if vm.DT > 0 {
		vm.DT--
	}

	if vm.ST > 0 {
		vm.ST--

		return vm.ST == 0
	}

	return false
}

/// Step runs a single fetch-decode-execute cycle.
///
func (vm *VM) Step() error {
	inst, err := vm.fetch()
	if err != nil {
		return err
	}

	// 12-bit address operand
	a := inst & 0xFFF

	// byte and nibble operands
	b := byte(inst & 0xFF)
	n := byte(inst & 0xF)

	// x and y register operands
	x := inst >> 8 & 0xF
	y := inst >> 4 & 0xF

	// instruction decoding
	switch {
	case inst == 0x0000:
		// no-op
	case inst == 0x00E0:
		vm.cls()
	case inst == 0x00EE:
		return vm.ret()
	case inst&0xF000 == 0x1000:
		vm.jump(a)
	case inst&0xF000 == 0x2000:
		return vm.call(a)
	case inst&0xF000 == 0x3000:
		vm.skipIf(x, b)
	case inst&0xF000 == 0x4000:
		vm.skipIfNot(x, b)
	case inst&0xF00F == 0x5000:
		vm.skipIfXY(x, y)
	case inst&0xF000 == 0x6000:
		vm.loadX(x, b)
	case inst&0xF000 == 0x7000:
		vm.addX(x, b)
	case inst&0xF00F == 0x8000:
		vm.loadXY(x, y)
	case inst&0xF00F == 0x8001:
		vm.or(x, y)
	case inst&0xF00F == 0x8002:
		vm.and(x, y)
	case inst&0xF00F == 0x8003:
		vm.xor(x, y)
	case inst&0xF00F == 0x8004:
		vm.addXY(x, y)
	case inst&0xF00F == 0x8005:
		vm.subXY(x, y)
	case inst&0xF00F == 0x8006:
		vm.shr(x)
	case inst&0xF00F == 0x8007:
		vm.subYX(x, y)
	case inst&0xF00F == 0x800E:
		vm.shl(x)
	case inst&0xF00F == 0x9000:
		vm.skipIfNotXY(x, y)
	case inst&0xF000 == 0xA000:
		vm.loadI(a)
	case inst&0xF000 == 0xB000:
		vm.jumpV0(a)
	case inst&0xF000 == 0xC000:
		vm.rand(x, b)
	case inst&0xF000 == 0xD000:
		return vm.drw(x, y, n)
	case inst&0xF0FF == 0xE09E:
		vm.skipIfPressed(x)
	case inst&0xF0FF == 0xE0A1:
		vm.skipIfNotPressed(x)
	case inst&0xF0FF == 0xF007:
		vm.loadXDT(x)
	case inst&0xF0FF == 0xF00A:
		vm.loadXK(x)
	case inst&0xF0FF == 0xF015:
		vm.loadDTX(x)
	case inst&0xF0FF == 0xF018:
		vm.loadSTX(x)
	case inst&0xF0FF == 0xF01E:
		vm.addIX(x)
	case inst&0xF0FF == 0xF029:
		vm.loadF(x)
	case inst&0xF0FF == 0xF033:
		return vm.loadB(x)
	case inst&0xF0FF == 0xF055:
		return vm.saveRegs(x)
	case inst&0xF0FF == 0xF065:
		return vm.loadRegs(x)
	default:
		return fmt.Errorf("invalid opcode: %04X", inst)
	}

	return nil
}

/// Fetch the next 16-bit instruction to execute. The program counter
/// advances past the instruction before it executes; this ordering is
/// load-bearing. Jumps and calls overwrite the already-advanced
/// counter, and the key wait steps it back to retry.
///
func (vm *VM) fetch() (uint16, error) {
	if int(vm.PC)+1 >= MemSize {
		return 0, fmt.Errorf("%w: PC=%04X", ErrBadAddress, vm.PC)
	}

	i := vm.PC

	// advance the program counter
	vm.PC += 2

	// return the 16-bit instruction
	return uint16(vm.Memory[i])<<8 | uint16(vm.Memory[i+1]), nil
}

/// Clear the display.
///
func (vm *VM) cls() {
	vm.Screen = [ScreenWidth * ScreenHeight]bool{}
}

/// call a subroutine at address.
///
func (vm *VM) call(address uint16) error {
	if int(vm.SP) >= stackSize {
		return ErrStackOverflow
	}

	// push the already-advanced program counter
	vm.Stack[vm.SP] = vm.PC
	vm.SP++

	// jump to address
	vm.PC = address

	return nil
}

/// return from subroutine.
///
func (vm *VM) ret() error {
	if vm.SP == 0 {
		return ErrStackUnderflow
	}

	// pop the return address into the program counter
	vm.SP--
	vm.PC = vm.Stack[vm.SP]

	return nil
}

/// jump to address.
///
func (vm *VM) jump(address uint16) {
	vm.PC = address
}

/// jump to address + v0.
///
func (vm *VM) jumpV0(address uint16) {
	vm.PC = address + uint16(vm.V[0])
}

/// skip next instruction if vx == n.
///
func (vm *VM) skipIf(x uint16, b byte) {
	if vm.V[x] == b {
		vm.PC += 2
	}
}

/// skip next instruction if vx != n.
///
func (vm *VM) skipIfNot(x uint16, b byte) {
	if vm.V[x] != b {
		vm.PC += 2
	}
}

/// skip next instruction if vx == vy.
///
/// The historical decode reuses the X field for both operands, so by
/// default this compares VX with itself and always skips. Strict mode
/// compares VX with VY.
///
func (vm *VM) skipIfXY(x, y uint16) {
	if !vm.Strict {
		y = x
	}

	if vm.V[x] == vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if vx != vy.
///
func (vm *VM) skipIfNotXY(x, y uint16) {
	if vm.V[x] != vm.V[y] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *VM) skipIfPressed(x uint16) {
	if vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *VM) skipIfNotPressed(x uint16) {
	if !vm.Keys[vm.V[x]&0xF] {
		vm.PC += 2
	}
}

/// load n into vx.
///
func (vm *VM) loadX(x uint16, b byte) {
	vm.V[x] = b
}

/// load vy into vx.
///
func (vm *VM) loadXY(x, y uint16) {
	vm.V[x] = vm.V[y]
}

/// load the delay timer into vx.
///
func (vm *VM) loadXDT(x uint16) {
	vm.V[x] = vm.DT
}

/// load vx into the delay timer.
///
func (vm *VM) loadDTX(x uint16) {
	vm.DT = vm.V[x]
}

/// load vx into the sound timer.
///
func (vm *VM) loadSTX(x uint16) {
	vm.ST = vm.V[x]
}

/// load vx with a key press, blocking by repetition: while no key is
/// down the program counter steps back over this instruction, so the
/// next cycle fetches it again. With keys down, the highest-indexed
/// one wins.
///
func (vm *VM) loadXK(x uint16) {
	key := -1

	for i := 0; i < numKeys; i++ {
		if vm.Keys[i] {
			key = i
		}
	}

	if key < 0 {
		vm.PC -= 2

		return
	}

	vm.V[x] = byte(key)
}

/// load the address register.
///
func (vm *VM) loadI(address uint16) {
	vm.I = address
}

/// store the BCD digits of vx at i, i+1, i+2.
///
/// By default the digits encoded are those of the register number x,
/// not the register's value. Strict mode encodes the value.
///
func (vm *VM) loadB(x uint16) error {
	if int(vm.I)+2 >= MemSize {
		return fmt.Errorf("%w: BCD at I=%04X", ErrBadAddress, vm.I)
	}

	v := byte(x)

	if vm.Strict {
		v = vm.V[x]
	}

	vm.Memory[vm.I+0] = v / 100
	vm.Memory[vm.I+1] = v / 10 % 10
	vm.Memory[vm.I+2] = v % 10

	return nil
}

/// load the font sprite address for vx into i.
///
func (vm *VM) loadF(x uint16) {
	vm.I = fontAddr + fontHeight*uint16(vm.V[x])
}

/// or vx with vy into vx.
///
func (vm *VM) or(x, y uint16) {
	vm.V[x] |= vm.V[y]
}

/// and vx with vy into vx.
///
func (vm *VM) and(x, y uint16) {
	vm.V[x] &= vm.V[y]
}

/// xor vx with vy into vx.
///
func (vm *VM) xor(x, y uint16) {
	vm.V[x] ^= vm.V[y]
}

/// shift vx left 1 bit; vf becomes the MSB before the shift.
///
func (vm *VM) shl(x uint16) {
	msb := vm.V[x] >> 7

	vm.V[x] <<= 1
	vm.V[0xF] = msb
}

/// shift vx right 1 bit; vf becomes the LSB before the shift.
///
func (vm *VM) shr(x uint16) {
	lsb := vm.V[x] & 1

	vm.V[x] >>= 1
	vm.V[0xF] = lsb
}

/// add n to vx, wrapping. The flag register is untouched.
///
func (vm *VM) addX(x uint16, b byte) {
	vm.V[x] += b
}

/// add vy to vx, wrapping; vf becomes the carry.
///
func (vm *VM) addXY(x, y uint16) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])

	vm.V[x] = byte(sum)

	if sum > 0xFF {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}
}

/// add vx to i, wrapping mod 65536.
///
func (vm *VM) addIX(x uint16) {
	vm.I += uint16(vm.V[x])
}

/// subtract vy from vx, wrapping; vf is 1 when vx was strictly greater
/// going in. Equal operands leave vf 0 even though nothing borrows.
///
func (vm *VM) subXY(x, y uint16) {
	noBorrow := vm.V[x] > vm.V[y]

	vm.V[x] -= vm.V[y]

	if noBorrow {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}
}

/// subtract vx from vy into vx; vf is 1 when vy was strictly greater.
///
func (vm *VM) subYX(x, y uint16) {
	noBorrow := vm.V[y] > vm.V[x]

	vm.V[x] = vm.V[y] - vm.V[x]

	if noBorrow {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}
}

/// load a random byte masked with n into vx.
///
func (vm *VM) rand(x uint16, b byte) {
	vm.V[x] = byte(vm.rnd.Intn(256)) & b
}

/// draw an n-row, 8-column sprite read from memory at i onto the
/// display at (vx, vy). Set sprite bits XOR their target pixel; both
/// coordinates wrap per pixel. vf is set when the draw turns any lit
/// pixel off.
///
func (vm *VM) drw(x, y uint16, n byte) error {
	if int(vm.I)+int(n) > MemSize {
		return fmt.Errorf("%w: sprite at I=%04X", ErrBadAddress, vm.I)
	}

	xc := uint(vm.V[x])
	yc := uint(vm.V[y])

	collision := false

	for row := uint(0); row < uint(n); row++ {
		bits := vm.Memory[uint(vm.I)+row]

		for col := uint(0); col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			px := (xc + col) % ScreenWidth
			py := (yc + row) % ScreenHeight
			i := px + ScreenWidth*py

			// a lit pixel going out is a collision
			collision = collision || vm.Screen[i]
			vm.Screen[i] = !vm.Screen[i]
		}
	}

	if collision {
		vm.V[0xF] = 1
	} else {
		vm.V[0xF] = 0
	}

	return nil
}

/// copy registers into memory starting at i.
///
/// The default bound is exclusive, v0..vx-1, so x=0 copies nothing.
/// Strict mode copies v0..vx inclusive.
///
func (vm *VM) saveRegs(x uint16) error {
	n := x

	if vm.Strict {
		n = x + 1
	}

	if int(vm.I)+int(n) > MemSize {
		return fmt.Errorf("%w: registers at I=%04X", ErrBadAddress, vm.I)
	}

	for i := uint16(0); i < n; i++ {
		vm.Memory[vm.I+i] = vm.V[i]
	}

	return nil
}

/// copy memory starting at i into registers. The same bound quirk as
/// saveRegs applies.
///
func (vm *VM) loadRegs(x uint16) error {
	n := x

	if vm.Strict {
		n = x + 1
	}

	if int(vm.I)+int(n) > MemSize {
		return fmt.Errorf("%w: registers at I=%04X", ErrBadAddress, vm.I)
	}

	for i := uint16(0); i < n; i++ {
		vm.V[i] = vm.Memory[vm.I+i]
	}

	return nil
}
