/* Copyright (c) 2021 K. Marberry
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

import (
	"bufio"
	"bytes"
	"fmt"
)

/// Assembly is a completely assembled source file.
///
type Assembly struct {
	/// ROM is the final, assembled bytes to load.
	///
	ROM []byte

	/// Labels maps label names to their resolved token (an address
	/// literal for plain labels, whatever was assigned for EQU/VAR).
	///
	Labels map[string]token

	/// Unresolved maps ROM offsets awaiting a label address.
	///
	Unresolved map[int]string
}

/// Assemble an input CHIP-8 source file into a ROM image ready for
/// Load. Mnemonics follow the Disassemble listing format: labels start
/// a line with a dot, everything else is indented, and literals are
/// written as #hex, $binary (dots allowed as zeros), or decimal.
///
func Assemble(program []byte) (out *Assembly, err error) {
	var line int

	out = &Assembly{
		ROM:        make([]byte, StartAddr, MemSize),
		Labels:     make(map[string]token),
		Unresolved: make(map[int]string),
	}

	// scanner and directive faults carry the offending line number
	defer func() {
		if r := recover(); r != nil {
			if line > 0 {
				err = fmt.Errorf("line %d - %v", line, r)
			} else {
				err = fmt.Errorf("%v", r)
			}

			out = nil
		}
	}()

	// create a simple line scanner over the file
	reader := bytes.NewReader(bytes.ToUpper(program))
	scanner := bufio.NewScanner(reader)

	// parse and assemble
	for line = 1; scanner.Scan(); line++ {
		out.assemble(&tokenScanner{bytes: scanner.Bytes()})
	}

	// clear the line number, the per-line work is done
	line = 0

	// resolve all label addresses
	for address, label := range out.Unresolved {
		if t, ok := out.Labels[label]; ok {
			if t.kind != tokenLit {
				panic(fmt.Errorf("label %s does not resolve to an address", label))
			}

			msb := byte(t.val.(int) >> 8)
			lsb := byte(t.val.(int) & 0xFF)

			// the patch works because every label lands in a 12-bit
			// address operand (JP, CALL, LD I, JP V0) or a WORD, so the
			// opcode nibble in the high byte survives the OR
			out.ROM[address] = msb | (out.ROM[address] & 0xF0)
			out.ROM[address+1] = lsb

			delete(out.Unresolved, address)
		}
	}

	// anything left is a reference without a label
	for _, label := range out.Unresolved {
		panic(fmt.Errorf("unresolved label: %s", label))
	}

	// drop the reserved 512 bytes from the image
	out.ROM = out.ROM[StartAddr:]

	return
}

/// Assemble a single line into the assembly.
///
func (a *Assembly) assemble(s *tokenScanner) {
	t := s.scanToken()

	// assign labels
	if t.kind == tokenLabel {
		t = a.assembleLabel(t.val.(string), s)
	}

	switch {
	case t.kind == tokenInstruction:
		a.assembleInstruction(t.val.(string), s)
	case t.kind != tokenEnd:
		panic("unexpected token")
	}
}

/// Scan for a label and add it to the assembly. A bare label takes the
/// current address; EQU assigns a literal and VAR a v-register alias.
///
func (a *Assembly) assembleLabel(label string, s *tokenScanner) token {
	if _, exists := a.Labels[label]; exists {
		panic(fmt.Errorf("duplicate label: %s", label))
	}

	// by default, the label is assigned the current address
	a.Labels[label] = token{kind: tokenLit, val: len(a.ROM)}

	// scan the next token
	t := s.scanToken()

	// if EQU or VAR, reassign the label
	if t.kind == tokenEqu || t.kind == tokenVar {
		v := s.scanToken()

		// equ requires a literal, var requires a v-register
		if (t.kind == tokenEqu && v.kind == tokenLit) || (t.kind == tokenVar && v.kind == tokenV) {
			a.Labels[label] = v

			// should be the final token
			if t = s.scanToken(); t.kind == tokenEnd {
				return t
			}
		}

		panic("illegal label assignment")
	}

	return t
}

/// Compile a single instruction into the assembly.
///
func (a *Assembly) assembleInstruction(i string, s *tokenScanner) {
	tokens := s.scanOperands()

	switch i {
	case "CLS":
		a.ROM = append(a.ROM, a.assembleCLS(tokens)...)
	case "RET":
		a.ROM = append(a.ROM, a.assembleRET(tokens)...)
	case "JP":
		a.ROM = append(a.ROM, a.assembleJP(tokens)...)
	case "CALL":
		a.ROM = append(a.ROM, a.assembleCALL(tokens)...)
	case "SE":
		a.ROM = append(a.ROM, a.assembleSE(tokens)...)
	case "SNE":
		a.ROM = append(a.ROM, a.assembleSNE(tokens)...)
	case "SKP":
		a.ROM = append(a.ROM, a.assembleSKP(tokens)...)
	case "SKNP":
		a.ROM = append(a.ROM, a.assembleSKNP(tokens)...)
	case "OR":
		a.ROM = append(a.ROM, a.assembleOR(tokens)...)
	case "AND":
		a.ROM = append(a.ROM, a.assembleAND(tokens)...)
	case "XOR":
		a.ROM = append(a.ROM, a.assembleXOR(tokens)...)
	case "SHR":
		a.ROM = append(a.ROM, a.assembleSHR(tokens)...)
	case "SHL":
		a.ROM = append(a.ROM, a.assembleSHL(tokens)...)
	case "ADD":
		a.ROM = append(a.ROM, a.assembleADD(tokens)...)
	case "SUB":
		a.ROM = append(a.ROM, a.assembleSUB(tokens)...)
	case "SUBN":
		a.ROM = append(a.ROM, a.assembleSUBN(tokens)...)
	case "RND":
		a.ROM = append(a.ROM, a.assembleRND(tokens)...)
	case "DRW":
		a.ROM = append(a.ROM, a.assembleDRW(tokens)...)
	case "LD":
		a.ROM = append(a.ROM, a.assembleLD(tokens)...)
	case "BYTE":
		a.ROM = append(a.ROM, a.assembleBYTE(tokens)...)
	case "WORD":
		a.ROM = append(a.ROM, a.assembleWORD(tokens)...)
	case "ALIGN":
		a.ROM = append(a.ROM, a.assembleALIGN(tokens)...)
	case "PAD":
		a.ROM = append(a.ROM, a.assemblePAD(tokens)...)
	}
}

/// Expand a single operand. Label references become their assigned
/// token; unknown references become an address literal patched in the
/// resolution pass. The offset places the patch relative to the bytes
/// being assembled right now.
///
func (a *Assembly) expand(t token, off int) token {
	if t.kind == tokenRef {
		label := t.val.(string)

		if v, exists := a.Labels[label]; exists {
			return v
		}

		// add an unresolved address to patch later
		a.Unresolved[len(a.ROM)+off] = label

		return token{kind: tokenLit, val: StartAddr}
	}

	return t
}

/// Match the operand list against the wanted token kinds, expanding
/// label references along the way.
///
func (a *Assembly) assembleOperands(tokens []token, m ...tokenKind) ([]token, bool) {
	ops := make([]token, 0, 3)

	// the number of desired tokens should match
	if len(tokens) != len(m) {
		return nil, false
	}

	// expand and compare the token kinds
	for i, kind := range m {
		t := a.expand(tokens[i], 0)

		if t.kind != kind {
			return nil, false
		}

		ops = append(ops, t)
	}

	return ops, true
}

/// Assemble a CLS instruction.
///
func (a *Assembly) assembleCLS(tokens []token) []byte {
	if len(tokens) == 0 {
		return []byte{0x00, 0xE0}
	}

	panic("illegal instruction")
}

/// Assemble a RET instruction.
///
func (a *Assembly) assembleRET(tokens []token) []byte {
	if len(tokens) == 0 {
		return []byte{0x00, 0xEE}
	}

	panic("illegal instruction")
}

/// Assemble a JP instruction.
///
func (a *Assembly) assembleJP(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n < 0x1000 {
			return []byte{0x10 | byte(n>>8&0xF), byte(n & 0xFF)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		v := ops[0].val.(int)
		n := ops[1].val.(int)

		if v == 0 && n < 0x1000 {
			return []byte{0xB0 | byte(n>>8&0xF), byte(n & 0xFF)}
		}
	}

	panic("illegal instruction")
}

/// Assemble a CALL instruction.
///
func (a *Assembly) assembleCALL(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n < 0x1000 {
			return []byte{0x20 | byte(n>>8&0xF), byte(n & 0xFF)}
		}
	}

	panic("illegal instruction")
}

/// Assemble a SE instruction.
///
func (a *Assembly) assembleSE(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		if b < 0x100 {
			return []byte{0x30 | byte(x), byte(b)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x50 | byte(x), byte(y << 4)}
	}

	panic("illegal instruction")
}

/// Assemble a SNE instruction.
///
func (a *Assembly) assembleSNE(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		if b < 0x100 {
			return []byte{0x40 | byte(x), byte(b)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x90 | byte(x), byte(y << 4)}
	}

	panic("illegal instruction")
}

/// Assemble a SKP instruction.
///
func (a *Assembly) assembleSKP(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		x := ops[0].val.(int)

		return []byte{0xE0 | byte(x), 0x9E}
	}

	panic("illegal instruction")
}

/// Assemble a SKNP instruction.
///
func (a *Assembly) assembleSKNP(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		x := ops[0].val.(int)

		return []byte{0xE0 | byte(x), 0xA1}
	}

	panic("illegal instruction")
}

/// Assemble an OR instruction.
///
func (a *Assembly) assembleOR(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x01}
	}

	panic("illegal instruction")
}

/// Assemble an AND instruction.
///
func (a *Assembly) assembleAND(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x02}
	}

	panic("illegal instruction")
}

/// Assemble a XOR instruction.
///
func (a *Assembly) assembleXOR(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x03}
	}

	panic("illegal instruction")
}

/// Assemble a SHR instruction.
///
func (a *Assembly) assembleSHR(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		x := ops[0].val.(int)

		return []byte{0x80 | byte(x), byte(x<<4) | 0x06}
	}

	panic("illegal instruction")
}

/// Assemble a SHL instruction.
///
func (a *Assembly) assembleSHL(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV); ok {
		x := ops[0].val.(int)

		return []byte{0x80 | byte(x), byte(x<<4) | 0x0E}
	}

	panic("illegal instruction")
}

/// Assemble an ADD instruction.
///
func (a *Assembly) assembleADD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		if b < 0x100 {
			return []byte{0x70 | byte(x), byte(b)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x04}
	}

	if ops, ok := a.assembleOperands(tokens, tokenI, tokenV); ok {
		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x1E}
	}

	panic("illegal instruction")
}

/// Assemble a SUB instruction.
///
func (a *Assembly) assembleSUB(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x05}
	}

	panic("illegal instruction")
}

/// Assemble a SUBN instruction.
///
func (a *Assembly) assembleSUBN(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y<<4) | 0x07}
	}

	panic("illegal instruction")
}

/// Assemble a RND instruction.
///
func (a *Assembly) assembleRND(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		if b < 0x100 {
			return []byte{0xC0 | byte(x), byte(b)}
		}
	}

	panic("illegal instruction")
}

/// Assemble a DRW instruction.
///
func (a *Assembly) assembleDRW(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)
		n := ops[2].val.(int)

		if n < 0x10 {
			return []byte{0xD0 | byte(x), byte(y<<4) | byte(n)}
		}
	}

	panic("illegal instruction")
}

/// Assemble a LD instruction, in all its forms.
///
func (a *Assembly) assembleLD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenV, tokenLit); ok {
		x := ops[0].val.(int)
		b := ops[1].val.(int)

		if b < 0x100 {
			return []byte{0x60 | byte(x), byte(b)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenV); ok {
		x := ops[0].val.(int)
		y := ops[1].val.(int)

		return []byte{0x80 | byte(x), byte(y << 4)}
	}

	if ops, ok := a.assembleOperands(tokens, tokenI, tokenLit); ok {
		n := ops[1].val.(int)

		if n < 0x1000 {
			return []byte{0xA0 | byte(n>>8&0xF), byte(n & 0xFF)}
		}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenDT); ok {
		x := ops[0].val.(int)

		return []byte{0xF0 | byte(x), 0x07}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenK); ok {
		x := ops[0].val.(int)

		return []byte{0xF0 | byte(x), 0x0A}
	}

	if ops, ok := a.assembleOperands(tokens, tokenDT, tokenV); ok {
		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x15}
	}

	if ops, ok := a.assembleOperands(tokens, tokenST, tokenV); ok {
		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x18}
	}

	if ops, ok := a.assembleOperands(tokens, tokenF, tokenV); ok {
		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x29}
	}

	if ops, ok := a.assembleOperands(tokens, tokenB, tokenV); ok {
		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x33}
	}

	if ops, ok := a.assembleOperands(tokens, tokenAddress, tokenV); ok {
		if ops[0].val.(token).kind != tokenI {
			panic("illegal indirection")
		}

		x := ops[1].val.(int)

		return []byte{0xF0 | byte(x), 0x55}
	}

	if ops, ok := a.assembleOperands(tokens, tokenV, tokenAddress); ok {
		if ops[1].val.(token).kind != tokenI {
			panic("illegal indirection")
		}

		x := ops[0].val.(int)

		return []byte{0xF0 | byte(x), 0x65}
	}

	panic("illegal instruction")
}

/// Assemble a BYTE directive: literal bytes and strings.
///
func (a *Assembly) assembleBYTE(tokens []token) []byte {
	b := make([]byte, 0)

	for _, t := range tokens {
		op := a.expand(t, len(b))

		switch op.kind {
		case tokenLit:
			if op.val.(int) > 0xFF || op.val.(int) < -0x80 {
				panic("invalid byte")
			}

			b = append(b, byte(op.val.(int)))
		case tokenText:
			b = append(b, op.val.(string)...)
		default:
			panic("invalid byte")
		}
	}

	return b
}

/// Assemble a WORD directive: 16-bit values, MSB first. Labels are
/// allowed and patched during resolution.
///
func (a *Assembly) assembleWORD(tokens []token) []byte {
	b := make([]byte, 0)

	for _, t := range tokens {
		op := a.expand(t, len(b))

		if op.kind != tokenLit || op.val.(int) > 0xFFFF {
			panic("invalid word")
		}

		msb := op.val.(int) >> 8 & 0xFF
		lsb := op.val.(int) & 0xFF

		// store msb first
		b = append(b, byte(msb), byte(lsb))
	}

	return b
}

/// Assemble an ALIGN directive; pads to a power-of-two boundary.
///
func (a *Assembly) assembleALIGN(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n > 0 && n&(n-1) == 0 {
			offset := len(a.ROM) & (n - 1)

			if offset == 0 {
				return nil
			}

			// reserve bytes to meet the alignment
			return make([]byte, n-offset)
		}
	}

	panic("illegal alignment")
}

/// Assemble a PAD directive; reserves zeroed bytes.
///
func (a *Assembly) assemblePAD(tokens []token) []byte {
	if ops, ok := a.assembleOperands(tokens, tokenLit); ok {
		n := ops[0].val.(int)

		if n >= 0 && n < MemSize-len(a.ROM) {
			return make([]byte, n)
		}
	}

	panic("illegal size")
}
