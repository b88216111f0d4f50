package chip8

import (
	"fmt"
	"strconv"
	"strings"
)

/// Kind of scanned token.
///
type tokenKind uint

/// Lexical assembly tokens.
///
const (
	tokenEnd tokenKind = iota
	tokenChar
	tokenLabel
	tokenRef
	tokenInstruction
	tokenAddress
	tokenOperand
	tokenV
	tokenI
	tokenB
	tokenF
	tokenK
	tokenDT
	tokenST
	tokenLit
	tokenText
	tokenEqu
	tokenVar
)

/// A scanned lexical token. Some tokens carry a value: register number,
/// literal, identifier text, or a wrapped token.
///
type token struct {
	kind tokenKind
	val  interface{}
}

/// Token scanner over a single line of assembly source. The source is
/// upper-cased before scanning.
///
type tokenScanner struct {
	bytes []byte

	// scan position
	pos int
}

/// Reads the next token from the scanner.
///
func (s *tokenScanner) scanToken() token {
	for len(s.bytes) > s.pos && s.bytes[s.pos] < 33 {
		s.pos++
	}

	// at the end of the line?
	if len(s.bytes) <= s.pos {
		return token{kind: tokenEnd, val: ""}
	}

	// the next character decides the token
	c := s.bytes[s.pos]

	switch {
	case c == ';':
		return s.scanToEnd()
	case c == '.' && s.pos == 0:
		return s.scanLabel()
	case c == '[' && s.pos > 0:
		return s.scanIndirection()
	case c == ',' && s.pos > 0:
		return s.scanOperand()
	case c == '#' && s.pos > 0:
		return s.scanHexLit()
	case c == '$' && s.pos > 0:
		return s.scanBinLit()
	case c == '-' && s.pos > 0:
		return s.scanDecLit()
	case c >= '0' && c <= '9' && s.pos > 0:
		return s.scanDecLit()
	case c >= 'A' && c <= 'Z' && s.pos > 0:
		return s.scanIdentifier()
	case (c == '"' || c == '\'') && s.pos > 0:
		return s.scanString(c)
	}

	if s.pos == 0 {
		panic("expected .label")
	}

	return s.scanChar()
}

/// Scan a list of comma-separated tokens.
///
func (s *tokenScanner) scanOperands() []token {
	tokens := make([]token, 0, 3)

	for t := s.scanToken(); t.kind != tokenEnd; {
		tokens = append(tokens, t)

		// the next token is a comma or the end of the line
		t = s.scanToken()
		if t.kind == tokenEnd {
			break
		}

		if t.kind != tokenOperand {
			panic("unexpected token")
		}

		// expand the operand
		t = t.val.(token)
	}

	return tokens
}

/// Scan a single character.
///
func (s *tokenScanner) scanChar() token {
	i := s.pos

	// advance the scan pos
	s.pos++

	return token{kind: tokenChar, val: s.bytes[i]}
}

/// Scan to the end of the line (comments) and return.
///
func (s *tokenScanner) scanToEnd() token {
	text := string(s.bytes[s.pos:])

	// skip to the end
	s.pos = len(s.bytes)

	return token{kind: tokenEnd, val: strings.TrimSpace(text)}
}

/// Scan a comma-separated operand token.
///
func (s *tokenScanner) scanOperand() token {
	s.pos++

	// scan the next token as the operand
	t := s.scanToken()

	// make sure there was an operand
	if t.kind == tokenEnd {
		panic("expected operand")
	}

	return token{kind: tokenOperand, val: t}
}

/// Scan a label, which may only start a line.
///
func (s *tokenScanner) scanLabel() token {
	s.pos++

	// the first identifier character must be a letter
	if s.pos < len(s.bytes) && s.bytes[s.pos] >= 'A' && s.bytes[s.pos] <= 'Z' {
		if id := s.scanIdentifier(); id.kind == tokenRef {
			return token{kind: tokenLabel, val: id.val}
		}
	}

	panic("expected label")
}

/// Scan an identifier: instruction, register, directive, or label
/// reference.
///
func (s *tokenScanner) scanIdentifier() token {
	i := s.pos

	// advance to the first non-identifier character
	for ; s.pos < len(s.bytes); s.pos++ {
		c := s.bytes[s.pos]

		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			break
		}
	}

	id := string(s.bytes[i:s.pos])

	// v-registers
	if len(id) == 2 && id[0] == 'V' {
		if n := strings.IndexByte("0123456789ABCDEF", id[1]); n >= 0 {
			return token{kind: tokenV, val: n}
		}
	}

	switch id {
	case "I":
		return token{kind: tokenI}
	case "B":
		return token{kind: tokenB}
	case "F":
		return token{kind: tokenF}
	case "K":
		return token{kind: tokenK}
	case "D", "DT":
		return token{kind: tokenDT}
	case "S", "ST":
		return token{kind: tokenST}
	case "EQU":
		return token{kind: tokenEqu}
	case "VAR":
		return token{kind: tokenVar}
	case "CLS", "RET", "JP", "CALL", "SE", "SNE", "SKP", "SKNP", "LD",
		"OR", "AND", "XOR", "ADD", "SUB", "SUBN", "SHR", "SHL", "RND",
		"DRW", "BYTE", "WORD", "ALIGN", "PAD":
		return token{kind: tokenInstruction, val: id}
	}

	return token{kind: tokenRef, val: id}
}

/// Scan an indirect address, [I].
///
func (s *tokenScanner) scanIndirection() token {
	s.pos++

	// scan the token to take the address of
	t := s.scanToken()

	// the next token should close the indirection
	if c := s.scanToken(); c.kind != tokenChar || c.val.(byte) != ']' {
		panic("illegal indirection")
	}

	return token{kind: tokenAddress, val: t}
}

/// Scan a decimal literal.
///
func (s *tokenScanner) scanDecLit() token {
	i := s.pos

	// skip a unary minus negation
	if s.bytes[i] == '-' {
		s.pos++
	}

	// find the first non-numeric character
	for ; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte("0123456789", s.bytes[s.pos]) < 0 {
			break
		}
	}

	if n, err := strconv.ParseInt(string(s.bytes[i:s.pos]), 10, 32); err == nil {
		return token{kind: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal decimal value: %s", string(s.bytes[i:s.pos])))
}

/// Scan a hexadecimal literal, #NNN.
///
func (s *tokenScanner) scanHexLit() token {
	i := s.pos

	// find the first non-hex character
	for s.pos++; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte("0123456789ABCDEF", s.bytes[s.pos]) < 0 {
			break
		}
	}

	if n, err := strconv.ParseInt(string(s.bytes[i+1:s.pos]), 16, 32); err == nil {
		return token{kind: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal hex value: %s", string(s.bytes[i:s.pos])))
}

/// Scan a binary literal, $NNN. Dots read as zeros so sprite rows can
/// be drawn in source.
///
func (s *tokenScanner) scanBinLit() token {
	i := s.pos

	// find the first non-binary character
	for s.pos++; s.pos < len(s.bytes); s.pos++ {
		if strings.IndexByte(".01", s.bytes[s.pos]) < 0 {
			break
		}
	}

	v := strings.Replace(string(s.bytes[i+1:s.pos]), ".", "0", -1)

	if n, err := strconv.ParseInt(v, 2, 32); err == nil {
		return token{kind: tokenLit, val: int(n)}
	}

	panic(fmt.Errorf("illegal binary value: %s", string(s.bytes[i:s.pos])))
}

/// Scan a quoted string.
///
func (s *tokenScanner) scanString(term byte) token {
	s.pos++

	// store the starting position
	i := s.pos

	// find the terminating quotation
	for s.pos < len(s.bytes) && s.bytes[s.pos] != term {
		s.pos++
	}

	if s.pos >= len(s.bytes) {
		panic("unterminated string")
	}

	// skip past the terminator
	s.pos++

	return token{kind: tokenText, val: string(s.bytes[i : s.pos-1])}
}
