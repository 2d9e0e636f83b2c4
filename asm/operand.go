package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/learnisa-toolchain/learnisa/isa"
)

var (
	registerTokenRe = regexp.MustCompile(`^R([0-9]+)$`)
	indirectTokenRe = regexp.MustCompile(`^\[R([0-9]+)\]$`)
)

func isRegisterToken(tok string) bool { return registerTokenRe.MatchString(tok) }
func isIndirectToken(tok string) bool { return indirectTokenRe.MatchString(tok) }

func registerIndex(tok string) (int, error) {
	m := registerTokenRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("not a register token: %q", tok)
	}
	return validateRegisterIndex(m[1])
}

func indirectRegisterIndex(tok string) (int, error) {
	m := indirectTokenRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("not an indirect register token: %q", tok)
	}
	return validateRegisterIndex(m[1])
}

// validateRegisterIndex parses a register's digit string and rejects any
// index at or beyond the register file size.
func validateRegisterIndex(digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, err
	}
	if n < 0 || n >= isa.MaxRegisters {
		return 0, fmt.Errorf("register index R%d out of range (max R%d)", n, isa.MaxRegisters-1)
	}
	return n, nil
}

// parseCharLiteral parses a 'c' token into its ordinal value.
func parseCharLiteral(tok string) (int64, bool) {
	if len(tok) >= 3 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		r := []rune(tok[1 : len(tok)-1])
		if len(r) == 1 {
			return int64(r[0]), true
		}
	}
	return 0, false
}

// parseIntLiteral parses decimal, 0x/0b/0o-prefixed and char-literal
// integer tokens.
func parseIntLiteral(tok string) (int64, error) {
	if v, ok := parseCharLiteral(tok); ok {
		return v, nil
	}
	lower := strings.ToLower(tok)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseUint(tok[2:], 16, 64)
		return int64(v), err
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseUint(tok[2:], 2, 64)
		return int64(v), err
	case strings.HasPrefix(lower, "0o"):
		v, err := strconv.ParseUint(tok[2:], 8, 64)
		return int64(v), err
	default:
		return strconv.ParseInt(tok, 10, 64)
	}
}

func isHexLiteral(tok string) bool {
	return strings.HasPrefix(strings.ToLower(tok), "0x")
}

// stripQuotes trims a single layer of matching quote characters, used for
// .asciiz payloads and `'c'` literals embedded in .byte lists.
func stripQuotes(tok string) string {
	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}
