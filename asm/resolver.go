package asm

import (
	"fmt"
	"strings"

	"github.com/learnisa-toolchain/learnisa/isa"
	"github.com/pkg/errors"
)

// DataItem is one `.data` section entry: a named symbol plus the directive
// that defines its initial bytes.
type DataItem struct {
	Symbol    string
	Directive string // "byte", "word", "asciiz", "int" (bare literal)
	Operands  []string
	Offset    uint64
	Length    int
	LineNo    int
}

// CodeItem is one decoded `.code` section instruction, with its
// code-segment-relative offset already fixed by pass 1.
type CodeItem struct {
	Mnemonic string
	Operands []string
	Offset   uint64
	Length   int
	LineNo   int
}

// Program is the complete output of pass 1: the data and code item lists,
// the final data-length and the symbol table. Pass 2 (the encoder) never
// re-derives any of this; it only emits bytes.
type Program struct {
	Data       []DataItem
	Code       []CodeItem
	Symbols    map[string]uint64
	DataLength uint64
	Width      Width
}

// Resolve walks the cleaned line stream once, accumulating the data and
// code cursors and the symbol table. Sizing a load/store instruction
// does not require a completed symbol table: the addressing-byte
// selection that drives instruction length is decidable from operand
// syntax alone for loads, and from the growing symbol table for stores
// (matching the original assembler's own pass-1 behavior, including its
// assumption that `.data` is fully laid out before any `.code` label
// address is taken — see DESIGN.md).
func Resolve(lines []Line, width Width) (*Program, error) {
	prog := &Program{Symbols: make(map[string]uint64), Width: width}

	section := "code" // a program with no explicit .data/.code starts in code
	var dataCursor, codeCursor uint64

	declare := func(name string, lineNo int) error {
		if _, exists := prog.Symbols[name]; exists {
			return errors.Errorf("line %d: symbol %q already defined", lineNo, name)
		}
		return nil
	}

	for _, line := range lines {
		switch line.Tokens[0] {
		case ".data":
			section = "data"
			continue
		case ".code":
			section = "code"
			continue
		}

		if section == "data" {
			name := line.Tokens[0]
			if err := declare(name, line.Number); err != nil {
				return nil, err
			}
			if len(line.Tokens) < 2 {
				return nil, errors.Errorf("line %d: data symbol %q has no initializer", line.Number, name)
			}

			item := DataItem{Symbol: name, Offset: dataCursor, LineNo: line.Number}
			switch line.Tokens[1] {
			case ".byte":
				item.Directive = "byte"
				item.Operands = line.Tokens[2:]
				item.Length = len(item.Operands)
			case ".word":
				item.Directive = "word"
				item.Operands = line.Tokens[2:]
				item.Length = len(item.Operands) * width.WordBytes()
			case ".asciiz":
				item.Directive = "asciiz"
				item.Operands = line.Tokens[2:]
				item.Length = asciizLength(item.Operands) + 1
			default:
				item.Directive = "int"
				item.Operands = line.Tokens[1:]
				item.Length = bareIntBytes
			}

			prog.Symbols[name] = dataCursor
			prog.Data = append(prog.Data, item)
			dataCursor += uint64(item.Length)
			continue
		}

		// code section
		tok0 := line.Tokens[0]
		if strings.HasSuffix(tok0, ":") {
			name := strings.TrimSuffix(tok0, ":")
			if err := declare(name, line.Number); err != nil {
				return nil, err
			}
			prog.Symbols[name] = dataCursor + codeCursor

			rest := line.Tokens[1:]
			if len(rest) == 0 {
				continue
			}
			length, err := instructionLength(rest, prog.Symbols, width)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line.Number)
			}
			prog.Code = append(prog.Code, CodeItem{
				Mnemonic: rest[0], Operands: rest[1:],
				Offset: codeCursor, Length: length, LineNo: line.Number,
			})
			codeCursor += uint64(length)
			continue
		}

		length, err := instructionLength(line.Tokens, prog.Symbols, width)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line.Number)
		}
		prog.Code = append(prog.Code, CodeItem{
			Mnemonic: tok0, Operands: line.Tokens[1:],
			Offset: codeCursor, Length: length, LineNo: line.Number,
		})
		codeCursor += uint64(length)
	}

	prog.DataLength = dataCursor
	return prog, nil
}

// asciizLength returns the payload length (without terminator) of an
// .asciiz directive whose operand was re-split on whitespace by the
// lexer; tokens are rejoined with single spaces and outer quotes are
// stripped, matching the original's `" ".join(line[2:]).replace("'", "")`.
func asciizLength(operands []string) int {
	joined := strings.Join(operands, " ")
	joined = strings.Trim(joined, "\"'")
	return len(joined)
}

// instructionLength computes the number of bytes pass 2 will emit for a
// non-label instruction, without needing pass 2's fully resolved symbol
// table.
func instructionLength(tokens []string, symbols map[string]uint64, width Width) (int, error) {
	mnemonic := tokens[0]
	op, ok := isa.Lookup(mnemonic)
	if !ok {
		return 0, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	base := op.BaseLength(width.AddrBytes())
	if !isa.IsLoad(op) && !isa.IsStore(op) {
		return base, nil
	}
	if len(tokens) < 3 {
		return 0, fmt.Errorf("%s requires two operands", mnemonic)
	}
	operand := tokens[2]
	long := isa.LoadStoreLongLength(op)

	if isa.IsLoad(op) {
		if isRegisterToken(operand) || isIndirectToken(operand) {
			return base, nil
		}
		return long, nil
	}

	// Store: only a known symbol or an explicit 0x-literal widens the
	// instruction; everything else (including a bare `Rn`, `[Rn]`, or a
	// bare decimal that the store addressing modes don't actually
	// support) takes the short form. This mirrors the original
	// assembler's store-specific length check exactly; see DESIGN.md.
	if _, isSymbol := symbols[operand]; isSymbol {
		return long, nil
	}
	if isHexLiteral(operand) {
		return long, nil
	}
	return base, nil
}
