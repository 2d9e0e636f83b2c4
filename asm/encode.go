package asm

import (
	"encoding/binary"

	"github.com/learnisa-toolchain/learnisa/isa"
	"github.com/pkg/errors"
)

// EncodeCode emits the complete code segment, returning one byte slice per
// instruction (in source order) alongside the concatenated whole, so the
// debug sidecar writer can line bytes back up with source.
func EncodeCode(prog *Program) ([][]byte, []byte, error) {
	addrWidth := prog.Width.AddrBytes()
	chunks := make([][]byte, 0, len(prog.Code))
	var code []byte

	for _, item := range prog.Code {
		op, ok := isa.Lookup(item.Mnemonic)
		if !ok {
			return nil, nil, errors.Errorf("line %d: unknown mnemonic %q", item.LineNo, item.Mnemonic)
		}

		operands, isSymbol := substituteSymbols(item.Operands, prog.Symbols)
		bytes, err := encodeInstruction(op, operands, isSymbol, prog, addrWidth)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d", item.LineNo)
		}
		if len(bytes) != item.Length {
			return nil, nil, errors.Errorf("line %d: internal error, pass 1 predicted %d bytes for %s but pass 2 emitted %d",
				item.LineNo, item.Length, item.Mnemonic, len(bytes))
		}

		chunks = append(chunks, bytes)
		code = append(code, bytes...)
	}
	return chunks, code, nil
}

// substituteSymbols replaces any operand token naming a known symbol with
// its numeric address, formatted as a hex literal so downstream numeric
// parsing is uniform, and reports which operands were substituted: that
// flag selects the lower-bound-0 relaxation in validateLowerBound, since a
// symbol may legitimately point into the data region. This mirrors the
// original encoder's substitution step, which runs before opcode dispatch.
func substituteSymbols(operands []string, symbols map[string]uint64) ([]string, []bool) {
	out := make([]string, len(operands))
	isSymbol := make([]bool, len(operands))
	copy(out, operands)
	for i, tok := range out {
		if addr, ok := symbols[tok]; ok {
			out[i] = hexLiteral(addr)
			isSymbol[i] = true
		}
	}
	return out, isSymbol
}

// validateLowerBound enforces that a non-symbol numeric operand addresses
// code or literals rather than the data region: it must be >= DataLength.
// A symbol-substituted operand relaxes this to 0, since labels may point
// anywhere in the image, including into data.
func validateLowerBound(val int64, isSymbol bool, prog *Program) error {
	if isSymbol {
		return nil
	}
	if val < 0 || uint64(val) < prog.DataLength {
		return errors.Errorf("numeric operand %d is below data length %d", val, prog.DataLength)
	}
	return nil
}

func hexLiteral(v uint64) string {
	return "0x" + formatHex(v)
}

func formatHex(v uint64) string {
	const digits = "0123456789ABCDEF"
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return string(buf[i:])
}

func encodeInstruction(op isa.Opcode, operands []string, isSymbol []bool, prog *Program, addrWidth int) ([]byte, error) {
	switch op.Kind() {
	case isa.KindNone:
		return []byte{byte(op)}, nil

	case isa.KindR:
		rx, err := regOperand(operands, 0)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), byte(rx)}, nil

	case isa.KindRR:
		rx, err := regOperand(operands, 0)
		if err != nil {
			return nil, err
		}
		ry, err := regOperand(operands, 1)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), byte(rx), byte(ry)}, nil

	case isa.KindRIndirect:
		rx, err := regOperand(operands, 0)
		if err != nil {
			return nil, err
		}
		ry, err := indirectOperand(operands, 1)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), byte(rx), byte(ry)}, nil

	case isa.KindPort:
		rx, err := regOperand(operands, 0)
		if err != nil {
			return nil, err
		}
		port, err := parseIntLiteral(operands[1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid port %q", operands[1])
		}
		buf := []byte{byte(op), byte(rx), 0, 0}
		binary.LittleEndian.PutUint16(buf[2:], uint16(port))
		return buf, nil

	case isa.KindAddr:
		addr, err := parseIntLiteral(operands[0])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid address %q", operands[0])
		}
		if err := validateLowerBound(addr, isSymbol[0], prog); err != nil {
			return nil, err
		}
		buf := make([]byte, 1+addrWidth)
		buf[0] = byte(op)
		putUintWidth(buf[1:], uint64(addr), addrWidth)
		return buf, nil

	case isa.KindLoadStore:
		if isa.IsLoad(op) {
			return encodeLoad(op, operands, isSymbol, prog)
		}
		return encodeStore(op, operands, isSymbol, prog)
	}
	return nil, errors.Errorf("unhandled opcode %s", op)
}

func regOperand(operands []string, idx int) (int, error) {
	if idx >= len(operands) {
		return 0, errors.Errorf("missing register operand")
	}
	return registerIndex(operands[idx])
}

func indirectOperand(operands []string, idx int) (int, error) {
	if idx >= len(operands) {
		return 0, errors.Errorf("missing indirect operand")
	}
	return indirectRegisterIndex(operands[idx])
}

func putUintWidth(dst []byte, v uint64, width int) {
	switch width {
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}

// encodeLoad implements the four-mode LOAD addressing dispatch
// (handle_load_byte_arr): register-to-register, indirect, immediate, or
// absolute. Register and indirect forms are recognized syntactically.
// A symbol-substituted operand always loads as an immediate — `LD R0, s`
// must yield the numeric address of `s`, not the value stored there (see
// DESIGN.md). An operand that is an explicit `0x...` literal in source
// loads as an absolute address instead (memory at that address), subject
// to the data-length lower bound; a plain decimal literal loads as an
// immediate.
func encodeLoad(op isa.Opcode, operands []string, isSymbol []bool, prog *Program) ([]byte, error) {
	rx, err := regOperand(operands, 0)
	if err != nil {
		return nil, err
	}
	datumWidth := isa.DatumWidth(op)
	operand := operands[1]

	switch {
	case isRegisterToken(operand):
		ry, err := registerIndex(operand)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), isa.AddrRegister, byte(rx), byte(ry)}, nil
	case isIndirectToken(operand):
		ry, err := indirectRegisterIndex(operand)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), isa.AddrIndirect, byte(rx), byte(ry)}, nil
	default:
		val, err := parseIntLiteral(operand)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid load operand %q", operand)
		}
		// A symbol-substituted operand always loads the symbol's numeric
		// address as an immediate (LD Rx, s must not dereference s). An
		// explicit `0x...` literal in source loads the value stored at
		// that absolute address instead, and is subject to the same
		// data-length lower bound as any other non-symbol address.
		mode := isa.AddrImmediate
		if !isSymbol[1] && isHexLiteral(operand) {
			if err := validateLowerBound(val, false, prog); err != nil {
				return nil, err
			}
			mode = isa.AddrAbsolute
		}
		buf := make([]byte, 3+datumWidth)
		buf[0] = byte(op)
		buf[1] = mode
		buf[2] = byte(rx)
		putUintWidth(buf[3:], uint64(val), datumWidth)
		return buf, nil
	}
}

// encodeStore implements the two-mode STORE addressing dispatch
// (handle_store_byte_arr): absolute or indirect only — there is no
// register-to-register or immediate store (see DESIGN.md). A
// symbol-substituted absolute operand is exempt from the data-length
// lower bound (a label may legitimately point into data); an explicit
// `0x...` literal absolute operand is not.
func encodeStore(op isa.Opcode, operands []string, isSymbol []bool, prog *Program) ([]byte, error) {
	rx, err := regOperand(operands, 0)
	if err != nil {
		return nil, err
	}
	datumWidth := isa.DatumWidth(op)
	operand := operands[1]

	if isIndirectToken(operand) {
		ry, err := indirectRegisterIndex(operand)
		if err != nil {
			return nil, err
		}
		return []byte{byte(op), isa.AddrIndirect, byte(rx), byte(ry)}, nil
	}

	val, err := parseIntLiteral(operand)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid store operand %q", operand)
	}
	if err := validateLowerBound(val, isSymbol[1], prog); err != nil {
		return nil, err
	}
	buf := make([]byte, 3+datumWidth)
	buf[0] = byte(op)
	buf[1] = isa.AddrAbsolute
	buf[2] = byte(rx)
	putUintWidth(buf[3:], uint64(val), datumWidth)
	return buf, nil
}
