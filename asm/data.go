package asm

import (
	"github.com/pkg/errors"
)

// EncodeData emits the complete data segment described by prog.Data.
func EncodeData(prog *Program) ([]byte, error) {
	data := make([]byte, 0, prog.DataLength)
	for _, item := range prog.Data {
		chunk, err := encodeDataItem(item, prog.Width)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: symbol %q", item.LineNo, item.Symbol)
		}
		if len(chunk) != item.Length {
			return nil, errors.Errorf("line %d: symbol %q: pass 1 predicted %d bytes but pass 2 emitted %d",
				item.LineNo, item.Symbol, item.Length, len(chunk))
		}
		data = append(data, chunk...)
	}
	return data, nil
}

func encodeDataItem(item DataItem, width Width) ([]byte, error) {
	switch item.Directive {
	case "byte":
		out := make([]byte, 0, len(item.Operands))
		for _, tok := range item.Operands {
			v, err := parseIntLiteral(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, byte(v))
		}
		return out, nil

	case "word":
		wordBytes := width.WordBytes()
		out := make([]byte, 0, len(item.Operands)*wordBytes)
		for _, tok := range item.Operands {
			v, err := parseIntLiteral(tok)
			if err != nil {
				return nil, err
			}
			buf := make([]byte, wordBytes)
			putUintWidth(buf, uint64(v), wordBytes)
			out = append(out, buf...)
		}
		return out, nil

	case "asciiz":
		payload := stripQuotes(joinPayload(item.Operands))
		out := make([]byte, 0, len(payload)+1)
		out = append(out, []byte(payload)...)
		out = append(out, 0)
		return out, nil

	case "int":
		v, err := parseIntLiteral(item.Operands[0])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, bareIntBytes)
		putUintWidth(buf, uint64(v), bareIntBytes)
		return buf, nil
	}
	return nil, errors.Errorf("unknown data directive %q", item.Directive)
}

func joinPayload(operands []string) string {
	out := operands[0]
	for _, tok := range operands[1:] {
		out += " " + tok
	}
	return out
}
