package asm

import (
	"fmt"
	"sort"
	"strings"
)

// HexListing renders the `<out>.hex` sidecar: one line per emitted
// instruction, space-separated two-hex-digit bytes.
func HexListing(result *Result) string {
	var b strings.Builder
	for _, chunk := range result.Chunks {
		b.WriteString(hexLine(chunk))
		b.WriteByte('\n')
	}
	return b.String()
}

func hexLine(bytes []byte) string {
	parts := make([]string, len(bytes))
	for i, by := range bytes {
		parts[i] = fmt.Sprintf("%02X", by)
	}
	return strings.Join(parts, " ")
}

// DebugListing renders the `<out>.dbg` sidecar: a fixed-width table of
// address, source mnemonic and hex bytes, separated by a rule line.
func DebugListing(result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-30s %s\n", "ADDRESS", "INSTRUCTION", "HEX")
	b.WriteString(strings.Repeat("=", 60))
	b.WriteByte('\n')

	prog := result.Program
	for i, item := range prog.Code {
		addr := prog.DataLength + item.Offset
		source := item.Mnemonic
		if len(item.Operands) > 0 {
			source = source + " " + strings.Join(item.Operands, ", ")
		}
		fmt.Fprintf(&b, "%-10d %-30s %s\n", addr, source, hexLine(result.Chunks[i]))
	}
	return b.String()
}

// SymbolsListing renders the `<out>.symbols` sidecar: `name = address`
// lines, sorted by name for a stable diff-friendly output.
func SymbolsListing(prog *Program) string {
	names := make([]string, 0, len(prog.Symbols))
	for name := range prog.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s = %d\n", name, prog.Symbols[name])
	}
	return b.String()
}
