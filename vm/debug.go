package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// DebugState holds the optional step/debug harness attached to a CPU. It
// never alters architectural state; it only observes PC and pauses the
// run loop.
type DebugState struct {
	Symbols     map[string]uint64
	Breakpoints map[uint64]bool
	stepping    bool

	in  *bufio.Reader
	out io.Writer
}

// NewDebugState wires a debug harness reading commands from in and writing
// prompts/dumps to out, using a previously assembled symbol table to
// resolve breakpoint names to addresses.
func NewDebugState(symbols map[string]uint64, in io.Reader, out io.Writer) *DebugState {
	return &DebugState{
		Symbols:     symbols,
		Breakpoints: make(map[uint64]bool),
		stepping:    true,
		in:          bufio.NewReader(in),
		out:         out,
	}
}

// LoadSymbols parses a `.symbols` sidecar (`name = address` lines, as
// written by asm.SymbolsListing) into a name-to-address map.
func LoadSymbols(text string) (map[string]uint64, error) {
	symbols := make(map[string]uint64)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("symbols line %d: malformed %q", i+1, line)
		}
		name := strings.TrimSpace(parts[0])
		addr, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "symbols line %d", i+1)
		}
		symbols[name] = addr
	}
	return symbols, nil
}

// ShouldBreak reports whether execution should pause before the
// instruction at pc: either single-step mode is active, or pc matches an
// armed breakpoint.
func (d *DebugState) ShouldBreak(pc uint64) bool {
	if d == nil {
		return false
	}
	return d.stepping || d.Breakpoints[pc]
}

// Toggle arms or disarms a breakpoint named by a known symbol.
func (d *DebugState) Toggle(name string) error {
	addr, ok := d.Symbols[name]
	if !ok {
		return errors.Errorf("unknown symbol %q", name)
	}
	if d.Breakpoints[addr] {
		delete(d.Breakpoints, addr)
	} else {
		d.Breakpoints[addr] = true
	}
	return nil
}

// Prompt pauses before the next instruction and reads one command line:
// a blank line steps exactly one instruction, "c" disables single-step
// mode and resumes until the next breakpoint, "r" dumps register state,
// and anything else is treated as a symbol name to toggle as a
// breakpoint, after which the prompt repeats.
func (d *DebugState) Prompt(c *CPU) error {
	for {
		fmt.Fprintf(d.out, "[pc=0x%X] ", c.PC)
		line, err := d.in.ReadString('\n')
		if err != nil && line == "" {
			return ErrIO
		}
		cmd := strings.TrimSpace(line)

		switch cmd {
		case "":
			d.stepping = true
			return nil
		case "c":
			d.stepping = false
			return nil
		case "r":
			spew.Fdump(d.out, c.Registers)
			continue
		default:
			if err := d.Toggle(cmd); err != nil {
				fmt.Fprintln(d.out, err)
			}
			continue
		}
	}
}
