// Package vm implements the CPU state, fetch/decode/execute loop, ALU flag
// engine, stack discipline and syscall dispatcher for the instruction set
// described by package isa.
package vm

import (
	"bufio"
	"errors"
	"os"

	"github.com/learnisa-toolchain/learnisa/isa"
)

// NumRegisters is fixed at 32 regardless of revision: both the 16-bit and
// 64-bit data paths carry 32 general-purpose registers; only the register
// *width* is parameterized by W. See DESIGN.md.
const NumRegisters = isa.MaxRegisters

// Width selects the register/address width of the data path.
type Width int

const (
	Width16 Width = 16
	Width64 Width = 64
)

// MemSize is the size, in bytes, of the contiguous memory array for a
// given revision.
func (w Width) MemSize() uint64 {
	if w == Width16 {
		return 65536
	}
	return 4 * 1024 * 1024
}

// StackTop is the initial value of SP: one past the last valid stack
// address in the 16-bit data path, and an explicit reserved boundary in
// the 64-bit data path.
func (w Width) StackTop() uint64 {
	if w == Width16 {
		return w.MemSize()
	}
	return 0x3FFFFF
}

// HeapStart is where argv bytes are copied before the first fetch. The
// 64-bit value is a fixed constant, not derived from the other layout
// values.
func (w Width) HeapStart() uint64 {
	if w == Width16 {
		return 0x4000
	}
	return 0x100000
}

func (w Width) Bytes() int {
	return int(w) / 8
}

func (w Width) Mask() uint64 {
	if w == Width16 {
		return 0xFFFF
	}
	return ^uint64(0)
}

func (w Width) SignBit() uint64 {
	return uint64(1) << (uint(w) - 1)
}

func (w Width) OverflowBit() uint64 {
	return w.SignBit() - 1
}

// Flags is the Z/S/C/O boolean quad.
type Flags struct {
	Z, S, C, O bool
}

// CPU is the complete architectural state of one VM instance. PC and SP
// are dedicated fields rather than general-purpose registers: R0..R31 are
// all general-purpose by convention (R0 doubles as the syscall
// accumulator) with none architecturally reserved — see DESIGN.md.
type CPU struct {
	Registers [NumRegisters]uint64
	PC        uint64
	SP        uint64
	Flags     Flags

	Memory []byte
	Width  Width

	Files *FileTable

	Stdin  *bufio.Reader
	Stdout *bufio.Writer

	// Err holds the terminal condition once the run loop stops. nil while
	// running; ErrHalted on a clean HALT.
	Err error

	Debug *DebugState
}

var (
	ErrHalted             = errors.New("program halted")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrIllegalOperation   = errors.New("illegal operation")
	ErrSegmentationFault  = errors.New("segmentation fault")
	ErrIO                 = errors.New("input-output error")
)

// New allocates a CPU with zeroed registers/flags and SP at the top of the
// stack, ready to receive a loaded image.
func New(width Width) *CPU {
	return &CPU{
		Width:  width,
		Memory: make([]byte, width.MemSize()),
		SP:     width.StackTop(),
		Files:  NewFileTable(),
		Stdin:  bufio.NewReader(os.Stdin),
		Stdout: bufio.NewWriter(os.Stdout),
	}
}

// signed reinterprets the low W bits of v as a signed quantity, for
// conditional-branch and overflow computations.
func (c *CPU) signed(v uint64) int64 {
	v &= c.Width.Mask()
	if v&c.Width.SignBit() != 0 {
		return int64(v | ^c.Width.Mask())
	}
	return int64(v)
}
