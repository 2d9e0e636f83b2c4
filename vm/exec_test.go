package vm

import (
	"testing"

	"github.com/learnisa-toolchain/learnisa/asm"
	"github.com/learnisa-toolchain/learnisa/image"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func assembleAndStep(t *testing.T, src string) *CPU {
	t.Helper()
	res, err := asm.Assemble(src, asm.Width64, nil)
	require.NoError(t, err)
	c := New(Width64)
	require.NoError(t, c.Load(res.Image))
	return c
}

func TestMovIsFlagIdempotent(t *testing.T) {
	c := assembleAndStep(t, `.code
MOV R0, R0
HALT`)
	c.Registers[0] = 42
	c.Flags = Flags{Z: true, S: false, C: true, O: false}
	before := c.Flags

	require.NoError(t, c.Step())
	require.Equal(t, before, c.Flags)
	require.EqualValues(t, 42, c.Registers[0])
}

func TestCallReturnRestoresPCAndSP(t *testing.T) {
	c := assembleAndStep(t, `.code
CALL callee
HALT
callee:
RET`)
	topSP := c.SP

	require.NoError(t, c.Step()) // CALL
	require.NotEqual(t, topSP, c.SP, "CALL pushes a return address")
	require.NoError(t, c.Step()) // RET
	require.Equal(t, topSP, c.SP, "RET pops the return address back off")
	require.EqualValues(t, 1+8, c.PC, "PC lands on the instruction right after CALL")
}

func TestBranchNotTakenAdvancesByBaseLength(t *testing.T) {
	c := assembleAndStep(t, `.code
CMP R0, R1
JNZ target
HALT
target:
NOP`)
	require.NoError(t, c.Step()) // CMP R0,R1 -> equal, Z=1
	pc := c.PC

	require.NoError(t, c.Step()) // JNZ not taken: Z=1
	require.EqualValues(t, pc+9, c.PC, "a not-taken branch advances by base length (1 opcode + 8 address bytes)")
}

func TestStoreLoadEndianness(t *testing.T) {
	// 0x0102030405060708 in decimal: a decimal literal loads as an
	// immediate value, while the same pattern written in hex would load
	// as an absolute address instead.
	res, err := asm.Assemble(`.data
buf .word 0 0
.code
LD R0, 72623859790382856
SD R0, buf
LD R2, buf
LB R1, [R2]
HALT`, asm.Width64, nil)
	require.NoError(t, err)

	c := New(Width64)
	require.NoError(t, c.Load(res.Image))
	require.NoError(t, c.RunProgram())

	require.EqualValues(t, 0x08, c.Registers[1], "the low byte of a little-endian store is read back first")

	addr := res.Program.Symbols["buf"]
	require.Equal(t, byte(0x08), c.Memory[addr])
	require.Equal(t, byte(0x01), c.Memory[addr+7])
}

func TestSegmentationFaultOnOutOfRangeLoad(t *testing.T) {
	c := New(Width64)
	_, err := c.fetchByte(c.Width.MemSize())
	require.ErrorIs(t, err, ErrSegmentationFault)
}

func TestLoadRejectsOversizedImage(t *testing.T) {
	// DataLength/CodeLength are uint16 fields, so only the 16-bit data
	// path's smaller memory can actually be overrun by a declared length.
	c := New(Width16)
	header := image.Pack(60000, 60000)
	err := c.Load(header)
	require.ErrorIs(t, errors.Cause(err), image.ErrImageTooLarge)
}
