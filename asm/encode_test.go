package asm

import (
	"testing"

	"github.com/learnisa-toolchain/learnisa/isa"
	"github.com/stretchr/testify/require"
)

func assembleFixture(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Assemble(src, Width64, nil)
	require.NoError(t, err)
	return res
}

func TestEncodeArithmeticScenario(t *testing.T) {
	res := assembleFixture(t, `.code
LD R0, 30
LD R1, 20
SUB R0, R1
HALT`)
	require.Len(t, res.Chunks, 4)
	require.Equal(t, byte(isa.LD), res.Chunks[0][0])
	require.Equal(t, isa.AddrImmediate, res.Chunks[0][1])
	require.Equal(t, byte(isa.SUB), res.Chunks[2][0])
	require.Equal(t, []byte{byte(isa.HALT)}, res.Chunks[3])
}

func TestEncodeLoadSymbolTakesImmediatePath(t *testing.T) {
	res := assembleFixture(t, `.data
s .asciiz "Hello"
.code
LD R0, s
SYS R0, 0x0006
HALT`)
	loadChunk := res.Chunks[0]
	require.Equal(t, byte(isa.LD), loadChunk[0])
	require.Equal(t, isa.AddrImmediate, loadChunk[1], "a symbol operand for LOAD takes the immediate path")
	require.EqualValues(t, 0, loadChunk[3]) // address of s is offset 0 in data segment
}

func TestEncodeStoreHasNoImmediateOrRegisterMode(t *testing.T) {
	res := assembleFixture(t, `.data
s .byte 0
.code
SD R0, s
SD R0, [R1]`)
	require.Equal(t, isa.AddrAbsolute, res.Chunks[0][1])
	require.Equal(t, isa.AddrIndirect, res.Chunks[1][1])
}

func TestEncodeHeaderConsistency(t *testing.T) {
	res := assembleFixture(t, `.data
s .asciiz "Hi"
.code
HALT`)
	require.EqualValues(t, 0x41, res.Image[0])
	require.EqualValues(t, 0x4E, res.Image[1])

	dataLen := int(res.Image[4]) | int(res.Image[5])<<8
	codeOffset := int(res.Image[6]) | int(res.Image[7])<<8
	entry := int(res.Image[10]) | int(res.Image[11])<<8
	require.Equal(t, 3, dataLen)
	require.Equal(t, 16+dataLen, codeOffset)
	require.Equal(t, codeOffset, entry)
}

func TestEncodeUnsignedWrapFixture(t *testing.T) {
	res := assembleFixture(t, `.code
LD R0, 0
DEC R0
HALT`)
	require.Len(t, res.Chunks, 3)
}

func TestEncodeRejectsRegisterIndexAtOrAboveMaxRegisters(t *testing.T) {
	_, err := Assemble(`.code
MOV R32, R0
HALT`, Width64, nil)
	require.Error(t, err)
}

func TestEncodeRejectsNonSymbolLiteralBelowDataLength(t *testing.T) {
	_, err := Assemble(`.data
s .byte 0 0 0 0
.code
JMP 0x1
HALT`, Width64, nil)
	require.Error(t, err)
}

func TestEncodeAllowsSymbolTargetBelowDataLength(t *testing.T) {
	res := assembleFixture(t, `.data
s .byte 0 0 0 0
.code
JMP s
target: HALT`)
	require.NotNil(t, res)
}

func TestEncodeLoadHexLiteralTakesAbsolutePath(t *testing.T) {
	res := assembleFixture(t, `.data
s .byte 0 0 0 0
.code
LD R0, 0x4
HALT`)
	require.Equal(t, isa.AddrAbsolute, res.Chunks[0][1], "an explicit 0x literal loads the value at that address, not the literal")
}
