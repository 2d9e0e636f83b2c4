package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataDirectiveFootprints(t *testing.T) {
	src := `.data
b .byte 1 2 3
w .word 1 2
s .asciiz "Hi"
n 1234
.code
HALT`
	prog, err := Resolve(Clean(src), Width64)
	require.NoError(t, err)

	require.EqualValues(t, 0, prog.Symbols["b"])
	require.EqualValues(t, 3, prog.Symbols["w"])
	require.EqualValues(t, 3+2*4, prog.Symbols["s"])
	require.EqualValues(t, 3+2*4+3, prog.Symbols["n"])
	require.EqualValues(t, 3+2*4+3+2, prog.DataLength)
}

func TestResolveCodeLabelAddress(t *testing.T) {
	src := `.data
s .asciiz "Hi"
.code
start: NOP
loop: DEC R0`
	prog, err := Resolve(Clean(src), Width64)
	require.NoError(t, err)

	require.EqualValues(t, prog.DataLength+0, prog.Symbols["start"])
	require.EqualValues(t, prog.DataLength+1, prog.Symbols["loop"])
}

func TestResolveDuplicateSymbolIsFatal(t *testing.T) {
	src := `.data
x .byte 1
x .byte 2`
	_, err := Resolve(Clean(src), Width64)
	require.Error(t, err)
}

func TestResolveLoadLengthLookahead(t *testing.T) {
	src := `.code
LD R0, R1
LD R0, [R1]
LD R0, 30
LD R0, 0x10`
	prog, err := Resolve(Clean(src), Width64)
	require.NoError(t, err)
	require.Equal(t, 4, prog.Code[0].Length)
	require.Equal(t, 4, prog.Code[1].Length)
	require.Equal(t, 11, prog.Code[2].Length)
	require.Equal(t, 11, prog.Code[3].Length)
}

func TestResolveStoreLengthAsymmetry(t *testing.T) {
	src := `.data
s .byte 1
.code
SD R0, [R1]
SD R0, s
SD R0, 0x10`
	prog, err := Resolve(Clean(src), Width64)
	require.NoError(t, err)
	require.Equal(t, 4, prog.Code[0].Length, "indirect store is short")
	require.Equal(t, 11, prog.Code[1].Length, "symbol store is long")
	require.Equal(t, 11, prog.Code[2].Length, "hex literal store is long")
}

func TestResolveAddrWidthScalesWithRevision(t *testing.T) {
	src := `.code
JMP 0x10`
	prog64, err := Resolve(Clean(src), Width64)
	require.NoError(t, err)
	require.Equal(t, 9, prog64.Code[0].Length)

	prog16, err := Resolve(Clean(src), Width16)
	require.NoError(t, err)
	require.Equal(t, 3, prog16.Code[0].Length)
}
