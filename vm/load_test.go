package vm

import (
	"testing"

	"github.com/learnisa-toolchain/learnisa/asm"
	"github.com/stretchr/testify/require"
)

func TestLoadResetsArchitecturalState(t *testing.T) {
	res, err := asm.Assemble(".code\nHALT", asm.Width64, nil)
	require.NoError(t, err)

	c := New(Width64)
	c.Registers[3] = 99
	c.Flags.Z = true
	require.NoError(t, c.Load(res.Image))

	require.EqualValues(t, 0, c.Registers[3])
	require.False(t, c.Flags.Z)
	require.Equal(t, c.Width.StackTop(), c.SP)
}

func TestLoadArgvMarshalsPointersInForwardPopOrder(t *testing.T) {
	c := New(Width64)
	top := c.SP
	c.LoadArgv([]string{"ab", "c"})

	argc := c.pop()
	require.EqualValues(t, 2, argc)

	firstPtr := c.pop()
	require.Equal(t, "ab", readCStringForTest(c, firstPtr))

	secondPtr := c.pop()
	require.Equal(t, "c", readCStringForTest(c, secondPtr))

	require.Equal(t, top, c.SP)
}

func readCStringForTest(c *CPU, addr uint64) string {
	return c.readCString(addr)
}
