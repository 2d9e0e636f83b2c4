package vm

import "encoding/binary"

// push writes width.Bytes() little-endian bytes at [SP-n..SP) and moves SP
// down. A push that would take SP below zero is a silent no-op — PC still
// advances, the caller handles that.
func (c *CPU) push(value uint64) {
	n := uint64(c.Width.Bytes())
	if c.SP < n {
		return
	}
	c.SP -= n
	putUintWidth(c.Memory[c.SP:c.SP+n], value, int(n))
}

// pop reads width.Bytes() little-endian bytes from [SP..SP+n), zeroes them
// and moves SP up. A pop that would take SP past the top of stack is a
// silent no-op returning 0.
func (c *CPU) pop() uint64 {
	n := uint64(c.Width.Bytes())
	if c.SP+n > c.Width.StackTop() {
		return 0
	}
	value := getUintWidth(c.Memory[c.SP:c.SP+n], int(n))
	for i := uint64(0); i < n; i++ {
		c.Memory[c.SP+i] = 0
	}
	c.SP += n
	return value
}

func putUintWidth(dst []byte, v uint64, width int) {
	switch width {
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}

func getUintWidth(src []byte, width int) uint64 {
	switch width {
	case 2:
		return uint64(binary.LittleEndian.Uint16(src))
	case 8:
		return binary.LittleEndian.Uint64(src)
	}
	return 0
}
