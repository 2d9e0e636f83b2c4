package vm

import (
	"github.com/learnisa-toolchain/learnisa/image"
	"github.com/pkg/errors"
)

// Load validates and loads a binary image: the header is checked,
// stripped, and the data+code bytes are copied into memory starting at
// address 0. PC starts at ENTRY_POINT - HEADER_LENGTH (the header is
// stripped, so addresses become header-relative-turned-zero-based), SP at
// the top of stack, flags and registers zeroed, open files empty.
func (c *CPU) Load(raw []byte) error {
	h, err := image.Unpack(raw, int(c.Width.MemSize()))
	if err != nil {
		return errors.Wrap(err, "load image")
	}

	body := image.Body(raw, h)
	if len(body) > len(c.Memory) {
		return image.ErrImageTooLarge
	}
	copy(c.Memory, body)

	c.Registers = [NumRegisters]uint64{}
	c.Flags = Flags{}
	c.SP = c.Width.StackTop()
	c.PC = uint64(h.EntryPoint) - image.HeaderLength
	c.Files = NewFileTable()
	c.Err = nil
	return nil
}

// LoadArgv marshals argv into memory: each argument's bytes are
// copied NUL-terminated starting at HEAP_START, then pointers are pushed
// onto the stack in reverse order (so they pop in forward order),
// followed by argc.
func (c *CPU) LoadArgv(argv []string) {
	cursor := c.Width.HeapStart()
	pointers := make([]uint64, len(argv))

	for i, arg := range argv {
		pointers[i] = cursor
		cursor += uint64(copy(c.Memory[cursor:], arg))
		c.Memory[cursor] = 0
		cursor++
	}

	for i := len(pointers) - 1; i >= 0; i-- {
		c.push(pointers[i])
	}
	c.push(uint64(len(argv)))
}
