package vm

import (
	"encoding/binary"

	"github.com/learnisa-toolchain/learnisa/isa"
)

// fetchByte reads one byte of memory, faulting rather than wrapping when the
// address is out of range. This is a deliberate hardening deviation from the
// original interpreter's modulo-wrapped addressing — see DESIGN.md.
func (c *CPU) fetchByte(addr uint64) (byte, error) {
	if addr >= uint64(len(c.Memory)) {
		return 0, ErrSegmentationFault
	}
	return c.Memory[addr], nil
}

func (c *CPU) storeByte(addr uint64, v byte) error {
	if addr >= uint64(len(c.Memory)) {
		return ErrSegmentationFault
	}
	c.Memory[addr] = v
	return nil
}

func (c *CPU) readUint16At(addr uint64) (uint16, error) {
	if addr+2 > uint64(len(c.Memory)) {
		return 0, ErrSegmentationFault
	}
	return binary.LittleEndian.Uint16(c.Memory[addr : addr+2]), nil
}

// readAddrAt reads one address-sized (width-dependent) little-endian value.
func (c *CPU) readAddrAt(addr uint64) (uint64, error) {
	return c.readUintAt(addr, c.Width.Bytes())
}

func (c *CPU) readUintAt(addr uint64, n int) (uint64, error) {
	if addr+uint64(n) > uint64(len(c.Memory)) {
		return 0, ErrSegmentationFault
	}
	switch n {
	case 1:
		return uint64(c.Memory[addr]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(c.Memory[addr : addr+2])), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(c.Memory[addr : addr+4])), nil
	case 8:
		return binary.LittleEndian.Uint64(c.Memory[addr : addr+8]), nil
	}
	return 0, ErrIllegalOperation
}

func (c *CPU) writeUintAt(addr uint64, n int, v uint64) error {
	if addr+uint64(n) > uint64(len(c.Memory)) {
		return ErrSegmentationFault
	}
	switch n {
	case 1:
		c.Memory[addr] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(c.Memory[addr:addr+2], uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(c.Memory[addr:addr+4], uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(c.Memory[addr:addr+8], v)
	default:
		return ErrIllegalOperation
	}
	return nil
}

// execLoadStore decodes and executes one LH/LW/LD/SH/SW/SD instruction. The
// addressing byte at PC+1 selects one of four load modes (register,
// indirect, immediate, absolute) or one of two store modes (indirect,
// absolute); rx sits at PC+2, and the mode-specific operand follows at PC+3.
func (c *CPU) execLoadStore(op isa.Opcode) error {
	addrByte, err := c.fetchByte(c.PC + 1)
	if err != nil {
		return err
	}
	rx, err := c.regAt(c.PC + 2)
	if err != nil {
		return err
	}
	datumWidth := isa.DatumWidth(op)

	if isa.IsLoad(op) {
		switch addrByte {
		case isa.AddrRegister:
			ry, err := c.regAt(c.PC + 3)
			if err != nil {
				return err
			}
			c.Registers[rx] = c.Registers[ry] & c.Width.Mask()
		case isa.AddrIndirect:
			ry, err := c.regAt(c.PC + 3)
			if err != nil {
				return err
			}
			v, err := c.readUintAt(c.Registers[ry], datumWidth)
			if err != nil {
				return err
			}
			c.Registers[rx] = v
		case isa.AddrImmediate:
			v, err := c.readUintAt(c.PC+3, datumWidth)
			if err != nil {
				return err
			}
			c.Registers[rx] = v
		case isa.AddrAbsolute:
			addr, err := c.readUintAt(c.PC+3, datumWidth)
			if err != nil {
				return err
			}
			v, err := c.readUintAt(addr, datumWidth)
			if err != nil {
				return err
			}
			c.Registers[rx] = v
		default:
			return ErrIllegalOperation
		}
		return nil
	}

	// Store: only indirect and absolute modes exist.
	switch addrByte {
	case isa.AddrIndirect:
		ry, err := c.regAt(c.PC + 3)
		if err != nil {
			return err
		}
		return c.writeUintAt(c.Registers[ry], datumWidth, c.Registers[rx])
	case isa.AddrAbsolute:
		addr, err := c.readUintAt(c.PC+3, datumWidth)
		if err != nil {
			return err
		}
		return c.writeUintAt(addr, datumWidth, c.Registers[rx])
	default:
		return ErrIllegalOperation
	}
}
