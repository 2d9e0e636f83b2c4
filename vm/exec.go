package vm

import (
	"github.com/learnisa-toolchain/learnisa/isa"
)

// Step executes exactly one instruction: it reads the opcode at PC,
// computes the actual instruction length (mode-dependent for load/store),
// dispatches, and advances or redirects PC. It returns ErrHalted on a
// clean HALT and any other sentinel error on a fatal fault. Soft faults
// do not return an error; PC simply advances.
func (c *CPU) Step() error {
	opByte, err := c.fetchByte(c.PC)
	if err != nil {
		return err
	}
	op := isa.Opcode(opByte)
	length, err := c.instructionLength(op)
	if err != nil {
		return err
	}

	nextPC := c.PC + uint64(length)

	switch op.Kind() {
	case isa.KindNone:
		switch op {
		case isa.NOP:
		case isa.RET:
			if c.SP+uint64(c.Width.Bytes()) > c.Width.StackTop() {
				break // stack underflow: soft fault, PC advances
			}
			c.PC = c.pop()
			return nil
		case isa.HALT:
			c.Err = ErrHalted
			return ErrHalted
		default:
			return ErrUnknownInstruction
		}

	case isa.KindR:
		rx, err := c.regAt(c.PC + 1)
		if err != nil {
			return err
		}
		switch op {
		case isa.INC:
			c.inc(rx)
		case isa.DEC:
			c.dec(rx)
		case isa.NOT:
			c.not(rx)
		case isa.SHL:
			c.shl(rx)
		case isa.SHR:
			c.shr(rx)
		case isa.PUSH:
			c.push(c.Registers[rx])
		case isa.POP:
			if c.SP+uint64(c.Width.Bytes()) <= c.Width.StackTop() {
				c.Registers[rx] = c.pop()
			}
		default:
			return ErrUnknownInstruction
		}

	case isa.KindRR:
		rx, err := c.regAt(c.PC + 1)
		if err != nil {
			return err
		}
		ry, err := c.regAt(c.PC + 2)
		if err != nil {
			return err
		}
		switch op {
		case isa.MOV:
			c.Registers[rx] = c.Registers[ry] & c.Width.Mask()
		case isa.ADD:
			c.add(rx, ry)
		case isa.SUB:
			c.sub(rx, ry)
		case isa.MUL:
			c.mul(rx, ry)
		case isa.DIV:
			if err := c.div(rx, ry); err != nil {
				return err
			}
		case isa.AND:
			c.logical(rx, c.Registers[rx]&c.Registers[ry])
		case isa.OR:
			c.logical(rx, c.Registers[rx]|c.Registers[ry])
		case isa.XOR:
			c.logical(rx, c.Registers[rx]^c.Registers[ry])
		case isa.CMP:
			c.cmp(rx, ry)
		default:
			return ErrUnknownInstruction
		}

	case isa.KindRIndirect:
		rx, err := c.regAt(c.PC + 1)
		if err != nil {
			return err
		}
		ry, err := c.regAt(c.PC + 2)
		if err != nil {
			return err
		}
		switch op {
		case isa.LB:
			b, err := c.fetchByte(c.Registers[ry])
			if err != nil {
				return err
			}
			c.Registers[rx] = uint64(b)
		case isa.SB:
			if err := c.storeByte(c.Registers[ry], byte(c.Registers[rx])); err != nil {
				return err
			}
		default:
			return ErrUnknownInstruction
		}

	case isa.KindLoadStore:
		if err := c.execLoadStore(op); err != nil {
			return err
		}

	case isa.KindPort:
		rx, err := c.regAt(c.PC + 1)
		if err != nil {
			return err
		}
		port, err := c.readUint16At(c.PC + 2)
		if err != nil {
			return err
		}
		if err := c.sys(rx, port); err != nil {
			return err
		}

	case isa.KindAddr:
		addr, err := c.readAddrAt(c.PC + 1)
		if err != nil {
			return err
		}
		taken, isCall := c.evalControlTransfer(op)
		if isCall {
			if c.SP < uint64(c.Width.Bytes()) {
				taken = false // stack overflow: soft fault, PC advances
			} else {
				c.push(nextPC)
			}
		}
		if taken {
			c.PC = addr
			return nil
		}

	default:
		return ErrUnknownInstruction
	}

	c.PC = nextPC
	return nil
}

// evalControlTransfer reports whether the branch at the current opcode is
// taken, and whether it is a CALL (which also pushes a return address).
func (c *CPU) evalControlTransfer(op isa.Opcode) (taken bool, isCall bool) {
	switch op {
	case isa.CALL, isa.JMP:
		return true, op == isa.CALL
	case isa.JZ:
		return c.Flags.Z, false
	case isa.JNZ:
		return !c.Flags.Z, false
	case isa.JC:
		return c.Flags.C, false
	case isa.JNC:
		return !c.Flags.C, false
	case isa.JL:
		return c.Flags.S != c.Flags.O, false
	case isa.JLE:
		return c.Flags.Z || c.Flags.S != c.Flags.O, false
	case isa.JG:
		return !c.Flags.Z && c.Flags.S == c.Flags.O, false
	case isa.JGE:
		return c.Flags.S == c.Flags.O, false
	}
	return false, false
}

// instructionLength computes opcode.BaseLength, plus the extra datum
// bytes a load/store instruction carries when its addressing byte
// selects the immediate or absolute mode.
func (c *CPU) instructionLength(op isa.Opcode) (int, error) {
	base := op.BaseLength(c.Width.Bytes())
	if !isa.IsLoad(op) && !isa.IsStore(op) {
		return base, nil
	}
	addrByte, err := c.fetchByte(c.PC + 1)
	if err != nil {
		return 0, err
	}
	if addrByte == isa.AddrImmediate || addrByte == isa.AddrAbsolute {
		return isa.LoadStoreLongLength(op), nil
	}
	return base, nil
}

func (c *CPU) regAt(addr uint64) (int, error) {
	b, err := c.fetchByte(addr)
	if err != nil {
		return 0, err
	}
	if int(b) >= NumRegisters {
		return 0, ErrIllegalOperation
	}
	return int(b), nil
}
