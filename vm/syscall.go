package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Syscall ports.
const (
	PortStdinInt     = 0x0000
	PortStdinChar    = 0x0001
	PortStdoutInt    = 0x0002
	PortStdoutChar   = 0x0003
	PortStdoutIntNR  = 0x0004
	PortStdoutCharNR = 0x0005
	PortStdoutStr    = 0x0006
	PortStdoutStrNR  = 0x0007

	PortFileOpen  = 0x0100
	PortFileRead  = 0x0101
	PortFileWrite = 0x0102
	PortFileClose = 0x0103
)

// fileOpenFailureSentinel is written to Rx when FILE_OPEN fails, a soft
// fault signaled by setting every bit of Rx rather than aborting the run.
// See DESIGN.md decision #5.
const fileOpenFailureSentinel = ^uint64(0)

// sys dispatches SYS Rx, port. Unknown ports are a silent no-op; PC still
// advances — the caller handles that.
func (c *CPU) sys(rx int, port uint16) error {
	switch port {
	case PortStdinInt:
		line, _ := c.readLine()
		v, _ := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		c.setRegister(rx, uint64(v))

	case PortStdinChar:
		line, _ := c.readLine()
		var ch rune
		for _, r := range line {
			ch = r
			break
		}
		c.setRegister(rx, uint64(ch))

	case PortStdoutInt:
		c.writeStdout(fmt.Sprintf("%d\n", c.signed(c.Registers[rx])))
	case PortStdoutIntNR:
		c.writeStdout(fmt.Sprintf("%d", c.signed(c.Registers[rx])))

	case PortStdoutChar:
		c.writeStdout(fmt.Sprintf("%c\n", rune(c.Registers[rx])))
	case PortStdoutCharNR:
		c.writeStdout(fmt.Sprintf("%c", rune(c.Registers[rx])))

	case PortStdoutStr:
		c.writeStdout(c.readCString(c.Registers[rx]) + "\n")
	case PortStdoutStrNR:
		c.writeStdout(c.readCString(c.Registers[rx]))

	case PortFileOpen:
		c.fileOpen(rx)
	case PortFileRead:
		c.fileRead(rx)
	case PortFileWrite:
		c.fileWrite(rx)
	case PortFileClose:
		c.fileClose(rx)
	}
	return nil
}

func (c *CPU) readLine() (string, error) {
	line, err := c.Stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrIO
	}
	return line, nil
}

func (c *CPU) writeStdout(s string) {
	c.Stdout.WriteString(s)
	c.Stdout.Flush()
}

// readCString reads bytes from memory starting at addr until a 0 byte.
func (c *CPU) readCString(addr uint64) string {
	var b strings.Builder
	for i := addr; i < uint64(len(c.Memory)) && c.Memory[i] != 0; i++ {
		b.WriteByte(c.Memory[i])
	}
	return b.String()
}

func (c *CPU) fileOpen(rx int) {
	path := c.readCString(c.Registers[0])
	mode := int(c.Registers[1])
	fd, err := c.Files.Open(path, mode)
	if err != nil {
		c.setRegister(rx, fileOpenFailureSentinel)
		return
	}
	c.setRegister(rx, uint64(fd))
}

func (c *CPU) fileRead(rx int) {
	fd := int(c.Registers[0])
	dest := c.Registers[1]
	count := c.Registers[2]

	f, ok := c.Files.Get(fd)
	if !ok || dest+count > uint64(len(c.Memory)) {
		c.setRegister(rx, 0)
		return
	}
	n, _ := f.Read(c.Memory[dest : dest+count])
	c.setRegister(rx, uint64(n))
}

func (c *CPU) fileWrite(rx int) {
	fd := int(c.Registers[0])
	src := c.Registers[1]
	count := c.Registers[2]

	f, ok := c.Files.Get(fd)
	if !ok || src+count > uint64(len(c.Memory)) {
		c.setRegister(rx, 0)
		return
	}
	n, _ := f.Write(c.Memory[src : src+count])
	c.setRegister(rx, uint64(n))
}

func (c *CPU) fileClose(rx int) {
	fd := int(c.Registers[0])
	if err := c.Files.Close(fd); err != nil {
		c.setRegister(rx, 1)
		return
	}
	c.setRegister(rx, 0)
}
