package vm

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
)

// recoverCrash turns an unexpected panic (an indexing bug, not an
// architectural fault) into the same kind of terminal report a real fault
// gets, rather than letting it escape as a raw Go panic.
func recoverCrash(c *CPU) {
	if r := recover(); r != nil {
		c.Err = ErrIllegalOperation
		fmt.Fprintf(os.Stderr, "internal fault at pc=0x%X: %v\n", c.PC, r)
	}
}

// RunProgram runs to completion (HALT or a fault) with the garbage
// collector disabled. Instruction dispatch is tight and allocation-free
// once an image is loaded, so the usual GC pacing only adds overhead;
// GOGC is restored via defer regardless of how the run ends.
func (c *CPU) RunProgram() error {
	key, ok := os.LookupEnv("GOGC")
	gcPercent := int64(100)
	if ok {
		if v, err := strconv.ParseInt(key, 10, 32); err == nil {
			gcPercent = v
		}
	}

	defer recoverCrash(c)
	defer debug.SetGCPercent(int(gcPercent))
	debug.SetGCPercent(-1)

	for {
		if err := c.Step(); err != nil {
			if err == ErrHalted {
				return nil
			}
			c.Err = err
			return err
		}
	}
}

// RunProgramDebugMode runs under the step/breakpoint harness in d,
// honoring single-step and breakpoint pauses and printing the PC at each
// pause. It makes no attempt to disable the garbage
// collector: debug sessions are interactive, not throughput-sensitive.
func (c *CPU) RunProgramDebugMode(d *DebugState) error {
	defer recoverCrash(c)

	for {
		if d.ShouldBreak(c.PC) {
			if err := d.Prompt(c); err != nil {
				return err
			}
		}
		if err := c.Step(); err != nil {
			if err == ErrHalted {
				return nil
			}
			c.Err = err
			return err
		}
	}
}
