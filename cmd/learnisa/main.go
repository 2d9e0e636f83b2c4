// Command learnisa assembles and runs programs for the register-based
// instruction set implemented by the isa, asm, image and vm packages.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/learnisa-toolchain/learnisa/asm"
	"github.com/learnisa-toolchain/learnisa/vm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.StandardLogger()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "learnisa",
		Short: "Assembler and virtual machine for a 32-register, two-pass instruction set",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(assembleCmd(), runCmd())
	return root
}

func assembleCmd() *cobra.Command {
	var width16 bool
	var emitSidecars bool

	cmd := &cobra.Command{
		Use:   "assemble <input.asm> <output.bin>",
		Short: "Assemble a source file into a binary image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read source")
			}

			width := asm.Width64
			if width16 {
				width = asm.Width16
			}

			result, err := asm.Assemble(string(source), width, log)
			if err != nil {
				return errors.Wrap(err, "assemble")
			}

			if err := os.WriteFile(args[1], result.Image, 0644); err != nil {
				return errors.Wrap(err, "write image")
			}

			if emitSidecars {
				base := strings.TrimSuffix(args[1], filepath.Ext(args[1]))
				if err := os.WriteFile(base+".hex", []byte(asm.HexListing(result)), 0644); err != nil {
					return errors.Wrap(err, "write hex sidecar")
				}
				if err := os.WriteFile(base+".dbg", []byte(asm.DebugListing(result)), 0644); err != nil {
					return errors.Wrap(err, "write debug sidecar")
				}
				if err := os.WriteFile(base+".symbols", []byte(asm.SymbolsListing(result.Program)), 0644); err != nil {
					return errors.Wrap(err, "write symbols sidecar")
				}
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&width16, "width16", false, "target the 16-bit data path instead of the 64-bit default")
	cmd.Flags().BoolVar(&emitSidecars, "debug", false, "also emit .hex, .dbg and .symbols sidecar files")
	return cmd
}

func runCmd() *cobra.Command {
	var width16 bool
	var debugMode bool
	var symbolsPath string

	cmd := &cobra.Command{
		Use:   "run <image.bin> [argv...]",
		Short: "Load and execute a binary image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, "read image")
			}

			width := vm.Width64
			if width16 {
				width = vm.Width16
			}

			cpu := vm.New(width)
			if err := cpu.Load(raw); err != nil {
				return errors.Wrap(err, "load image")
			}
			cpu.LoadArgv(args[1:])

			if !debugMode {
				err := cpu.RunProgram()
				if err != nil && !errors.Is(err, vm.ErrHalted) {
					return err
				}
				return nil
			}

			symbols := map[string]uint64{}
			if symbolsPath != "" {
				text, err := os.ReadFile(symbolsPath)
				if err != nil {
					return errors.Wrap(err, "read symbols")
				}
				symbols, err = vm.LoadSymbols(string(text))
				if err != nil {
					return errors.Wrap(err, "parse symbols")
				}
			}

			debugState := vm.NewDebugState(symbols, os.Stdin, os.Stdout)
			err = cpu.RunProgramDebugMode(debugState)
			if err != nil && !errors.Is(err, vm.ErrHalted) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&width16, "width16", false, "target the 16-bit data path instead of the 64-bit default")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "run under the interactive step/breakpoint harness")
	cmd.Flags().StringVar(&symbolsPath, "symbols", "", "path to a .symbols sidecar for named breakpoints")
	return cmd
}
