package asm

import (
	"github.com/learnisa-toolchain/learnisa/image"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result is the complete output of assembling one source file: the final
// binary image plus everything the debug sidecars need.
type Result struct {
	Image   []byte
	Program *Program
	Chunks  [][]byte // one entry per emitted code instruction, in source order
}

// Assemble runs the full two-pass pipeline (C2 lexer -> C3 resolver -> C4
// encoder -> C5 header packing) over source text.
func Assemble(source string, width Width, log *logrus.Logger) (*Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	lines := Clean(source)
	log.WithField("lines", len(lines)).Debug("lexed source")

	prog, err := Resolve(lines, width)
	if err != nil {
		return nil, errors.Wrap(err, "symbol resolution failed")
	}
	log.WithFields(logrus.Fields{
		"symbols":     len(prog.Symbols),
		"data_length": prog.DataLength,
	}).Debug("resolved symbols")

	data, err := EncodeData(prog)
	if err != nil {
		return nil, errors.Wrap(err, "data segment encoding failed")
	}

	chunks, code, err := EncodeCode(prog)
	if err != nil {
		return nil, errors.Wrap(err, "code segment encoding failed")
	}
	for i, item := range prog.Code {
		log.WithFields(logrus.Fields{
			"address":  prog.DataLength + item.Offset,
			"mnemonic": item.Mnemonic,
			"bytes":    hexLine(chunks[i]),
		}).Debug("emitted instruction")
	}

	header := image.Pack(len(data), len(code))
	img := make([]byte, 0, len(header)+len(data)+len(code))
	img = append(img, header...)
	img = append(img, data...)
	img = append(img, code...)

	log.WithFields(logrus.Fields{
		"data_bytes": len(data),
		"code_bytes": len(code),
	}).Info("assembled image")

	return &Result{Image: img, Program: prog, Chunks: chunks}, nil
}
