package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanStripsCommentsAndBlankLines(t *testing.T) {
	src := "; a comment\n\n  LD R0, 30  ; trailing\n   \nHALT\n"
	lines := Clean(src)
	require.Len(t, lines, 2)
	require.Equal(t, []string{"LD", "R0", "30"}, lines[0].Tokens)
	require.Equal(t, []string{"HALT"}, lines[1].Tokens)
}

func TestCleanNormalizesCommasAndEquals(t *testing.T) {
	lines := Clean("MOV R0,R1\nname = .byte 1")
	require.Equal(t, []string{"MOV", "R0", "R1"}, lines[0].Tokens)
	require.Equal(t, []string{"name", ".byte", "1"}, lines[1].Tokens)
}

func TestCleanPreservesQuotedLiterals(t *testing.T) {
	lines := Clean(`s .asciiz "Hello World"`)
	require.Equal(t, []string{"s", ".asciiz", `"Hello World"`}, lines[0].Tokens)
}

func TestCleanUppercasesMnemonicOnly(t *testing.T) {
	lines := Clean("ld R0, s")
	require.Equal(t, []string{"LD", "R0", "s"}, lines[0].Tokens)
}

func TestCleanLeavesLabelsAndDirectivesAlone(t *testing.T) {
	lines := Clean("loop:\n.data\nmyVar .word 1")
	require.Equal(t, "loop:", lines[0].Tokens[0])
	require.Equal(t, ".data", lines[1].Tokens[0])
	require.Equal(t, "myVar", lines[2].Tokens[0])
}
