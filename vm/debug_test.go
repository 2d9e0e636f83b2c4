package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSymbolsParsesSidecarFormat(t *testing.T) {
	symbols, err := LoadSymbols("main = 16\nbuf = 0\n")
	require.NoError(t, err)
	require.Equal(t, uint64(16), symbols["main"])
	require.Equal(t, uint64(0), symbols["buf"])
}

func TestLoadSymbolsRejectsMalformedLine(t *testing.T) {
	_, err := LoadSymbols("not-a-kv-pair\n")
	require.Error(t, err)
}

func TestToggleBreakpointByName(t *testing.T) {
	d := NewDebugState(map[string]uint64{"loop": 10}, strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, d.Toggle("loop"))
	require.True(t, d.Breakpoints[10])
	require.NoError(t, d.Toggle("loop"))
	require.False(t, d.Breakpoints[10])
}

func TestToggleUnknownSymbolErrors(t *testing.T) {
	d := NewDebugState(map[string]uint64{}, strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, d.Toggle("nope"))
}

func TestPromptBlankLineStepsOnce(t *testing.T) {
	d := NewDebugState(nil, strings.NewReader("\n"), &bytes.Buffer{})
	c := New(Width64)
	require.NoError(t, d.Prompt(c))
	require.True(t, d.stepping)
}

func TestPromptContinueDisablesStepping(t *testing.T) {
	d := NewDebugState(nil, strings.NewReader("c\n"), &bytes.Buffer{})
	c := New(Width64)
	require.NoError(t, d.Prompt(c))
	require.False(t, d.stepping)
}

func TestShouldBreakHonorsArmedBreakpoint(t *testing.T) {
	d := NewDebugState(map[string]uint64{"x": 5}, strings.NewReader(""), &bytes.Buffer{})
	d.stepping = false
	require.False(t, d.ShouldBreak(5))
	require.NoError(t, d.Toggle("x"))
	require.True(t, d.ShouldBreak(5))
}
