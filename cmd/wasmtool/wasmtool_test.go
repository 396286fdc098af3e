package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var minimalModule = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func writeModule(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wasm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDoMainDecodesAndExitsZero(t *testing.T) {
	path := writeModule(t, minimalModule)
	var stdOut, stdErr bytes.Buffer
	code := doMain([]string{path}, &stdOut, &stdErr)
	require.Equal(t, 0, code)
	require.Empty(t, stdOut.String())
	require.Empty(t, stdErr.String())
}

func TestDoMainPrintFlag(t *testing.T) {
	path := writeModule(t, minimalModule)
	var stdOut, stdErr bytes.Buffer
	code := doMain([]string{"-p", path}, &stdOut, &stdErr)
	require.Equal(t, 0, code)
	require.Contains(t, stdOut.String(), "types: 0")
	require.Empty(t, stdErr.String())
}

func TestDoMainDecodeErrorExitsOne(t *testing.T) {
	path := writeModule(t, []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00})
	var stdOut, stdErr bytes.Buffer
	code := doMain([]string{path}, &stdOut, &stdErr)
	require.Equal(t, 1, code)
	require.NotEmpty(t, stdErr.String())
}

func TestDoMainMissingFile(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	code := doMain([]string{filepath.Join(t.TempDir(), "missing.wasm")}, &stdOut, &stdErr)
	require.Equal(t, 1, code)
	require.NotEmpty(t, stdErr.String())
}

func TestDoMainUsageOnBadArgs(t *testing.T) {
	var stdOut, stdErr bytes.Buffer
	code := doMain(nil, &stdOut, &stdErr)
	require.Equal(t, 1, code)
	require.Contains(t, stdErr.String(), "usage")
}
