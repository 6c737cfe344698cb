package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251215-go-pkg-ksubst/pkg/ksubst"
)

func run(stdin string, args ...string) (string, error) {
	var stdout bytes.Buffer
	cmd := NewCommand()
	cmd.Reader = strings.NewReader(stdin)
	cmd.Writer = &stdout
	cmd.ErrWriter = &bytes.Buffer{}

	err := cmd.Run(context.Background(), append([]string{"check"}, args...))

	return stdout.String(), err
}

func TestCheck_Stdin(t *testing.T) {
	got, err := run("line one\n${X} and ${ not\n  ${Z.conf}")
	require.ErrorIs(t, err, ksubst.ErrUnresolved)
	assert.Contains(t, err.Error(), "2 found")
	assert.Equal(t, "-:2:1: ${X}\n-:3:3: ${Z.conf}\n", got)
}

func TestCheck_Clean(t *testing.T) {
	got, err := run("fully rendered ${ text")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCheck_Files(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.txt")
	dirty := filepath.Join(dir, "dirty.txt")
	require.NoError(t, os.WriteFile(clean, []byte("done"), 0o600))
	require.NoError(t, os.WriteFile(dirty, []byte("a=${A-x}"), 0o600))

	got, err := run("", clean, dirty)
	require.ErrorIs(t, err, ksubst.ErrUnresolved)
	assert.Equal(t, dirty+":1:3: ${A-x}\n", got)
}

func TestCheck_Quiet(t *testing.T) {
	got, err := run("${A}", "--quiet")
	require.ErrorIs(t, err, ksubst.ErrUnresolved)
	assert.Empty(t, got)
}

func TestCheck_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	_, err := run("", missing)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)
}

func TestPosition(t *testing.T) {
	text := "ab\ncd\nef"
	line, col := position(text, 0)
	assert.Equal(t, []int{1, 1}, []int{line, col})
	line, col = position(text, 4)
	assert.Equal(t, []int{2, 2}, []int{line, col})
	line, col = position(text, 6)
	assert.Equal(t, []int{3, 1}, []int{line, col})
}
