package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineWriter_WriteLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports", "alice_2024-01-01_2024-01-07.pdf")

	err := NewLineWriter().WriteLines(path, []string{"alice Report", "Total Points: 0"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))

	pages, err := NewPageCounter().CountPages(path)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestLineWriter_OverflowsOntoNewPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.pdf")
	lines := make([]string, 0, 100)
	for i := 1; i <= 100; i++ {
		lines = append(lines, fmt.Sprintf("math - Level %d - Attempt 1 - 5 pts", i))
	}

	require.NoError(t, NewLineWriter().WriteLines(path, lines))

	pages, err := NewPageCounter().CountPages(path)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestPageCounter_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))

	_, err := NewPageCounter().CountPages(path)
	assert.Error(t, err)
}
