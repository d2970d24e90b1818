package xyz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemConformer/internal/domain/molecule"
	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
)

func testAtoms() []molecule.Atom {
	return []molecule.Atom{
		molecule.NewAtom("O", 0, 0, 0),
		molecule.NewAtom("H", 0.96, 0, 0),
		molecule.NewAtom("H", -0.24, 0.93, 0),
	}
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, logging.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, w.WriteXYZ("water_optimised_xtb", testAtoms(), "E = -5.070 Ha"))

	atoms, comment, err := ReadFile(filepath.Join(dir, "water_optimised_xtb.xyz"))
	require.NoError(t, err)
	assert.Equal(t, "E = -5.070 Ha", comment)
	require.Len(t, atoms, 3)
	for i, a := range testAtoms() {
		assert.Equal(t, a.Label, atoms[i].Label)
		assert.InDelta(t, a.X, atoms[i].X, 1e-8)
		assert.InDelta(t, a.Y, atoms[i].Y, 1e-8)
		assert.InDelta(t, a.Z, atoms[i].Z, 1e-8)
	}
}

func TestWriteXYZ_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "geometries")
	w, err := NewWriter(dir, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, w.WriteXYZ("m", testAtoms(), ""))

	_, err = os.Stat(filepath.Join(dir, "m.xyz"))
	assert.NoError(t, err)
}

func TestWriteXYZ_Rejections(t *testing.T) {
	w, err := NewWriter(t.TempDir(), logging.NewNopLogger())
	require.NoError(t, err)

	assert.Error(t, w.WriteXYZ("", testAtoms(), ""))
	assert.Error(t, w.WriteXYZ("empty", nil, ""))
}

func TestWriteXYZ_CommentNewlinesFlattened(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, logging.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, w.WriteXYZ("m", testAtoms(), "line one\nline two"))

	atoms, comment, err := ReadFile(filepath.Join(dir, "m.xyz"))
	require.NoError(t, err)
	assert.Len(t, atoms, 3)
	assert.Equal(t, "line one line two", comment)
}

func TestReadFile_Malformed(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"empty":     "",
		"badcount":  "x\ncomment\n",
		"truncated": "3\ncomment\nO 0 0 0\n",
		"badcoord":  "1\ncomment\nO 0 zero 0\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name+".xyz")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, _, err := ReadFile(path)
		assert.Error(t, err, name)
	}

	_, _, err := ReadFile(filepath.Join(dir, "missing.xyz"))
	assert.Error(t, err)
}

func TestReadFile_HugeCountHeaderFailsCheaply(t *testing.T) {
	// A bogus multi-gigabyte count must not be trusted for allocation; the
	// parse fails at the first missing atom line instead.
	path := filepath.Join(t.TempDir(), "huge.xyz")
	content := "2147483647\ncomment\nO 0 0 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, _, err := ReadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}
