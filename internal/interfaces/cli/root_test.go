package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func fastSampling(t *testing.T) {
	t.Helper()
	t.Setenv("CHEMCONF_SAMPLING_MAX_EMBED_ATTEMPTS", "10")
	t.Setenv("CHEMCONF_SAMPLING_MAX_ANNEAL_ATTEMPTS", "8")
	t.Setenv("CHEMCONF_LOG_LEVEL", "error")
}

func TestGenerateCommand_SMILES(t *testing.T) {
	fastSampling(t)
	dir := t.TempDir()

	out, err := runCommand(t, "generate", "--smiles", "O", "--name", "water", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "water")
	assert.Contains(t, out, "unique conformers")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "water_conf") && strings.HasSuffix(e.Name(), ".xyz") {
			found = true
		}
	}
	assert.True(t, found, "expected at least one water_conf<i>.xyz in %s", dir)
}

func TestOptimizeCommand_XYZInputAndHistory(t *testing.T) {
	fastSampling(t)
	dir := t.TempDir()
	t.Setenv("CHEMCONF_OUTPUT_LEDGER_PATH", filepath.Join(dir, "runs.db"))

	input := filepath.Join(dir, "water.xyz")
	content := "3\n\nO 0.0 0.0 0.0\nH 0.96 0.0 0.0\nH -0.24 0.93 0.0\n"
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	out, err := runCommand(t, "optimize", "--xyz", input, "--name", "water", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "optimised with simanl")

	_, err = os.Stat(filepath.Join(dir, "water_optimised_simanl.xyz"))
	assert.NoError(t, err)

	out, err = runCommand(t, "history", "water")
	require.NoError(t, err)
	assert.Contains(t, out, "water")
	assert.Contains(t, out, "simanl")
}

func TestOptimizeCommand_SinglePoint(t *testing.T) {
	fastSampling(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "water.xyz")
	content := "3\n\nO 0.0 0.0 0.0\nH 0.96 0.0 0.0\nH -0.24 0.93 0.0\n"
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	out, err := runCommand(t, "optimize", "--xyz", input, "--name", "water", "--single-point", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "single-point with simanl")

	// No optimised geometry is written for a single-point run.
	_, err = os.Stat(filepath.Join(dir, "water_optimised_simanl.xyz"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCommand_RequiresExactlyOneInput(t *testing.T) {
	fastSampling(t)

	_, err := runCommand(t, "generate", "-o", t.TempDir())
	require.Error(t, err)

	_, err = runCommand(t, "generate", "--smiles", "O", "--xyz", "x.xyz", "-o", t.TempDir())
	require.Error(t, err)
}

func TestGenerateCommand_InvalidNotation(t *testing.T) {
	fastSampling(t)
	_, err := runCommand(t, "generate", "--smiles", "C(C", "-o", t.TempDir())
	require.Error(t, err)
}

func TestHistoryCommand_LedgerDisabled(t *testing.T) {
	fastSampling(t)
	_, err := runCommand(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger")
}

func TestRootCommand_CoresFlagOverridesConfig(t *testing.T) {
	fastSampling(t)
	t.Setenv("CHEMCONF_N_CORES", "2")

	cfg, err := initConfig(&RootOptions{Cores: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NCores)

	cfg, err = initConfig(&RootOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NCores)
}
