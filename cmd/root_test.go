package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qobs-build/ninjasetup/internal/config"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addGenerateFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: unknown option", config.ErrInvalidConfiguration), 1},
		{fmt.Errorf("%w: /nope", config.ErrTargetNotFound), 2},
		{fmt.Errorf("%w: build/Debug/buildx86.ninja", config.ErrWriteFailed), 3},
		{errors.Join(fmt.Errorf("x: %w", config.ErrWriteFailed), config.ErrTargetNotFound), 2},
		{errors.New("something else"), 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}

func TestSetOptions(t *testing.T) {
	cmd := newTestCommand(t, "--static-lib", "-n", "demo", "--script", "shell", "--no-x86")
	opts := setOptions(cmd)

	assert.Equal(t, map[string]string{
		config.OptStaticLib: "true",
		config.OptName:      "demo",
		config.OptScript:    "shell",
		config.OptNoX86:     "true",
	}, opts)

	cfg, err := config.Resolve(opts, nil, config.Defaults{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, config.ScriptShell, cfg.Script)
	assert.Equal(t, []config.Arch{config.ArchX64}, cfg.Archs)
	assert.True(t, cfg.StaticLib)
}

func TestEnumFlagRejectsUnknown(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addGenerateFlags(cmd)
	assert.Error(t, cmd.ParseFlags([]string{"--script", "powershell"}))
	assert.Error(t, cmd.ParseFlags([]string{"--compiler-family", "icc"}))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	// no file and no --config is fine
	f, err := loadConfigFile(newTestCommand(t), dir)
	require.NoError(t, err)
	assert.Nil(t, f)

	require.NoError(t, os.WriteFile(filepath.Join(dir, config.Filename), []byte("[project]\nname = \"fromfile\"\n"), 0o644))
	f, err = loadConfigFile(newTestCommand(t), dir)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "fromfile", f.Project.Name)

	_, err = loadConfigFile(newTestCommand(t, "--config", filepath.Join(dir, "missing.toml")), dir)
	assert.True(t, errors.Is(err, config.ErrInvalidConfiguration))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[nope]\n"), 0o644))
	_, err = loadConfigFile(newTestCommand(t, "--config", bad), dir)
	assert.True(t, errors.Is(err, config.ErrInvalidConfiguration))
}
