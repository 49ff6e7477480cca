package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() Env {
	return Env{
		TargetOS:   "windows",
		TargetArch: "amd64",
		Environ:    map[string]string{"LLVM": `C:\LLVM\bin`},
	}
}

func TestParseFileConditionalSections(t *testing.T) {
	t.Parallel()

	f, err := ParseFile(strings.NewReader(`
[project]
name = "demo"
compiler = "{{ environ.LLVM }}\\clang++"

[features]
script = "shell"

[features.'target_os == "windows"']
script = "batch"
gui = true

[features.'target_os == "linux"']
dynamic-lib = true
`), testEnv())
	require.NoError(t, err)

	assert.Equal(t, "demo", f.Project.Name)
	assert.Equal(t, `C:\LLVM\bin\clang++`, f.Project.Compiler)
	assert.Equal(t, "batch", f.Features.Script)
	require.NotNil(t, f.Features.GUI)
	assert.True(t, *f.Features.GUI)
	assert.Nil(t, f.Features.DynamicLib)

	opts := f.Options()
	assert.Equal(t, "demo", opts[OptName])
	assert.Equal(t, "true", opts[OptGUI])
	assert.NotContains(t, opts, OptDynamicLib)
	assert.NotContains(t, opts, OptNoX86)
}

func TestParseFileOverlappingConditionsMergeInOrder(t *testing.T) {
	t.Parallel()

	const doc = `
[features.'target_os == "windows"']
script = "batch"

[features.'target_arch == "amd64"']
script = "shell"

[sources.'target_os == "windows"']
exclude = ["src/posix/**"]

[sources.'target_arch == "amd64"']
exclude = ["src/x86/**"]
`
	for range 20 {
		f, err := ParseFile(strings.NewReader(doc), testEnv())
		require.NoError(t, err)
		assert.Equal(t, "batch", f.Features.Script)
		assert.Equal(t, []string{"src/x86/**", "src/posix/**"}, f.Sources.Exclude)
	}
}

func TestParseFileArchSection(t *testing.T) {
	t.Parallel()

	f, err := ParseFile(strings.NewReader(`
[arch]
x86 = false
x64 = true
general-processor = true
`), testEnv())
	require.NoError(t, err)

	opts := f.Options()
	assert.Equal(t, "true", opts[OptNoX86])
	assert.Equal(t, "false", opts[OptNoX64])
	assert.Equal(t, "true", opts[OptGeneralProcessor])
}

func TestParseFileErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Syntax":         "[project\nname = 1",
		"UnknownSection": "[target]\nlib = true\n",
		"BadExpression":  "[project]\nname = \"{{ nope( }}\"\n",
	}

	for desc, doc := range tests {
		_, err := ParseFile(strings.NewReader(doc), testEnv())
		require.Error(t, err, desc)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "%s: %v", desc, err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte("[sources]\nexclude = [\"src/gen/**\"]\n"), 0o644))

	f, err := LoadFile(path, testEnv())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/gen/**"}, f.Sources.Exclude)

	_, err = LoadFile(filepath.Join(dir, "missing.toml"), testEnv())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestMergeStructs(t *testing.T) {
	t.Parallel()

	yes := true
	dst := FeaturesSection{Script: "shell"}
	require.NoError(t, mergeStructs(&dst, FeaturesSection{GUI: &yes}))
	assert.Equal(t, "shell", dst.Script)
	require.NotNil(t, dst.GUI)
	assert.True(t, *dst.GUI)

	assert.Error(t, mergeStructs(dst, FeaturesSection{}))
	assert.Error(t, mergeStructs(&dst, SourcesSection{}))
}
