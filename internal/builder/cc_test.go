package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindCompilerPrefersEnvironment(t *testing.T) {
	t.Setenv("CXX", "/opt/llvm/bin/clang++")
	t.Setenv("CC", "gcc")
	assert.Equal(t, "/opt/llvm/bin/clang++", FindCompiler())

	t.Setenv("CXX", "")
	assert.Equal(t, "gcc", FindCompiler())
}

func TestFindCompilerEmptyPath(t *testing.T) {
	t.Setenv("CXX", "")
	t.Setenv("CC", "")
	t.Setenv("PATH", t.TempDir())
	assert.Empty(t, FindCompiler())
}
