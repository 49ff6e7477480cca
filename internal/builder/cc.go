package builder

import (
	"os"
	"os/exec"
)

// TODO: zig c++
var commonCxxCompilers = []string{"clang++", "g++", "clang", "gcc", "cl"}

// FindCompiler attempts to find a suitable C++ compiler on the system.
// An empty result leaves the choice to the resolver's default.
func FindCompiler() string {
	if cxx := os.Getenv("CXX"); cxx != "" {
		return cxx
	}
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}

	for _, compiler := range commonCxxCompilers {
		if _, err := exec.LookPath(compiler); err == nil {
			return compiler
		}
	}

	return ""
}
