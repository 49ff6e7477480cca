package msg

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	old := Output
	Output = &buf
	defer func() { Output = old }()

	Info("creating %d directories", 3)
	Warn("unknown compiler %q", "tcc")
	Error("cannot write %s", "a.ninja")
	Created("file", "build/Debug/buildx64.ninja")

	assert.Equal(t, `info: creating 3 directories
warn: unknown compiler "tcc"
error: cannot write a.ninja
Created file: build/Debug/buildx64.ninja
`, buf.String())
}

func TestIndentWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "    ", W: &buf}
	fmt.Fprint(w, "+ src/a.cpp\n- src/b.cpp\n")
	assert.Equal(t, "    + src/a.cpp\n    - src/b.cpp\n", buf.String())
}
