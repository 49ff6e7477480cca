package msg

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Output receives every message; tests swap it for a buffer
var Output io.Writer = color.Output

func printLabel(label, format string, a ...any) {
	fmt.Fprintf(Output, "%s: %s\n", label, fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	printLabel(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	printLabel(color.YellowString("warn"), format, a...)
}

// Fatal prints a diagnostic and exits with the given code
func Fatal(code int, format string, a ...any) {
	printLabel(color.RedString("fatal"), format, a...)
	os.Exit(code)
}

func Info(format string, a ...any) {
	printLabel(color.HiGreenString("info"), format, a...)
}

// Created reports a file or directory written under the project root
func Created(kind, path string) {
	fmt.Fprintf(Output, "%s %s: %s\n", color.HiGreenString("Created"), kind, path)
}

// Updated reports a file rewritten by update
func Updated(kind, path string) {
	fmt.Fprintf(Output, "%s %s: %s\n", color.HiCyanString("Updated"), kind, path)
}

type IndentWriter struct {
	Indent    string
	W         io.Writer
	didIndent bool
}

func (w *IndentWriter) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if !w.didIndent {
			w.W.Write([]byte(w.Indent))
			w.didIndent = true
		}
		w.W.Write([]byte{c}) // FIXME-perf: buffer this
		if c == '\n' || c == '\r' {
			w.didIndent = false
		}
	}
	return len(p), nil
}
