// ninjasetup init [name], ninjasetup new <dir>
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/qobs-build/ninjasetup/internal/config"
	"github.com/qobs-build/ninjasetup/internal/msg"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal(exitWriteFailed, "create file %s: %v", path, err)
		}
		msg.Created("file", filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal(exitWriteFailed, "mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "ninjasetup"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// initIn seeds a hello world program in an existing directory and generates the project around it
func initIn(cmd *cobra.Command, dir, name string) {
	opts := setOptions(cmd)
	if _, ok := opts[config.OptName]; !ok && name != "" {
		opts[config.OptName] = name
	}

	mkdir(dir, "src")

	// src/main.cpp
	writefile(`#include <iostream>

int main() {
    std::cout << "Hello, World!" << std::endl;
    return 0;
}
`, dir, "src", "main.cpp")

	// .gitignore
	writefile(`bin/
.vs/
*.sln.DotSettings.user
`, dir, ".gitignore")

	generate(cmd, dir, opts)

	fmt.Printf("You can now run the scripts in %s to build, and %s after adding sources.\n",
		color.HiCyanString(filepath.ToSlash(filepath.Join(dir, "build", string(config.Debug)))),
		color.HiCyanString(getProgramName()+" update "+dir))
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new project in the current directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		initIn(cmd, ".", name)
	},
}

var newCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Create a new project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(cmd, args[0], filepath.Base(args[0]))
	},
}

func init() {
	// ninjasetup init subcommand
	rootCmd.AddCommand(initCmd)
	addGenerateFlags(initCmd)

	// ninjasetup new subcommand
	rootCmd.AddCommand(newCmd)
	addGenerateFlags(newCmd)
}
