// ninjasetup version
package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// You can set the version at build time using something like:
// go build -ldflags "-X github.com/qobs-build/ninjasetup/cmd.Version=$(git describe --dirty)"
var Version string

func versionOrHash() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		modified := false
		for _, setting := range info.Settings {
			if setting.Key == "vcs.modified" && setting.Value == "true" {
				modified = true
				break
			}
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
				shortHash := setting.Value[:7]
				if modified {
					return shortHash + "-dirty"
				}
				return shortHash
			}
		}
		if v := info.Main.Version; v != "" {
			return v
		}
	}
	return "dev"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", rootCmd.Name(), versionOrHash())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
