// ninjasetup update [target dir]
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qobs-build/ninjasetup/internal/builder"
	"github.com/qobs-build/ninjasetup/internal/msg"
)

func doUpdate(cmd *cobra.Command, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	file, err := loadConfigFile(cmd, target)
	if err != nil {
		fail(err)
	}

	cfg, err := builder.UpdateConfig(target, setOptions(cmd), file)
	if err != nil {
		fail(err)
	}
	if err := builder.New(cfg).Update(); err != nil {
		fail(err)
	}
	msg.Info("updated %s (%s) in %s", cfg.Name, cfg.Family, cfg.Root)
}

var updateCmd = &cobra.Command{
	Use:   "update [target dir]",
	Short: "Regenerate the build edges after adding or removing sources",
	Long: `Re-walks src/ and rewrites the build descriptors of a generated project.
Architectures are probed from bin/ unless --no-x86 or --no-x64 is given; the compiler
is read back from the existing descriptors. Scripts and editor files are left alone.`,
	Args: cobra.MaximumNArgs(1),
	Run:  doUpdate,
}

func init() {
	// ninjasetup update subcommand
	rootCmd.AddCommand(updateCmd)
	addArchFlags(updateCmd)
}
