// ninjasetup [target dir], ninjasetup generate [target dir]
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qobs-build/ninjasetup/internal/builder"
	"github.com/qobs-build/ninjasetup/internal/config"
	"github.com/qobs-build/ninjasetup/internal/msg"
)

const (
	exitInvalidConfig  = 1
	exitTargetNotFound = 2
	exitWriteFailed    = 3
)

var (
	flagConfig         string
	flagCompilerFamily = NewEnumValue("", map[string]string{
		"clang": "Clang-style flags (clang, clang++)",
		"gcc":   "GCC-style flags (gcc, g++)",
		"msvc":  "MSVC-style flags (cl)",
	})
	flagEditorKind = NewEnumValue("vscode", map[string]string{
		"vscode": "Emits .vscode/c_cpp_properties.json, tasks.json and launch.json",
		"vs2022": "Emits a Visual Studio 2022 solution and Makefile project",
	})
	flagScript = NewEnumValue("batch", map[string]string{
		"batch": "Emits .bat driver scripts",
		"shell": "Emits .sh driver scripts",
	})
)

// exitCode picks the exit status of the most severe failure wrapped in err
func exitCode(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfiguration):
		return exitInvalidConfig
	case errors.Is(err, config.ErrTargetNotFound):
		return exitTargetNotFound
	case errors.Is(err, config.ErrWriteFailed):
		return exitWriteFailed
	}
	return exitInvalidConfig
}

// fail prints one line per failure and exits
func fail(err error) {
	code := exitCode(err)
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		for _, e := range errs[:len(errs)-1] {
			msg.Error("%v", e)
		}
		err = errs[len(errs)-1]
	}
	msg.Fatal(code, "%v", err)
}

// setOptions collects the flags the user actually set; the resolver owns the defaults
func setOptions(cmd *cobra.Command) map[string]string {
	opts := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		opts[f.Name] = f.Value.String()
	})
	return opts
}

// loadConfigFile reads --config, or ninjasetup.toml in dir when present
func loadConfigFile(cmd *cobra.Command, dir string) (*config.File, error) {
	explicit := cmd.Flags().Changed(config.OptConfig)
	path := flagConfig
	if !explicit {
		path = filepath.Join(dir, config.Filename)
	}

	f, err := config.LoadFile(path, config.NewEnv())
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, config.ErrInvalidConfiguration):
		return nil, fmt.Errorf("%s: %w", path, err)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
}

// generate resolves the options for dir and writes the whole project
func generate(cmd *cobra.Command, dir string, opts map[string]string) {
	opts[config.OptDir] = dir
	file, err := loadConfigFile(cmd, dir)
	if err != nil {
		fail(err)
	}

	cfg, err := config.Resolve(opts, file, config.Defaults{Dir: ".", Compiler: builder.FindCompiler()})
	if err != nil {
		fail(err)
	}

	if err := builder.New(cfg).Generate(); err != nil {
		fail(err)
	}
	msg.Info("generated %s (%s, %s scripts) in %s", cfg.Name, cfg.Family, cfg.Script, cfg.Root)
}

func doGenerate(cmd *cobra.Command, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	generate(cmd, target, setOptions(cmd))
}

var rootCmd = &cobra.Command{
	Use:           "ninjasetup [target dir]",
	Short:         "Scaffold ninja build files and driver scripts for a C++ project",
	Long:          `Creates the project layout, ninja build descriptors, driver scripts and editor files. If no target dir is given, uses "."`,
	Args:          cobra.MaximumNArgs(1),
	Version:       versionOrHash(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Run:           doGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate [target dir]",
	Short: "Generate the project files",
	Long:  `Generate the project files. If no target dir is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doGenerate,
}

func init() {
	addGenerateFlags(rootCmd)

	// ninjasetup generate subcommand
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP(config.OptName, "n", config.DefaultName, "Name of the output binaries and libraries")
	f.StringP(config.OptCompiler, "c", "", "Compiler invocation (default: $CXX, $CC or the first compiler on PATH)")
	f.Var(&flagCompilerFamily, config.OptCompilerFamily, "Override the compiler family inferred from --compiler, one of "+flagCompilerFamily.HelpString())
	f.Bool(config.OptGeneralProcessor, false, "Don't pass -m32/-m64 when compiling")
	f.Bool(config.OptSystemLibs, false, "Reference the WLIBPATH32, WLIBPATH64 and WLIBVALUES environment variables")
	f.Bool(config.OptExtDebug, false, "Build Debug with the address sanitizer")
	f.Bool(config.OptStaticLib, false, "Emit static library export scripts")
	f.Bool(config.OptDynamicLib, false, "Emit dynamic library export scripts")
	f.Bool(config.OptEditor, false, "Emit editor integration files")
	f.Var(&flagEditorKind, config.OptEditorKind, "Editor to integrate with, one of "+flagEditorKind.HelpString())
	f.Bool(config.OptGUI, false, "Link a GUI application without a console")
	f.Bool(config.OptResource, false, "Seed and compile a Windows resource file")
	f.Var(&flagScript, config.OptScript, "Driver script format, one of "+flagScript.HelpString())
	addArchFlags(cmd)

	cmd.RegisterFlagCompletionFunc(config.OptCompilerFamily, flagCompilerFamily.CompletionFunc())
	cmd.RegisterFlagCompletionFunc(config.OptEditorKind, flagEditorKind.CompletionFunc())
	cmd.RegisterFlagCompletionFunc(config.OptScript, flagScript.CompletionFunc())
}

// addArchFlags adds the flags shared by generation and update
func addArchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(config.OptNoX86, false, "Exclude the x86 architecture")
	cmd.Flags().Bool(config.OptNoX64, false, "Exclude the x64 architecture")
	cmd.Flags().StringVar(&flagConfig, config.OptConfig, config.Filename, "Config file (default: "+config.Filename+" in the target dir, if present)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		msg.Error("%v", err)
		os.Exit(exitInvalidConfig)
	}
}
