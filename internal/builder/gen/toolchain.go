package gen

import (
	"strings"

	"github.com/qobs-build/ninjasetup/internal/config"
)

// Environment variables referenced (never read) when system libraries are enabled
const (
	EnvLibPath32 = "WLIBPATH32"
	EnvLibPath64 = "WLIBPATH64"
	EnvLibValues = "WLIBVALUES"
)

// toolchain holds every piece of syntax that differs between MSVC and GNU-style drivers.
// Renderers look things up here instead of branching on the family themselves.
type toolchain struct {
	msvc     bool
	objExt   string
	depsMode string
	// rule lines below "rule buildToObject", without indentation
	rule []string

	includeFlag  string
	compileFlags string
	variantFlags map[config.Variant]string
	linkVariant  map[config.Variant]string
	archFlags    map[config.Arch]string
	sanitizer    string
	guiFlags     string
	sharedFlag   string
}

var gnuRule = []string{
	"command = $compiler $compilerFlags $inc $in -o $out -MMD -MF $out.d",
	"depfile = $out.d",
	"deps = gcc",
}

var msvcRule = []string{
	"command = $compiler /showIncludes $compilerFlags $inc $in /Fo$out",
	"deps = msvc",
}

var gnuArchFlags = map[config.Arch]string{
	config.ArchX86: "-m32",
	config.ArchX64: "-m64",
}

var gnuVariantFlags = map[config.Variant]string{
	config.Debug:   "-g",
	config.Release: "-O3",
}

var msvcVariantFlags = map[config.Variant]string{
	config.Debug:   "/Zi /Od",
	config.Release: "/O2",
}

var msvcLinkVariant = map[config.Variant]string{
	config.Debug:   "/DEBUG",
	config.Release: "",
}

var msvcArchFlags = map[config.Arch]string{
	config.ArchX86: "/MACHINE:x86",
	config.ArchX64: "/MACHINE:x64",
}

var toolchains = map[config.Family]toolchain{
	config.FamilyClang: {
		objExt:       ".o",
		depsMode:     "gcc",
		rule:         gnuRule,
		includeFlag:  "-I",
		compileFlags: "-c -std=c++17 -Wno-unused-command-line-argument",
		variantFlags: gnuVariantFlags,
		linkVariant:  gnuVariantFlags,
		archFlags:    gnuArchFlags,
		sanitizer:    "-fsanitize=address",
		guiFlags:     "-Wl,/SUBSYSTEM:WINDOWS,/ENTRY:mainCRTStartup",
		sharedFlag:   "-shared",
	},
	config.FamilyGCC: {
		objExt:       ".o",
		depsMode:     "gcc",
		rule:         gnuRule,
		includeFlag:  "-I",
		compileFlags: "-c -std=c++17",
		variantFlags: gnuVariantFlags,
		linkVariant:  gnuVariantFlags,
		archFlags:    gnuArchFlags,
		sanitizer:    "-fsanitize=address",
		guiFlags:     "-mwindows",
		sharedFlag:   "-shared",
	},
	config.FamilyMSVC: {
		msvc:         true,
		objExt:       ".obj",
		depsMode:     "msvc",
		rule:         msvcRule,
		includeFlag:  "/I",
		compileFlags: "/nologo /c /std:c++17 /EHsc",
		variantFlags: msvcVariantFlags,
		linkVariant:  msvcLinkVariant,
		archFlags:    msvcArchFlags,
		sanitizer:    "/fsanitize=address",
		guiFlags:     "/SUBSYSTEM:WINDOWS /ENTRY:mainCRTStartup",
		sharedFlag:   "/LD",
	},
}

// toolchainFor returns the syntax table of a family. Unknown compilers get GNU-style syntax.
func toolchainFor(f config.Family) toolchain {
	if tc, ok := toolchains[f]; ok {
		return tc
	}
	return toolchains[config.FamilyGCC]
}

// ObjExt is the object file extension used by a family
func ObjExt(f config.Family) string { return toolchainFor(f).objExt }

// DepsMode is the ninja deps declaration a family writes into its rule
func DepsMode(f config.Family) string { return toolchainFor(f).depsMode }

// compileArchFlag is empty for MSVC: cl's target comes from the developer prompt
// and /MACHINE is a linker option.
func (tc toolchain) compileArchFlag(cfg config.Config, a config.Arch) string {
	if cfg.GeneralProcessor || tc.msvc {
		return ""
	}
	return tc.archFlags[a]
}

func (tc toolchain) linkArchFlag(cfg config.Config, a config.Arch) string {
	if cfg.GeneralProcessor {
		return ""
	}
	return tc.archFlags[a]
}

func (tc toolchain) debugSanitizer(cfg config.Config, v config.Variant) string {
	if cfg.ExtDebug && v == config.Debug {
		return tc.sanitizer
	}
	return ""
}

// envRef renders a reference to an environment variable for the given script format
func envRef(format config.ScriptFormat, name string) string {
	if format == config.ScriptShell {
		return "$" + name
	}
	return "%" + name + "%"
}

func libPathVar(a config.Arch) string {
	if a == config.ArchX86 {
		return EnvLibPath32
	}
	return EnvLibPath64
}

// quoteCommand quotes a compiler invocation or output path containing spaces for the target shell
func quoteCommand(format config.ScriptFormat, cmd string) string {
	if !strings.ContainsAny(cmd, " \t") || strings.HasPrefix(cmd, `"`) || strings.HasPrefix(cmd, "'") {
		return cmd
	}
	if format == config.ScriptShell {
		return "'" + strings.ReplaceAll(cmd, "'", `'\''`) + "'"
	}
	return `"` + cmd + `"`
}
