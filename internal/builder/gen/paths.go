package gen

import (
	"path"

	"github.com/qobs-build/ninjasetup/internal/config"
)

// Fixed project layout, slash-separated and relative to the root
const (
	BinDir       = "bin"
	SrcDir       = "src"
	IncludeDir   = "include"
	BuildDir     = "build"
	ExportLibDir = "exportLib"
	ExportDllDir = "exportDll"
	VSCodeDir    = ".vscode"
	ResourceDir  = "resources"
	ResourceFile = ResourceDir + "/resource.rc"
)

func VariantBinDir(v config.Variant) string { return path.Join(BinDir, string(v)) }

func ArchBinDir(v config.Variant, a config.Arch) string {
	return path.Join(BinDir, string(v), string(a))
}

func ObjDir(v config.Variant, a config.Arch) string { return path.Join(ArchBinDir(v, a), "obj") }

func VariantBuildDir(v config.Variant) string { return path.Join(BuildDir, string(v)) }

// VarsPath is the variable half of a build descriptor
func VarsPath(v config.Variant, a config.Arch) string {
	return path.Join(VariantBuildDir(v), "vars"+string(a)+".ninja")
}

// DescriptorPath is the rule and edge half of a build descriptor
func DescriptorPath(v config.Variant, a config.Arch) string {
	return path.Join(VariantBuildDir(v), "build"+string(a)+".ninja")
}

func ScriptPath(cfg config.Config, v config.Variant, a config.Arch) string {
	return path.Join(VariantBuildDir(v), "build"+string(a)+cfg.Script.Ext())
}

// OutputPath is the linked executable of a configuration
func OutputPath(cfg config.Config, v config.Variant, a config.Arch) string {
	return path.Join(ArchBinDir(v, a), cfg.Name+cfg.ExeSuffix())
}

func ResourceOutputPath(v config.Variant, a config.Arch) string {
	return path.Join(ArchBinDir(v, a), "resource.res")
}

func StaticLibScriptPath(cfg config.Config, v config.Variant, a config.Arch) string {
	return path.Join(ExportLibDir, string(v), "exportLib"+string(a)+cfg.Script.Ext())
}

func StaticLibAllScriptPath(cfg config.Config) string {
	return path.Join(ExportLibDir, "exportAllLibs"+cfg.Script.Ext())
}

func StaticLibPath(cfg config.Config, v config.Variant, a config.Arch) string {
	name := cfg.Name + ".lib"
	if cfg.Script == config.ScriptShell && !cfg.MSVC() {
		name = "lib" + cfg.Name + ".a"
	}
	return path.Join(ExportLibDir, string(v), string(a), name)
}

func DynamicLibScriptPath(cfg config.Config, v config.Variant, a config.Arch) string {
	return path.Join(ExportDllDir, string(v), "exportDll"+string(a)+cfg.Script.Ext())
}

func DynamicLibAllScriptPath(cfg config.Config) string {
	return path.Join(ExportDllDir, "exportAllDlls"+cfg.Script.Ext())
}

func DynamicLibPath(cfg config.Config, v config.Variant, a config.Arch) string {
	name := cfg.Name + ".dll"
	if cfg.Script == config.ScriptShell && !cfg.MSVC() {
		name = "lib" + cfg.Name + ".so"
	}
	return path.Join(ExportDllDir, string(v), string(a), name)
}
