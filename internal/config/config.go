package config

import (
	"path/filepath"
	"slices"
)

// DefaultName is used for output binaries when no project name is given
const DefaultName = "output"

// Family is the compiler family that decides flag syntax and object extensions
type Family int

const (
	FamilyUnknown Family = iota
	FamilyClang
	FamilyMSVC
	FamilyGCC
)

func (f Family) String() string {
	switch f {
	case FamilyClang:
		return "clang"
	case FamilyMSVC:
		return "msvc"
	case FamilyGCC:
		return "gcc"
	default:
		return "unknown"
	}
}

// ParseFamily parses an explicit --compiler-family override
func ParseFamily(s string) (Family, bool) {
	switch s {
	case "clang":
		return FamilyClang, true
	case "msvc":
		return FamilyMSVC, true
	case "gcc":
		return FamilyGCC, true
	}
	return FamilyUnknown, false
}

// Arch is a target instruction-set width
type Arch string

const (
	ArchX86 Arch = "x86"
	ArchX64 Arch = "x64"
)

// AllArchs lists every architecture in generation order
var AllArchs = []Arch{ArchX86, ArchX64}

func (a Arch) Bits() int {
	if a == ArchX86 {
		return 32
	}
	return 64
}

// Variant is a build profile. Both variants are always generated.
type Variant string

const (
	Debug   Variant = "Debug"
	Release Variant = "Release"
)

var AllVariants = []Variant{Debug, Release}

// ScriptFormat selects the syntax of every emitted driver script
type ScriptFormat string

const (
	ScriptBatch ScriptFormat = "batch"
	ScriptShell ScriptFormat = "shell"
)

func (s ScriptFormat) Ext() string {
	if s == ScriptShell {
		return ".sh"
	}
	return ".bat"
}

// EditorKind selects which IDE integration is emitted when editor files are on
type EditorKind string

const (
	EditorVSCode EditorKind = "vscode"
	EditorVS2022 EditorKind = "vs2022"
)

// Features holds the toggles that gate whole artifact groups
type Features struct {
	SystemLibs bool
	ExtDebug   bool
	StaticLib  bool
	DynamicLib bool
	Editor     bool
	EditorKind EditorKind
	GUI        bool
	Resource   bool
	Script     ScriptFormat
}

// Config is the resolved, immutable input of every renderer
type Config struct {
	// Root always ends in a path separator
	Root     string
	Name     string
	Compiler string
	Family   Family
	Archs    []Arch
	// GeneralProcessor omits the -m32/-m64 (/MACHINE) flag from compile flags
	GeneralProcessor bool
	Features
	// Exclude holds doublestar patterns of source files to leave out
	Exclude []string
}

func (c Config) MSVC() bool { return c.Family == FamilyMSVC }

func (c Config) Includes(a Arch) bool { return slices.Contains(c.Archs, a) }

// Path joins slash-separated elements onto the root
func (c Config) Path(elem ...string) string {
	parts := make([]string, 0, len(elem)+1)
	parts = append(parts, c.Root)
	for _, e := range elem {
		parts = append(parts, filepath.FromSlash(e))
	}
	return filepath.Join(parts...)
}

// ExeSuffix is the suffix of linked executables
func (c Config) ExeSuffix() string {
	if c.Script == ScriptBatch || c.MSVC() {
		return ".exe"
	}
	return ""
}

// normalizeRoot cleans dir and makes sure it ends in a separator
func normalizeRoot(dir string) string {
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)
	if dir[len(dir)-1] != filepath.Separator {
		dir += string(filepath.Separator)
	}
	return dir
}
