package config

import (
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Option names accepted by Resolve
const (
	OptDir              = "dir"
	OptName             = "name"
	OptCompiler         = "compiler"
	OptCompilerFamily   = "compiler-family"
	OptNoX86            = "no-x86"
	OptNoX64            = "no-x64"
	OptGeneralProcessor = "general-processor"
	OptSystemLibs       = "system-libs"
	OptExtDebug         = "ext-debug"
	OptStaticLib        = "static-lib"
	OptDynamicLib       = "dynamic-lib"
	OptEditor           = "editor"
	OptEditorKind       = "editor-kind"
	OptGUI              = "gui"
	OptResource         = "resource"
	OptScript           = "script"
	OptConfig           = "config"
)

// valued options need an argument, the rest are booleans
var knownOptions = map[string]bool{
	OptDir:              true,
	OptName:             true,
	OptCompiler:         true,
	OptCompilerFamily:   true,
	OptEditorKind:       true,
	OptScript:           true,
	OptConfig:           true,
	OptNoX86:            false,
	OptNoX64:            false,
	OptGeneralProcessor: false,
	OptSystemLibs:       false,
	OptExtDebug:         false,
	OptStaticLib:        false,
	OptDynamicLib:       false,
	OptEditor:           false,
	OptGUI:              false,
	OptResource:         false,
}

// knownCompilers maps compiler basenames to their family, matched case-sensitively.
// cl is what FindCompiler reports for MSVC, and a trailing .exe is ignored.
var knownCompilers = map[string]Family{
	"clang":   FamilyClang,
	"clang++": FamilyClang,
	"gcc":     FamilyGCC,
	"g++":     FamilyGCC,
	"msvc":    FamilyMSVC,
	"cl":      FamilyMSVC,
}

// Defaults carries the environment-derived fallbacks the resolver must not look up itself
type Defaults struct {
	Dir      string
	Compiler string
}

// InferFamily derives the compiler family from the last path segment of an invocation
func InferFamily(invocation string) Family {
	invocation = strings.TrimSpace(invocation)
	if invocation == "" {
		return FamilyUnknown
	}
	// invocations may carry Windows paths regardless of the host
	base := path.Base(strings.ReplaceAll(invocation, `\`, "/"))
	base = strings.TrimSuffix(base, ".exe")
	if f, ok := knownCompilers[base]; ok {
		return f
	}
	return FamilyUnknown
}

// Resolve merges explicitly set options over the config file and defaults into a Config.
// opts only holds options the user actually set.
func Resolve(opts map[string]string, file *File, defs Defaults) (Config, error) {
	merged := make(map[string]string)
	if file != nil {
		for k, v := range file.Options() {
			merged[k] = v
		}
	}
	for k, v := range opts {
		merged[k] = v
	}

	for name, value := range merged {
		valued, ok := knownOptions[name]
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown option %q", ErrInvalidConfiguration, name)
		}
		if valued && strings.TrimSpace(value) == "" {
			return Config{}, fmt.Errorf("%w: option %q needs an argument", ErrInvalidConfiguration, name)
		}
	}

	boolOpt := func(name string) (bool, error) {
		v, ok := merged[name]
		if !ok {
			return false, nil
		}
		if v == "" {
			return true, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: option %q expects a boolean, got %q", ErrInvalidConfiguration, name, v)
		}
		return b, nil
	}

	cfg := Config{
		Root:     normalizeRoot(defs.Dir),
		Name:     DefaultName,
		Compiler: defs.Compiler,
		Features: Features{
			EditorKind: EditorVSCode,
			Script:     ScriptBatch,
		},
	}
	if dir, ok := merged[OptDir]; ok {
		cfg.Root = normalizeRoot(dir)
	}
	if name, ok := merged[OptName]; ok {
		cfg.Name = name
	}
	if cc, ok := merged[OptCompiler]; ok {
		cfg.Compiler = cc
	}
	if cfg.Compiler == "" {
		cfg.Compiler = "clang"
	}

	if fam, ok := merged[OptCompilerFamily]; ok {
		f, ok := ParseFamily(fam)
		if !ok {
			return Config{}, fmt.Errorf("%w: unknown compiler family %q", ErrInvalidConfiguration, fam)
		}
		cfg.Family = f
	} else {
		cfg.Family = InferFamily(cfg.Compiler)
	}

	if kind, ok := merged[OptEditorKind]; ok {
		switch EditorKind(kind) {
		case EditorVSCode, EditorVS2022:
			cfg.EditorKind = EditorKind(kind)
		default:
			return Config{}, fmt.Errorf("%w: unknown editor kind %q", ErrInvalidConfiguration, kind)
		}
	}
	if script, ok := merged[OptScript]; ok {
		switch ScriptFormat(script) {
		case ScriptBatch, ScriptShell:
			cfg.Script = ScriptFormat(script)
		default:
			return Config{}, fmt.Errorf("%w: unknown script format %q", ErrInvalidConfiguration, script)
		}
	}

	toggles := []struct {
		name string
		dst  *bool
	}{
		{OptGeneralProcessor, &cfg.GeneralProcessor},
		{OptSystemLibs, &cfg.SystemLibs},
		{OptExtDebug, &cfg.ExtDebug},
		{OptStaticLib, &cfg.StaticLib},
		{OptDynamicLib, &cfg.DynamicLib},
		{OptEditor, &cfg.Editor},
		{OptGUI, &cfg.GUI},
		{OptResource, &cfg.Resource},
	}
	for _, t := range toggles {
		v, err := boolOpt(t.name)
		if err != nil {
			return Config{}, err
		}
		*t.dst = v
	}

	noX86, err := boolOpt(OptNoX86)
	if err != nil {
		return Config{}, err
	}
	noX64, err := boolOpt(OptNoX64)
	if err != nil {
		return Config{}, err
	}
	if !noX86 {
		cfg.Archs = append(cfg.Archs, ArchX86)
	}
	if !noX64 {
		cfg.Archs = append(cfg.Archs, ArchX64)
	}
	if len(cfg.Archs) == 0 {
		return Config{}, fmt.Errorf("%w: both x86 and x64 are excluded", ErrInvalidConfiguration)
	}

	if file != nil {
		cfg.Exclude = slices.Clone(file.Sources.Exclude)
	}

	return cfg, nil
}

// ArchExclusions reports which architecture exclusions were explicitly given
func ArchExclusions(opts map[string]string) (noX86, noX64 bool, explicit bool) {
	v86, ok86 := opts[OptNoX86]
	v64, ok64 := opts[OptNoX64]
	if !ok86 && !ok64 {
		return false, false, false
	}
	parse := func(v string, ok bool) bool {
		if !ok {
			return false
		}
		if v == "" {
			return true
		}
		b, _ := strconv.ParseBool(v)
		return b
	}
	return parse(v86, ok86), parse(v64, ok64), true
}
