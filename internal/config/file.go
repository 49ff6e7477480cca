package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"
)

// Filename is the optional per-project config file looked up in the target root
const Filename = "ninjasetup.toml"

// File is the parsed ninjasetup.toml. Unset values stay nil so flags and defaults win.
type File struct {
	Project  ProjectSection  `toml:"project"`
	Arch     ArchSection     `toml:"arch"`
	Features FeaturesSection `toml:"features"`
	Sources  SourcesSection  `toml:"sources"`
}

// ProjectSection defines the [project] section
type ProjectSection struct {
	Name           string `toml:"name"`
	Compiler       string `toml:"compiler"`
	CompilerFamily string `toml:"compiler-family"`
}

// ArchSection defines the [arch] section
type ArchSection struct {
	X86              *bool `toml:"x86"`
	X64              *bool `toml:"x64"`
	GeneralProcessor *bool `toml:"general-processor"`
}

// FeaturesSection defines the [features] section
type FeaturesSection struct {
	SystemLibs *bool  `toml:"system-libs"`
	ExtDebug   *bool  `toml:"ext-debug"`
	StaticLib  *bool  `toml:"static-lib"`
	DynamicLib *bool  `toml:"dynamic-lib"`
	Editor     *bool  `toml:"editor"`
	EditorKind string `toml:"editor-kind"`
	GUI        *bool  `toml:"gui"`
	Resource   *bool  `toml:"resource"`
	Script     string `toml:"script"`
}

// SourcesSection defines the [sources] section
type SourcesSection struct {
	Exclude []string `toml:"exclude"`
}

// Options flattens the file into the option map understood by Resolve
func (f *File) Options() map[string]string {
	opts := make(map[string]string)
	setString := func(name, v string) {
		if v != "" {
			opts[name] = v
		}
	}
	setBool := func(name string, v *bool) {
		if v != nil {
			opts[name] = strconv.FormatBool(*v)
		}
	}
	// [arch] says which architectures are in, options say which are out
	setExclusion := func(name string, v *bool) {
		if v != nil {
			opts[name] = strconv.FormatBool(!*v)
		}
	}

	setString(OptName, f.Project.Name)
	setString(OptCompiler, f.Project.Compiler)
	setString(OptCompilerFamily, f.Project.CompilerFamily)
	setExclusion(OptNoX86, f.Arch.X86)
	setExclusion(OptNoX64, f.Arch.X64)
	setBool(OptGeneralProcessor, f.Arch.GeneralProcessor)
	setBool(OptSystemLibs, f.Features.SystemLibs)
	setBool(OptExtDebug, f.Features.ExtDebug)
	setBool(OptStaticLib, f.Features.StaticLib)
	setBool(OptDynamicLib, f.Features.DynamicLib)
	setBool(OptEditor, f.Features.Editor)
	setString(OptEditorKind, f.Features.EditorKind)
	setBool(OptGUI, f.Features.GUI)
	setBool(OptResource, f.Features.Resource)
	setString(OptScript, f.Features.Script)
	return opts
}

// mergeStructs merges the set fields of the src struct into the dst struct
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}
	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}
	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)
		if !dstField.CanSet() {
			continue
		}

		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalConditionalSection parses a section and merges every sub-table whose key is a true expression
func unmarshalConditionalSection[T any](rawCfg map[string]any, name string, dst *T, env Env) error {
	sectionData, ok := rawCfg[name]
	if !ok {
		return nil
	}

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	baseFields := make(map[string]any)
	conditionalFields := make(map[string]map[string]any)

	for key, val := range sectionMap {
		if subMap, ok := val.(map[string]any); ok {
			if _, err := expr.Compile(key, expr.Env(env)); err == nil {
				conditionalFields[key] = subMap
				continue
			}
		}
		baseFields[key] = val
	}

	if len(baseFields) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(baseFields)), dst); err != nil {
			return fmt.Errorf("failed to parse [%s] section: %w", name, err)
		}
	}

	// true tables merge in sorted key order
	for _, expression := range slices.Sorted(maps.Keys(conditionalFields)) {
		condMap := conditionalFields[expression]
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return fmt.Errorf("failed to compile expression for [%s.%q]: %w", name, expression, err)
		}

		result, err := expr.Run(program, env)
		if err != nil {
			return fmt.Errorf("failed to run expression for [%s.%q]: %w", name, expression, err)
		}

		if matched, ok := result.(bool); !ok || !matched {
			continue
		}

		var condSection T
		if err := toml.Unmarshal([]byte(mustMarshal(condMap)), &condSection); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, expression, err)
		}
		if err := mergeStructs(dst, condSection); err != nil {
			return fmt.Errorf("failed to merge conditional section [%s.%q]: %w", name, expression, err)
		}
	}

	return nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString replaces every {{...}} expression in a string with its value
func evaluateString(s string, env Env) (string, error) {
	matches := exprRegex.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var sb strings.Builder
	lastIndex := 0
	for _, m := range matches {
		sb.WriteString(s[lastIndex:m[0]])

		expression := strings.TrimSpace(s[m[2]:m[3]])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			return "", fmt.Errorf("failed to compile expression %q: %w", expression, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("failed to run expression %q: %w", expression, err)
		}

		fmt.Fprintf(&sb, "%v", result)
		lastIndex = m[1]
	}
	sb.WriteString(s[lastIndex:])

	return sb.String(), nil
}

// processExpressions walks the parsed TOML data and evaluates expressions in strings
func processExpressions(data any, env Env) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processed, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processed
		}
		return v, nil
	case []any:
		for i, item := range v {
			processed, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processed
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

// ParseFile parses a ninjasetup.toml document
func ParseFile(rdr io.Reader, env Env) (*File, error) {
	var rawConfig map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidConfiguration, derr.String())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	processed, err := processExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("%w: error processing expressions in config: %v", ErrInvalidConfiguration, err)
	}
	rawConfig = processed.(map[string]any)

	for key := range rawConfig {
		switch key {
		case "project", "arch", "features", "sources":
		default:
			return nil, fmt.Errorf("%w: unknown config section [%s]", ErrInvalidConfiguration, key)
		}
	}

	f := new(File)
	if err := unmarshalConditionalSection(rawConfig, "project", &f.Project, env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := unmarshalConditionalSection(rawConfig, "arch", &f.Arch, env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := unmarshalConditionalSection(rawConfig, "features", &f.Features, env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := unmarshalConditionalSection(rawConfig, "sources", &f.Sources, env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	return f, nil
}

// LoadFile parses a config file from a filepath
func LoadFile(path string, env Env) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseFile(bufio.NewReader(f), env)
}

// Env is the expression environment of config files
type Env struct {
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewEnv() Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}

	return Env{
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}
