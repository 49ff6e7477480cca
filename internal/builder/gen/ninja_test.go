package gen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qobs-build/ninjasetup/internal/config"
)

func testConfig(family config.Family, script config.ScriptFormat) config.Config {
	compiler := map[config.Family]string{
		config.FamilyClang: "clang++",
		config.FamilyGCC:   "g++",
		config.FamilyMSVC:  "cl",
	}[family]
	return config.Config{
		Root:     "/work/proj/",
		Name:     "app",
		Compiler: compiler,
		Family:   family,
		Archs:    []config.Arch{config.ArchX86, config.ArchX64},
		Features: config.Features{Script: script, EditorKind: config.EditorVSCode},
	}
}

var testSources = []Source{
	{Dir: "src/", Stem: "main", Ext: ".cpp"},
	{Dir: "src/", Stem: "util", Ext: ".cpp"},
	{Dir: "src/sub/", Stem: "x", Ext: ".cpp"},
}

func TestDescriptorClang(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyClang, config.ScriptShell)
	f := Descriptor(cfg, config.Debug, config.ArchX64, testSources)

	assert.Equal(t, "build/Debug/buildx64.ninja", f.Path)
	want := `# app Debug x64
include ./build/Debug/varsx64.ninja

rule buildToObject
  command = $compiler $compilerFlags $inc $in -o $out -MMD -MF $out.d
  depfile = $out.d
  deps = gcc

build $objDir/main.o: buildToObject src/main.cpp
build $objDir/util.o: buildToObject src/util.cpp
build $objDir/x.o: buildToObject src/sub/x.cpp
`
	if diff := cmp.Diff(want, f.Content); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptorMSVC(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyMSVC, config.ScriptBatch)
	f := Descriptor(cfg, config.Release, config.ArchX86, testSources[:1])

	assert.Contains(t, f.Content, "command = $compiler /showIncludes $compilerFlags $inc $in /Fo$out\n")
	assert.Contains(t, f.Content, "  deps = msvc\n")
	assert.NotContains(t, f.Content, "depfile")
	assert.NotContains(t, f.Content, "deps = gcc")
	assert.Equal(t, []string{"build $objDir/main.obj: buildToObject src/main.cpp"}, EdgeLines(f.Content))
}

func TestDescriptorEscapesPaths(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyGCC, config.ScriptShell)
	f := Descriptor(cfg, config.Debug, config.ArchX86, []Source{{Dir: "src/my dir/", Stem: "a$b", Ext: ".cc"}})

	assert.Equal(t,
		[]string{"build $objDir/a$$b.o: buildToObject src/my$ dir/a$$b.cc"},
		EdgeLines(f.Content),
	)
}

func TestDescriptorNoSources(t *testing.T) {
	t.Parallel()

	f := Descriptor(testConfig(config.FamilyClang, config.ScriptBatch), config.Debug, config.ArchX86, nil)
	assert.Empty(t, EdgeLines(f.Content))
	assert.Contains(t, f.Content, "rule buildToObject\n")
}

func TestVars(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg  func() config.Config
		v    config.Variant
		a    config.Arch
		want string
	}{
		"ClangBatchDebugX86": {
			cfg: func() config.Config { return testConfig(config.FamilyClang, config.ScriptBatch) },
			v:   config.Debug,
			a:   config.ArchX86,
			want: "inc = -I ./include\n" +
				"objDir = ./bin/Debug/x86/obj\n" +
				"compiler = cmd /c clang++\n" +
				"compilerFlags = -c -std=c++17 -Wno-unused-command-line-argument -g -m32\n",
		},
		"GCCShellReleaseX64SystemLibs": {
			cfg: func() config.Config {
				cfg := testConfig(config.FamilyGCC, config.ScriptShell)
				cfg.SystemLibs = true
				return cfg
			},
			v:   config.Release,
			a:   config.ArchX64,
			want: "inc = -I ./include $$WLIBPATH64\n" +
				"objDir = ./bin/Release/x64/obj\n" +
				"compiler = g++\n" +
				"compilerFlags = -c -std=c++17 -O3 -m64\n",
		},
		"MSVCDebugExtDebug": {
			cfg: func() config.Config {
				cfg := testConfig(config.FamilyMSVC, config.ScriptBatch)
				cfg.ExtDebug = true
				cfg.SystemLibs = true
				return cfg
			},
			v:   config.Debug,
			a:   config.ArchX86,
			want: "inc = /I ./include %WLIBPATH32%\n" +
				"objDir = ./bin/Debug/x86/obj\n" +
				"compiler = cmd /c cl\n" +
				"compilerFlags = /nologo /c /std:c++17 /EHsc /Zi /Od /fsanitize=address\n",
		},
		"GeneralProcessor": {
			cfg: func() config.Config {
				cfg := testConfig(config.FamilyClang, config.ScriptShell)
				cfg.GeneralProcessor = true
				return cfg
			},
			v:   config.Debug,
			a:   config.ArchX64,
			want: "inc = -I ./include\n" +
				"objDir = ./bin/Debug/x64/obj\n" +
				"compiler = clang++\n" +
				"compilerFlags = -c -std=c++17 -Wno-unused-command-line-argument -g\n",
		},
	}

	for desc, tt := range tests {
		t.Run(desc, func(t *testing.T) {
			t.Parallel()
			f := Vars(tt.cfg(), tt.v, tt.a)
			assert.Equal(t, VarsPath(tt.v, tt.a), f.Path)
			if diff := cmp.Diff(tt.want, f.Content); diff != "" {
				t.Errorf("vars mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtDebugOnlyChangesDebug(t *testing.T) {
	t.Parallel()

	for _, family := range []config.Family{config.FamilyClang, config.FamilyGCC, config.FamilyMSVC} {
		plain := testConfig(family, config.ScriptBatch)
		ext := plain
		ext.ExtDebug = true

		for _, a := range config.AllArchs {
			assert.Equal(t, Vars(plain, config.Release, a), Vars(ext, config.Release, a), family.String())
			assert.NotEqual(t, Vars(plain, config.Debug, a), Vars(ext, config.Debug, a), family.String())

			relPlain, err := DriverScript(plain, config.Release, a)
			require.NoError(t, err)
			relExt, err := DriverScript(ext, config.Release, a)
			require.NoError(t, err)
			assert.Equal(t, relPlain, relExt, family.String())
		}
	}
}

func TestCompilerWithSpaces(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyClang, config.ScriptBatch)
	cfg.Compiler = `C:\Program Files\LLVM\bin\clang++.exe`
	f := Vars(cfg, config.Debug, config.ArchX64)
	assert.Contains(t, f.Content, "compiler = cmd /c \"C:\\Program Files\\LLVM\\bin\\clang++.exe\"\n")

	cc, ok := ReadCompiler(strings.NewReader(f.Content))
	require.True(t, ok)
	assert.Equal(t, cfg.Compiler, cc)
}

func TestReadBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family config.Family
		script config.ScriptFormat
	}{
		{config.FamilyClang, config.ScriptBatch},
		{config.FamilyGCC, config.ScriptShell},
		{config.FamilyMSVC, config.ScriptBatch},
	}

	for _, tt := range tests {
		cfg := testConfig(tt.family, tt.script)
		desc := Descriptor(cfg, config.Debug, config.ArchX86, testSources)
		vars := Vars(cfg, config.Debug, config.ArchX86)

		deps, ok := ReadDepsMode(strings.NewReader(desc.Content))
		require.True(t, ok)
		assert.Equal(t, DepsMode(tt.family), deps)

		cc, ok := ReadCompiler(strings.NewReader(vars.Content))
		require.True(t, ok)
		assert.Equal(t, cfg.Compiler, cc)

		f, ok := FamilyFromDeps(deps, cc)
		require.True(t, ok)
		assert.Equal(t, tt.family, f)
	}
}

func TestFamilyFromDeps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		deps, compiler string
		want           config.Family
		ok             bool
	}{
		{"msvc", "", config.FamilyMSVC, true},
		{"gcc", "clang", config.FamilyClang, true},
		{"gcc", "/usr/bin/g++", config.FamilyGCC, true},
		{"gcc", "", config.FamilyGCC, true},
		{"gcc", "mycc", config.FamilyUnknown, true},
		{"", "clang", config.FamilyUnknown, false},
	}

	for _, tt := range tests {
		f, ok := FamilyFromDeps(tt.deps, tt.compiler)
		assert.Equal(t, tt.ok, ok, "%q/%q", tt.deps, tt.compiler)
		assert.Equal(t, tt.want, f, "%q/%q", tt.deps, tt.compiler)
	}
}
