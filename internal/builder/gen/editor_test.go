package gen

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qobs-build/ninjasetup/internal/config"
)

func filesByPath(t *testing.T, files []File) map[string]File {
	t.Helper()
	m := make(map[string]File, len(files))
	for _, f := range files {
		require.NotContains(t, m, f.Path)
		m[f.Path] = f
	}
	return m
}

func TestVSCodeFiles(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyClang, config.ScriptShell)
	cfg.Archs = []config.Arch{config.ArchX64}
	cfg.StaticLib = true

	files, err := NewVSCodeGen().Files(cfg, testSources)
	require.NoError(t, err)
	byPath := filesByPath(t, files)
	require.Len(t, byPath, 3)

	var props cppProperties
	require.NoError(t, json.Unmarshal([]byte(byPath[".vscode/c_cpp_properties.json"].Content), &props))
	require.Len(t, props.Configurations, 1)
	assert.Equal(t, "x64", props.Configurations[0].Name)
	assert.Equal(t, "linux-clang-x64", props.Configurations[0].IntelliSenseMode)
	assert.Equal(t, "clang++", props.Configurations[0].CompilerPath)

	var tasks taskList
	require.NoError(t, json.Unmarshal([]byte(byPath[".vscode/tasks.json"].Content), &tasks))
	var labels []string
	for _, tk := range tasks.Tasks {
		labels = append(labels, tk.Label)
	}
	assert.Equal(t, []string{
		"Build Debug x64",
		"Build Release x64",
		"Export Static Library Debug x64",
		"Export Static Library Release x64",
	}, labels)
	assert.Equal(t, "${workspaceFolder}/build/Debug/buildx64.sh", tasks.Tasks[0].Command)
	require.NotNil(t, tasks.Tasks[0].Group)
	assert.True(t, tasks.Tasks[0].Group.IsDefault)
	assert.Equal(t, []string{"Build Release x64"}, tasks.Tasks[3].DependsOn)

	var launch launchList
	require.NoError(t, json.Unmarshal([]byte(byPath[".vscode/launch.json"].Content), &launch))
	require.Len(t, launch.Configurations, 2)
	assert.Equal(t, "cppdbg", launch.Configurations[0].Type)
	assert.Equal(t, "lldb", launch.Configurations[0].MIMode)
	assert.Equal(t, "${workspaceFolder}/bin/Debug/x64/app", launch.Configurations[0].Program)

	for _, f := range files {
		assert.NotContains(t, f.Content, "x86", f.Path)
	}
}

func TestVSCodeFilesBatch(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyMSVC, config.ScriptBatch)
	files, err := NewVSCodeGen().Files(cfg, nil)
	require.NoError(t, err)
	byPath := filesByPath(t, files)

	var props cppProperties
	require.NoError(t, json.Unmarshal([]byte(byPath[".vscode/c_cpp_properties.json"].Content), &props))
	require.Len(t, props.Configurations, 2)
	assert.Equal(t, "windows-msvc-x86", props.Configurations[0].IntelliSenseMode)
	assert.Equal(t, "windows-msvc-x64", props.Configurations[1].IntelliSenseMode)

	var launch launchList
	require.NoError(t, json.Unmarshal([]byte(byPath[".vscode/launch.json"].Content), &launch))
	require.Len(t, launch.Configurations, 4)
	for _, lc := range launch.Configurations {
		assert.Equal(t, "cppvsdbg", lc.Type)
		assert.Empty(t, lc.MIMode)
		assert.True(t, strings.HasSuffix(lc.Program, "app.exe"), lc.Program)
	}

	assert.Contains(t, byPath[".vscode/tasks.json"].Content, `"$msCompile"`)
}

func TestVS2022Files(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyMSVC, config.ScriptBatch)
	files, err := NewVS2022Gen().Files(cfg, testSources)
	require.NoError(t, err)
	byPath := filesByPath(t, files)
	require.Contains(t, byPath, "app.sln")
	require.Contains(t, byPath, "build/app.vcxproj")
	require.Contains(t, byPath, "build/app.vcxproj.filters")

	sln := byPath["app.sln"].Content
	guid := stableGuid("app", "project")
	assert.Contains(t, sln, `"app", "build\app.vcxproj", "{`+guid+`}"`)
	assert.Contains(t, sln, "{"+guid+"}.Debug|x86.ActiveCfg = Debug|Win32\n")
	assert.Contains(t, sln, "{"+guid+"}.Release|x64.Build.0 = Release|x64\n")

	var proj VSProject
	require.NoError(t, xml.Unmarshal([]byte(byPath["build/app.vcxproj"].Content), &proj))
	require.NotEmpty(t, proj.ItemGroups)
	assert.Len(t, proj.ItemGroups[0].ProjectConfigurations, 4)
	assert.Equal(t, []VSClCompile{
		{Include: `..\src\main.cpp`},
		{Include: `..\src\util.cpp`},
		{Include: `..\src\sub\x.cpp`},
	}, proj.ItemGroups[1].ClCompiles)

	var builds []string
	for _, pg := range proj.PropertyGroups {
		if pg.NMakeBuildCommandLine != "" {
			builds = append(builds, pg.NMakeBuildCommandLine)
		}
	}
	assert.Equal(t, []string{
		`call "$(ProjectDir)..\build\Debug\buildx86.bat"`,
		`call "$(ProjectDir)..\build\Debug\buildx64.bat"`,
		`call "$(ProjectDir)..\build\Release\buildx86.bat"`,
		`call "$(ProjectDir)..\build\Release\buildx64.bat"`,
	}, builds)
}

func TestVS2022Deterministic(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.FamilyMSVC, config.ScriptBatch)
	first, err := NewVS2022Gen().Files(cfg, testSources)
	require.NoError(t, err)
	second, err := NewVS2022Gen().Files(cfg, testSources)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NotEqual(t, stableGuid("app", "project"), stableGuid("other", "project"))
}

func TestNewEditorGen(t *testing.T) {
	t.Parallel()

	g, err := NewEditorGen(config.EditorVSCode)
	require.NoError(t, err)
	assert.IsType(t, &VSCodeGen{}, g)

	g, err = NewEditorGen(config.EditorVS2022)
	require.NoError(t, err)
	assert.IsType(t, &VS2022Gen{}, g)

	_, err = NewEditorGen("emacs")
	assert.True(t, errors.Is(err, config.ErrInvalidConfiguration))
}
