package gen

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/qobs-build/ninjasetup/internal/config"
)

//
// structures for .vscode/*.json
//

type cppProperties struct {
	Configurations []cppConfiguration `json:"configurations"`
	Version        int                `json:"version"`
}

type cppConfiguration struct {
	Name             string   `json:"name"`
	IncludePath      []string `json:"includePath"`
	Defines          []string `json:"defines"`
	CompilerPath     string   `json:"compilerPath"`
	CStandard        string   `json:"cStandard"`
	CppStandard      string   `json:"cppStandard"`
	IntelliSenseMode string   `json:"intelliSenseMode"`
}

type taskList struct {
	Version string `json:"version"`
	Tasks   []task `json:"tasks"`
}

type taskGroup struct {
	Kind      string `json:"kind"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

type task struct {
	Label          string     `json:"label"`
	Type           string     `json:"type"`
	Command        string     `json:"command"`
	Group          *taskGroup `json:"group,omitempty"`
	DependsOn      []string   `json:"dependsOn,omitempty"`
	ProblemMatcher []string   `json:"problemMatcher"`
}

type launchList struct {
	Version        string         `json:"version"`
	Configurations []launchConfig `json:"configurations"`
}

type launchConfig struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Request       string   `json:"request"`
	Program       string   `json:"program"`
	Args          []string `json:"args"`
	StopAtEntry   bool     `json:"stopAtEntry"`
	Cwd           string   `json:"cwd"`
	Console       string   `json:"console,omitempty"`
	MIMode        string   `json:"MIMode,omitempty"`
	PreLaunchTask string   `json:"preLaunchTask"`
}

//
// generator
//

type VSCodeGen struct{}

func NewVSCodeGen() *VSCodeGen { return &VSCodeGen{} }

const workspace = "${workspaceFolder}"

// BuildTaskLabel names the task running the driver script of a configuration
func BuildTaskLabel(v config.Variant, a config.Arch) string {
	return fmt.Sprintf("Build %s %s", v, a)
}

func (g *VSCodeGen) Files(cfg config.Config, _ []Source) ([]File, error) {
	docs := []struct {
		name string
		v    any
	}{
		{"c_cpp_properties.json", g.properties(cfg)},
		{"tasks.json", g.tasks(cfg)},
		{"launch.json", g.launch(cfg)},
	}

	files := make([]File, 0, len(docs))
	for _, doc := range docs {
		data, err := json.MarshalIndent(doc.v, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("could not encode %s: %w", doc.name, err)
		}
		files = append(files, File{Path: path.Join(VSCodeDir, doc.name), Content: string(data) + "\n"})
	}
	return files, nil
}

func intelliSenseMode(cfg config.Config, a config.Arch) string {
	platform := "linux"
	if cfg.Script == config.ScriptBatch || cfg.MSVC() {
		platform = "windows"
	}
	compiler := "gcc"
	switch cfg.Family {
	case config.FamilyClang:
		compiler = "clang"
	case config.FamilyMSVC:
		compiler = "msvc"
	}
	return platform + "-" + compiler + "-" + string(a)
}

func (g *VSCodeGen) properties(cfg config.Config) cppProperties {
	props := cppProperties{Version: 4}
	for _, a := range cfg.Archs {
		props.Configurations = append(props.Configurations, cppConfiguration{
			Name:             string(a),
			IncludePath:      []string{workspace + "/" + IncludeDir, workspace + "/" + SrcDir + "/**"},
			Defines:          []string{},
			CompilerPath:     cfg.Compiler,
			CStandard:        "c17",
			CppStandard:      "c++17",
			IntelliSenseMode: intelliSenseMode(cfg, a),
		})
	}
	return props
}

func (g *VSCodeGen) problemMatcher(cfg config.Config) []string {
	if cfg.MSVC() {
		return []string{"$msCompile"}
	}
	return []string{"$gcc"}
}

func (g *VSCodeGen) scriptTask(cfg config.Config, label, script string, group *taskGroup) task {
	return task{
		Label:          label,
		Type:           "shell",
		Command:        workspace + "/" + script,
		Group:          group,
		ProblemMatcher: g.problemMatcher(cfg),
	}
}

func (g *VSCodeGen) tasks(cfg config.Config) taskList {
	list := taskList{Version: "2.0.0"}
	first := true
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			list.Tasks = append(list.Tasks, g.scriptTask(cfg, BuildTaskLabel(v, a), ScriptPath(cfg, v, a),
				&taskGroup{Kind: "build", IsDefault: first}))
			first = false
		}
	}

	libs := []struct {
		enabled bool
		kind    string
		script  func(config.Config, config.Variant, config.Arch) string
	}{
		{cfg.StaticLib, "Static Library", StaticLibScriptPath},
		{cfg.DynamicLib, "Dynamic Library", DynamicLibScriptPath},
	}
	for _, lib := range libs {
		if !lib.enabled {
			continue
		}
		for _, v := range config.AllVariants {
			for _, a := range cfg.Archs {
				t := g.scriptTask(cfg, fmt.Sprintf("Export %s %s %s", lib.kind, v, a), lib.script(cfg, v, a), nil)
				t.DependsOn = []string{BuildTaskLabel(v, a)}
				list.Tasks = append(list.Tasks, t)
			}
		}
	}
	return list
}

func (g *VSCodeGen) launch(cfg config.Config) launchList {
	list := launchList{Version: "0.2.0"}
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			lc := launchConfig{
				Name:          fmt.Sprintf("Launch %s %s", v, a),
				Request:       "launch",
				Program:       workspace + "/" + OutputPath(cfg, v, a),
				Args:          []string{},
				Cwd:           workspace,
				PreLaunchTask: BuildTaskLabel(v, a),
			}
			if cfg.Script == config.ScriptBatch {
				lc.Type = "cppvsdbg"
				lc.Console = "integratedTerminal"
			} else {
				lc.Type = "cppdbg"
				lc.MIMode = "gdb"
				if cfg.Family == config.FamilyClang {
					lc.MIMode = "lldb"
				}
			}
			list.Configurations = append(list.Configurations, lc)
		}
	}
	return list
}
