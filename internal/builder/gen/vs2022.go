package gen

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/qobs-build/ninjasetup/internal/config"
)

//
// structures for .vcxproj
//

type VSProject struct {
	XMLName        xml.Name          `xml:"Project"`
	DefaultTargets string            `xml:"DefaultTargets,attr"`
	ToolsVersion   string            `xml:"ToolsVersion,attr"`
	XMLNS          string            `xml:"xmlns,attr"`
	ItemGroups     []VSItemGroup     `xml:"ItemGroup"`
	PropertyGroups []VSPropertyGroup `xml:"PropertyGroup"`
	Imports        []VSImport        `xml:"Import"`
	ImportGroups   []VSImportGroup   `xml:"ImportGroup"`
}

type VSItemGroup struct {
	Label                 string                   `xml:"Label,attr,omitempty"`
	ProjectConfigurations []VSProjectConfiguration `xml:"ProjectConfiguration,omitempty"`
	ClCompiles            []VSClCompile            `xml:"ClCompile,omitempty"`
	None                  []VSClCompile            `xml:"None,omitempty"`
}

type VSProjectConfiguration struct {
	Include       string `xml:"Include,attr"`
	Configuration string `xml:"Configuration"`
	Platform      string `xml:"Platform"`
}

type VSClCompile struct {
	Include string `xml:"Include,attr"`
}

type VSPropertyGroup struct {
	Label                        string `xml:"Label,attr,omitempty"`
	Condition                    string `xml:"Condition,attr,omitempty"`
	ProjectGuid                  string `xml:"ProjectGuid,omitempty"`
	Keyword                      string `xml:"Keyword,omitempty"`
	WindowsTargetPlatformVersion string `xml:"WindowsTargetPlatformVersion,omitempty"`
	ProjectName                  string `xml:"ProjectName,omitempty"`
	ConfigurationType            string `xml:"ConfigurationType,omitempty"`
	PlatformToolset              string `xml:"PlatformToolset,omitempty"`
	UseDebugLibraries            *bool  `xml:"UseDebugLibraries,omitempty"`
	OutDir                       string `xml:"OutDir,omitempty"`
	IntDir                       string `xml:"IntDir,omitempty"`
	NMakeBuildCommandLine        string `xml:"NMakeBuildCommandLine,omitempty"`
	NMakeReBuildCommandLine      string `xml:"NMakeReBuildCommandLine,omitempty"`
	NMakeCleanCommandLine        string `xml:"NMakeCleanCommandLine,omitempty"`
	NMakeOutput                  string `xml:"NMakeOutput,omitempty"`
	NMakeIncludeSearchPath       string `xml:"NMakeIncludeSearchPath,omitempty"`
	NMakePreprocessorDefinitions string `xml:"NMakePreprocessorDefinitions,omitempty"`
	AdditionalOptions            string `xml:"AdditionalOptions,omitempty"`
}

type VSImportGroup struct {
	Label   string     `xml:"Label,attr,omitempty"`
	Imports []VSImport `xml:"Import"`
}

type VSImport struct {
	Project   string `xml:"Project,attr"`
	Condition string `xml:"Condition,attr,omitempty"`
	Label     string `xml:"Label,attr,omitempty"`
}

type VSFiltersProject struct {
	XMLName      xml.Name             `xml:"Project"`
	ToolsVersion string               `xml:"ToolsVersion,attr"`
	XMLNS        string               `xml:"xmlns,attr"`
	ItemGroups   []VSFiltersItemGroup `xml:"ItemGroup"`
}

type VSFiltersItemGroup struct {
	ClCompiles []VSFiltersClCompile `xml:"ClCompile,omitempty"`
	Filters    []VSFiltersFilter    `xml:"Filter,omitempty"`
}

type VSFiltersClCompile struct {
	Include string `xml:"Include,attr"`
	Filter  string `xml:"Filter"`
}

type VSFiltersFilter struct {
	Include          string `xml:"Include,attr"`
	UniqueIdentifier string `xml:"UniqueIdentifier"`
	Extensions       string `xml:"Extensions"`
}

//
// generator
//

const msbuildNS = "http://schemas.microsoft.com/developer/msbuild/2003"

// Windows (Visual C++) https://github.com/VISTALL/visual-studio-project-type-guids
const vcxprojTypeGuid = "8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942"

// VS2022Gen renders a Makefile-type Visual Studio project whose build commands are the driver scripts
type VS2022Gen struct{}

func NewVS2022Gen() *VS2022Gen { return &VS2022Gen{} }

// stableGuid derives a GUID from the project name so regenerating never churns the solution
func stableGuid(name, kind string) string {
	return strings.ToUpper(uuid.NewSHA1(uuid.NameSpaceURL, []byte("ninjasetup:"+kind+":"+name)).String())
}

// vsPlatform is the Visual Studio platform name of an architecture
func vsPlatform(a config.Arch) string {
	if a == config.ArchX86 {
		return "Win32"
	}
	return "x64"
}

func vsCondition(v config.Variant, a config.Arch) string {
	return fmt.Sprintf("'$(Configuration)|$(Platform)'=='%s|%s'", v, vsPlatform(a))
}

// fromProject turns a root-relative path into one relative to the project file in build/
func fromProject(p string) string {
	return `$(ProjectDir)..\` + strings.ReplaceAll(p, "/", `\`)
}

// ProjectPath is the vcxproj location, next to the descriptors
func ProjectPath(cfg config.Config) string { return path.Join(BuildDir, cfg.Name+".vcxproj") }

// SolutionPath is the solution location at the project root
func SolutionPath(cfg config.Config) string { return cfg.Name + ".sln" }

func (g *VS2022Gen) Files(cfg config.Config, sources []Source) ([]File, error) {
	proj, err := g.generateProjectFile(cfg, sources)
	if err != nil {
		return nil, err
	}
	filters, err := g.generateFiltersFile(cfg, sources)
	if err != nil {
		return nil, err
	}
	return []File{
		{Path: SolutionPath(cfg), Content: g.generateSolutionFile(cfg)},
		{Path: ProjectPath(cfg), Content: proj},
		{Path: ProjectPath(cfg) + ".filters", Content: filters},
	}, nil
}

func (g *VS2022Gen) generateSolutionFile(cfg config.Config) string {
	projectGuid := stableGuid(cfg.Name, "project")
	var sb strings.Builder

	writeln(&sb, "Microsoft Visual Studio Solution File, Format Version 12.00")
	writeln(&sb, "# Visual Studio Version 17")
	writeln(&sb,
		`Project("{`, vcxprojTypeGuid, `}") = "`, cfg.Name, `", "`, BuildDir, `\`, cfg.Name, `.vcxproj", "{`, projectGuid, `}"`,
	)
	writeln(&sb, "EndProject")
	writeln(&sb, "Global")
	writeln(&sb, "\tGlobalSection(SolutionConfigurationPlatforms) = preSolution")
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			writeln(&sb, "\t\t", string(v), "|", string(a), " = ", string(v), "|", string(a))
		}
	}
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ProjectConfigurationPlatforms) = postSolution")
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			sln := string(v) + "|" + string(a)
			prj := string(v) + "|" + vsPlatform(a)
			writeln(&sb, "\t\t{", projectGuid, "}.", sln, ".ActiveCfg = ", prj)
			writeln(&sb, "\t\t{", projectGuid, "}.", sln, ".Build.0 = ", prj)
		}
	}
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(SolutionProperties) = preSolution")
	writeln(&sb, "\t\tHideSolutionNode = FALSE")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ExtensibilityGlobals) = postSolution")
	writeln(&sb, "\t\tSolutionGuid = {", stableGuid(cfg.Name, "solution"), "}")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "EndGlobal")

	return sb.String()
}

func (g *VS2022Gen) generateProjectFile(cfg config.Config, sources []Source) (string, error) {
	var projectConfigs []VSProjectConfiguration
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			projectConfigs = append(projectConfigs, VSProjectConfiguration{
				Include:       string(v) + "|" + vsPlatform(a),
				Configuration: string(v),
				Platform:      vsPlatform(a),
			})
		}
	}

	clCompiles := make([]VSClCompile, 0, len(sources))
	for _, src := range sources {
		clCompiles = append(clCompiles, VSClCompile{Include: `..\` + strings.ReplaceAll(src.Path(), "/", `\`)})
	}

	allPropertyGroups := []VSPropertyGroup{{
		Label:                        "Globals",
		ProjectGuid:                  "{" + stableGuid(cfg.Name, "project") + "}",
		Keyword:                      "MakeFileProj",
		WindowsTargetPlatformVersion: "10.0",
		ProjectName:                  cfg.Name,
	}}
	allPropertyGroups = append(allPropertyGroups, g.createConfigurationPropertyGroups(cfg)...)
	allPropertyGroups = append(allPropertyGroups, g.createNMakePropertyGroups(cfg)...)

	itemGroups := []VSItemGroup{
		{Label: "ProjectConfigurations", ProjectConfigurations: projectConfigs},
		{ClCompiles: clCompiles},
	}
	if cfg.Resource {
		itemGroups = append(itemGroups, VSItemGroup{None: []VSClCompile{{Include: `..\` + strings.ReplaceAll(ResourceFile, "/", `\`)}}})
	}

	project := VSProject{
		DefaultTargets: "Build",
		ToolsVersion:   "17.0",
		XMLNS:          msbuildNS,
		ItemGroups:     itemGroups,
		PropertyGroups: allPropertyGroups,
		Imports: []VSImport{
			{Project: `$(VCTargetsPath)\Microsoft.Cpp.Default.props`},
			{Project: `$(VCTargetsPath)\Microsoft.Cpp.props`},
			{Project: `$(VCTargetsPath)\Microsoft.Cpp.targets`},
		},
		ImportGroups: []VSImportGroup{{Label: "ExtensionTargets"}},
	}

	output, err := xml.MarshalIndent(project, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode %s: %w", ProjectPath(cfg), err)
	}
	return xml.Header + string(output) + "\n", nil
}

func (g *VS2022Gen) createConfigurationPropertyGroups(cfg config.Config) []VSPropertyGroup {
	var groups []VSPropertyGroup
	for _, v := range config.AllVariants {
		debug := v == config.Debug
		for _, a := range cfg.Archs {
			groups = append(groups, VSPropertyGroup{
				Condition:         vsCondition(v, a),
				Label:             "Configuration",
				ConfigurationType: "Makefile",
				PlatformToolset:   "v143",
				UseDebugLibraries: &debug,
			})
		}
	}
	return groups
}

// runScript is the command line Visual Studio uses to run a generated script
func runScript(cfg config.Config, scriptPath string) string {
	if cfg.Script == config.ScriptShell {
		return `bash "` + fromProject(scriptPath) + `"`
	}
	return `call "` + fromProject(scriptPath) + `"`
}

func cleanObjects(cfg config.Config, v config.Variant, a config.Arch) string {
	glob := fromProject(ObjDir(v, a)) + `\*` + ObjExt(cfg.Family)
	if cfg.Script == config.ScriptShell {
		return `rm -f "` + strings.ReplaceAll(glob, `\`, "/") + `"`
	}
	return `del /q "` + glob + `"`
}

func (g *VS2022Gen) createNMakePropertyGroups(cfg config.Config) []VSPropertyGroup {
	var groups []VSPropertyGroup
	for _, v := range config.AllVariants {
		defines := "_DEBUG"
		if v == config.Release {
			defines = "NDEBUG"
		}
		for _, a := range cfg.Archs {
			build := runScript(cfg, ScriptPath(cfg, v, a))
			clean := cleanObjects(cfg, v, a)
			groups = append(groups, VSPropertyGroup{
				Condition:                    vsCondition(v, a),
				OutDir:                       fromProject(ArchBinDir(v, a)) + `\`,
				IntDir:                       fromProject(ObjDir(v, a)) + `\`,
				NMakeBuildCommandLine:        build,
				NMakeReBuildCommandLine:      clean + " & " + build,
				NMakeCleanCommandLine:        clean,
				NMakeOutput:                  fromProject(OutputPath(cfg, v, a)),
				NMakeIncludeSearchPath:       fromProject(IncludeDir) + ";$(NMakeIncludeSearchPath)",
				NMakePreprocessorDefinitions: "WIN32;" + defines + ";$(NMakePreprocessorDefinitions)",
				AdditionalOptions:            "/std:c++17",
			})
		}
	}
	return groups
}

func (g *VS2022Gen) generateFiltersFile(cfg config.Config, sources []Source) (string, error) {
	clCompiles := make([]VSFiltersClCompile, 0, len(sources))
	for _, src := range sources {
		clCompiles = append(clCompiles, VSFiltersClCompile{
			Include: `..\` + strings.ReplaceAll(src.Path(), "/", `\`),
			Filter:  "Source Files",
		})
	}
	filters := VSFiltersProject{
		ToolsVersion: "17.0",
		XMLNS:        msbuildNS,
		ItemGroups: []VSFiltersItemGroup{
			{ClCompiles: clCompiles},
			{Filters: []VSFiltersFilter{{
				Include:          "Source Files",
				UniqueIdentifier: "{" + stableGuid(cfg.Name, "filter") + "}",
				Extensions:       "cpp;c;cc;cxx;c++;cppm;ixx",
			}}},
		},
	}
	output, err := xml.MarshalIndent(filters, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not encode %s.filters: %w", ProjectPath(cfg), err)
	}
	return xml.Header + string(output) + "\n", nil
}
