package gen

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/qobs-build/ninjasetup/internal/config"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var scriptTemplates = template.Must(
	template.New("scripts").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.tmpl"),
)

// scriptData is what the batch and shell templates render
type scriptData struct {
	Title string
	// RootFromScript walks from the script's directory back to the project root
	RootFromScript string
	Steps          []string
}

func templateName(format config.ScriptFormat) string {
	if format == config.ScriptShell {
		return "shell.tmpl"
	}
	return "batch.tmpl"
}

// renderScript renders a script at scriptPath running steps from the project root
func renderScript(cfg config.Config, scriptPath, title string, steps []string) (File, error) {
	depth := strings.Count(path.Dir(scriptPath), "/") + 1
	if path.Dir(scriptPath) == "." {
		depth = 0
	}
	root := "."
	if depth > 0 {
		root = strings.TrimSuffix(strings.Repeat("../", depth), "/")
	}

	var buf bytes.Buffer
	data := scriptData{Title: title, RootFromScript: root, Steps: steps}
	if err := scriptTemplates.ExecuteTemplate(&buf, templateName(cfg.Script), data); err != nil {
		return File{}, fmt.Errorf("could not execute script template for %s: %w", scriptPath, err)
	}

	return File{Path: scriptPath, Content: buf.String(), Exec: cfg.Script == config.ScriptShell}, nil
}

// callScript invokes another generated script, paths relative to the project root
func callScript(format config.ScriptFormat, scriptPath string) string {
	if format == config.ScriptShell {
		return `bash "./` + scriptPath + `"`
	}
	return `call "` + strings.ReplaceAll(scriptPath, "/", `\`) + `"`
}

func objGlob(cfg config.Config, v config.Variant, a config.Arch) string {
	return "./" + ObjDir(v, a) + "/*" + ObjExt(cfg.Family)
}

// sysLibs are the link-time references to the system library variables
func sysLibs(cfg config.Config, a config.Arch) string {
	if !cfg.SystemLibs {
		return ""
	}
	return envRef(cfg.Script, libPathVar(a)) + " " + envRef(cfg.Script, EnvLibValues)
}

// resourceStep compiles the resource descriptor for one configuration
func resourceStep(cfg config.Config, v config.Variant, a config.Arch) string {
	out := "./" + ResourceOutputPath(v, a)
	if cfg.MSVC() {
		return "rc /nologo /fo " + out + " ./" + ResourceFile
	}
	target := "pe-x86-64"
	if a == config.ArchX86 {
		target = "pe-i386"
	}
	return "windres -i ./" + ResourceFile + " -O coff -F " + target + " -o " + out
}

// linkStep links the objects of one configuration into the final executable
func linkStep(cfg config.Config, v config.Variant, a config.Arch) string {
	tc := toolchainFor(cfg.Family)
	cc := quoteCommand(cfg.Script, cfg.Compiler)
	out := quoteCommand(cfg.Script, "./"+OutputPath(cfg, v, a))

	var res string
	if cfg.Resource {
		res = "./" + ResourceOutputPath(v, a)
	}
	var gui string
	if cfg.GUI {
		gui = tc.guiFlags
	}

	if tc.msvc {
		return joinNonEmpty(
			cc, "/nologo",
			tc.debugSanitizer(cfg, v),
			objGlob(cfg, v, a), res,
			"/link", tc.linkVariant[v], tc.linkArchFlag(cfg, a),
			sysLibs(cfg, a), gui,
			"/OUT:"+out,
		)
	}
	return joinNonEmpty(
		cc, tc.linkVariant[v], tc.linkArchFlag(cfg, a),
		tc.debugSanitizer(cfg, v),
		sysLibs(cfg, a), gui,
		objGlob(cfg, v, a), res,
		"-o", out,
	)
}

// DriverScript renders the script that runs ninja on a descriptor and links the result
func DriverScript(cfg config.Config, v config.Variant, a config.Arch) (File, error) {
	var steps []string
	if cfg.Resource {
		steps = append(steps, resourceStep(cfg, v, a))
	}
	steps = append(steps,
		"ninja -f ./"+DescriptorPath(v, a)+" -v",
		linkStep(cfg, v, a),
	)
	title := fmt.Sprintf("build %s %s %s", cfg.Name, v, a)
	return renderScript(cfg, ScriptPath(cfg, v, a), title, steps)
}

// StaticLibScript archives the objects of one configuration into a static library
func StaticLibScript(cfg config.Config, v config.Variant, a config.Arch) (File, error) {
	tc := toolchainFor(cfg.Family)
	out := quoteCommand(cfg.Script, "./"+StaticLibPath(cfg, v, a))

	var step string
	if tc.msvc {
		step = joinNonEmpty("lib /nologo", tc.linkArchFlag(cfg, a), "/OUT:"+out, objGlob(cfg, v, a))
	} else {
		step = "ar -rcs " + out + " " + objGlob(cfg, v, a)
	}
	title := fmt.Sprintf("export static library %s %s %s", cfg.Name, v, a)
	return renderScript(cfg, StaticLibScriptPath(cfg, v, a), title, []string{step})
}

// DynamicLibScript links the objects of one configuration into a shared library
func DynamicLibScript(cfg config.Config, v config.Variant, a config.Arch) (File, error) {
	tc := toolchainFor(cfg.Family)
	cc := quoteCommand(cfg.Script, cfg.Compiler)
	out := quoteCommand(cfg.Script, "./"+DynamicLibPath(cfg, v, a))

	var step string
	if tc.msvc {
		step = joinNonEmpty(
			cc, "/nologo", tc.sharedFlag,
			tc.debugSanitizer(cfg, v),
			objGlob(cfg, v, a),
			"/link", tc.linkVariant[v], tc.linkArchFlag(cfg, a),
			sysLibs(cfg, a),
			"/OUT:"+out,
		)
	} else {
		step = joinNonEmpty(
			cc, tc.sharedFlag, tc.linkVariant[v], tc.linkArchFlag(cfg, a),
			tc.debugSanitizer(cfg, v),
			sysLibs(cfg, a),
			objGlob(cfg, v, a),
			"-o", out,
		)
	}
	title := fmt.Sprintf("export dynamic library %s %s %s", cfg.Name, v, a)
	return renderScript(cfg, DynamicLibScriptPath(cfg, v, a), title, []string{step})
}

// aggregateScript runs the given per-configuration scripts in sequence
func aggregateScript(cfg config.Config, scriptPath, title string, scripts []string) (File, error) {
	steps := make([]string, 0, len(scripts))
	for _, s := range scripts {
		steps = append(steps, callScript(cfg.Script, s))
	}
	return renderScript(cfg, scriptPath, title, steps)
}

// StaticLibScripts renders one archiver script per included configuration plus the aggregate
func StaticLibScripts(cfg config.Config) ([]File, error) {
	return libScripts(cfg, StaticLibScript, StaticLibScriptPath, StaticLibAllScriptPath(cfg), "export all static libraries")
}

// DynamicLibScripts renders one shared-library script per included configuration plus the aggregate
func DynamicLibScripts(cfg config.Config) ([]File, error) {
	return libScripts(cfg, DynamicLibScript, DynamicLibScriptPath, DynamicLibAllScriptPath(cfg), "export all dynamic libraries")
}

func libScripts(
	cfg config.Config,
	render func(config.Config, config.Variant, config.Arch) (File, error),
	pathOf func(config.Config, config.Variant, config.Arch) string,
	allPath, allTitle string,
) ([]File, error) {
	var files []File
	var all []string
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			f, err := render(cfg, v, a)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			all = append(all, pathOf(cfg, v, a))
		}
	}
	agg, err := aggregateScript(cfg, allPath, allTitle, all)
	if err != nil {
		return nil, err
	}
	return append(files, agg), nil
}

// ResourceDescriptor renders the starter resource file. It is user-editable and only seeded once.
func ResourceDescriptor(cfg config.Config) (File, error) {
	var buf bytes.Buffer
	data := struct {
		Name   string
		Suffix string
	}{cfg.Name, cfg.ExeSuffix()}
	if err := scriptTemplates.ExecuteTemplate(&buf, "resource.rc.tmpl", data); err != nil {
		return File{}, fmt.Errorf("could not execute resource template: %w", err)
	}
	return File{Path: ResourceFile, Content: buf.String()}, nil
}
