package gen

import (
	"bufio"
	"io"
	"strings"

	"github.com/qobs-build/ninjasetup/internal/config"
)

// RuleName is the single compile rule every descriptor defines
const RuleName = "buildToObject"

var ninjaPathEscaper = strings.NewReplacer("$", "$$", ":", "$:", " ", "$ ")

// quote escapes a path used in a build edge
func quote(s string) string { return ninjaPathEscaper.Replace(s) }

var ninjaValueEscaper = strings.NewReplacer("$", "$$")

// ninjaEnvRef references an environment variable from inside a ninja variable.
// Batch descriptors run the compiler through cmd /c, which expands %VAR%;
// shell descriptors run through /bin/sh, so the $ must survive ninja's own expansion.
func ninjaEnvRef(format config.ScriptFormat, name string) string {
	if format == config.ScriptShell {
		return "$$" + name
	}
	return "%" + name + "%"
}

// compilerVar is the value of the `compiler` variable
func compilerVar(cfg config.Config) string {
	cc := ninjaValueEscaper.Replace(quoteCommand(cfg.Script, cfg.Compiler))
	if cfg.Script == config.ScriptBatch {
		return "cmd /c " + cc
	}
	return cc
}

// Vars renders the variable file of one (variant, arch) descriptor
func Vars(cfg config.Config, v config.Variant, a config.Arch) File {
	tc := toolchainFor(cfg.Family)

	inc := tc.includeFlag + " ./" + IncludeDir
	if cfg.SystemLibs {
		inc += " " + ninjaEnvRef(cfg.Script, libPathVar(a))
	}

	flags := joinNonEmpty(
		tc.compileFlags,
		tc.variantFlags[v],
		tc.compileArchFlag(cfg, a),
		tc.debugSanitizer(cfg, v),
	)

	var sb strings.Builder
	writeln(&sb, "inc = ", inc)
	writeln(&sb, "objDir = ./", quote(ObjDir(v, a)))
	writeln(&sb, "compiler = ", compilerVar(cfg))
	writeln(&sb, "compilerFlags = ", flags)

	return File{Path: VarsPath(v, a), Content: sb.String()}
}

// Descriptor renders the rule and one build edge per source of a (variant, arch) pair
func Descriptor(cfg config.Config, v config.Variant, a config.Arch, sources []Source) File {
	tc := toolchainFor(cfg.Family)

	var sb strings.Builder
	writeln(&sb, "# ", cfg.Name, " ", string(v), " ", string(a))
	writeln(&sb, "include ./", quote(VarsPath(v, a)))
	writeln(&sb)

	writeln(&sb, "rule ", RuleName)
	for _, line := range tc.rule {
		writeln(&sb, "  ", line)
	}
	writeln(&sb)

	for _, src := range sources {
		writeln(&sb, "build $objDir/", quote(src.Stem), tc.objExt, ": ", RuleName, " ", quote(src.Path()))
	}

	return File{Path: DescriptorPath(v, a), Content: sb.String()}
}

// EdgeLines returns the build edges of a rendered descriptor in order
func EdgeLines(content string) []string {
	var edges []string
	for line := range strings.Lines(content) {
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "build ") {
			edges = append(edges, line)
		}
	}
	return edges
}

// ReadDepsMode finds the `deps = ...` declaration of a descriptor's rule
func ReadDepsMode(r io.Reader) (string, bool) {
	return readVar(r, "deps")
}

// ReadCompiler recovers the compiler invocation from a vars file, without the cmd /c wrapper
func ReadCompiler(r io.Reader) (string, bool) {
	cc, ok := readVar(r, "compiler")
	if !ok {
		return "", false
	}
	cc = strings.TrimPrefix(cc, "cmd /c ")
	cc = strings.ReplaceAll(cc, "$$", "$")
	cc = strings.Trim(cc, `"'`)
	return cc, cc != ""
}

// FamilyFromDeps maps a deps declaration back to a family. GNU-style deps can't
// tell Clang from GCC, so the compiler invocation refines them when known.
func FamilyFromDeps(deps, compiler string) (config.Family, bool) {
	switch deps {
	case "msvc":
		return config.FamilyMSVC, true
	case "gcc":
		if f := config.InferFamily(compiler); f != config.FamilyMSVC && compiler != "" {
			return f, true
		}
		return config.FamilyGCC, true
	}
	return config.FamilyUnknown, false
}

func readVar(r io.Reader, name string) (string, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if ok && strings.TrimSpace(key) == name {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
