package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/qobs-build/ninjasetup/internal/builder/gen"
	"github.com/qobs-build/ninjasetup/internal/config"
	"github.com/qobs-build/ninjasetup/internal/msg"
)

// probeArchs returns the architectures whose object directory exists under either variant
func probeArchs(cfg config.Config) []config.Arch {
	var archs []config.Arch
	for _, a := range config.AllArchs {
		for _, v := range config.AllVariants {
			if stat, err := os.Stat(cfg.Path(gen.ObjDir(v, a))); err == nil && stat.IsDir() {
				archs = append(archs, a)
				break
			}
		}
	}
	return archs
}

// descriptorName recovers the project name from a descriptor's "# name variant arch" header
func descriptorName(content string, v config.Variant, a config.Arch) (string, bool) {
	first, _, _ := strings.Cut(content, "\n")
	name, ok := strings.CutPrefix(strings.TrimRight(first, "\r"), "# ")
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, " "+string(v)+" "+string(a))
	return name, ok && name != ""
}

// probeCompiler reads the compiler configuration back from the first usable
// descriptor: Debug before Release, in architecture order. A descriptor without
// a recognizable deps declaration is skipped like a missing one.
func probeCompiler(cfg config.Config) (config.Config, error) {
	var skipped []string
	for _, a := range cfg.Archs {
		for _, v := range config.AllVariants {
			data, err := os.ReadFile(cfg.Path(gen.DescriptorPath(v, a)))
			if err != nil {
				continue
			}
			content := string(data)

			deps, ok := gen.ReadDepsMode(strings.NewReader(content))
			if !ok {
				skipped = append(skipped, gen.DescriptorPath(v, a)+" has no deps declaration")
				continue
			}
			compiler := cfg.Compiler
			if vars, err := os.ReadFile(cfg.Path(gen.VarsPath(v, a))); err == nil {
				if cc, ok := gen.ReadCompiler(strings.NewReader(string(vars))); ok {
					compiler = cc
				}
			}
			family, ok := gen.FamilyFromDeps(deps, compiler)
			if !ok {
				skipped = append(skipped, fmt.Sprintf("unknown deps mode %q in %s", deps, gen.DescriptorPath(v, a)))
				continue
			}

			if name, ok := descriptorName(content, v, a); ok {
				cfg.Name = name
			}
			cfg.Compiler = compiler
			cfg.Family = family
			return cfg, nil
		}
	}
	if len(skipped) > 0 {
		return cfg, fmt.Errorf("%w: %s", config.ErrProbeFailed, strings.Join(skipped, "; "))
	}
	return cfg, fmt.Errorf("%w: no Debug or Release build descriptor found", config.ErrProbeFailed)
}

// UpdateConfig rebuilds the configuration of a previously generated project from what is on disk.
// Explicit architecture exclusions in opts override probing. Compiler probing failures
// only produce a warning and leave the family unknown.
func UpdateConfig(root string, opts map[string]string, file *config.File) (config.Config, error) {
	archOpts := make(map[string]string)
	for _, name := range []string{config.OptNoX86, config.OptNoX64} {
		if v, ok := opts[name]; ok {
			archOpts[name] = v
		}
	}
	cfg, err := config.Resolve(archOpts, nil, config.Defaults{Dir: root})
	if err != nil {
		return config.Config{}, err
	}
	if err := checkRoot(cfg.Root); err != nil {
		return config.Config{}, err
	}
	if file != nil {
		cfg.Exclude = slices.Clone(file.Sources.Exclude)
	}
	// nothing was generated by this compiler, only read back from disk
	cfg.Compiler = ""
	cfg.Family = config.FamilyUnknown

	if _, _, explicit := config.ArchExclusions(opts); !explicit {
		cfg.Archs = probeArchs(cfg)
		if len(cfg.Archs) == 0 {
			return config.Config{}, fmt.Errorf("%w: no architecture folders under %s in %s", config.ErrTargetNotFound, gen.BinDir, cfg.Root)
		}
	}

	cfg, err = probeCompiler(cfg)
	if err != nil {
		msg.Warn("%v; using GNU-style flags", err)
	}
	return cfg, nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// edgeDiff lists the build edges only present in the new descriptor and those only in the old one
func edgeDiff(oldContent, newContent string) (added, removed []string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(joinLines(gen.EdgeLines(oldContent)), joinLines(gen.EdgeLines(newContent)))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		for line := range strings.Lines(d.Text) {
			line = strings.TrimSuffix(line, "\n")
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				added = append(added, line)
			case diffmatchpatch.DiffDelete:
				removed = append(removed, line)
			}
		}
	}
	return added, removed
}

func reportEdgeDiff(path string, added, removed []string) {
	if len(added) == 0 && len(removed) == 0 {
		msg.Info("%s: build edges unchanged", path)
		return
	}
	msg.Info("%s: %d build edges added, %d removed", path, len(added), len(removed))
	w := &msg.IndentWriter{Indent: "  ", W: msg.Output}
	for _, line := range added {
		fmt.Fprintf(w, "%s %s\n", color.GreenString("+"), line)
	}
	for _, line := range removed {
		fmt.Fprintf(w, "%s %s\n", color.RedString("-"), line)
	}
}

// Update re-walks the source tree and rewrites the build descriptors of every
// included configuration. Variable files, scripts and editor files are left alone.
func (b *Builder) Update() error {
	cfg := b.cfg
	sources, err := collectSources(cfg)
	if err != nil {
		return fmt.Errorf("could not walk sources: %w", err)
	}
	warnDuplicateStems(sources)

	var errs []error
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			desc := gen.Descriptor(cfg, v, a, sources)

			old, err := os.ReadFile(cfg.Path(desc.Path))
			switch {
			case err == nil:
				added, removed := edgeDiff(string(old), desc.Content)
				reportEdgeDiff(desc.Path, added, removed)
			case !errors.Is(err, fs.ErrNotExist):
				msg.Warn("could not read previous %s: %v", desc.Path, err)
			}

			if _, err := os.Stat(cfg.Path(gen.VarsPath(v, a))); err != nil {
				msg.Warn("%s is missing, run generate to recreate it", gen.VarsPath(v, a))
			}

			if err := writeFile(cfg, desc); err != nil {
				errs = append(errs, err)
				continue
			}
			msg.Updated("build descriptor", desc.Path)
		}
	}
	return errors.Join(errs...)
}
