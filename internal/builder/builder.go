package builder

import (
	"errors"
	"fmt"

	"github.com/qobs-build/ninjasetup/internal/builder/gen"
	"github.com/qobs-build/ninjasetup/internal/config"
	"github.com/qobs-build/ninjasetup/internal/msg"
)

// Builder writes the generated project files for one resolved configuration
type Builder struct {
	cfg config.Config
}

func New(cfg config.Config) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) Config() config.Config { return b.cfg }

// write writes every file of an artifact group, stopping at the first failure
func (b *Builder) write(kind string, files ...gen.File) error {
	for _, f := range files {
		if err := writeFile(b.cfg, f); err != nil {
			return err
		}
		msg.Created(kind, f.Path)
	}
	return nil
}

// warnDuplicateStems reports sources that compile to the same object file
func warnDuplicateStems(sources []gen.Source) {
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		if prev, ok := seen[src.Stem]; ok {
			msg.Warn("%s and %s compile to the same object file %q", prev, src.Path(), src.Stem)
			continue
		}
		seen[src.Stem] = src.Path()
	}
}

// Generate creates the layout and writes every artifact the configuration asks for.
// A failed artifact group does not stop its siblings; all failures are joined.
func (b *Builder) Generate() error {
	cfg := b.cfg
	if cfg.Family == config.FamilyUnknown {
		msg.Warn("compiler %q is not clang, gcc or msvc; using GNU-style flags", cfg.Compiler)
	}

	created, err := EnsureLayout(cfg)
	for _, dir := range created {
		msg.Created("directory", dir)
	}
	if err != nil {
		return err
	}

	var errs []error

	sources, err := collectSources(cfg)
	if err != nil {
		errs = append(errs, fmt.Errorf("could not walk sources: %w", err))
	} else {
		warnDuplicateStems(sources)
		errs = append(errs, b.generateConfigurations(sources)...)
	}

	if cfg.StaticLib {
		errs = append(errs, b.generateGroup("static library script", gen.StaticLibScripts))
	}
	if cfg.DynamicLib {
		errs = append(errs, b.generateGroup("dynamic library script", gen.DynamicLibScripts))
	}

	if cfg.Resource {
		errs = append(errs, b.seedResource())
	}

	if cfg.Editor {
		errs = append(errs, b.generateEditor(sources))
	}

	return errors.Join(errs...)
}

// generateConfigurations writes the descriptor and driver script of every (variant, arch) pair.
// A script is skipped when its descriptor could not be written.
func (b *Builder) generateConfigurations(sources []gen.Source) []error {
	cfg := b.cfg
	var errs []error
	for _, v := range config.AllVariants {
		for _, a := range cfg.Archs {
			desc := []gen.File{gen.Vars(cfg, v, a), gen.Descriptor(cfg, v, a, sources)}
			if err := b.write("build descriptor", desc...); err != nil {
				errs = append(errs, err)
				continue
			}

			script, err := gen.DriverScript(cfg, v, a)
			if err == nil {
				err = b.write("script", script)
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

func (b *Builder) generateGroup(kind string, render func(config.Config) ([]gen.File, error)) error {
	files, err := render(b.cfg)
	if err != nil {
		return err
	}
	return b.write(kind, files...)
}

// seedResource writes the starter resource file unless the user already has one
func (b *Builder) seedResource() error {
	f, err := gen.ResourceDescriptor(b.cfg)
	if err != nil {
		return err
	}
	wrote, err := seedFile(b.cfg, f)
	if err != nil {
		return err
	}
	if wrote {
		msg.Created("resource file", f.Path)
	}
	return nil
}

func (b *Builder) generateEditor(sources []gen.Source) error {
	g, err := gen.NewEditorGen(b.cfg.EditorKind)
	if err != nil {
		return err
	}
	files, err := g.Files(b.cfg, sources)
	if err != nil {
		return err
	}
	return b.write("editor file", files...)
}
