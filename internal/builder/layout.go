package builder

import (
	"fmt"
	"os"
	"path"

	"github.com/qobs-build/ninjasetup/internal/builder/gen"
	"github.com/qobs-build/ninjasetup/internal/config"
)

// Plan returns the directories a configuration needs, parents first, relative to the root
func Plan(cfg config.Config) []string {
	dirs := []string{gen.BinDir}
	for _, v := range config.AllVariants {
		dirs = append(dirs, gen.VariantBinDir(v))
		for _, a := range cfg.Archs {
			dirs = append(dirs, gen.ArchBinDir(v, a), gen.ObjDir(v, a))
		}
	}
	dirs = append(dirs, gen.SrcDir, gen.IncludeDir, gen.BuildDir)
	for _, v := range config.AllVariants {
		dirs = append(dirs, gen.VariantBuildDir(v))
	}

	exportTree := func(root string) {
		dirs = append(dirs, root)
		for _, v := range config.AllVariants {
			dirs = append(dirs, path.Join(root, string(v)))
			for _, a := range cfg.Archs {
				dirs = append(dirs, path.Join(root, string(v), string(a)))
			}
		}
	}
	if cfg.StaticLib {
		exportTree(gen.ExportLibDir)
	}
	if cfg.DynamicLib {
		exportTree(gen.ExportDllDir)
	}
	if cfg.Editor && cfg.EditorKind == config.EditorVSCode {
		dirs = append(dirs, gen.VSCodeDir)
	}
	if cfg.Resource {
		dirs = append(dirs, gen.ResourceDir)
	}
	return dirs
}

// checkRoot makes sure the project root is an existing directory
func checkRoot(root string) error {
	stat, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", config.ErrTargetNotFound, root)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", config.ErrTargetNotFound, root)
	}
	return nil
}

// EnsureLayout creates every planned directory that is missing and returns the ones it created.
// Nothing is created when the root itself is missing.
func EnsureLayout(cfg config.Config) ([]string, error) {
	if err := checkRoot(cfg.Root); err != nil {
		return nil, err
	}

	var created []string
	for _, dir := range Plan(cfg) {
		full := cfg.Path(dir)
		stat, err := os.Stat(full)
		if err == nil {
			if !stat.IsDir() {
				return created, fmt.Errorf("%w: %s exists and is not a directory", config.ErrWriteFailed, dir)
			}
			continue
		}
		if !os.IsNotExist(err) {
			return created, fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, dir, err)
		}
		if err := os.Mkdir(full, 0o755); err != nil {
			return created, fmt.Errorf("%w: mkdir %s: %v", config.ErrWriteFailed, dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}
