package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qobs-build/ninjasetup/internal/builder/gen"
	"github.com/qobs-build/ninjasetup/internal/config"
)

func excluded(patterns []string, name string) (bool, error) {
	for _, pat := range patterns {
		ok, err := doublestar.Match(pat, name)
		if err != nil {
			return false, fmt.Errorf("%w: exclude pattern %q: %v", config.ErrInvalidConfiguration, pat, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func sourceOf(name string) gen.Source {
	base := path.Base(name)
	ext := path.Ext(base)
	if ext == base {
		// dotfiles like .gitkeep are all stem
		ext = ""
	}
	return gen.Source{
		Dir:  path.Dir(name) + "/",
		Stem: strings.TrimSuffix(base, ext),
		Ext:  ext,
	}
}

// Walk lazily yields every regular file under src/ of root in lexical order.
// Symlinks to regular files count as sources; other special files are skipped.
// Each call walks the tree again, so the sequence can be ranged over any number of times.
func Walk(root string, exclude []string) iter.Seq2[gen.Source, error] {
	return func(yield func(gen.Source, error) bool) {
		for _, pat := range exclude {
			if !doublestar.ValidatePattern(pat) {
				yield(gen.Source{}, fmt.Errorf("%w: malformed exclude pattern %q", config.ErrInvalidConfiguration, pat))
				return
			}
		}

		fsys := os.DirFS(root)
		err := fs.WalkDir(fsys, gen.SrcDir, func(name string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			skip, err := excluded(exclude, name)
			if err != nil {
				return err
			}

			if d.IsDir() {
				if skip && name != gen.SrcDir {
					return fs.SkipDir
				}
				return nil
			}
			if skip {
				return nil
			}

			if !d.Type().IsRegular() {
				if d.Type()&fs.ModeSymlink == 0 {
					return nil
				}
				info, err := fs.Stat(fsys, name)
				if err != nil || !info.Mode().IsRegular() {
					return nil
				}
			}

			if !yield(sourceOf(name), nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(gen.Source{}, err)
		}
	}
}

// collectSources drains Walk. A missing source tree is reported as a missing target.
func collectSources(cfg config.Config) ([]gen.Source, error) {
	var sources []gen.Source
	for src, err := range Walk(cfg.Root, cfg.Exclude) {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: no %s directory in %s", config.ErrTargetNotFound, gen.SrcDir, cfg.Root)
			}
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}
