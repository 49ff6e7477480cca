package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/qobs-build/ninjasetup/internal/builder/gen"
	"github.com/qobs-build/ninjasetup/internal/config"
)

// writeFile replaces a rendered file atomically so a failed write never leaves a truncated file behind
func writeFile(cfg config.Config, f gen.File) error {
	dst := cfg.Path(f.Path)
	var mode fs.FileMode = 0o644
	if f.Exec {
		mode = 0o755
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(f.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	return nil
}

// seedFile writes f only if nothing exists at its path yet. It reports whether it wrote.
func seedFile(cfg config.Config, f gen.File) (bool, error) {
	_, err := os.Lstat(cfg.Path(f.Path))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: %s: %v", config.ErrWriteFailed, f.Path, err)
	}
	if err := writeFile(cfg, f); err != nil {
		return false, err
	}
	return true, nil
}
