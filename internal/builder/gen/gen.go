package gen

import (
	"fmt"

	"github.com/qobs-build/ninjasetup/internal/config"
)

// File is one rendered artifact. Path is slash-separated and relative to the project root.
type File struct {
	Path    string
	Content string
	// Exec marks driver scripts that need the executable bit
	Exec bool
}

// Source is one compilation unit found in the source tree
type Source struct {
	// Dir is slash-terminated and relative to the project root, e.g. "src/sub/"
	Dir  string
	Stem string
	Ext  string
}

func (s Source) Path() string { return s.Dir + s.Stem + s.Ext }

// EditorGen renders the IDE integration files for a configuration
type EditorGen interface {
	Files(cfg config.Config, sources []Source) ([]File, error)
}

// NewEditorGen returns the generator of an editor kind
func NewEditorGen(kind config.EditorKind) (EditorGen, error) {
	switch kind {
	case config.EditorVSCode:
		return NewVSCodeGen(), nil
	case config.EditorVS2022:
		return NewVS2022Gen(), nil
	default:
		return nil, fmt.Errorf("%w: unknown editor kind %q", config.ErrInvalidConfiguration, kind)
	}
}
