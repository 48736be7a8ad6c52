package pipeline

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/boardtex/pkg/errors"
)

// WriteArtifacts writes every artifact of result below dir, creating
// directories as needed, and returns the written paths.
func WriteArtifacts(dir string, result *Result) ([]string, error) {
	return WriteFiles(dir, result.Artifacts())
}

// WriteFiles writes arts below dir. Artifact names must be relative and
// stay inside dir.
func WriteFiles(dir string, arts []Artifact) ([]string, error) {
	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		if err := errors.ValidatePath(a.Name); err != nil {
			return paths, err
		}
		p := filepath.Join(dir, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return paths, errors.Wrap(errors.ErrCodeIO, err, "create %s", filepath.Dir(p))
		}
		if err := os.WriteFile(p, a.Data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeIO, err, "write %s", p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
