// Package output is the save-as-file collaborator: it hands a successful
// export's artifact and generated filename to the filesystem. A failed
// result is never written; no partial or corrupt payload reaches disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/draftly/exportkit/core"
)

// Writer saves export artifacts under an output directory.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Save writes a successful result's artifact under its generated filename
// and returns the written path.
func (w *Writer) Save(res core.ExportResult) (string, error) {
	if !res.Success {
		return "", fmt.Errorf("refusing to save failed export: %s", res.Error)
	}
	if res.Filename == "" {
		return "", fmt.Errorf("export result has no filename")
	}

	path := filepath.Join(w.OutputDir, filepath.Base(res.Filename))
	if err := os.WriteFile(path, res.Artifact, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}
