// Package handler discovers note files on disk.
package handler

import (
	"io/fs"
	"path/filepath"
)

type FileHandler struct {
	vaultDir string
}

func NewFileHandler(vaultDir string) *FileHandler {
	return &FileHandler{vaultDir: vaultDir}
}

// WalkFiles returns every file under the vault whose extension exactly
// matches the given one, e.g. ".md". The walk is lexical, so the
// result order is deterministic for a given tree.
func (h *FileHandler) WalkFiles(extension string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(
		h.vaultDir,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == extension {
				files = append(files, path)
			}
			return nil
		},
	)

	return files, err
}
