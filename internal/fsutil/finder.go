// Package fsutil provides small file system helpers shared by the loaders.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// FindFilesByExtension walks root and returns the full paths of every regular
// file carrying the given extension (e.g. ".hcl").
func FindFilesByExtension(root, extension string) ([]string, error) {
	if extension == "" {
		return nil, fmt.Errorf("extension must not be empty")
	}

	var files []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(d.Name()) == extension {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return files, nil
}
