package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/nix-mox/nuext/internal/pathutil"
)

// collectFiles expands args into dialect files. Directories are walked,
// skipping those named in ignore; files given explicitly are kept whatever
// their extension. No args means the current directory.
func collectFiles(args []string, ext string, ignore []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && slices.Contains(ignore, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if pathutil.HasExtension(path, ext) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return files, nil
}
