package ingest

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker finds study material under a directory using include/exclude
// glob patterns.
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk returns the paths of all matching files under root.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if w.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (w *Walker) shouldInclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range w.includes {
		if match, _ := doublestar.Match(pattern, relPath); match {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, pattern := range w.excludes {
		if match, _ := doublestar.Match(pattern, relPath); match {
			return true
		}
	}
	return false
}
