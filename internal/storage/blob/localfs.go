// internal/storage/blob/localfs.go
package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalFS reads documents from a directory tree.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a bucket rooted at basePath, which must exist.
func NewLocalFS(basePath string) (*LocalFS, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("opening data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", basePath)
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(path string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(path))
}

func (l *LocalFS) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(l.fullPath(path))
}

// List walks prefix and returns slash separated paths relative to the root,
// sorted lexically. A missing prefix yields an empty list.
func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	paths := []string{}

	err := filepath.WalkDir(l.fullPath(prefix), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(l.basePath, path)
			if err != nil {
				return err
			}
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})

	if os.IsNotExist(err) {
		return []string{}, nil
	}
	sort.Strings(paths)
	return paths, err
}
