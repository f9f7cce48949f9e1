package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFS implements Store on a local directory tree.
type LocalFS struct {
	root string
}

// NewLocalFS creates the root directory if needed and returns the store.
func NewLocalFS(root string) (*LocalFS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating archive root: %w", err)
	}
	return &LocalFS{root: root}, nil
}

func (l *LocalFS) fullPath(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalFS) Put(ctx context.Context, key string, data []byte) error {
	full := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	return os.WriteFile(full, data, 0644)
}

func (l *LocalFS) Get(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(l.fullPath(key))
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	searchPath := l.fullPath(prefix)

	err := filepath.Walk(searchPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(l.root, p)
			keys = append(keys, filepath.ToSlash(rel))
		}
		return nil
	})

	if os.IsNotExist(err) {
		return []string{}, nil
	}
	return keys, err
}

func (l *LocalFS) Delete(ctx context.Context, key string) error {
	return os.Remove(l.fullPath(key))
}

func (l *LocalFS) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(l.fullPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}
