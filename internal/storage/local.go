package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var _ ArtifactStore = (*LocalStore)(nil)

// LocalStore writes artifacts to the local filesystem. It is the
// development fallback when no bucket is configured; URLs are plain
// file paths unless a base URL is set.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalStore) Save(ctx context.Context, objectPath string, data []byte) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(objectPath))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	return s.URL(objectPath), nil
}

func (s *LocalStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(objectPath))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, nil
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	root := filepath.Join(s.baseDir, filepath.FromSlash(prefix))

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *LocalStore) URL(objectPath string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + objectPath
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(objectPath))
}
