package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore keeps evidence files under one directory, one sub-directory per scenario.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a store rooted at baseDir, creating the directory if needed.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	baseDir = filepath.Clean(baseDir)
	if baseDir == "." {
		return nil, errors.New("evidence directory is required")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory %s: %w", baseDir, err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Put writes r under key. The file only appears once it is complete.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create evidence directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".evidence-*")
	if err != nil {
		return fmt.Errorf("failed to store evidence %s: %w", key, err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store evidence %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store evidence %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store evidence %s: %w", key, err)
	}
	return nil
}

// Open opens the evidence stored under key.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence %s: %w", key, err)
	}
	return file, nil
}

// Exists reports whether evidence is stored under key.
func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.stat(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// URL returns a file:// URL for the evidence under key.
func (s *LocalStore) URL(ctx context.Context, key string) (string, error) {
	target, err := s.stat(key)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve evidence %s: %w", key, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// stat returns the path of a stored regular file, or ErrNotFound.
func (s *LocalStore) stat(key string) (string, error) {
	target, err := s.path(key)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to check evidence %s: %w", key, err)
	}
	if info.IsDir() {
		return "", ErrNotFound
	}
	return target, nil
}

func (s *LocalStore) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(cleaned)), nil
}
