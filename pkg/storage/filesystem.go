package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage persists uploaded files on disk and exposes them under a public URL prefix.
type LocalStorage struct {
	baseDir      string
	publicPrefix string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicPrefix string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicPrefix == "" {
		publicPrefix = "/images"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicPrefix: "/" + strings.Trim(publicPrefix, "/")}, nil
}

// SaveStream copies r into filename and returns the public path of the stored file.
func (s *LocalStorage) SaveStream(filename string, r io.Reader) (string, error) {
	target, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return path.Join(s.publicPrefix, filepath.Base(target)), nil
}

// Delete removes the file behind a public path. Missing files are ignored.
func (s *LocalStorage) Delete(publicPath string) error {
	target, err := s.resolve(strings.TrimPrefix(publicPath, s.publicPrefix))
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir is the directory served statically under PublicPrefix.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// PublicPrefix is the URL prefix recorded in stored paths.
func (s *LocalStorage) PublicPrefix() string {
	return s.publicPrefix
}

// resolve keeps every file directly inside baseDir.
func (s *LocalStorage) resolve(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "", fmt.Errorf("invalid upload file name %q", name)
	}
	return filepath.Join(s.baseDir, base), nil
}
