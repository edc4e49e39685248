package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads below a directory that the HTTP server exposes under PublicPrefix.
type LocalStore struct {
	Dir          string
	PublicPrefix string
}

func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, PublicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, key, _ string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dst, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}

	return s.PublicPrefix + "/" + filepath.ToSlash(key), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, ok := strings.CutPrefix(ref, s.PublicPrefix+"/")
	if !ok {
		return nil
	}
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.Dir, clean), nil
}
