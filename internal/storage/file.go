package storage

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const fileSuffix = ".json"

// File stores each key as a JSON file inside a directory.
type File struct {
	dir string
}

// safeKey matches keys that can be used verbatim as file names.
var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// NewFile creates a File store rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/prayer-tracker/.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "prayer-tracker")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create storage directory %s: %w", dir, err)
	}

	return &File{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (f *File) Dir() string {
	return f.dir
}

// path maps a key to its file. Keys with unusual characters are hashed so
// they cannot escape the directory.
func (f *File) path(key string) string {
	name := key
	if !safeKey.MatchString(key) || key == "." || key == ".." {
		h := sha256.Sum256([]byte(key))
		name = fmt.Sprintf("%x", h[:8])
	}
	return filepath.Join(f.dir, name+fileSuffix)
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set writes to a temp file and renames it over the old value, so readers
// never observe a half-written file.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	path := f.path(key)

	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
