package roomstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"planningpoker/internal/room"
)

const fileExt = ".json"

// FileStore writes one indented JSON document per room into dir.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create rooms dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(slug string) string {
	return filepath.Join(f.dir, slug+fileExt)
}

func (f *FileStore) Load(_ context.Context, slug string) (*room.Room, error) {
	if err := checkSlug(slug); err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(f.path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(slug, data)
}

func (f *FileStore) Save(_ context.Context, slug string, r *room.Room) error {
	if err := checkSlug(slug); err != nil {
		return err
	}
	data, err := encodeIndent(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path(slug), data, 0o644)
}

func (f *FileStore) Delete(_ context.Context, slug string) error {
	if err := checkSlug(slug); err != nil {
		return nil
	}
	err := os.Remove(f.path(slug))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(out)
	return out, nil
}
