package prefs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DefaultDir is where FileStore keeps records when no directory is configured.
func DefaultDir() string {
	return filepath.Join(xdg.ConfigHome, "uvcmonitor", "prefs")
}

// FileStore keeps one JSON record per device under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(_ context.Context, key string) (*Preferences, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read preferences %s: %w", key, err)
	}
	return decodeKeyed(key, data)
}

func (s *FileStore) Save(_ context.Context, p *Preferences) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	// write to a sibling and rename so readers never see a partial record
	tmp, err := os.CreateTemp(s.dir, p.Key()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create preferences file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.Key())); err != nil {
		return fmt.Errorf("commit preferences file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete preferences %s: %w", key, err)
	}
	return nil
}
