package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

// FileName is the name of the JSON document FileKV keeps in its directory.
const FileName = "kv.json"

// FileKV stores all entries in one JSON object on disk. Every Set rewrites
// the file atomically, so a crash never leaves a half-written document.
type FileKV struct {
	path string
	mu   sync.Mutex
}

// NewFileKV returns a FileKV keeping its document in dir, creating dir if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("repo.NewFileKV: %w", err)
	}
	return &FileKV{path: filepath.Join(dir, FileName)}, nil
}

// Path is the location of the JSON document.
func (f *FileKV) Path() string { return f.path }

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", false, fmt.Errorf("repo.FileKV.Get: %w", err)
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return fmt.Errorf("repo.FileKV.Set: %w", err)
	}
	data[key] = value

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("repo.FileKV.Set: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("repo.FileKV.Set: write: %w", err)
	}
	return nil
}

// load reads the document; a missing file is an empty store.
func (f *FileKV) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, err
	}
	data := make(map[string]string)
	if len(bytes.TrimSpace(b)) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return data, nil
}
