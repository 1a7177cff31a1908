package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// File persists the whole store as one JSON document on disk. Every Set
// rewrites the document atomically (temp file + rename).
type File struct {
	path   string
	logger *zap.Logger

	mu  sync.RWMutex
	doc map[string][]byte
}

// document is the on-disk shape; RawMessage keeps values byte-exact
type document map[string]json.RawMessage

// OpenFile loads the document at path. A missing file yields the default
// schema. A corrupt file is moved aside to <path>.corrupt and replaced by
// the defaults, so one bad write cannot brick the shell.
func OpenFile(path string, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	f := &File{path: path, logger: logger, doc: Defaults()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("Store file not found, starting from defaults", zap.String("path", path))
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store: %w", err)
	case len(data) == 0:
		return f, nil
	}

	var doc document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		aside := path + ".corrupt"
		logger.Warn("Store file is corrupt, falling back to defaults",
			zap.String("path", path),
			zap.String("moved_to", aside),
			zap.Error(err),
		)
		if err := os.Rename(path, aside); err != nil {
			logger.Warn("Failed to move corrupt store aside", zap.Error(err))
		}
		return f, nil
	}

	for k, v := range doc {
		f.doc[k] = cloneBytes(v)
	}
	return f, nil
}

// Path returns the file backing the store
func (f *File) Path() string {
	return f.path
}

// Get returns a copy of the value stored under key
func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.doc[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return cloneBytes(v), nil
}

// Set replaces the value under key and flushes the document
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !sonic.Valid(value) {
		return fmt.Errorf("%s: %w", key, ErrInvalidValue)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.doc[key]
	f.doc[key] = cloneBytes(value)
	if err := f.flushLocked(); err != nil {
		if had {
			f.doc[key] = prev
		} else {
			delete(f.doc, key)
		}
		return err
	}
	return nil
}

// Delete removes key (restoring its default, if any) and flushes the document
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.doc[key]
	if def, ok := Defaults()[key]; ok {
		f.doc[key] = def
	} else {
		delete(f.doc, key)
	}
	if err := f.flushLocked(); err != nil {
		if had {
			f.doc[key] = prev
		}
		return err
	}
	return nil
}

// Keys lists stored keys in sorted order
func (f *File) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	keys := make([]string, 0, len(f.doc))
	for k := range f.doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flushLocked writes the document atomically. Caller holds f.mu.
func (f *File) flushLocked() error {
	doc := make(document, len(f.doc))
	for k, v := range f.doc {
		doc[k] = json.RawMessage(v)
	}
	data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}
