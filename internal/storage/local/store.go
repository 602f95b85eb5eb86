// Package local persists JSON documents on the local filesystem.
package local

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Document is a single JSON file on disk. Writes go to a temporary file in
// the same directory and are renamed into place, so a crash never leaves a
// half-written document behind.
type Document struct {
	path string
	mu   sync.RWMutex
}

// NewDocument returns a handle for the JSON document at path. Nothing is
// created until the first Save.
func NewDocument(path string) *Document {
	return &Document{path: path}
}

// Path returns the document location
func (d *Document) Path() string {
	return d.path
}

// Save encodes v as indented JSON and atomically replaces the document,
// creating parent directories as needed.
func (d *Document) Save(v any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}

// Load decodes the document into v. It returns ErrNotFound when the file
// does not exist and wraps ErrCorrupt when it cannot be decoded.
func (d *Document) Load(v any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("read document: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty file", ErrCorrupt)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return nil
}

// Exists checks if the document is present
func (d *Document) Exists() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, err := os.Stat(d.path)
	return err == nil
}

// Backup moves the current document aside to path+suffix, replacing any
// earlier backup, and returns the backup location.
func (d *Document) Backup(suffix string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.path + suffix
	if err := os.Rename(d.path, target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("backup document: %w", err)
	}
	return target, nil
}

// Delete removes the document
func (d *Document) Delete() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove document: %w", err)
	}

	return nil
}
