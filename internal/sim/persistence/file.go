// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BiasedControls/snpx-client/internal/sim/model"
)

// FileStorage persists the image with plain file operations.
//
// Layout:
// - Inputs: 65536 bytes (Offset 0)
// - Outputs: 65536 bytes (Offset 65536)
// - Registers: 16384 * 2 bytes (Offset 131072)
// Total Size: 163840 bytes
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load loads the image by file operations.
func (fs *FileStorage) Load() (*model.Image, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fs.file = f

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.Size() != int64(totalSize) {
		if err := f.Truncate(int64(totalSize)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to resize file: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	fs.data = data

	return mapBytesToImage(data), nil
}

// Save flushes the image to disk.
func (fs *FileStorage) Save(image *model.Image) error {
	return fs.sync()
}

// OnWrite triggers a sync so a crash cannot lose the write.
func (fs *FileStorage) OnWrite(table model.Table, address, quantity uint16) {
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync file", "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	fs.file.Close()
	return nil
}
