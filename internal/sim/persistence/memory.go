// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import "github.com/BiasedControls/snpx-client/internal/sim/model"

// MemoryStorage is a no-op storage (non-persistent).
type MemoryStorage struct{}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (ms *MemoryStorage) Load() (*model.Image, error) {
	return model.NewImage(), nil
}

func (ms *MemoryStorage) Save(image *model.Image) error {
	return nil
}

func (ms *MemoryStorage) OnWrite(table model.Table, address, quantity uint16) {
	// No-op
}
