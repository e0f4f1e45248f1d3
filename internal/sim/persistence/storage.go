// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"github.com/BiasedControls/snpx-client/internal/sim/model"
)

// Storage persists a simulated controller's image across restarts.
type Storage interface {
	// Load loads the image from storage, creating a zeroed one when no
	// data exists yet.
	Load() (*model.Image, error)

	// Save writes the current image out.
	Save(image *model.Image) error

	// OnWrite is a hook called after a table range is modified,
	// letting the storage persist in real time.
	OnWrite(table model.Table, address, quantity uint16)
}
