// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/internal/sim"
	"github.com/BiasedControls/snpx-client/internal/sim/persistence"
)

// Channel runs a simulated controller in-process. Frames are handled
// synchronously; Send queues the response for the next Receive.
type Channel struct {
	ctrl    *sim.Controller
	storage persistence.Storage

	mu      sync.Mutex
	pending [][]byte
}

// NewChannel creates an in-process channel backed by cfg's storage.
func NewChannel(cfg config.SimConfig) *Channel {
	var storage persistence.Storage
	switch cfg.Persistence.Type {
	case "file":
		slog.Info("Initializing simulator with file persistence", "path", cfg.Persistence.Path)
		storage = persistence.NewFileStorage(cfg.Persistence.Path)
	case "mmap":
		slog.Info("Initializing simulator with MMAP persistence", "path", cfg.Persistence.Path)
		storage = persistence.NewMmapStorage(cfg.Persistence.Path)
	default:
		slog.Info("Initializing simulator with memory storage (non-persistent)")
		storage = persistence.NewMemoryStorage()
	}

	image, err := storage.Load()
	if err != nil {
		slog.Error("Failed to load persistence data, starting with fresh image", "err", err)
		if image == nil {
			slog.Warn("Falling back to MemoryStorage")
			storage = persistence.NewMemoryStorage()
			image, _ = storage.Load()
		}
	}

	return &Channel{
		ctrl:    sim.NewController(image, storage),
		storage: storage,
	}
}

// Connect is a no-op for the in-process controller.
func (c *Channel) Connect(ctx context.Context) error {
	return nil
}

// Send handles the frame immediately and queues the response.
func (c *Channel) Send(frame []byte) error {
	resp, err := c.ctrl.Handle(frame)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.pending = append(c.pending, resp)
	c.mu.Unlock()
	return nil
}

// Receive pops the queued response, clipped to max bytes.
func (c *Channel) Receive(max int) ([]byte, error) {
	resp, err := c.pop()
	if err != nil {
		return nil, err
	}
	if len(resp) > max {
		resp = resp[:max]
	}
	return resp, nil
}

// ReceiveFrame pops the queued response.
func (c *Channel) ReceiveFrame() ([]byte, error) {
	return c.pop()
}

func (c *Channel) pop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pending) == 0 {
		return nil, fmt.Errorf("snpx: no response pending")
	}
	resp := c.pending[0]
	c.pending = c.pending[1:]
	return resp, nil
}

// Close releases the storage.
func (c *Channel) Close() error {
	if closer, ok := c.storage.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
