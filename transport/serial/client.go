// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/grid-x/serial"

	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/snpx"
	"github.com/BiasedControls/snpx-client/transport"
)

const serialTimeout = 5 * time.Second

// Channel is a serial line to a controller, for SNP-heritage hardware
// wired over RS-232/422 instead of Ethernet. Framing is identical to
// the TCP listener's.
type Channel struct {
	// Serial port configuration.
	serial.Config

	// IdleTimeout closes a port nobody has used for a while; zero
	// disables it. A closed port surfaces as ErrConnectionClosed on the
	// next operation and the session reconnects from the handshake.
	IdleTimeout time.Duration

	mu           sync.Mutex
	port         io.ReadWriteCloser
	lastActivity time.Time
	closeTimer   *time.Timer
}

// NewChannel allocates a channel over the configured serial port.
func NewChannel(cfg config.SerialConfig) *Channel {
	c := &Channel{}

	// Map file schema to serial.Config
	c.Config.Address = cfg.Device
	c.Config.BaudRate = cfg.BaudRate
	c.Config.DataBits = cfg.DataBits
	c.Config.StopBits = cfg.StopBits
	c.Config.Parity = cfg.Parity
	c.Config.Timeout = cfg.Timeout
	if c.Config.Timeout == 0 {
		c.Config.Timeout = serialTimeout
	}

	c.IdleTimeout = cfg.IdleTimeout
	return c
}

// Connect opens the serial port if it is not already open.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if c.port == nil {
		port, err := serial.Open(&c.Config)
		if err != nil {
			return fmt.Errorf("snpx: could not open %s: %w", c.Config.Address, err)
		}
		c.port = port
		slog.Debug("opened serial port", "device", c.Config.Address)
	}
	return nil
}

// Send writes one request frame.
func (c *Channel) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return transport.ErrConnectionClosed
	}
	c.touch()
	if _, err := c.port.Write(frame); err != nil {
		return c.ioError(err)
	}
	slog.Debug("send to controller", "request", hex.EncodeToString(frame))
	return nil
}

// Receive reads a single chunk of up to max bytes. The port's
// configured timeout bounds the wait.
func (c *Channel) Receive(max int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil, transport.ErrConnectionClosed
	}
	c.touch()
	buf := make([]byte, max)
	n, err := c.port.Read(buf)
	if err != nil {
		return nil, c.ioError(err)
	}
	slog.Debug("recv from controller", "response", hex.EncodeToString(buf[:n]))
	return buf[:n], nil
}

// ReceiveFrame reads one complete response frame.
func (c *Channel) ReceiveFrame() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return nil, transport.ErrConnectionClosed
	}
	c.touch()
	frame, err := snpx.ReadFrameFrom(c.port)
	if err != nil {
		return nil, c.ioError(err)
	}
	slog.Debug("recv from controller", "response", hex.EncodeToString(frame))
	return frame, nil
}

// Close closes the serial port if it is open.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.close()
}

// close closes the port. Caller must hold the mutex.
func (c *Channel) close() (err error) {
	if c.port != nil {
		err = c.port.Close()
		c.port = nil
	}
	return
}

// touch records activity and arms the idle close timer. Caller must
// hold the mutex.
func (c *Channel) touch() {
	c.lastActivity = time.Now()
	if c.IdleTimeout <= 0 {
		return
	}
	if c.closeTimer == nil {
		c.closeTimer = time.AfterFunc(c.IdleTimeout, c.closeIdle)
	} else {
		c.closeTimer.Reset(c.IdleTimeout)
	}
}

// closeIdle closes the port if the last activity is past IdleTimeout.
func (c *Channel) closeIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.IdleTimeout <= 0 {
		return
	}
	if idle := time.Since(c.lastActivity); idle >= c.IdleTimeout {
		slog.Debug("closing serial port after idle timeout", "idle", idle)
		c.close()
	}
}

func (c *Channel) ioError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", transport.ErrConnectionClosed, err)
	}
	return fmt.Errorf("snpx: exchange on %s failed: %w", c.Config.Address, err)
}
