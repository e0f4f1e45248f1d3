// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package tcp

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/BiasedControls/snpx-client/snpx"
	"github.com/BiasedControls/snpx-client/transport"
)

const tcpTimeout = 10 * time.Second

// Channel is a persistent TCP connection to a controller's SNPX
// listener.
type Channel struct {
	Address string
	Timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
}

// NewChannel allocates a channel for the given host:port address.
func NewChannel(address string) *Channel {
	return &Channel{
		Address: address,
		Timeout: tcpTimeout,
	}
}

// Connect dials the controller.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	dialer := net.Dialer{Timeout: c.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return fmt.Errorf("snpx: failed to connect to %s: %w", c.Address, err)
	}
	c.conn = conn
	slog.Debug("connected to controller", "addr", c.Address)
	return nil
}

// Send writes one request frame.
func (c *Channel) Send(frame []byte) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(c.Timeout)); err != nil {
		return err
	}
	if _, err := conn.Write(frame); err != nil {
		return c.ioError(err)
	}
	slog.Debug("send to controller", "request", hex.EncodeToString(frame))
	return nil
}

// Receive reads a single chunk of up to max bytes.
func (c *Channel) Receive(max int) ([]byte, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, max)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, c.ioError(err)
	}
	slog.Debug("recv from controller", "response", hex.EncodeToString(buf[:n]))
	return buf[:n], nil
}

// ReceiveFrame reads one complete response frame.
func (c *Channel) ReceiveFrame() ([]byte, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
		return nil, err
	}
	frame, err := snpx.ReadFrameFrom(conn)
	if err != nil {
		return nil, c.ioError(err)
	}
	slog.Debug("recv from controller", "response", hex.EncodeToString(frame))
	return frame, nil
}

// Close tears the connection down.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Channel) connection() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, transport.ErrConnectionClosed
	}
	return c.conn, nil
}

// ioError maps stream-end conditions onto ErrConnectionClosed so the
// session can tell a dead controller from a garbled exchange.
func (c *Channel) ioError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %v", transport.ErrConnectionClosed, err)
	}
	return fmt.Errorf("snpx: exchange with %s failed: %w", c.Address, err)
}
