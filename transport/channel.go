// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package transport

import (
	"context"
	"errors"
)

// ErrConnectionClosed reports a channel that went away before an
// exchange completed. Fatal to the session owning the channel: the
// caller reconnects and redoes the handshake.
var ErrConnectionClosed = errors.New("snpx: connection closed")

// Channel is a duplex byte channel to one controller. A session owns a
// channel exclusively and keeps at most one request in flight on it.
type Channel interface {
	// Connect establishes the channel. Connecting an established
	// channel is a no-op.
	Connect(ctx context.Context) error

	// Send writes one complete request frame.
	Send(frame []byte) error

	// Receive reads whatever the controller returns next, up to max
	// bytes, without interpreting it. The probe acknowledgement is the
	// one reply read this way; everything else is framed.
	Receive(max int) ([]byte, error)

	// ReceiveFrame reads one complete frame: the fixed header plus the
	// appended bytes it declares.
	ReceiveFrame() ([]byte, error)

	Close() error
}
