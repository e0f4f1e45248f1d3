// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.
package serial

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/snpx"
	"github.com/BiasedControls/snpx-client/transport"
)

type mockPort struct {
	io.Reader
	io.Writer
}

func (m *mockPort) Close() error { return nil }

func TestChannelExchange(t *testing.T) {
	// 1. Queue a framed reply: a header declaring one appended byte.
	reply := make([]byte, snpx.HeaderSize+1)
	reply[0] = snpx.FrameData
	reply[4] = 1
	reply[snpx.HeaderSize] = 0xA5

	writer := &bytes.Buffer{}
	ch := NewChannel(config.SerialConfig{Device: "/dev/ttyUSB0"})
	// Inject the mock so Send skips serial.Open.
	ch.port = &mockPort{Reader: bytes.NewReader(reply), Writer: writer}

	// 2. The request lands on the port byte for byte.
	req := snpx.DigitalIn.ReadFrame(8, 1)
	if err := ch.Send(req); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !bytes.Equal(writer.Bytes(), req) {
		t.Errorf("port saw % x, want % x", writer.Bytes(), req)
	}

	// 3. The reply comes back as one complete frame.
	resp, err := ch.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame() error = %v", err)
	}
	if !bytes.Equal(resp, reply) {
		t.Errorf("ReceiveFrame() = % x, want % x", resp, reply)
	}
}

func TestChannelTruncatedReply(t *testing.T) {
	// The line dies 20 bytes into the header.
	head := snpx.HelloFrame()[:20]
	ch := NewChannel(config.SerialConfig{})
	ch.port = &mockPort{Reader: bytes.NewReader(head), Writer: &bytes.Buffer{}}

	if _, err := ch.ReceiveFrame(); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("ReceiveFrame() error = %v, want ErrConnectionClosed", err)
	}
}

func TestChannelNotConnected(t *testing.T) {
	ch := NewChannel(config.SerialConfig{Device: "/dev/ttyUSB0"})

	if err := ch.Send(snpx.ProbeFrame()); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("Send() error = %v, want ErrConnectionClosed", err)
	}
	if _, err := ch.Receive(64); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("Receive() error = %v, want ErrConnectionClosed", err)
	}
	if _, err := ch.ReceiveFrame(); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("ReceiveFrame() error = %v, want ErrConnectionClosed", err)
	}
}

func TestChannelIdleClose(t *testing.T) {
	ch := NewChannel(config.SerialConfig{IdleTimeout: 20 * time.Millisecond})
	ch.port = &mockPort{Reader: bytes.NewReader(nil), Writer: &bytes.Buffer{}}

	if err := ch.Send(snpx.ProbeFrame()); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// The idle timer closes the port; later operations see the closed
	// channel and the session reconnects.
	deadline := time.Now().Add(2 * time.Second)
	for {
		time.Sleep(30 * time.Millisecond)
		err := ch.Send(snpx.ProbeFrame())
		if errors.Is(err, transport.ErrConnectionClosed) {
			return
		}
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("idle timer never closed the port")
		}
	}
}
