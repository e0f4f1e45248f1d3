// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package sim implements a simulated SNPX controller: an in-memory
// data image, a frame handler answering the protocol, and a TCP front
// end serving it on the controller port.
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/BiasedControls/snpx-client/snpx"
)

// Server exposes a simulated controller over TCP.
type Server struct {
	Address    string
	Controller *Controller

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server answering on address with ctrl.
func NewServer(address string, ctrl *Controller) *Server {
	return &Server{
		Address:    address,
		Controller: ctrl,
	}
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	slog.Info("SNPX simulator listening", "addr", listener.Addr())

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			// Check if closed
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.Error("Failed to accept connection", "err", err)
				continue
			}
		}
		go s.handleConnection(ctx, conn)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the server listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	slog.Info("New client connected", "addr", conn.RemoteAddr())

	for {
		// Check context
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := snpx.ReadFrameFrom(conn)
		if err != nil {
			if err == io.EOF {
				slog.Info("Client disconnected gracefully", "addr", conn.RemoteAddr())
			} else {
				slog.Error("Failed to read from connection", "addr", conn.RemoteAddr(), "err", err)
			}
			return
		}

		resp, err := s.Controller.Handle(req)
		if err != nil {
			slog.Error("Request failed", "addr", conn.RemoteAddr(), "err", err)
			continue
		}

		if _, err := conn.Write(resp); err != nil {
			slog.Error("Failed to write response to connection", "err", err)
			return
		}
	}
}
