// Copyright (c) 2025-2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package snpxclient talks SNPX to a FANUC robot controller: digital
// and user I/O, current position, and named variables bound to
// register slots through the controller's assignment table.
//
// A Client owns one transport channel and keeps the request/response
// conversation strictly alternating; it is safe for concurrent use.
package snpxclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BiasedControls/snpx-client/internal/config"
	"github.com/BiasedControls/snpx-client/snpx"
	"github.com/BiasedControls/snpx-client/transport"
	"github.com/BiasedControls/snpx-client/transport/serial"
	"github.com/BiasedControls/snpx-client/transport/tcp"
)

// Client is an SNPX session over a transport channel.
type Client struct {
	mu          sync.Mutex
	channel     transport.Channel
	assignments *snpx.AssignmentTable
}

// NewClient creates a client over channel. Call Connect before use.
func NewClient(channel transport.Channel) *Client {
	return &Client{
		channel:     channel,
		assignments: snpx.NewAssignmentTable(),
	}
}

// NewChannel builds the transport channel cfg describes.
func NewChannel(cfg config.ClientConfig) (transport.Channel, error) {
	switch cfg.Type {
	case "tcp", "":
		ch := tcp.NewChannel(cfg.Tcp.Address)
		ch.Timeout = cfg.Timeout
		return ch, nil
	case "serial":
		return serial.NewChannel(cfg.Serial), nil
	}
	return nil, fmt.Errorf("snpx: unknown transport type %q", cfg.Type)
}

// Connect opens the channel and runs the handshake: the zero probe,
// the hello exchange, and CLRASG so controller and client agree on an
// empty assignment table.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.channel.Connect(ctx); err != nil {
		return err
	}

	if err := c.channel.Send(snpx.ProbeFrame()); err != nil {
		return err
	}
	ack, err := c.channel.Receive(64)
	if err != nil {
		return err
	}
	if len(ack) == 0 || ack[0] != 1 {
		return fmt.Errorf("snpx: controller refused connection")
	}

	if _, err := c.exchange(snpx.HelloFrame()); err != nil {
		return err
	}
	if _, err := c.exchange(snpx.ClearAssignmentsFrame()); err != nil {
		return err
	}
	c.assignments.Reset()

	slog.Debug("controller handshake complete")
	return nil
}

// Close closes the channel. Assignments on the controller survive
// until the next CLRASG.
func (c *Client) Close() error {
	return c.channel.Close()
}

// ReadSignals reads count signals from block starting at the 1-based
// index start.
func (c *Client) ReadSignals(block snpx.SignalBlock, count, start int) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.exchange(block.ReadFrame(count, start))
	if err != nil {
		return nil, err
	}
	return snpx.DecodeSignals(resp, count), nil
}

// WriteSignals sets len(values) signals in block starting at the
// 1-based index start. Writing no values is a no-op.
func (c *Client) WriteSignals(block snpx.SignalBlock, values []bool, start int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame, err := block.WriteFrame(values, start)
	if err != nil || frame == nil {
		return err
	}
	_, err = c.exchange(frame)
	return err
}

// ReadPosition reads the axis values of a position block, cartesian
// or joint.
func (c *Client) ReadPosition(block snpx.PositionBlock) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.exchange(block.ReadFrame())
	if err != nil {
		return nil, err
	}
	return snpx.DecodePositions(resp)
}

// SetAssignment binds name to typ in the first free slot range.
// Re-binding a name already carrying the same layout is a no-op and
// returns the existing assignment without touching the wire.
func (c *Client) SetAssignment(name string, typ snpx.VariableType) (snpx.Assignment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.assign(name, typ)
}

// assign resolves name to its recorded assignment, binding it first
// fit when unseen. Caller must hold the lock.
func (c *Client) assign(name string, typ snpx.VariableType) (snpx.Assignment, error) {
	if a, ok := c.assignments.Lookup(name); ok {
		if a.Type.Words != typ.Words {
			return snpx.Assignment{}, &snpx.AllocationError{
				Name:   name,
				Words:  typ.Words,
				Reason: "already bound with a different size",
			}
		}
		return a, nil
	}

	slot, ok := c.assignments.NextFree(typ.Words)
	if !ok {
		return snpx.Assignment{}, &snpx.AllocationError{
			Name:   name,
			Words:  typ.Words,
			Reason: "assignment table full",
		}
	}
	return c.bind(snpx.Assignment{Name: name, Slot: slot, Type: typ})
}

// SetAssignmentAt binds name to typ at an explicit slot.
func (c *Client) SetAssignmentAt(slot int, name string, typ snpx.VariableType) (snpx.Assignment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.assignments.Lookup(name); ok {
		if a.Slot == slot && a.Type.Words == typ.Words {
			return a, nil
		}
		return snpx.Assignment{}, &snpx.AllocationError{
			Name:   name,
			Words:  typ.Words,
			Slot:   slot,
			Reason: "already bound elsewhere",
		}
	}
	if !c.assignments.RangeFree(slot, typ.Words) {
		return snpx.Assignment{}, &snpx.AllocationError{
			Name:   name,
			Words:  typ.Words,
			Slot:   slot,
			Reason: "slots out of range or already bound",
		}
	}
	return c.bind(snpx.Assignment{Name: name, Slot: slot, Type: typ})
}

// bind sends the SETASG command and records the assignment once the
// controller acknowledges it. Caller must hold the lock.
func (c *Client) bind(a snpx.Assignment) (snpx.Assignment, error) {
	frame, err := snpx.TextCommandFrame(a.SetCommand())
	if err != nil {
		return snpx.Assignment{}, err
	}
	if _, err := c.exchange(frame); err != nil {
		return snpx.Assignment{}, err
	}
	if err := c.assignments.Record(a); err != nil {
		return snpx.Assignment{}, err
	}
	return a, nil
}

// ClearAssignments drops every binding, on the controller and locally.
func (c *Client) ClearAssignments() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.exchange(snpx.ClearAssignmentsFrame()); err != nil {
		return err
	}
	c.assignments.Reset()
	return nil
}

// Assignment returns the recorded binding for name.
func (c *Client) Assignment(name string) (snpx.Assignment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.assignments.Lookup(name)
}

// ReadNumericVariable reads the INT or REAL variable name, binding it
// to free slots on first use. A name already bound decodes with its
// recorded type.
func (c *Client) ReadNumericVariable(name string, typ snpx.VariableType) (float64, error) {
	if typ.Kind == snpx.String {
		return 0, &snpx.TypeError{Kind: typ.Kind}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.assign(name, typ)
	if err != nil {
		return 0, err
	}
	payload, err := c.readSlots(a)
	if err != nil {
		return 0, err
	}
	return a.Type.DecodeValue(payload)
}

// WriteNumericVariable writes the INT or REAL variable name, binding
// it to free slots on first use.
func (c *Client) WriteNumericVariable(name string, typ snpx.VariableType, value float64) error {
	if typ.Kind == snpx.String {
		return &snpx.TypeError{Kind: typ.Kind}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.assign(name, typ)
	if err != nil {
		return err
	}
	data, err := a.Type.EncodeValue(value)
	if err != nil {
		return err
	}
	return c.writeSlots(a, data)
}

// ReadStringVariable reads the STRING variable name, binding it on
// first use.
func (c *Client) ReadStringVariable(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.assign(name, snpx.StringType())
	if err != nil {
		return "", err
	}
	payload, err := c.readSlots(a)
	if err != nil {
		return "", err
	}
	return a.Type.DecodeString(payload)
}

// WriteStringVariable writes the STRING variable name, binding it on
// first use. Longer strings are truncated to the variable's width.
func (c *Client) WriteStringVariable(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	a, err := c.assign(name, snpx.StringType())
	if err != nil {
		return err
	}
	data, err := a.Type.EncodeString(value)
	if err != nil {
		return err
	}
	return c.writeSlots(a, data)
}

// readSlots fetches the register words behind an assignment. Caller
// must hold the lock.
func (c *Client) readSlots(a snpx.Assignment) ([]byte, error) {
	words := uint16(a.Type.Words)
	frame := snpx.ReadFrame(snpx.AreaRegisters, uint16(a.Slot-1), words, words*2)
	resp, err := c.exchange(frame)
	if err != nil {
		return nil, err
	}
	return snpx.RegisterPayload(resp)
}

// writeSlots stores data into the register words behind an
// assignment. Caller must hold the lock.
func (c *Client) writeSlots(a snpx.Assignment, data []byte) error {
	words := uint16(a.Type.Words)
	frame, err := snpx.WriteFrame(snpx.AreaRegisters, uint16(a.Slot-1), words, words*2, data)
	if err != nil {
		return err
	}
	_, err = c.exchange(frame)
	return err
}

// exchange sends one frame and reads its response. Caller must hold
// the lock; the wire carries no correlation, ordering is the protocol.
func (c *Client) exchange(frame []byte) ([]byte, error) {
	if err := c.channel.Send(frame); err != nil {
		return nil, err
	}
	return c.channel.ReceiveFrame()
}
