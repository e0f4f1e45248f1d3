// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sim

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/BiasedControls/snpx-client/internal/sim/model"
	"github.com/BiasedControls/snpx-client/internal/sim/persistence"
	"github.com/BiasedControls/snpx-client/snpx"
)

// Register read responses put their data between a lead and tail pad,
// matching where connected clients expect it.
const (
	registerLeadPad = 52
	registerTailPad = 24
)

// Controller answers SNPX request frames against an image, standing in
// for a robot controller during development and tests.
type Controller struct {
	image   *model.Image
	storage persistence.Storage

	mu          sync.Mutex
	assignments map[string]assignment
}

// assignment mirrors one SETASG binding.
type assignment struct {
	slot  int
	words int
	scale float64
}

// NewController builds a controller around a loaded image.
func NewController(image *model.Image, storage persistence.Storage) *Controller {
	return &Controller{
		image:       image,
		storage:     storage,
		assignments: make(map[string]assignment),
	}
}

// Handle executes one request frame and returns the response frame.
// Unknown requests return an error and no response; the serving layer
// decides whether the connection survives.
func (c *Controller) Handle(req []byte) ([]byte, error) {
	h, err := snpx.ParseHeader(req)
	if err != nil {
		return nil, err
	}

	if isProbe(req) {
		resp := make([]byte, snpx.HeaderSize)
		resp[0] = 1
		return resp, nil
	}

	switch h.FrameType {
	case snpx.FrameHello:
		return c.ack(h), nil
	case snpx.FrameData:
		return c.handleData(h, req)
	}
	return nil, fmt.Errorf("snpx: unsupported frame type %#x", h.FrameType)
}

func (c *Controller) handleData(h *snpx.Header, req []byte) ([]byte, error) {
	switch h.Service {
	case snpx.ServiceRead:
		return c.handleRead(h)
	case snpx.ServiceWrite:
		return c.handleWrite(h, req)
	case snpx.ServiceHello:
		return c.ack(h), nil
	}
	return nil, fmt.Errorf("snpx: unsupported service %#x", h.Service)
}

func (c *Controller) handleRead(h *snpx.Header) ([]byte, error) {
	switch h.Area {
	case snpx.AreaInputs:
		data, err := c.image.ReadInputs(h.Address, h.Count)
		if err != nil {
			return nil, err
		}
		return c.dataResponse(h, data)
	case snpx.AreaOutputs:
		data, err := c.image.ReadOutputs(h.Address, h.Count)
		if err != nil {
			return nil, err
		}
		return c.dataResponse(h, data)
	case snpx.AreaRegisters:
		data, err := c.image.ReadRegisters(h.Address, h.Count)
		if err != nil {
			return nil, err
		}
		return c.registerResponse(h, data)
	}
	return nil, fmt.Errorf("snpx: unsupported read area %#x", h.Area)
}

func (c *Controller) handleWrite(h *snpx.Header, req []byte) ([]byte, error) {
	switch h.Area {
	case snpx.AreaInputs:
		data, err := writePayload(h, req, (int(h.Count)+7)/8)
		if err != nil {
			return nil, err
		}
		if err := c.image.WriteInputs(h.Address, h.Count, data); err != nil {
			return nil, err
		}
		c.storage.OnWrite(model.TableInputs, h.Address, h.Count)
		return c.ack(h), nil
	case snpx.AreaOutputs:
		data, err := writePayload(h, req, (int(h.Count)+7)/8)
		if err != nil {
			return nil, err
		}
		if err := c.image.WriteOutputs(h.Address, h.Count, data); err != nil {
			return nil, err
		}
		c.storage.OnWrite(model.TableOutputs, h.Address, h.Count)
		return c.ack(h), nil
	case snpx.AreaRegisters:
		data, err := writePayload(h, req, int(h.Count)*2)
		if err != nil {
			return nil, err
		}
		if err := c.image.WriteRegisters(h.Address, h.Count, data); err != nil {
			return nil, err
		}
		c.storage.OnWrite(model.TableRegisters, h.Address, h.Count)
		return c.ack(h), nil
	case snpx.AreaText:
		data, err := writePayload(h, req, int(h.Size))
		if err != nil {
			return nil, err
		}
		if err := c.handleTextCommand(string(data)); err != nil {
			return nil, err
		}
		return c.ack(h), nil
	}
	return nil, fmt.Errorf("snpx: unsupported write area %#x", h.Area)
}

// handleTextCommand parses the ASCII command set: SETASG binds a named
// variable to register slots, CLRASG drops every binding.
func (c *Controller) handleTextCommand(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return fmt.Errorf("snpx: empty text command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch fields[0] {
	case "CLRASG":
		c.assignments = make(map[string]assignment)
		return nil
	case "SETASG":
		if len(fields) != 5 {
			return fmt.Errorf("snpx: malformed SETASG %q", command)
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil || slot < 1 {
			return fmt.Errorf("snpx: bad SETASG slot %q", fields[1])
		}
		words, err := strconv.Atoi(fields[2])
		if err != nil || words < 1 {
			return fmt.Errorf("snpx: bad SETASG size %q", fields[2])
		}
		scale, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return fmt.Errorf("snpx: bad SETASG scale %q", fields[4])
		}
		c.assignments[fields[3]] = assignment{slot: slot, words: words, scale: scale}
		return nil
	}
	return fmt.Errorf("snpx: unknown text command %q", fields[0])
}

// ack echoes the request header back without data.
func (c *Controller) ack(h *snpx.Header) []byte {
	resp := snpx.Header{
		FrameType: snpx.FrameData,
		Count:     h.Count,
		Segments:  snpx.SegmentsInline,
		Message:   snpx.MessageShort,
		Dest:      snpx.DestMailbox,
		PacketNum: 1,
		PacketCnt: 1,
		Service:   h.Service,
		Area:      h.Area,
		Address:   h.Address,
		Size:      h.Size,
	}
	raw := resp.Marshal()
	return raw[:]
}

// dataResponse appends payload right after the response header, the
// shape signal reads come back in.
func (c *Controller) dataResponse(h *snpx.Header, payload []byte) ([]byte, error) {
	if len(payload) > snpx.MaxTextSize {
		return nil, fmt.Errorf("snpx: read of %d bytes does not fit a response frame", len(payload))
	}
	resp := snpx.Header{
		FrameType: snpx.FrameData,
		Count:     h.Count,
		TextLen:   byte(len(payload)),
		Segments:  snpx.SegmentsAppended,
		Message:   snpx.MessageShort,
		Dest:      snpx.DestMailbox,
		PacketNum: 1,
		PacketCnt: 1,
		Service:   h.Service,
		Area:      h.Area,
		Address:   h.Address,
		Size:      h.Size,
	}
	raw := resp.Marshal()
	return append(raw[:], payload...), nil
}

// registerResponse wraps register data in the padded shape clients
// slice their payload out of.
func (c *Controller) registerResponse(h *snpx.Header, data []byte) ([]byte, error) {
	padded := make([]byte, registerLeadPad+len(data)+registerTailPad)
	copy(padded[registerLeadPad:], data)
	return c.dataResponse(h, padded)
}

// writePayload locates the request's data bytes: appended after the
// header for long frames, inline in the header tail otherwise.
func writePayload(h *snpx.Header, req []byte, n int) ([]byte, error) {
	if h.TextLen > 0 {
		if len(req) < snpx.HeaderSize+int(h.TextLen) {
			return nil, &snpx.FramingError{Length: len(req)}
		}
		return req[snpx.HeaderSize : snpx.HeaderSize+int(h.TextLen)], nil
	}
	if n > snpx.InlineSize {
		return nil, &snpx.FramingError{Length: len(req)}
	}
	return h.Tail[:n], nil
}

// isProbe reports whether the frame is the all-zero wake-up request.
func isProbe(req []byte) bool {
	if len(req) != snpx.HeaderSize {
		return false
	}
	for _, b := range req {
		if b != 0 {
			return false
		}
	}
	return true
}
