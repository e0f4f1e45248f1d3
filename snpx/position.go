// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"encoding/binary"
	"math"
)

// PositionBlock locates one of the controller's current-position
// windows in register memory.
type PositionBlock struct {
	Base  uint16
	Bytes uint16
}

var (
	// CartesianPosition is the world-frame position window (X Y Z W P R
	// plus configuration).
	CartesianPosition = PositionBlock{Base: 12000, Bytes: 0x32}
	// JointPosition is the joint-angle window.
	JointPosition = PositionBlock{Base: 12026, Bytes: 0x32}
)

// ReadFrame builds the register read request for the position window.
func (p PositionBlock) ReadFrame() []byte {
	return ReadFrame(AreaRegisters, p.Base, p.Bytes/2, p.Bytes)
}

// Register read responses carry their data bytes between these two
// bounds. The values are observed from controller captures, not derived
// from the header fields, and have held across the firmware lines seen
// so far.
const (
	registerPayloadOffset = 108
	registerPayloadTrim   = 24
)

// RegisterPayload returns the data bytes of a register read response.
func RegisterPayload(resp []byte) ([]byte, error) {
	if len(resp) < registerPayloadOffset+registerPayloadTrim {
		return nil, &FramingError{Length: len(resp)}
	}
	return resp[registerPayloadOffset : len(resp)-registerPayloadTrim], nil
}

// DecodePositions interprets a register read response as consecutive
// little-endian float32 axis values. A partial trailing value is
// dropped.
func DecodePositions(resp []byte) ([]float32, error) {
	data, err := RegisterPayload(resp)
	if err != nil {
		return nil, err
	}
	values := make([]float32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		bits := binary.LittleEndian.Uint32(data[i:])
		values = append(values, math.Float32frombits(bits))
	}
	return values, nil
}
