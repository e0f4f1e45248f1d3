// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestPositionBlockReadFrame(t *testing.T) {
	frame := CartesianPosition.ReadFrame()
	if frame[42] != ServiceRead || frame[43] != AreaRegisters {
		t.Errorf("service/area = %#x/%#x", frame[42], frame[43])
	}
	addr := int(frame[44]) | int(frame[45])<<8
	if addr != 12000 {
		t.Errorf("address = %d, want 12000", addr)
	}
	if frame[46] != 0x32 || frame[47] != 0 {
		t.Errorf("size = %x, want 0x32", frame[46:48])
	}
	if frame[2] != 25 || frame[3] != 0 {
		t.Errorf("word count = %x, want 25", frame[2:4])
	}

	frame = JointPosition.ReadFrame()
	addr = int(frame[44]) | int(frame[45])<<8
	if addr != 12026 {
		t.Errorf("joint address = %d, want 12026", addr)
	}
}

// positionResponse builds a register read response with the data bytes
// sitting between the observed payload bounds.
func positionResponse(data []byte) []byte {
	resp := make([]byte, registerPayloadOffset+len(data)+registerPayloadTrim)
	copy(resp[registerPayloadOffset:], data)
	return resp
}

func TestDecodePositions(t *testing.T) {
	axes := []float32{10.5, -200.25, 3, 0, 90, -45.125}
	data := make([]byte, 4*len(axes))
	for i, v := range axes {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}

	got, err := DecodePositions(positionResponse(data))
	if err != nil {
		t.Fatalf("DecodePositions() error = %v", err)
	}
	if len(got) != len(axes) {
		t.Fatalf("decoded %d axes, want %d", len(got), len(axes))
	}
	for i := range axes {
		if got[i] != axes[i] {
			t.Errorf("axis %d = %v, want %v", i, got[i], axes[i])
		}
	}
}

func TestDecodePositions_PartialTail(t *testing.T) {
	// Ten data bytes hold two complete floats; the spare two bytes are
	// dropped.
	data := make([]byte, 10)
	binary.LittleEndian.PutUint32(data[0:], math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-1.5))

	got, err := DecodePositions(positionResponse(data))
	if err != nil {
		t.Fatalf("DecodePositions() error = %v", err)
	}
	if len(got) != 2 || got[0] != 1.5 || got[1] != -1.5 {
		t.Errorf("DecodePositions() = %v, want [1.5 -1.5]", got)
	}
}

func TestDecodePositions_ShortResponse(t *testing.T) {
	_, err := DecodePositions(make([]byte, registerPayloadOffset+registerPayloadTrim-1))
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("DecodePositions() error = %v, want FramingError", err)
	}
}

func TestRegisterPayload(t *testing.T) {
	// The minimum well-formed response carries no data at all.
	data, err := RegisterPayload(make([]byte, registerPayloadOffset+registerPayloadTrim))
	if err != nil {
		t.Fatalf("RegisterPayload() error = %v", err)
	}
	if len(data) != 0 {
		t.Errorf("payload length = %d, want 0", len(data))
	}
}
