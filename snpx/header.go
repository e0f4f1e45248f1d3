// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"encoding/binary"
	"fmt"
)

// Header is the 56-byte packet header shared by every SNPX request and
// response. The layout is fixed:
//
//	[0]     frame type
//	[2:4]   count, little endian (doubles as a sequence in the fixed
//	        handshake frames)
//	[4]     text length: bytes appended after the header
//	[9]     segment marker, echoed at [17]
//	[30]    low byte of count
//	[31]    message type
//	[32:36] source mailbox (always zero here)
//	[36:40] destination mailbox
//	[40]    packet number, [41] packet total (both always 1)
//	[42]    service code, [43] memory area
//	[44:46] start address, [46:48] data size, both little endian
//	[48:56] tail, doubling as the inline payload region
//
// Long-form frames (message type MessageLong) relocate the request
// fields: [42:48] are zero, [48:50] carry the fixed 01 01 marker, and
// service, area, address and size move to [50], [51], [52:54], [54:56].
// The tail is not present in long form.
type Header struct {
	FrameType byte
	Count     uint16
	TextLen   byte
	Segments  byte
	Message   byte
	Source    uint32
	Dest      uint32
	PacketNum byte
	PacketCnt byte
	Service   byte
	Area      byte
	Address   uint16
	Size      uint16
	Tail      [8]byte
}

// FramingError reports a buffer whose length is incompatible with the
// fixed packet layout.
type FramingError struct {
	Length int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("snpx: invalid frame length: %d", e.Length)
}

// Marshal lays the header out on the wire. The segment marker is echoed
// at offset 17 and the low byte of the count at offset 30; callers never
// set those independently.
func (h *Header) Marshal() [HeaderSize]byte {
	var raw [HeaderSize]byte

	raw[0] = h.FrameType
	binary.LittleEndian.PutUint16(raw[2:], h.Count)
	raw[4] = h.TextLen
	raw[9] = h.Segments
	raw[17] = h.Segments
	raw[30] = byte(h.Count)
	raw[31] = h.Message
	binary.LittleEndian.PutUint32(raw[32:], h.Source)
	binary.LittleEndian.PutUint32(raw[36:], h.Dest)
	raw[40] = h.PacketNum
	raw[41] = h.PacketCnt

	if h.Message == MessageLong {
		raw[48] = 0x01
		raw[49] = 0x01
		raw[50] = h.Service
		raw[51] = h.Area
		binary.LittleEndian.PutUint16(raw[52:], h.Address)
		binary.LittleEndian.PutUint16(raw[54:], h.Size)
		return raw
	}

	raw[42] = h.Service
	raw[43] = h.Area
	binary.LittleEndian.PutUint16(raw[44:], h.Address)
	binary.LittleEndian.PutUint16(raw[46:], h.Size)
	copy(raw[48:], h.Tail[:])
	return raw
}

// ParseHeader reads the leading header out of raw. Long-form frames are
// recognized by their message type and decoded from the relocated
// offsets.
func ParseHeader(raw []byte) (*Header, error) {
	if len(raw) < HeaderSize {
		return nil, &FramingError{Length: len(raw)}
	}

	h := &Header{
		FrameType: raw[0],
		Count:     binary.LittleEndian.Uint16(raw[2:]),
		TextLen:   raw[4],
		Segments:  raw[9],
		Message:   raw[31],
		Source:    binary.LittleEndian.Uint32(raw[32:]),
		Dest:      binary.LittleEndian.Uint32(raw[36:]),
		PacketNum: raw[40],
		PacketCnt: raw[41],
	}

	if h.Message == MessageLong {
		h.Service = raw[50]
		h.Area = raw[51]
		h.Address = binary.LittleEndian.Uint16(raw[52:])
		h.Size = binary.LittleEndian.Uint16(raw[54:])
		return h, nil
	}

	h.Service = raw[42]
	h.Area = raw[43]
	h.Address = binary.LittleEndian.Uint16(raw[44:])
	h.Size = binary.LittleEndian.Uint16(raw[46:])
	copy(h.Tail[:], raw[48:HeaderSize])
	return h, nil
}
