// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package snpx implements the controller's binary request/response
// format: frame construction and parsing, digital signal packing,
// position and register payload decoding, and the register assignment
// bookkeeping behind named variables. The package is pure; all I/O
// lives in the transport layer.
package snpx

import "io"

// ReadFrame builds a read request against a memory area: count units
// starting at addr, with size declaring the response bytes expected.
func ReadFrame(area byte, addr, count, size uint16) []byte {
	h := Header{
		FrameType: FrameData,
		Count:     count,
		Segments:  SegmentsInline,
		Message:   MessageShort,
		Dest:      DestMailbox,
		PacketNum: 1,
		PacketCnt: 1,
		Service:   ServiceRead,
		Area:      area,
		Address:   addr,
		Size:      size,
	}
	raw := h.Marshal()
	return raw[:]
}

// WriteFrame builds a write request carrying payload. Payloads up to
// InlineSize bytes travel inside the header tail; larger ones switch to
// the long form and are appended after the header, up to MaxTextSize
// bytes.
func WriteFrame(area byte, addr, count, size uint16, payload []byte) ([]byte, error) {
	if len(payload) > MaxTextSize {
		return nil, &FramingError{Length: len(payload)}
	}

	h := Header{
		FrameType: FrameData,
		Count:     count,
		Dest:      DestMailbox,
		PacketNum: 1,
		PacketCnt: 1,
		Service:   ServiceWrite,
		Area:      area,
		Address:   addr,
		Size:      size,
	}

	if len(payload) <= InlineSize {
		h.Segments = SegmentsInline
		h.Message = MessageShort
		copy(h.Tail[:], payload)
		raw := h.Marshal()
		return raw[:], nil
	}

	h.Segments = SegmentsAppended
	h.Message = MessageLong
	h.TextLen = byte(len(payload))
	raw := h.Marshal()
	return append(raw[:], payload...), nil
}

// TextCommandFrame wraps an ASCII controller command such as SETASG.
func TextCommandFrame(command string) ([]byte, error) {
	n := uint16(len(command))
	return WriteFrame(AreaText, 0, n, n, []byte(command))
}

// ProbeFrame is the all-zero packet opening a connection. The
// controller acknowledges it with a frame whose first byte is 1.
func ProbeFrame() []byte {
	return make([]byte, HeaderSize)
}

// HelloFrame negotiates the protocol right after the probe. The count
// field carries its historical sequence number 1.
func HelloFrame() []byte {
	h := Header{
		FrameType: FrameHello,
		Count:     1,
		Segments:  SegmentsInline,
		Message:   MessageShort,
		Dest:      DestMailbox,
		PacketNum: 1,
		PacketCnt: 1,
		Service:   ServiceHello,
		Area:      AreaHello,
	}
	raw := h.Marshal()
	return raw[:]
}

// ClearAssignmentsFrame drops every register assignment on the
// controller. Third and last frame of the connection handshake, with
// its historical sequence number 2 in the count field.
func ClearAssignmentsFrame() []byte {
	frame, _ := WriteFrame(AreaText, 0, 2, 6, []byte("CLRASG"))
	return frame
}

// ReadFrameFrom reads one complete frame from r: the fixed header
// followed by however many appended bytes the header declares.
func ReadFrameFrom(r io.Reader) ([]byte, error) {
	frame := make([]byte, HeaderSize, HeaderSize+MaxTextSize)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	if n := int(frame[4]); n > 0 {
		frame = frame[:HeaderSize+n]
		if _, err := io.ReadFull(r, frame[HeaderSize:]); err != nil {
			return nil, err
		}
	}
	return frame, nil
}
