// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

const (
	// HeaderSize is the fixed length of every request and response
	// header on the wire. Frames carrying appended data declare the
	// extra byte count in the header's text-length field.
	HeaderSize = 56

	// MaxTextSize bounds appended payloads; the text-length field is a
	// single byte.
	MaxTextSize = 255

	// InlineSize is the largest payload carried inside the header tail
	// instead of being appended after it.
	InlineSize = 6

	// DefaultPort is the controller's SNPX listener.
	DefaultPort = 60008
)

// Frame types
const (
	FrameData  = 0x02
	FrameHello = 0x08
)

// Segment markers (offsets 9 and 17)
const (
	SegmentsInline   = 0x01
	SegmentsAppended = 0x02
)

// Message types (offset 31)
const (
	MessageShort = 0xC0
	MessageLong  = 0x80
)

// Service request codes
const (
	ServiceRead  = 0x04
	ServiceWrite = 0x07
	ServiceHello = 0x4F
)

// Memory area codes
const (
	AreaOutputs   = 0x46
	AreaInputs    = 0x48
	AreaRegisters = 0x08
	AreaText      = 0x38
	AreaHello     = 0x01
)

// DestMailbox is the controller-side mailbox every request is routed
// to. The client's source mailbox is always zero.
const DestMailbox = 0x0E10
