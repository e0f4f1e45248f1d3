// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

// SignalBlock identifies one of the controller's digital I/O tables.
// Signal indexes within a block are 1-based, matching the pendant.
type SignalBlock struct {
	Area byte
	Base uint16
}

// The controller's signal tables.
var (
	DigitalIn  = SignalBlock{Area: AreaInputs, Base: 0}
	DigitalOut = SignalBlock{Area: AreaOutputs, Base: 0}
	UserIn     = SignalBlock{Area: AreaInputs, Base: 6000}
	UserOut    = SignalBlock{Area: AreaOutputs, Base: 6000}
)

// signalAlloc is the allocation the controller expects in the size
// field for count signals: the count rounded up to a whole group of 8.
func signalAlloc(count int) uint16 {
	return uint16((count + 7) / 8 * 8)
}

// ReadFrame builds the read request for count signals starting at the
// 1-based index start.
func (b SignalBlock) ReadFrame(count, start int) []byte {
	addr := b.Base + uint16(start) - 1
	return ReadFrame(b.Area, addr, uint16(count), signalAlloc(count))
}

// WriteFrame builds the write request for values starting at the
// 1-based index start. Up to 48 signals fit inside the header; larger
// writes use the long form. An empty values slice yields a nil frame:
// there is nothing to send.
func (b SignalBlock) WriteFrame(values []bool, start int) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	addr := b.Base + uint16(start) - 1
	return WriteFrame(b.Area, addr, uint16(len(values)), signalAlloc(len(values)), PackSignals(values))
}

// PackSignals packs booleans into bytes, least significant bit first.
func PackSignals(values []bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	return packed
}

// UnpackSignals expands up to count booleans out of data, least
// significant bit first. Short data yields a short result.
func UnpackSignals(data []byte, count int) []bool {
	values := make([]bool, 0, count)
	for _, b := range data {
		for bit := 0; bit < 8 && len(values) < count; bit++ {
			values = append(values, b>>bit&1 == 1)
		}
		if len(values) == count {
			break
		}
	}
	return values
}

// DecodeSignals extracts signal states from a read response. Decoding
// is best effort and never fails: a response of unexpected shape yields
// however many signals could be recovered, so one garbled reply cannot
// take down a telemetry poll. Frames longer than a bare header carry
// the signal bytes appended after it; exactly-56-byte replies pack them
// between the address field and the final two bytes.
func DecodeSignals(resp []byte, count int) []bool {
	var data []byte
	switch {
	case len(resp) > HeaderSize:
		data = resp[HeaderSize:]
	case len(resp) > 46:
		data = resp[44 : len(resp)-2]
	}
	return UnpackSignals(data, count)
}
