// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
)

// mustHex decodes a whitespace-grouped hex dump.
func mustHex(t *testing.T, dump string) []byte {
	t.Helper()
	raw, err := hex.DecodeString(strings.Join(strings.Fields(dump), ""))
	if err != nil {
		t.Fatalf("bad hex dump: %v", err)
	}
	return raw
}

func TestHelloFrame(t *testing.T) {
	// Capture of the negotiation packet as the controller expects it.
	want := mustHex(t, `
		08 00 01 00 00 00 00 00 00 01 00 00 00 00 00 00
		00 01 00 00 00 00 00 00 00 00 00 00 00 00 01 c0
		00 00 00 00 10 0e 00 00 01 01 4f 01 00 00 00 00
		00 00 00 00 00 00 00 00`)

	if got := HelloFrame(); !bytes.Equal(got, want) {
		t.Errorf("HelloFrame() = %x, want %x", got, want)
	}
}

func TestClearAssignmentsFrame(t *testing.T) {
	want := mustHex(t, `
		02 00 02 00 00 00 00 00 00 01 00 00 00 00 00 00
		00 01 00 00 00 00 00 00 00 00 00 00 00 00 02 c0
		00 00 00 00 10 0e 00 00 01 01 07 38 00 00 06 00
		43 4c 52 41 53 47 00 00`)

	if got := ClearAssignmentsFrame(); !bytes.Equal(got, want) {
		t.Errorf("ClearAssignmentsFrame() = %x, want %x", got, want)
	}
}

func TestProbeFrame(t *testing.T) {
	got := ProbeFrame()
	if len(got) != HeaderSize {
		t.Fatalf("ProbeFrame() length = %d, want %d", len(got), HeaderSize)
	}
	for i, b := range got {
		if b != 0 {
			t.Fatalf("ProbeFrame()[%d] = %#x, want zero", i, b)
		}
	}
}

func TestTextCommandFrame_LongForm(t *testing.T) {
	command := "SETASG 1 50 POS[G1:0] 0.0"

	want := mustHex(t, `
		02 00 19 00 19 00 00 00 00 02 00 00 00 00 00 00
		00 02 00 00 00 00 00 00 00 00 00 00 00 00 19 80
		00 00 00 00 10 0e 00 00 01 01 00 00 00 00 00 00
		01 01 07 38 00 00 19 00`)
	want = append(want, command...)

	got, err := TextCommandFrame(command)
	if err != nil {
		t.Fatalf("TextCommandFrame() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("TextCommandFrame() = %x, want %x", got, want)
	}
}

func TestWriteFrame_InlineBoundary(t *testing.T) {
	// Six payload bytes still travel inside the header tail.
	inline, err := WriteFrame(AreaOutputs, 0, 48, 48, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("WriteFrame(inline) error = %v", err)
	}
	if len(inline) != HeaderSize {
		t.Errorf("inline frame length = %d, want %d", len(inline), HeaderSize)
	}
	if inline[31] != MessageShort || inline[9] != SegmentsInline {
		t.Errorf("inline frame markers = %#x/%#x, want %#x/%#x", inline[31], inline[9], MessageShort, SegmentsInline)
	}
	if !bytes.Equal(inline[48:54], []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("inline payload = %x", inline[48:54])
	}

	// One more byte forces the long form with the relocated fields.
	long, err := WriteFrame(AreaOutputs, 0x1234, 49, 56, []byte{1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatalf("WriteFrame(long) error = %v", err)
	}
	if len(long) != HeaderSize+7 {
		t.Fatalf("long frame length = %d, want %d", len(long), HeaderSize+7)
	}
	if long[31] != MessageLong || long[9] != SegmentsAppended {
		t.Errorf("long frame markers = %#x/%#x", long[31], long[9])
	}
	if long[4] != 7 {
		t.Errorf("long frame text length = %d, want 7", long[4])
	}
	for i := 42; i < 48; i++ {
		if long[i] != 0 {
			t.Errorf("long frame byte %d = %#x, want zero", i, long[i])
		}
	}
	if long[48] != 0x01 || long[49] != 0x01 {
		t.Errorf("long frame marker bytes = %#x %#x, want 01 01", long[48], long[49])
	}
	if long[50] != ServiceWrite || long[51] != AreaOutputs {
		t.Errorf("long frame service/area = %#x/%#x", long[50], long[51])
	}
	if long[52] != 0x34 || long[53] != 0x12 {
		t.Errorf("long frame address = %x", long[52:54])
	}
	if long[54] != 56 || long[55] != 0 {
		t.Errorf("long frame size = %x", long[54:56])
	}
}

func TestWriteFrame_PayloadTooLarge(t *testing.T) {
	_, err := WriteFrame(AreaText, 0, 0, 0, make([]byte, MaxTextSize+1))
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("WriteFrame() error = %v, want FramingError", err)
	}
	if fe.Length != MaxTextSize+1 {
		t.Errorf("FramingError.Length = %d, want %d", fe.Length, MaxTextSize+1)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"short", Header{FrameType: FrameData, Count: 32, Segments: SegmentsInline, Message: MessageShort, Dest: DestMailbox, PacketNum: 1, PacketCnt: 1, Service: ServiceRead, Area: AreaInputs, Address: 6000, Size: 32, Tail: [8]byte{0xAA, 0xBB}}},
		{"long", Header{FrameType: FrameData, Count: 128, TextLen: 16, Segments: SegmentsAppended, Message: MessageLong, Dest: DestMailbox, PacketNum: 1, PacketCnt: 1, Service: ServiceWrite, Area: AreaOutputs, Address: 5999, Size: 128}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.h.Marshal()
			got, err := ParseHeader(raw[:])
			if err != nil {
				t.Fatalf("ParseHeader() error = %v", err)
			}
			if *got != tt.h {
				t.Errorf("ParseHeader() = %+v, want %+v", *got, tt.h)
			}
		})
	}
}

func TestParseHeader_Short(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	var fe *FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("ParseHeader() error = %v, want FramingError", err)
	}
}

func TestReadFrameFrom(t *testing.T) {
	bare := ClearAssignmentsFrame()
	appended, err := TextCommandFrame("SETASG 1 2 $COUNTER 0.0")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"HeaderOnly", bare, bare, false},
		{"WithAppendedText", appended, appended, false},
		{"TruncatedHeader", bare[:40], nil, true},
		{"TruncatedText", appended[:HeaderSize+3], nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFrameFrom(bytes.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFrameFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if err != io.ErrUnexpectedEOF && err != io.EOF {
					t.Errorf("ReadFrameFrom() error = %v, want EOF flavored", err)
				}
				return
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ReadFrameFrom() = %x, want %x", got, tt.want)
			}
		})
	}
}
