// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"bytes"
	"testing"
)

func TestImageSignals(t *testing.T) {
	m := NewImage()

	// 1. Write five outputs at the user table base and read them back.
	if err := m.WriteOutputs(6000, 5, []byte{0x15}); err != nil {
		t.Fatalf("WriteOutputs() error = %v", err)
	}
	got, err := m.ReadOutputs(6000, 5)
	if err != nil {
		t.Fatalf("ReadOutputs() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x15}) {
		t.Errorf("ReadOutputs() = %x, want 15", got)
	}

	// 2. The table stores one signal per byte, LSB first off the wire.
	want := []byte{1, 0, 1, 0, 1}
	if !bytes.Equal(m.Outputs[6000:6005], want) {
		t.Errorf("output table = %v, want %v", m.Outputs[6000:6005], want)
	}

	// 3. Inputs are a separate table.
	in, err := m.ReadInputs(6000, 5)
	if err != nil {
		t.Fatalf("ReadInputs() error = %v", err)
	}
	if !bytes.Equal(in, []byte{0x00}) {
		t.Errorf("ReadInputs() = %x, want 00", in)
	}
}

func TestImageSignalsRepack(t *testing.T) {
	m := NewImage()

	// Twelve signals written at 10; a read at 14 re-packs the surviving
	// ones from bit zero.
	if err := m.WriteInputs(10, 12, []byte{0xFF, 0x0F}); err != nil {
		t.Fatalf("WriteInputs() error = %v", err)
	}
	got, err := m.ReadInputs(14, 8)
	if err != nil {
		t.Fatalf("ReadInputs() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0xFF}) {
		t.Errorf("ReadInputs(14, 8) = %x, want ff", got)
	}
	if got, err = m.ReadInputs(22, 2); err != nil || !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("ReadInputs(22, 2) = %x, %v, want 00", got, err)
	}
}

func TestImageRegisters(t *testing.T) {
	m := NewImage()

	if err := m.WriteRegisters(12000, 2, []byte{0x34, 0x12, 0xEF, 0xBE}); err != nil {
		t.Fatalf("WriteRegisters() error = %v", err)
	}
	if m.Registers[12000] != 0x1234 || m.Registers[12001] != 0xBEEF {
		t.Errorf("register words = %#x %#x", m.Registers[12000], m.Registers[12001])
	}

	got, err := m.ReadRegisters(12001, 1)
	if err != nil {
		t.Fatalf("ReadRegisters() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0xEF, 0xBE}) {
		t.Errorf("ReadRegisters() = %x, want efbe", got)
	}
}

func TestImageValidation(t *testing.T) {
	m := NewImage()

	tests := []struct {
		name string
		run  func() error
	}{
		{"ZeroSignalQuantity", func() error { _, err := m.ReadInputs(0, 0); return err }},
		{"SignalRangeOverflow", func() error { _, err := m.ReadOutputs(65535, 2); return err }},
		{"ZeroRegisterQuantity", func() error { _, err := m.ReadRegisters(0, 0); return err }},
		{"RegisterRangeOverflow", func() error { _, err := m.ReadRegisters(RegisterWords-1, 2); return err }},
		{"ShortSignalData", func() error { return m.WriteInputs(0, 9, []byte{0xFF}) }},
		{"ShortRegisterData", func() error { return m.WriteRegisters(0, 2, []byte{0x01, 0x02}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.run() == nil {
				t.Error("expected error, got none")
			}
		})
	}
}
