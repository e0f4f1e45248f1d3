// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package model

import (
	"encoding/binary"
	"fmt"
	"sync"
)

const (
	// MaxSignal is the highest signal address in either I/O table.
	MaxSignal = 65535
	// RegisterWords is the size of the register file. It covers the
	// assignment slots at the bottom and the position windows around
	// address 12000.
	RegisterWords = 16384
)

// Table identifies one of the image's data tables.
type Table int

const (
	TableInputs Table = iota
	TableOutputs
	TableRegisters
)

// Image holds one simulated controller's I/O and register state. It is
// safe for concurrent use; the TCP front end serves several
// connections off one image.
type Image struct {
	mu sync.RWMutex

	// Input signals (DI and UI tables). Stored one byte per signal,
	// 1 (ON) or 0 (OFF).
	Inputs []byte
	// Output signals (DO and UO tables).
	Outputs []byte
	// Register words.
	Registers []uint16
}

// NewImage creates an image initialized to zero.
func NewImage() *Image {
	return &Image{
		Inputs:    make([]byte, MaxSignal+1),
		Outputs:   make([]byte, MaxSignal+1),
		Registers: make([]uint16, RegisterWords),
	}
}

// ReadInputs returns quantity input signals from address as packed
// bytes, least significant bit first.
func (m *Image) ReadInputs(address, quantity uint16) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateSignals(address, quantity); err != nil {
		return nil, err
	}
	return packSignals(m.Inputs, address, quantity), nil
}

// ReadOutputs returns quantity output signals from address as packed
// bytes.
func (m *Image) ReadOutputs(address, quantity uint16) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateSignals(address, quantity); err != nil {
		return nil, err
	}
	return packSignals(m.Outputs, address, quantity), nil
}

// WriteInputs sets quantity input signals from packed bytes. Writing
// inputs is how a test rig injects field state.
func (m *Image) WriteInputs(address, quantity uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return unpackSignals(m.Inputs, address, quantity, data)
}

// WriteOutputs sets quantity output signals from packed bytes.
func (m *Image) WriteOutputs(address, quantity uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return unpackSignals(m.Outputs, address, quantity, data)
}

// ReadRegisters returns quantity register words from address as
// little-endian bytes.
func (m *Image) ReadRegisters(address, quantity uint16) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := validateRegisters(address, quantity); err != nil {
		return nil, err
	}
	result := make([]byte, int(quantity)*2)
	for i := 0; i < int(quantity); i++ {
		binary.LittleEndian.PutUint16(result[i*2:], m.Registers[int(address)+i])
	}
	return result, nil
}

// WriteRegisters stores little-endian bytes into quantity register
// words at address.
func (m *Image) WriteRegisters(address, quantity uint16, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateRegisters(address, quantity); err != nil {
		return err
	}
	if len(data) < int(quantity)*2 {
		return fmt.Errorf("insufficient data length")
	}
	for i := 0; i < int(quantity); i++ {
		m.Registers[int(address)+i] = binary.LittleEndian.Uint16(data[i*2:])
	}
	return nil
}

// packSignals packs a signal range into wire bytes. Caller must hold
// the lock.
func packSignals(table []byte, address, quantity uint16) []byte {
	result := make([]byte, (int(quantity)+7)/8)
	for i := 0; i < int(quantity); i++ {
		if table[int(address)+i] != 0 {
			result[i/8] |= 1 << uint(i%8)
		}
	}
	return result
}

// unpackSignals applies packed wire bytes to a signal range. Caller
// must hold the lock.
func unpackSignals(table []byte, address, quantity uint16, data []byte) error {
	if err := validateSignals(address, quantity); err != nil {
		return err
	}
	if len(data) < (int(quantity)+7)/8 {
		return fmt.Errorf("insufficient data length")
	}
	for i := 0; i < int(quantity); i++ {
		table[int(address)+i] = data[i/8] >> uint(i%8) & 1
	}
	return nil
}

func validateSignals(address, quantity uint16) error {
	if quantity == 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if int(address)+int(quantity) > MaxSignal+1 {
		return fmt.Errorf("signal range out of bounds")
	}
	return nil
}

func validateRegisters(address, quantity uint16) error {
	if quantity == 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	if int(address)+int(quantity) > RegisterWords {
		return fmt.Errorf("register range out of bounds")
	}
	return nil
}
