// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Kind enumerates the controller's variable representations.
type Kind int

const (
	Int Kind = iota
	Real
	String
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "INT"
	case Real:
		return "REAL"
	case String:
		return "STRING"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// VariableType describes how a named controller variable is laid out in
// register memory: its representation, the register words it occupies,
// and for integers an optional fixed-point scale.
type VariableType struct {
	Kind  Kind
	Words int
	Scale float64
}

// IntType is a 32-bit integer variable. A non-zero scale turns it into
// a fixed-point value: raw counts are divided by scale on read and the
// value multiplied by scale and rounded on write. Scale zero passes the
// raw count through.
func IntType(scale float64) VariableType {
	return VariableType{Kind: Int, Words: 2, Scale: scale}
}

// RealType is a single-precision float variable.
func RealType() VariableType {
	return VariableType{Kind: Real, Words: 2}
}

// StringType is a NUL-padded text variable of 80 register words.
func StringType() VariableType {
	return VariableType{Kind: String, Words: 80}
}

// TypeError reports a value operation applied to a variable of the
// wrong kind.
type TypeError struct {
	Kind Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("snpx: operation not defined for %s variables", e.Kind)
}

// EncodeValue marshals a numeric value into register bytes per the
// descriptor.
func (t VariableType) EncodeValue(value float64) ([]byte, error) {
	raw := make([]byte, 4)
	switch t.Kind {
	case Real:
		binary.LittleEndian.PutUint32(raw, math.Float32bits(float32(value)))
	case Int:
		if t.Scale != 0 {
			value = math.Round(value * t.Scale)
		}
		binary.LittleEndian.PutUint32(raw, uint32(int32(value)))
	default:
		return nil, &TypeError{Kind: t.Kind}
	}
	return raw, nil
}

// DecodeValue unmarshals register bytes into a numeric value per the
// descriptor.
func (t VariableType) DecodeValue(data []byte) (float64, error) {
	if len(data) < 4 {
		return 0, &FramingError{Length: len(data)}
	}
	bits := binary.LittleEndian.Uint32(data)
	switch t.Kind {
	case Real:
		return float64(math.Float32frombits(bits)), nil
	case Int:
		value := float64(int32(bits))
		if t.Scale != 0 {
			value /= t.Scale
		}
		return value, nil
	}
	return 0, &TypeError{Kind: t.Kind}
}

// EncodeString marshals text into the variable's register bytes,
// NUL-padded. Text longer than the variable is silently truncated.
func (t VariableType) EncodeString(value string) ([]byte, error) {
	if t.Kind != String {
		return nil, &TypeError{Kind: t.Kind}
	}
	raw := make([]byte, t.Words*2)
	copy(raw, value)
	return raw, nil
}

// DecodeString unmarshals register bytes into text, dropping the NUL
// padding.
func (t VariableType) DecodeString(data []byte) (string, error) {
	if t.Kind != String {
		return "", &TypeError{Kind: t.Kind}
	}
	return string(bytes.TrimRight(data, "\x00")), nil
}
