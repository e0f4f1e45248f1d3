package persistence

import (
	"unsafe"

	"github.com/BiasedControls/snpx-client/internal/sim/model"
)

const (
	sizeInputs    = model.MaxSignal + 1
	sizeOutputs   = model.MaxSignal + 1
	sizeRegisters = model.RegisterWords * 2
	totalSize     = sizeInputs + sizeOutputs + sizeRegisters

	offsetInputs    = 0
	offsetOutputs   = offsetInputs + sizeInputs
	offsetRegisters = offsetOutputs + sizeOutputs
)

// mapBytesToImage constructs an Image backed by the provided data
// slice. Warning: the register table is cast to a uint16 slice via
// unsafe pointers, so persisted data relies on the host's endianness.
// Zero-copy access in exchange for image files that do not travel
// between architectures.
func mapBytesToImage(data []byte) *model.Image {
	m := &model.Image{}

	m.Inputs = data[offsetInputs : offsetInputs+sizeInputs]
	m.Outputs = data[offsetOutputs : offsetOutputs+sizeOutputs]

	registerBytes := data[offsetRegisters : offsetRegisters+sizeRegisters]
	m.Registers = unsafe.Slice((*uint16)(unsafe.Pointer(&registerBytes[0])), sizeRegisters/2)

	return m
}
