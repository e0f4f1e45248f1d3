// Copyright (c) 2026 Biased Controls. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package snpx

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotCount is the number of assignment slots the controller exposes.
// Each slot is one register word; slots are 1-indexed.
const SlotCount = 80

// Assignment binds a variable name to the register slots it occupies.
type Assignment struct {
	Name string
	Slot int
	Type VariableType
}

// SetCommand renders the text command binding this assignment on the
// controller. The grammar is "SETASG <slot> <words> <name> <scale>",
// with the scale always carrying a decimal point.
func (a Assignment) SetCommand() string {
	return fmt.Sprintf("SETASG %d %d %s %s", a.Slot, a.Type.Words, a.Name, formatScale(a.Type.Scale))
}

func formatScale(scale float64) string {
	s := strconv.FormatFloat(scale, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// AssignmentTable tracks which slots are bound to which names. A
// variable of w words bound at slot s occupies [s, s+w). The table is
// pure bookkeeping; the session records a binding only after the
// controller has acknowledged it.
type AssignmentTable struct {
	byName map[string]Assignment
	used   [SlotCount + 1]bool
}

func NewAssignmentTable() *AssignmentTable {
	return &AssignmentTable{byName: make(map[string]Assignment)}
}

// Lookup returns the recorded assignment for name.
func (t *AssignmentTable) Lookup(name string) (Assignment, bool) {
	a, ok := t.byName[name]
	return a, ok
}

// RangeFree reports whether words slots starting at slot lie inside the
// table and are all unbound.
func (t *AssignmentTable) RangeFree(slot, words int) bool {
	if slot < 1 || words < 1 || slot+words-1 > SlotCount {
		return false
	}
	for i := slot; i < slot+words; i++ {
		if t.used[i] {
			return false
		}
	}
	return true
}

// NextFree returns the lowest slot with words consecutive unbound
// slots, scanning first fit from slot 1.
func (t *AssignmentTable) NextFree(words int) (int, bool) {
	for slot := 1; slot+words-1 <= SlotCount; slot++ {
		if t.RangeFree(slot, words) {
			return slot, true
		}
	}
	return 0, false
}

// Record stores the assignment and marks its slots bound.
func (t *AssignmentTable) Record(a Assignment) error {
	if !t.RangeFree(a.Slot, a.Type.Words) {
		return &AllocationError{Name: a.Name, Words: a.Type.Words, Slot: a.Slot, Reason: "slots out of range or already bound"}
	}
	for i := a.Slot; i < a.Slot+a.Type.Words; i++ {
		t.used[i] = true
	}
	t.byName[a.Name] = a
	return nil
}

// Reset drops every recorded binding, mirroring a CLRASG on the
// controller.
func (t *AssignmentTable) Reset() {
	t.byName = make(map[string]Assignment)
	t.used = [SlotCount + 1]bool{}
}

// AllocationError reports a variable that could not be bound to
// assignment slots.
type AllocationError struct {
	Name   string
	Words  int
	Slot   int
	Reason string
}

func (e *AllocationError) Error() string {
	if e.Slot != 0 {
		return fmt.Sprintf("snpx: cannot assign %q (%d words) at slot %d: %s", e.Name, e.Words, e.Slot, e.Reason)
	}
	return fmt.Sprintf("snpx: cannot assign %q (%d words): %s", e.Name, e.Words, e.Reason)
}
