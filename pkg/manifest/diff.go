// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"fmt"
	"slices"
	"strings"
)

// Diff describes how an actual table (computed from a binary) differs from
// an expected one (taken from a signature).
type Diff struct {
	// AlgorithmMismatch is set when the tables use different algorithms.
	AlgorithmMismatch bool

	// PageSizeMismatch is set when the tables use different page sizes.
	PageSizeMismatch bool

	// LayoutMismatch is set when the per-region page counts differ.
	LayoutMismatch bool

	// ExtraSlots counts slots present in actual beyond the end of expected.
	ExtraSlots int

	// MissingSlots counts slots present in expected beyond the end of actual.
	MissingSlots int

	// Mismatches lists slots present in both tables with different digests,
	// in slot order.
	Mismatches []SlotMismatch
}

// SlotMismatch is one slot whose digests differ.
type SlotMismatch struct {
	// Slot is the index in the flat table.
	Slot int

	// ExpectedHash is the hex digest from the expected table.
	ExpectedHash string

	// ActualHash is the hex digest from the actual table.
	ActualHash string
}

// IsEmpty returns true if there are no differences.
func (d *Diff) IsEmpty() bool {
	return !d.AlgorithmMismatch && !d.PageSizeMismatch && !d.LayoutMismatch &&
		d.ExtraSlots == 0 && d.MissingSlots == 0 && len(d.Mismatches) == 0
}

// MismatchedSlots returns the indices of slots whose digests differ.
func (d *Diff) MismatchedSlots() []int {
	out := make([]int, len(d.Mismatches))
	for i, m := range d.Mismatches {
		out[i] = m.Slot
	}
	return out
}

// String summarizes the diff on one line.
func (d *Diff) String() string {
	if d.IsEmpty() {
		return "no differences"
	}
	var parts []string
	if d.AlgorithmMismatch {
		parts = append(parts, "algorithm differs")
	}
	if d.PageSizeMismatch {
		parts = append(parts, "page size differs")
	}
	if d.LayoutMismatch {
		parts = append(parts, "range layout differs")
	}
	if d.ExtraSlots > 0 {
		parts = append(parts, fmt.Sprintf("%d extra slots", d.ExtraSlots))
	}
	if d.MissingSlots > 0 {
		parts = append(parts, fmt.Sprintf("%d missing slots", d.MissingSlots))
	}
	if len(d.Mismatches) > 0 {
		parts = append(parts, fmt.Sprintf("slots %v differ", d.MismatchedSlots()))
	}
	return strings.Join(parts, "; ")
}

// ComputeDiff compares actual against expected slot by slot.
//
// When the algorithms differ every common slot also differs, so slot
// comparison is skipped and only AlgorithmMismatch is reported along with
// the slot count difference.
func ComputeDiff(actual, expected *CodeHashes) *Diff {
	diff := &Diff{
		AlgorithmMismatch: actual.algorithm != expected.algorithm,
		PageSizeMismatch:  actual.pageSize != expected.pageSize,
		LayoutMismatch:    !slices.Equal(actual.rangePages, expected.rangePages),
		Mismatches:        []SlotMismatch{},
	}

	common := min(len(actual.slots), len(expected.slots))
	if len(actual.slots) > common {
		diff.ExtraSlots = len(actual.slots) - common
	}
	if len(expected.slots) > common {
		diff.MissingSlots = len(expected.slots) - common
	}

	if diff.AlgorithmMismatch {
		return diff
	}

	for i := 0; i < common; i++ {
		a, e := actual.slots[i], expected.slots[i]
		if !a.Equal(e) {
			diff.Mismatches = append(diff.Mismatches, SlotMismatch{
				Slot:         i,
				ExpectedHash: e.Hex(),
				ActualHash:   a.Hex(),
			})
		}
	}
	return diff
}
