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

// Package manifest provides the CodeHashes table: the ordered page digests of
// one or more digestable regions together with the parameters that produced
// them.
//
// Slots are numbered across all regions, so slot i is the i-th page of the
// concatenation of every region in input order. RangePages records how many
// slots each region contributed, which lets a reader map a slot back to the
// region and page it came from.
package manifest

import (
	"fmt"
	"slices"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	"github.com/sigstore/code-hashing/pkg/hashing/engines/memory"
)

// CodeHashes is an immutable table of page digests.
type CodeHashes struct {
	algorithm  algorithm.Algorithm
	pageSize   int
	rangePages []int
	slots      []digests.Digest
}

// New builds a table and checks its invariants: the page counts add up to
// the number of slots and every slot has the algorithm's output length.
func New(alg algorithm.Algorithm, pageSize int, rangePages []int, slots []digests.Digest) (*CodeHashes, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("invalid algorithm %v", alg)
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be at least 1, got %d", pageSize)
	}

	total := 0
	for i, n := range rangePages {
		if n < 0 {
			return nil, fmt.Errorf("range %d has negative page count %d", i, n)
		}
		total += n
	}
	if total != len(slots) {
		return nil, fmt.Errorf("range page counts sum to %d, but table has %d slots", total, len(slots))
	}

	for i, d := range slots {
		if d.Size() != alg.OutputLength() {
			return nil, fmt.Errorf("slot %d has %d bytes, %v digests have %d", i, d.Size(), alg, alg.OutputLength())
		}
	}

	return &CodeHashes{
		algorithm:  alg,
		pageSize:   pageSize,
		rangePages: slices.Clone(rangePages),
		slots:      slices.Clone(slots),
	}, nil
}

// Algorithm returns the digest algorithm of every slot.
func (c *CodeHashes) Algorithm() algorithm.Algorithm {
	return c.algorithm
}

// PageSize returns the page size used to split the regions.
func (c *CodeHashes) PageSize() int {
	return c.pageSize
}

// RangePages returns a copy of the per-region page counts.
func (c *CodeHashes) RangePages() []int {
	return slices.Clone(c.rangePages)
}

// Len returns the number of slots.
func (c *CodeHashes) Len() int {
	return len(c.slots)
}

// Slot returns the digest at index i.
func (c *CodeHashes) Slot(i int) (digests.Digest, error) {
	if i < 0 || i >= len(c.slots) {
		return digests.Digest{}, fmt.Errorf("slot %d out of range [0, %d)", i, len(c.slots))
	}
	return c.slots[i], nil
}

// Slots returns a copy of every slot in order.
func (c *CodeHashes) Slots() []digests.Digest {
	return slices.Clone(c.slots)
}

// Values returns the raw slot bytes in order.
func (c *CodeHashes) Values() [][]byte {
	return digests.Values(c.slots)
}

// RangeOf maps slot i to the region it belongs to and its page index within
// that region.
func (c *CodeHashes) RangeOf(i int) (rangeIndex, pageIndex int, err error) {
	if i < 0 || i >= len(c.slots) {
		return 0, 0, fmt.Errorf("slot %d out of range [0, %d)", i, len(c.slots))
	}
	for r, n := range c.rangePages {
		if i < n {
			return r, i, nil
		}
		i -= n
	}
	// unreachable: New guarantees the page counts cover every slot
	return 0, 0, fmt.Errorf("slot %d not covered by range page counts", i)
}

// RootDigest returns SHA-256 over the concatenated slots.
func (c *CodeHashes) RootDigest() (digests.Digest, error) {
	return memory.ComputeRootDigest(c.slots)
}

// Equal reports whether both tables have the same parameters, layout and slots.
func (c *CodeHashes) Equal(other *CodeHashes) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return ComputeDiff(c, other).IsEmpty()
}
