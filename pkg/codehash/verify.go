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

package codehash

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/manifest"
)

// Table hashes ranges and records the result together with the per-range
// page counts.
func (h *Hasher) Table(ctx context.Context, ranges [][]byte, alg algorithm.Algorithm, pageSize int) (*manifest.CodeHashes, error) {
	slots, err := h.RangeHashes(ctx, ranges, alg, pageSize)
	if err != nil {
		return nil, err
	}
	counts := make([]int, len(ranges))
	for i, r := range ranges {
		counts[i] = PageCount(len(r), pageSize)
	}
	return manifest.New(alg, pageSize, counts, slots)
}

// SectionTable is Table for sections.
func (h *Hasher) SectionTable(ctx context.Context, sections []Section, alg algorithm.Algorithm, pageSize int) (*manifest.CodeHashes, error) {
	slots, err := h.SectionHashes(ctx, sections, alg, pageSize)
	if err != nil {
		return nil, err
	}
	counts := make([]int, len(sections))
	for i, s := range sections {
		n, err := safecast.Conv[int](s.Length)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		counts[i] = PageCount(n, pageSize)
	}
	return manifest.New(alg, pageSize, counts, slots)
}

// VerifyRanges recomputes the table of ranges with the algorithm and page
// size of expected and compares the two. Differences are reported as a
// *MismatchError.
func (h *Hasher) VerifyRanges(ctx context.Context, ranges [][]byte, expected *manifest.CodeHashes) error {
	if expected == nil {
		return errors.New("expected table must not be nil")
	}
	actual, err := h.Table(ctx, ranges, expected.Algorithm(), expected.PageSize())
	if err != nil {
		return err
	}
	return compare(actual, expected)
}

// VerifySections is VerifyRanges for sections.
func (h *Hasher) VerifySections(ctx context.Context, sections []Section, expected *manifest.CodeHashes) error {
	if expected == nil {
		return errors.New("expected table must not be nil")
	}
	actual, err := h.SectionTable(ctx, sections, expected.Algorithm(), expected.PageSize())
	if err != nil {
		return err
	}
	return compare(actual, expected)
}

func compare(actual, expected *manifest.CodeHashes) error {
	if diff := manifest.ComputeDiff(actual, expected); !diff.IsEmpty() {
		return &MismatchError{Diff: diff}
	}
	return nil
}

// VerifyPage checks one page against slot index of table without hashing
// anything else. The page must be the full page, or the trailing short page
// of its range.
func (h *Hasher) VerifyPage(pageData []byte, index int, table *manifest.CodeHashes) error {
	if table == nil {
		return errors.New("table must not be nil")
	}
	want, err := table.Slot(index)
	if err != nil {
		return err
	}
	if len(pageData) == 0 || len(pageData) > table.PageSize() {
		return fmt.Errorf("page must hold 1 to %d bytes, got %d", table.PageSize(), len(pageData))
	}

	got, err := h.run(context.Background(), table.Algorithm(), []page{{pageIndex: index, data: pageData}})
	if err != nil {
		return err
	}
	if !got[0].Equal(want) {
		return &MismatchError{Diff: &manifest.Diff{
			Mismatches: []manifest.SlotMismatch{{
				Slot:         index,
				ExpectedHash: want.Hex(),
				ActualHash:   got[0].Hex(),
			}},
		}}
	}
	return nil
}

// VerifyPage checks one page against slot index of table with the default
// Hasher.
func VerifyPage(pageData []byte, index int, table *manifest.CodeHashes) error {
	return defaultHasher.VerifyPage(pageData, index, table)
}
