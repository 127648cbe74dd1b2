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

package codehash_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/sigstore/code-hashing/pkg/codehash"
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/manifest"
)

func mustTable(t *testing.T, ranges [][]byte, alg algorithm.Algorithm, pageSize int) *manifest.CodeHashes {
	t.Helper()
	table, err := codehash.New().Table(context.Background(), ranges, alg, pageSize)
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	return table
}

func TestTableRecordsLayout(t *testing.T) {
	table := mustTable(t, [][]byte{pattern(300), nil, pattern(64)}, algorithm.SHA1, 64)

	if got := table.RangePages(); !reflect.DeepEqual(got, []int{5, 0, 1}) {
		t.Errorf("RangePages() = %v, want [5 0 1]", got)
	}
	if table.Len() != 6 || table.Algorithm() != algorithm.SHA1 || table.PageSize() != 64 {
		t.Errorf("table = alg %v, page size %d, %d slots", table.Algorithm(), table.PageSize(), table.Len())
	}
	r, p, err := table.RangeOf(5)
	if err != nil || r != 2 || p != 0 {
		t.Errorf("RangeOf(5) = (%d, %d, %v), want (2, 0, nil)", r, p, err)
	}
}

func TestSectionTableMatchesTable(t *testing.T) {
	file := pattern(1000)
	rd := bytes.NewReader(file)
	want := mustTable(t, [][]byte{file[:700], file[700:]}, algorithm.BLAKE3, 256)

	got, err := codehash.New().SectionTable(context.Background(),
		[]codehash.Section{codehash.NewSection(rd, 0, 700), codehash.NewSection(rd, 700, 300)}, algorithm.BLAKE3, 256)
	if err != nil {
		t.Fatalf("SectionTable() error = %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("section table differs: %s", manifest.ComputeDiff(got, want))
	}
}

func TestVerifyRanges(t *testing.T) {
	ranges := [][]byte{pattern(500), pattern(70)}
	table := mustTable(t, ranges, algorithm.SHA512, 100)
	h := codehash.New(codehash.WithConcurrency(3))

	if err := h.VerifyRanges(context.Background(), ranges, table); err != nil {
		t.Fatalf("VerifyRanges() on original data error = %v", err)
	}

	tampered := [][]byte{slices.Clone(ranges[0]), ranges[1]}
	tampered[0][250] ^= 1
	err := h.VerifyRanges(context.Background(), tampered, table)
	var mismatch *codehash.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("VerifyRanges() on tampered data error = %v, want MismatchError", err)
	}
	if got := mismatch.Diff.MismatchedSlots(); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("MismatchedSlots() = %v, want [2]", got)
	}

	err = h.VerifyRanges(context.Background(), ranges[:1], table)
	if !errors.As(err, &mismatch) || mismatch.Diff.MissingSlots != 1 || !mismatch.Diff.LayoutMismatch {
		t.Errorf("VerifyRanges() on truncated input error = %v", err)
	}

	if err := h.VerifyRanges(context.Background(), ranges, nil); err == nil {
		t.Error("VerifyRanges() accepted nil table")
	}
}

func TestVerifySections(t *testing.T) {
	file := pattern(900)
	table := mustTable(t, [][]byte{file}, algorithm.SHA256, 128)

	if err := codehash.New().VerifySections(context.Background(),
		[]codehash.Section{codehash.NewSection(bytes.NewReader(file), 0, 900)}, table); err != nil {
		t.Errorf("VerifySections() error = %v", err)
	}

	changed := slices.Clone(file)
	changed[899] = ^changed[899]
	err := codehash.New().VerifySections(context.Background(),
		[]codehash.Section{codehash.NewSection(bytes.NewReader(changed), 0, 900)}, table)
	var mismatch *codehash.MismatchError
	if !errors.As(err, &mismatch) || !reflect.DeepEqual(mismatch.Diff.MismatchedSlots(), []int{7}) {
		t.Errorf("VerifySections() error = %v, want mismatch at slot 7", err)
	}
}

func TestVerifyPage(t *testing.T) {
	data := pattern(250)
	table := mustTable(t, [][]byte{data}, algorithm.SHA256Truncated, 100)

	tests := []struct {
		name         string
		page         []byte
		index        int
		wantMismatch bool
		wantErr      bool
	}{
		{"first page", data[:100], 0, false, false},
		{"trailing short page", data[200:], 2, false, false},
		{"page at wrong index", data[:100], 1, true, false},
		{"index out of range", data[:100], 3, false, true},
		{"empty page", nil, 0, false, true},
		{"oversized page", data[:101], 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := codehash.VerifyPage(tt.page, tt.index, table)
			var mismatch *codehash.MismatchError
			isMismatch := errors.As(err, &mismatch)
			switch {
			case tt.wantMismatch:
				if !isMismatch || mismatch.Diff.Mismatches[0].Slot != tt.index {
					t.Errorf("VerifyPage() error = %v, want mismatch at %d", err, tt.index)
				}
			case tt.wantErr:
				if err == nil || isMismatch {
					t.Errorf("VerifyPage() error = %v, want validation error", err)
				}
			default:
				if err != nil {
					t.Errorf("VerifyPage() error = %v", err)
				}
			}
		})
	}
}
