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
	"io"

	"fortio.org/safecast"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	"github.com/sigstore/code-hashing/pkg/tracing"
)

// Section is a digestable region read from an io.ReaderAt, typically an
// open file. The reader must hold at least Offset+Length bytes.
type Section struct {
	Reader io.ReaderAt
	Offset int64
	Length int64
}

// NewSection returns a Section covering [offset, offset+length) of r.
func NewSection(r io.ReaderAt, offset, length int64) Section {
	return Section{Reader: r, Offset: offset, Length: length}
}

func (s Section) validate() error {
	if s.Reader == nil {
		return errors.New("reader must not be nil")
	}
	if s.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", s.Offset)
	}
	if s.Length < 0 {
		return fmt.Errorf("length must be non-negative, got %d", s.Length)
	}
	return nil
}

// pages splits s into page jobs for range r.
func (s Section) pages(r, pageSize int) ([]page, error) {
	size := int64(pageSize)
	n, err := safecast.Conv[int]((s.Length + size - 1) / size)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	jobs := make([]page, n)
	for p := range jobs {
		start := s.Offset + int64(p)*size
		jobs[p] = page{
			rangeIndex: r,
			pageIndex:  p,
			source:     s.Reader,
			start:      start,
			end:        min(start+size, s.Offset+s.Length),
		}
	}
	return jobs, nil
}

// SectionHashes is RangeHashes for regions that are read on demand. Pages
// are read one at a time, so a region is never held in memory as a whole.
// The result equals RangeHashes over the same bytes.
//
// A section whose reader ends early fails with a HashingError.
func (h *Hasher) SectionHashes(ctx context.Context, sections []Section, alg algorithm.Algorithm, pageSize int) ([]digests.Digest, error) {
	if err := validate(alg, pageSize); err != nil {
		return nil, err
	}

	var jobs []page
	for i, s := range sections {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		p, err := s.pages(i, pageSize)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		jobs = append(jobs, p...)
	}

	var out []digests.Digest
	err := tracing.Run(ctx, "codehash.SectionHashes", map[string]interface{}{
		"algorithm": alg.String(),
		"page_size": pageSize,
		"sections":  len(sections),
		"pages":     len(jobs),
	}, func(ctx context.Context) error {
		var err error
		out, err = h.run(ctx, alg, jobs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
