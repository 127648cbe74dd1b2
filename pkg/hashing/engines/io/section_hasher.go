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

// Package io provides hash engines that pull their input from an
// io.ReaderAt instead of from in-memory buffers.
package io

import (
	"errors"
	"fmt"
	"io"

	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
)

// SectionHasher hashes one page: the [start, end) interval of an io.ReaderAt.
//
// The interval may not be longer than pageSize. A short read (the source
// ends before end) is an error, never a silently shorter page.
type SectionHasher struct {
	source        io.ReaderAt
	contentHasher hashengines.StreamingHashEngine
	chunkSize     int

	start    int64
	end      int64
	pageSize int64
}

// NewSectionHasher constructs a SectionHasher for [start, end) of source.
//
//   - contentHasher: engine used for the page contents
//   - chunkSize: read buffer size; 0 reads the whole page in one go
//   - pageSize: upper bound on end-start
func NewSectionHasher(
	source io.ReaderAt,
	contentHasher hashengines.StreamingHashEngine,
	start, end int64,
	chunkSize int,
	pageSize int64,
) (*SectionHasher, error) {
	if source == nil {
		return nil, fmt.Errorf("source must not be nil")
	}
	if contentHasher == nil {
		return nil, fmt.Errorf("content hasher must not be nil")
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be non-negative, got %d", chunkSize)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be strictly positive, got %d", pageSize)
	}

	h := &SectionHasher{
		source:        source,
		contentHasher: contentHasher,
		chunkSize:     chunkSize,
		pageSize:      pageSize,
	}
	if err := h.SetSection(start, end); err != nil {
		return nil, err
	}
	return h, nil
}

// SetSection redefines the interval hashed by the next Compute call.
func (h *SectionHasher) SetSection(start, end int64) error {
	if start < 0 {
		return fmt.Errorf("section start offset must be non-negative, got %d", start)
	}
	if end <= start {
		return fmt.Errorf("section end offset must be strictly greater than start, got start=%d, end=%d", start, end)
	}
	if end-start > h.pageSize {
		return fmt.Errorf("must not read more than pageSize=%d, got %d", h.pageSize, end-start)
	}

	h.start = start
	h.end = end
	return nil
}

// PageSize returns the configured upper bound on the section length.
func (h *SectionHasher) PageSize() int64 {
	return h.pageSize
}

// DigestName is delegated to the content hasher. Page digests carry the
// plain algorithm name so they compare equal to in-memory page digests.
func (h *SectionHasher) DigestName() string {
	return h.contentHasher.DigestName()
}

// DigestSize is delegated to the content hasher.
func (h *SectionHasher) DigestSize() int {
	return h.contentHasher.DigestSize()
}

// Compute hashes the configured section.
func (h *SectionHasher) Compute() (digests.Digest, error) {
	h.contentHasher.Reset(nil)

	length := h.end - h.start
	section := io.NewSectionReader(h.source, h.start, length)
	counted := &countingReader{r: section}

	if err := feed(h.contentHasher, counted, h.chunkSize); err != nil {
		return digests.Digest{}, fmt.Errorf("read section [%d:%d]: %w", h.start, h.end, err)
	}
	if counted.n != length {
		return digests.Digest{}, fmt.Errorf("read section [%d:%d]: %w (got %d of %d bytes)",
			h.start, h.end, io.ErrUnexpectedEOF, counted.n, length)
	}

	d, err := h.contentHasher.Compute()
	if err != nil {
		return digests.Digest{}, fmt.Errorf("compute section digest: %w", err)
	}
	return d, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// feed copies r into engine, chunkSize bytes at a time.
func feed(engine hashengines.Streaming, r io.Reader, chunkSize int) error {
	if chunkSize == 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		engine.Update(data)
		return nil
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			engine.Update(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}
