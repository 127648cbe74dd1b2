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

// Package codehash computes page digests ("code hashes") of the digestable
// regions of a binary.
//
// Each region is split into pages of a fixed size, the last one possibly
// shorter, and every page is hashed on its own. The digests of all regions
// are concatenated in input order into one flat list, so the digest at
// index i belongs to the i-th page of the regions laid end to end.
//
// Either the complete list is returned or an error; partial results are
// never returned.
package codehash

import (
	"context"
	"fmt"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
	"github.com/sigstore/code-hashing/pkg/hashing/engines/memory"
	"github.com/sigstore/code-hashing/pkg/logging"
	"github.com/sigstore/code-hashing/pkg/tracing"
)

// DefaultChunkSize is the read buffer size used when hashing sections of
// an io.ReaderAt.
const DefaultChunkSize = 64 * 1024

// Hasher computes code hashes with an explicit engine set.
//
// A Hasher holds no mutable state and may be shared between goroutines.
type Hasher struct {
	engines     *hashengines.Set
	concurrency int
	chunkSize   int
	logger      logging.Logger
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithEngines sets the engines used to hash pages. Defaults to
// memory.Engines().
func WithEngines(set *hashengines.Set) Option {
	return func(h *Hasher) {
		if set != nil {
			h.engines = set
		}
	}
}

// WithConcurrency sets how many pages are hashed at once. Values below 2
// hash sequentially. Output order does not depend on this setting.
func WithConcurrency(n int) Option {
	return func(h *Hasher) {
		h.concurrency = n
	}
}

// WithChunkSize sets the read buffer size for section hashing. 0 reads a
// whole page at a time.
func WithChunkSize(n int) Option {
	return func(h *Hasher) {
		if n >= 0 {
			h.chunkSize = n
		}
	}
}

// WithLogger sets the logger. Only debug messages are emitted.
func WithLogger(l logging.Logger) Option {
	return func(h *Hasher) {
		h.logger = l
	}
}

// New creates a Hasher. Without options it hashes sequentially with the
// default engine set.
func New(opts ...Option) *Hasher {
	h := &Hasher{
		engines:   memory.Engines(),
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	return h
}

var defaultHasher = New()

// ComputePagedHashes hashes data page by page with the default Hasher.
func ComputePagedHashes(data []byte, alg algorithm.Algorithm, pageSize int) ([]digests.Digest, error) {
	return defaultHasher.PagedHashes(context.Background(), data, alg, pageSize)
}

// ComputeRangeHashes hashes every range page by page with the default
// Hasher and concatenates the results in input order.
func ComputeRangeHashes(ranges [][]byte, alg algorithm.Algorithm, pageSize int) ([]digests.Digest, error) {
	return defaultHasher.RangeHashes(context.Background(), ranges, alg, pageSize)
}

// PageCount returns the number of pages of a region of the given length,
// ceil(length / pageSize). It returns 0 when pageSize < 1.
func PageCount(length, pageSize int) int {
	if pageSize < 1 || length <= 0 {
		return 0
	}
	return (length + pageSize - 1) / pageSize
}

// PagedHashes splits data into pages of pageSize bytes and returns one
// digest per page in order. Empty data yields an empty list.
func (h *Hasher) PagedHashes(ctx context.Context, data []byte, alg algorithm.Algorithm, pageSize int) ([]digests.Digest, error) {
	return h.RangeHashes(ctx, [][]byte{data}, alg, pageSize)
}

// RangeHashes hashes every range page by page and concatenates the
// per-range digests in input order. Ranges are never reordered or
// deduplicated; empty ranges contribute no digests.
func (h *Hasher) RangeHashes(ctx context.Context, ranges [][]byte, alg algorithm.Algorithm, pageSize int) ([]digests.Digest, error) {
	if err := validate(alg, pageSize); err != nil {
		return nil, err
	}

	var jobs []page
	for r, data := range ranges {
		for p := 0; p*pageSize < len(data); p++ {
			start := p * pageSize
			end := min(start+pageSize, len(data))
			jobs = append(jobs, page{rangeIndex: r, pageIndex: p, data: data[start:end]})
		}
	}

	var out []digests.Digest
	err := tracing.Run(ctx, "codehash.RangeHashes", map[string]interface{}{
		"algorithm": alg.String(),
		"page_size": pageSize,
		"ranges":    len(ranges),
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

func validate(alg algorithm.Algorithm, pageSize int) error {
	if pageSize < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidPageSize, pageSize)
	}
	if !alg.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, alg)
	}
	return nil
}
