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

// Package memory provides in-memory hash engines for every algorithm of the
// closed algorithm set.
package memory

import (
	"fmt"
	"hash"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
)

var _ hashengines.StreamingHashEngine = (*GenericHashEngine)(nil)

// HashFactoryFunc creates a new hash.Hash instance.
type HashFactoryFunc func() (hash.Hash, error)

// GenericHashEngine adapts any hash.Hash to StreamingHashEngine.
type GenericHashEngine struct {
	alg     algorithm.Algorithm
	factory HashFactoryFunc
	h       hash.Hash
}

// NewGenericHashEngine creates an engine for alg backed by factory.
//
// The factory's output size must match alg.OutputLength(); a mismatch is
// reported here rather than surfacing later as a malformed digest.
func NewGenericHashEngine(alg algorithm.Algorithm, factory HashFactoryFunc, initialData []byte) (*GenericHashEngine, error) {
	if !alg.Valid() {
		return nil, fmt.Errorf("invalid algorithm %v", alg)
	}
	h, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %v hash: %w", alg, err)
	}
	if h.Size() != alg.OutputLength() {
		return nil, fmt.Errorf("%v hash has size %d, want %d", alg, h.Size(), alg.OutputLength())
	}

	e := &GenericHashEngine{
		alg:     alg,
		factory: factory,
		h:       h,
	}
	e.Update(initialData)
	return e, nil
}

// Update appends data to the hash state.
func (e *GenericHashEngine) Update(data []byte) {
	if len(data) > 0 {
		// hash.Hash.Write never returns an error.
		_, _ = e.h.Write(data)
	}
}

// Reset clears the hash state and seeds it with data.
func (e *GenericHashEngine) Reset(data []byte) {
	e.h.Reset()
	e.Update(data)
}

// Compute finalizes the hash and returns the digest.
func (e *GenericHashEngine) Compute() (digests.Digest, error) {
	return digests.NewDigest(e.DigestName(), e.h.Sum(nil)), nil
}

// DigestName returns the canonical algorithm name.
func (e *GenericHashEngine) DigestName() string {
	return e.alg.String()
}

// DigestSize returns the digest length in bytes.
func (e *GenericHashEngine) DigestSize() int {
	return e.alg.OutputLength()
}

// Algorithm returns the algorithm this engine implements.
func (e *GenericHashEngine) Algorithm() algorithm.Algorithm {
	return e.alg
}
