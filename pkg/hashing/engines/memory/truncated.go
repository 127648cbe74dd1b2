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

package memory

import (
	"fmt"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
)

var _ hashengines.StreamingHashEngine = (*TruncatedEngine)(nil)

// TruncatedEngine keeps a prefix of another engine's output.
type TruncatedEngine struct {
	alg   algorithm.Algorithm
	inner hashengines.StreamingHashEngine
}

// NewTruncatedEngine wraps inner so that digests are cut to alg.OutputLength().
func NewTruncatedEngine(alg algorithm.Algorithm, inner hashengines.StreamingHashEngine) (*TruncatedEngine, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner engine must not be nil")
	}
	if !alg.Valid() || alg.OutputLength() > inner.DigestSize() {
		return nil, fmt.Errorf("cannot truncate %d byte %s digest to %v",
			inner.DigestSize(), inner.DigestName(), alg)
	}
	return &TruncatedEngine{alg: alg, inner: inner}, nil
}

// Update appends data to the inner hash state.
func (e *TruncatedEngine) Update(data []byte) {
	e.inner.Update(data)
}

// Reset clears the inner hash state and seeds it with data.
func (e *TruncatedEngine) Reset(data []byte) {
	e.inner.Reset(data)
}

// Compute finalizes the inner hash and returns its truncated output.
func (e *TruncatedEngine) Compute() (digests.Digest, error) {
	d, err := e.inner.Compute()
	if err != nil {
		return digests.Digest{}, err
	}
	return digests.NewDigest(e.DigestName(), d.Value()[:e.DigestSize()]), nil
}

// DigestName returns the canonical algorithm name.
func (e *TruncatedEngine) DigestName() string {
	return e.alg.String()
}

// DigestSize returns the truncated length.
func (e *TruncatedEngine) DigestSize() int {
	return e.alg.OutputLength()
}

// Algorithm returns the truncated algorithm.
func (e *TruncatedEngine) Algorithm() algorithm.Algorithm {
	return e.alg
}
