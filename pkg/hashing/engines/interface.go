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

// Package hashengines defines the hash engine interfaces used by the code
// hashing packages and the immutable engine Set that maps each algorithm of
// the closed algorithm set to a factory.
package hashengines

import (
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
)

// HashEngine computes a digest.
type HashEngine interface {
	// Compute finalizes the hash computation and returns the digest.
	// An error means the underlying primitive failed; no digest is usable.
	Compute() (digests.Digest, error)

	// DigestName returns the canonical name of the hash algorithm. It is
	// copied into the algorithm field of the Digest returned by Compute.
	DigestName() string

	// DigestSize returns the size in bytes of digests produced by this engine.
	DigestSize() int
}

// Streaming feeds data to a hash engine incrementally.
type Streaming interface {
	// Update appends bytes to the data being hashed.
	Update(data []byte)

	// Reset clears the hash state and seeds it with data.
	Reset(data []byte)
}

// StreamingHashEngine combines HashEngine and Streaming.
type StreamingHashEngine interface {
	HashEngine
	Streaming

	// Algorithm returns the member of the closed set this engine implements.
	Algorithm() algorithm.Algorithm
}
