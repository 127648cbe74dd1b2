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

// Package digests provides the value type for a single computed digest.
//
// A Digest pairs the name of the algorithm that produced it with the raw
// output bytes. The bytes are copied on the way in and on the way out, so a
// Digest can be shared between goroutines without synchronization.
package digests

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Digest is an immutable digest value.
type Digest struct {
	algorithm string
	value     []byte
}

// NewDigest copies value and returns a Digest tagged with algorithm.
func NewDigest(algorithm string, value []byte) Digest {
	return Digest{
		algorithm: algorithm,
		value:     bytes.Clone(value),
	}
}

// FromHex decodes a hex string into a Digest.
func FromHex(algorithm, hexValue string) (Digest, error) {
	raw, err := hex.DecodeString(hexValue)
	if err != nil {
		return Digest{}, fmt.Errorf("decode %s digest: %w", algorithm, err)
	}
	return Digest{algorithm: algorithm, value: raw}, nil
}

// Algorithm returns the name of the algorithm that produced the digest.
func (d Digest) Algorithm() string {
	return d.algorithm
}

// Value returns a copy of the raw digest bytes.
func (d Digest) Value() []byte {
	return bytes.Clone(d.value)
}

// Hex returns the lowercase hex encoding of the digest bytes.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.value)
}

// Size returns the digest length in bytes.
func (d Digest) Size() int {
	return len(d.value)
}

// IsZero reports whether the digest holds no bytes.
func (d Digest) IsZero() bool {
	return len(d.value) == 0
}

// String formats the digest as "algorithm:hex".
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.algorithm, d.Hex())
}

// Equal reports whether both the algorithm name and the bytes match.
func (d Digest) Equal(other Digest) bool {
	return d.algorithm == other.algorithm && bytes.Equal(d.value, other.value)
}

// Values returns the raw bytes of every digest in list, preserving order.
//
// This is the flat form handed to code signature builders.
func Values(list []Digest) [][]byte {
	out := make([][]byte, len(list))
	for i, d := range list {
		out[i] = d.Value()
	}
	return out
}

// Concat writes the bytes of every digest in list back to back.
func Concat(list []Digest) []byte {
	n := 0
	for _, d := range list {
		n += len(d.value)
	}
	buf := make([]byte, 0, n)
	for _, d := range list {
		buf = append(buf, d.value...)
	}
	return buf
}
