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
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
)

// BLAKE2 is a GenericHashEngine configured for unkeyed BLAKE2b-512.
type BLAKE2 = GenericHashEngine

// NewBLAKE2 creates a BLAKE2b-512 engine seeded with initialData.
func NewBLAKE2(initialData []byte) (*BLAKE2, error) {
	return NewGenericHashEngine(
		algorithm.BLAKE2b512,
		func() (hash.Hash, error) {
			return blake2b.New512(nil)
		},
		initialData,
	)
}

// NewBLAKE3 creates an unkeyed BLAKE3 engine with 32 byte output.
func NewBLAKE3(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(
		algorithm.BLAKE3,
		func() (hash.Hash, error) {
			return blake3.New(), nil
		},
		initialData,
	)
}
