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
	"crypto/sha1" //nolint:gosec // SHA-1 code hashes are still emitted for older loaders
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
)

// NewSHA1Engine creates a SHA-1 engine seeded with initialData.
func NewSHA1Engine(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(algorithm.SHA1, stdHash(sha1.New), initialData)
}

// NewSHA256Engine creates a SHA-256 engine seeded with initialData.
func NewSHA256Engine(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(algorithm.SHA256, stdHash(sha256.New), initialData)
}

// NewSHA384Engine creates a SHA-384 engine seeded with initialData.
func NewSHA384Engine(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(algorithm.SHA384, stdHash(sha512.New384), initialData)
}

// NewSHA512Engine creates a SHA-512 engine seeded with initialData.
func NewSHA512Engine(initialData []byte) (*GenericHashEngine, error) {
	return NewGenericHashEngine(algorithm.SHA512, stdHash(sha512.New), initialData)
}

// NewSHA256TruncatedEngine creates a SHA-256 engine whose digests keep only
// the first 20 bytes.
func NewSHA256TruncatedEngine(initialData []byte) (*TruncatedEngine, error) {
	inner, err := NewSHA256Engine(initialData)
	if err != nil {
		return nil, err
	}
	return NewTruncatedEngine(algorithm.SHA256Truncated, inner)
}

func stdHash(newFn func() hash.Hash) HashFactoryFunc {
	return func() (hash.Hash, error) {
		return newFn(), nil
	}
}
