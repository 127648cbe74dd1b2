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

// Package config holds the hashing parameters shared by the CLI and
// library callers, and builds configured hashers from them.
package config

import (
	"context"
	"fmt"

	"github.com/sigstore/code-hashing/pkg/codehash"
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/logging"
	"github.com/sigstore/code-hashing/pkg/manifest"
)

const (
	// DefaultAlgorithm is used when no algorithm is configured.
	DefaultAlgorithm = "sha256"
	// DefaultPageSize is the conventional code signing page size.
	DefaultPageSize = 4096
)

// HashingConfig holds configuration for computing code hashes.
type HashingConfig struct {
	// Hash algorithm name (e.g., "sha256", "sha256-truncated")
	hashAlgorithm string

	// Page size in bytes
	pageSize int

	// Pages hashed at once; below 2 is sequential
	concurrency int

	// Read buffer size for file sections (0 = whole page at once)
	chunkSize int

	logger logging.Logger
}

// NewHashingConfig creates a new hashing configuration with defaults.
//
// Defaults: sha256, 4096-byte pages, sequential hashing, 64KB chunk size.
func NewHashingConfig() *HashingConfig {
	return &HashingConfig{
		hashAlgorithm: DefaultAlgorithm,
		pageSize:      DefaultPageSize,
		concurrency:   0,
		chunkSize:     codehash.DefaultChunkSize,
	}
}

// SetAlgorithm sets the hash algorithm by name. The name is checked by
// Validate.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetAlgorithm(name string) *HashingConfig {
	c.hashAlgorithm = name
	return c
}

// SetPageSize sets the page size in bytes.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetPageSize(size int) *HashingConfig {
	c.pageSize = size
	return c
}

// SetConcurrency sets how many pages are hashed at once.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetConcurrency(n int) *HashingConfig {
	c.concurrency = n
	return c
}

// SetChunkSize sets the read buffer size used when hashing file sections.
//
// A size of 0 means each page is read at once.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetChunkSize(size int) *HashingConfig {
	c.chunkSize = size
	return c
}

// SetLogger sets the logger handed to hashers built from this config.
//
// Returns the HashingConfig for method chaining.
func (c *HashingConfig) SetLogger(l logging.Logger) *HashingConfig {
	c.logger = l
	return c
}

// AlgorithmName returns the configured algorithm name.
func (c *HashingConfig) AlgorithmName() string {
	return c.hashAlgorithm
}

// Algorithm parses the configured algorithm name.
func (c *HashingConfig) Algorithm() (algorithm.Algorithm, error) {
	return algorithm.Parse(c.hashAlgorithm)
}

// PageSize returns the configured page size.
func (c *HashingConfig) PageSize() int {
	return c.pageSize
}

// Concurrency returns the configured concurrency.
func (c *HashingConfig) Concurrency() int {
	return c.concurrency
}

// ChunkSize returns the configured read buffer size.
func (c *HashingConfig) ChunkSize() int {
	return c.chunkSize
}

// Validate checks every field.
func (c *HashingConfig) Validate() error {
	if _, err := c.Algorithm(); err != nil {
		return err
	}
	if c.pageSize < 1 {
		return fmt.Errorf("%w, got %d", codehash.ErrInvalidPageSize, c.pageSize)
	}
	if c.concurrency < 0 {
		return fmt.Errorf("concurrency must be non-negative, got %d", c.concurrency)
	}
	if c.chunkSize < 0 {
		return fmt.Errorf("chunk size must be non-negative, got %d", c.chunkSize)
	}
	return nil
}

// NewHasher builds a codehash.Hasher from the configuration.
func (c *HashingConfig) NewHasher() (*codehash.Hasher, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return codehash.New(
		codehash.WithConcurrency(c.concurrency),
		codehash.WithChunkSize(c.chunkSize),
		codehash.WithLogger(c.logger),
	), nil
}

// Hash computes the code hashes table of sections.
func (c *HashingConfig) Hash(ctx context.Context, sections []codehash.Section) (*manifest.CodeHashes, error) {
	hasher, err := c.NewHasher()
	if err != nil {
		return nil, err
	}
	alg, err := c.Algorithm()
	if err != nil {
		return nil, err
	}
	return hasher.SectionTable(ctx, sections, alg, c.pageSize)
}
