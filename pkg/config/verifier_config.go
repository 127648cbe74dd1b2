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

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sigstore/code-hashing/pkg/codehash"
	"github.com/sigstore/code-hashing/pkg/logging"
	"github.com/sigstore/code-hashing/pkg/manifest"
)

// VerifierConfig checks sections against a stored code hashes table.
//
// By default the algorithm and page size are taken from the table. Setting
// a HashingConfig pins them instead, so a table produced with different
// parameters is reported as a mismatch.
type VerifierConfig struct {
	hashingConfig *HashingConfig
	concurrency   int
	chunkSize     int
	logger        logging.Logger
}

// NewVerifierConfig creates a new verification configuration with defaults.
func NewVerifierConfig() *VerifierConfig {
	return &VerifierConfig{chunkSize: codehash.DefaultChunkSize}
}

// SetHashingConfig pins the hashing parameters.
//
// After calling this method, the parameters are no longer taken from the
// table.
func (c *VerifierConfig) SetHashingConfig(hashingConfig *HashingConfig) *VerifierConfig {
	c.hashingConfig = hashingConfig
	return c
}

// SetConcurrency sets concurrency for hashing when parameters come from
// the table.
func (c *VerifierConfig) SetConcurrency(n int) *VerifierConfig {
	c.concurrency = n
	return c
}

// SetChunkSize sets the read buffer size when parameters come from the
// table. It does not affect the digests.
func (c *VerifierConfig) SetChunkSize(size int) *VerifierConfig {
	c.chunkSize = size
	return c
}

// SetLogger sets the logger used when parameters come from the table.
func (c *VerifierConfig) SetLogger(l logging.Logger) *VerifierConfig {
	c.logger = l
	return c
}

// Verify hashes sections and compares the result with the table stored at
// tablePath. A difference is returned as a *codehash.MismatchError.
func (c *VerifierConfig) Verify(ctx context.Context, sections []codehash.Section, tablePath string) error {
	expected, err := manifest.ReadFile(tablePath)
	if err != nil {
		return err
	}
	return c.VerifyTable(ctx, sections, expected)
}

// VerifyTable is Verify with the table already loaded.
func (c *VerifierConfig) VerifyTable(ctx context.Context, sections []codehash.Section, expected *manifest.CodeHashes) error {
	if expected == nil {
		return errors.New("expected table must not be nil")
	}

	hashingConfig := c.hashingConfig
	if hashingConfig == nil {
		hashingConfig = guessHashingConfig(expected).
			SetConcurrency(c.concurrency).
			SetChunkSize(c.chunkSize).
			SetLogger(c.logger)
	}

	actual, err := hashingConfig.Hash(ctx, sections)
	if err != nil {
		return fmt.Errorf("failed to hash sections: %w", err)
	}

	if diff := manifest.ComputeDiff(actual, expected); !diff.IsEmpty() {
		return &codehash.MismatchError{Diff: diff}
	}
	return nil
}

// guessHashingConfig derives hashing parameters from a table.
func guessHashingConfig(table *manifest.CodeHashes) *HashingConfig {
	return NewHashingConfig().
		SetAlgorithm(table.Algorithm().String()).
		SetPageSize(table.PageSize())
}
