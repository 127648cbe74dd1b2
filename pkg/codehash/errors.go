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

package codehash

import (
	"errors"
	"fmt"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
	"github.com/sigstore/code-hashing/pkg/manifest"
)

var (
	// ErrInvalidPageSize is returned when the page size is less than 1.
	ErrInvalidPageSize = errors.New("page size must be at least 1")

	// ErrUnsupportedAlgorithm is returned for algorithms outside the closed
	// set, and wrapped inside a HashingError when the engine set has no
	// implementation for an otherwise valid algorithm.
	ErrUnsupportedAlgorithm = hashengines.ErrUnsupportedAlgorithm
)

// HashingError reports a failure of the digest primitive. When it is
// returned no digests are returned with it.
//
// Range and Page locate the failing page; both are -1 when the failure
// happened before any page was hashed, for example when the engine could
// not be created.
type HashingError struct {
	Algorithm algorithm.Algorithm
	Range     int
	Page      int
	Err       error
}

func (e *HashingError) Error() string {
	if e.Range < 0 {
		return fmt.Sprintf("%v hashing failed: %v", e.Algorithm, e.Err)
	}
	return fmt.Sprintf("%v hashing failed at range %d page %d: %v", e.Algorithm, e.Range, e.Page, e.Err)
}

func (e *HashingError) Unwrap() error {
	return e.Err
}

// MismatchError is returned by verification when recomputed page digests
// differ from a stored table.
type MismatchError struct {
	Diff *manifest.Diff
}

func (e *MismatchError) Error() string {
	return "code hashes do not match: " + e.Diff.String()
}
