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

	"github.com/sigstore/code-hashing/pkg/hashing/digests"
)

// ComputeRootDigest computes SHA-256 over the raw bytes of digestList, in order.
//
// It gives a single fingerprint for a whole code hash table, handy for
// logging and for comparing two tables without walking every slot.
func ComputeRootDigest(digestList []digests.Digest) (digests.Digest, error) {
	hasher, err := NewSHA256Engine(nil)
	if err != nil {
		return digests.Digest{}, fmt.Errorf("failed to create SHA256 hasher: %w", err)
	}

	for _, d := range digestList {
		hasher.Update(d.Value())
	}

	root, err := hasher.Compute()
	if err != nil {
		return digests.Digest{}, fmt.Errorf("failed to compute root digest: %w", err)
	}
	return root, nil
}
