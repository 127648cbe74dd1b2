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
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
)

var defaultEngines = hashengines.MustNewSet(map[algorithm.Algorithm]hashengines.EngineFactory{
	algorithm.SHA1:            wrap(NewSHA1Engine),
	algorithm.SHA256:          wrap(NewSHA256Engine),
	algorithm.SHA256Truncated: wrap(NewSHA256TruncatedEngine),
	algorithm.SHA384:          wrap(NewSHA384Engine),
	algorithm.SHA512:          wrap(NewSHA512Engine),
	algorithm.BLAKE2b512:      wrap(NewBLAKE2),
	algorithm.BLAKE3:          wrap(NewBLAKE3),
})

// Engines returns the engine set covering every algorithm.
//
// The returned Set is immutable and shared.
func Engines() *hashengines.Set {
	return defaultEngines
}

// NewEngine creates an engine for alg from the default set.
func NewEngine(alg algorithm.Algorithm) (hashengines.StreamingHashEngine, error) {
	return defaultEngines.Create(alg)
}

func wrap[E hashengines.StreamingHashEngine](ctor func([]byte) (E, error)) hashengines.EngineFactory {
	return func() (hashengines.StreamingHashEngine, error) {
		e, err := ctor(nil)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}
