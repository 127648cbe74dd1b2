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

package hashengines

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
)

// ErrUnsupportedAlgorithm is returned when a Set has no factory for an algorithm.
var ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")

// EngineFactory creates a fresh engine with empty state.
type EngineFactory func() (StreamingHashEngine, error)

// Set is an immutable mapping from algorithm to engine factory.
//
// A Set is passed explicitly to whatever needs to create engines; there is no
// package level registry. Methods never modify the receiver.
type Set struct {
	factories map[algorithm.Algorithm]EngineFactory
}

// NewSet validates factories and returns a Set holding a copy of them.
func NewSet(factories map[algorithm.Algorithm]EngineFactory) (*Set, error) {
	for alg, f := range factories {
		if !alg.Valid() {
			return nil, fmt.Errorf("cannot register invalid algorithm %v", alg)
		}
		if f == nil {
			return nil, fmt.Errorf("factory for %v cannot be nil", alg)
		}
	}
	return &Set{factories: maps.Clone(factories)}, nil
}

// MustNewSet is NewSet that panics on error.
//
// Use it for package level defaults where a bad table is a programming error.
func MustNewSet(factories map[algorithm.Algorithm]EngineFactory) *Set {
	s, err := NewSet(factories)
	if err != nil {
		panic(fmt.Sprintf("invalid engine set: %v", err))
	}
	return s
}

// With returns a copy of s where alg is served by factory.
func (s *Set) With(alg algorithm.Algorithm, factory EngineFactory) (*Set, error) {
	next := make(map[algorithm.Algorithm]EngineFactory, len(s.factories)+1)
	maps.Copy(next, s.factories)
	next[alg] = factory
	return NewSet(next)
}

// Create returns a new engine for alg.
func (s *Set) Create(alg algorithm.Algorithm) (StreamingHashEngine, error) {
	factory, ok := s.factories[alg]
	if !ok {
		return nil, fmt.Errorf("%w: %v (supported: %v)", ErrUnsupportedAlgorithm, alg, s.Algorithms())
	}

	engine, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %v engine: %w", alg, err)
	}
	return engine, nil
}

// Supports reports whether s can create an engine for alg.
func (s *Set) Supports(alg algorithm.Algorithm) bool {
	_, ok := s.factories[alg]
	return ok
}

// Algorithms returns the algorithms in s in enumeration order.
func (s *Set) Algorithms() []algorithm.Algorithm {
	return slices.Sorted(maps.Keys(s.factories))
}
