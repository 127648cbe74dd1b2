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

// Package algorithm defines the closed set of digest algorithms that can be
// used to compute code hashes.
//
// The set is fixed at compile time. Code signing formats standardize a short
// list of digest types, so adding one here is a deliberate change and there
// is no runtime registration.
package algorithm

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm identifies a digest algorithm.
//
// The zero value, None, is not a usable algorithm.
type Algorithm uint8

const (
	// None is the zero value and is never valid for hashing.
	None Algorithm = iota
	// SHA1 is SHA-1 with a 20 byte output.
	SHA1
	// SHA256 is SHA-256 with a 32 byte output.
	SHA256
	// SHA256Truncated is SHA-256 truncated to its first 20 bytes.
	SHA256Truncated
	// SHA384 is SHA-384 with a 48 byte output.
	SHA384
	// SHA512 is SHA-512 with a 64 byte output.
	SHA512
	// BLAKE2b512 is unkeyed BLAKE2b with a 64 byte output.
	BLAKE2b512
	// BLAKE3 is unkeyed BLAKE3 with a 32 byte output.
	BLAKE3
)

// ErrUnknownAlgorithm is returned when parsing a name outside the closed set.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

type info struct {
	name   string
	length int
	// cdType is the Mach-O CodeDirectory hashType value; 0 means none.
	cdType uint8
}

var table = [...]info{
	None:            {name: "none"},
	SHA1:            {name: "sha1", length: 20, cdType: 1},
	SHA256:          {name: "sha256", length: 32, cdType: 2},
	SHA256Truncated: {name: "sha256-truncated", length: 20, cdType: 3},
	SHA384:          {name: "sha384", length: 48, cdType: 4},
	SHA512:          {name: "sha512", length: 64, cdType: 5},
	BLAKE2b512:      {name: "blake2b", length: 64},
	BLAKE3:          {name: "blake3", length: 32},
}

var aliases = map[string]Algorithm{
	"sha-1":            SHA1,
	"sha-256":          SHA256,
	"sha256_truncated": SHA256Truncated,
	"sha256-20":        SHA256Truncated,
	"sha-384":          SHA384,
	"sha-512":          SHA512,
	"blake2b-512":      BLAKE2b512,
}

// All returns every valid algorithm in declaration order.
func All() []Algorithm {
	out := make([]Algorithm, 0, len(table)-1)
	for a := SHA1; int(a) < len(table); a++ {
		out = append(out, a)
	}
	return out
}

// Valid reports whether a is a member of the closed set (and not None).
func (a Algorithm) Valid() bool {
	return a != None && int(a) < len(table)
}

// String returns the canonical lowercase name of the algorithm.
func (a Algorithm) String() string {
	if int(a) >= len(table) {
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
	return table[a].name
}

// OutputLength returns the digest length in bytes, or 0 for an invalid value.
func (a Algorithm) OutputLength() int {
	if !a.Valid() {
		return 0
	}
	return table[a].length
}

// CodeDirectoryHashType returns the hashType byte used for this algorithm in
// a Mach-O code directory. BLAKE variants have no such encoding.
func (a Algorithm) CodeDirectoryHashType() (uint8, bool) {
	if !a.Valid() || table[a].cdType == 0 {
		return 0, false
	}
	return table[a].cdType, true
}

// Parse resolves a case-insensitive algorithm name.
func Parse(name string) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for a := SHA1; int(a) < len(table); a++ {
		if table[a].name == n {
			return a, nil
		}
	}
	if a, ok := aliases[n]; ok {
		return a, nil
	}
	return None, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
}

// Names returns the canonical names of every valid algorithm.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.String()
	}
	return names
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid algorithm %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
