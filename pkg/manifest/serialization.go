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

package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
)

// jsonTable is the JSON form of a CodeHashes table. Slots are hex strings.
type jsonTable struct {
	Algorithm  string   `json:"algorithm"`
	PageSize   int      `json:"pageSize"`
	RangePages []int    `json:"rangePages"`
	Slots      []string `json:"slots"`
}

// cborTable is the CBOR form of a CodeHashes table. Slots are byte strings.
type cborTable struct {
	Algorithm  string   `cbor:"algorithm"`
	PageSize   int      `cbor:"pageSize"`
	RangePages []int    `cbor:"rangePages"`
	Slots      [][]byte `cbor:"slots"`
}

// cborEncMode uses Core Deterministic Encoding (RFC 8949 section 4.2) so
// that equal tables always encode to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
}

// MarshalJSON implements json.Marshaler.
func (c *CodeHashes) MarshalJSON() ([]byte, error) {
	slots := make([]string, len(c.slots))
	for i, d := range c.slots {
		slots[i] = d.Hex()
	}
	return json.Marshal(jsonTable{
		Algorithm:  c.algorithm.String(),
		PageSize:   c.pageSize,
		RangePages: nonNil(c.rangePages),
		Slots:      slots,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CodeHashes) UnmarshalJSON(data []byte) error {
	var t jsonTable
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("decode code hashes: %w", err)
	}

	alg, err := algorithm.Parse(t.Algorithm)
	if err != nil {
		return err
	}
	slots := make([]digests.Digest, len(t.Slots))
	for i, h := range t.Slots {
		if slots[i], err = digests.FromHex(alg.String(), h); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return c.assign(alg, t.PageSize, t.RangePages, slots)
}

// MarshalCBOR implements cbor.Marshaler.
func (c *CodeHashes) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(cborTable{
		Algorithm:  c.algorithm.String(),
		PageSize:   c.pageSize,
		RangePages: nonNil(c.rangePages),
		Slots:      c.Values(),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (c *CodeHashes) UnmarshalCBOR(data []byte) error {
	var t cborTable
	if err := cbor.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("decode code hashes: %w", err)
	}

	alg, err := algorithm.Parse(t.Algorithm)
	if err != nil {
		return err
	}
	slots := make([]digests.Digest, len(t.Slots))
	for i, raw := range t.Slots {
		slots[i] = digests.NewDigest(alg.String(), raw)
	}
	return c.assign(alg, t.PageSize, t.RangePages, slots)
}

// EncodeCBOR returns the deterministic CBOR encoding of c.
func EncodeCBOR(c *CodeHashes) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// DecodeCBOR parses a table produced by EncodeCBOR.
func DecodeCBOR(data []byte) (*CodeHashes, error) {
	c := &CodeHashes{}
	if err := cbor.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeJSON parses a table produced by json.Marshal.
func DecodeJSON(data []byte) (*CodeHashes, error) {
	c := &CodeHashes{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// assign validates the decoded fields through New and copies them into c.
func (c *CodeHashes) assign(alg algorithm.Algorithm, pageSize int, rangePages []int, slots []digests.Digest) error {
	table, err := New(alg, pageSize, rangePages, slots)
	if err != nil {
		return fmt.Errorf("invalid code hashes: %w", err)
	}
	*c = *table
	return nil
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
