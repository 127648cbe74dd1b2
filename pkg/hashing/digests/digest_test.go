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

package digests

import (
	"bytes"
	"testing"
)

func TestNewDigestCopiesInput(t *testing.T) {
	raw := []byte{1, 2, 3}
	d := NewDigest("sha256", raw)
	raw[0] = 9

	if got := d.Value(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Value() = %v, want [1 2 3]", got)
	}

	out := d.Value()
	out[1] = 9
	if d.Hex() != "010203" {
		t.Errorf("Hex() = %q after mutating Value() result", d.Hex())
	}
}

func TestEqual(t *testing.T) {
	a := NewDigest("sha256", []byte{0xaa, 0xbb})
	tests := []struct {
		name  string
		other Digest
		want  bool
	}{
		{"identical", NewDigest("sha256", []byte{0xaa, 0xbb}), true},
		{"different algorithm", NewDigest("sha1", []byte{0xaa, 0xbb}), false},
		{"different bytes", NewDigest("sha256", []byte{0xaa, 0xbc}), false},
		{"different length", NewDigest("sha256", []byte{0xaa}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromHex(t *testing.T) {
	d, err := FromHex("sha1", "00ff")
	if err != nil {
		t.Fatalf("FromHex() error = %v", err)
	}
	if d.String() != "sha1:00ff" {
		t.Errorf("String() = %q, want sha1:00ff", d.String())
	}

	if _, err := FromHex("sha1", "zz"); err == nil {
		t.Error("FromHex() with invalid hex should fail")
	}
}

func TestValuesAndConcatPreserveOrder(t *testing.T) {
	list := []Digest{
		NewDigest("x", []byte{1}),
		NewDigest("x", []byte{2, 3}),
		NewDigest("x", []byte{4}),
	}

	vals := Values(list)
	if len(vals) != 3 || vals[0][0] != 1 || vals[1][1] != 3 || vals[2][0] != 4 {
		t.Errorf("Values() = %v", vals)
	}

	if got := Concat(list); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Concat() = %v, want [1 2 3 4]", got)
	}

	if got := Values(nil); len(got) != 0 {
		t.Errorf("Values(nil) = %v, want empty", got)
	}
}
