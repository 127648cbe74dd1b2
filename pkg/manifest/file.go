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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Format names an encoding of a CodeHashes table.
type Format string

const (
	// FormatJSON is indented JSON with hex slots.
	FormatJSON Format = "json"
	// FormatCBOR is core deterministic CBOR with byte string slots.
	FormatCBOR Format = "cbor"
)

// ParseFormat parses a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatJSON, FormatCBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown table format %q (want %q or %q)", name, FormatJSON, FormatCBOR)
	}
}

// Encode serializes c in the given format.
func Encode(c *CodeHashes, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		return EncodeCBOR(c)
	default:
		return nil, fmt.Errorf("unknown table format %q", format)
	}
}

// Decode parses a table in either format. Input starting with '{' (after
// whitespace) is JSON; anything else is CBOR.
func Decode(data []byte) (*CodeHashes, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return DecodeJSON(trimmed)
	}
	return DecodeCBOR(data)
}

// ReadFile loads a table written by WriteFile.
func ReadFile(path string) (*CodeHashes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read code hashes: %w", err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code hashes from %s: %w", path, err)
	}
	return c, nil
}

// WriteFile writes c to path in the given format.
func WriteFile(path string, c *CodeHashes, format Format) error {
	data, err := Encode(c, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write code hashes: %w", err)
	}
	return nil
}
