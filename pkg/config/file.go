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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the file form of a HashingConfig. Absent keys keep their
// defaults.
type fileConfig struct {
	Algorithm   *string `yaml:"algorithm" toml:"algorithm"`
	PageSize    *int    `yaml:"page_size" toml:"page_size"`
	Concurrency *int    `yaml:"concurrency" toml:"concurrency"`
	ChunkSize   *int    `yaml:"chunk_size" toml:"chunk_size"`
}

// LoadHashingConfig reads a hashing configuration from path, applies it
// over the defaults and validates the result. Files ending in .toml are
// TOML, anything else is YAML. Unknown keys are an error.
//
//	algorithm: sha256-truncated
//	page_size: 4096
//	concurrency: 8
//	chunk_size: 65536
func LoadHashingConfig(path string) (*HashingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parse := ParseHashingConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseHashingConfigTOML
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseHashingConfig is LoadHashingConfig for YAML already in memory.
func ParseHashingConfig(data []byte) (*HashingConfig, error) {
	var raw fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return raw.apply()
}

// ParseHashingConfigTOML is ParseHashingConfig for TOML.
func ParseHashingConfigTOML(data []byte) (*HashingConfig, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return raw.apply()
}

func (raw fileConfig) apply() (*HashingConfig, error) {
	cfg := NewHashingConfig()
	if raw.Algorithm != nil {
		cfg.SetAlgorithm(*raw.Algorithm)
	}
	if raw.PageSize != nil {
		cfg.SetPageSize(*raw.PageSize)
	}
	if raw.Concurrency != nil {
		cfg.SetConcurrency(*raw.Concurrency)
	}
	if raw.ChunkSize != nil {
		cfg.SetChunkSize(*raw.ChunkSize)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
