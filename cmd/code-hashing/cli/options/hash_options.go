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

package options

import (
	"github.com/spf13/cobra"

	"github.com/sigstore/code-hashing/pkg/config"
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/manifest"
	"github.com/sigstore/code-hashing/pkg/utils"
)

// FlagAdder is implemented by any flag group that can register itself to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// HashingFlags selects the hashing parameters.
type HashingFlags struct {
	// ConfigPath points to a YAML hashing configuration.
	ConfigPath string
	// Algorithm is the digest algorithm name.
	Algorithm string
	// PageSize is the page size in bytes.
	PageSize int
	// Concurrency is the number of pages hashed at once.
	Concurrency int
	// ChunkSize is the read buffer size.
	ChunkSize int
}

// AddFlags adds hashing flags to the cobra command.
func (o *HashingFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "YAML or TOML file with hashing parameters; flags override it.")
	_ = cmd.MarkFlagFilename("config", "yaml", "yml", "toml")

	cmd.Flags().StringVarP(&o.Algorithm, "algorithm", "a", config.DefaultAlgorithm, "Digest algorithm.")
	_ = cmd.RegisterFlagCompletionFunc("algorithm", fixedCompletion(algorithm.Names()))

	cmd.Flags().IntVarP(&o.PageSize, "page-size", "p", config.DefaultPageSize, "Page size in bytes.")
	cmd.Flags().IntVarP(&o.Concurrency, "concurrency", "j", 0, "Pages hashed at once; 0 or 1 hashes sequentially.")
	cmd.Flags().IntVar(&o.ChunkSize, "chunk-size", 64*1024, "Read buffer size in bytes; 0 reads a whole page at once.")
}

// Changed reports whether a parameter that affects the digests was set,
// either by flag or through a config file. Concurrency and chunk size do not
// count.
func (o *HashingFlags) Changed(cmd *cobra.Command) bool {
	f := cmd.Flags()
	return o.ConfigPath != "" || f.Changed("algorithm") || f.Changed("page-size")
}

// HashingConfig loads the config file, if any, and applies the flags that
// were set over it.
func (o *HashingFlags) HashingConfig(cmd *cobra.Command) (*config.HashingConfig, error) {
	if err := utils.ValidateOptionalFile("config", o.ConfigPath); err != nil {
		return nil, err
	}
	cfg := config.NewHashingConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadHashingConfig(o.ConfigPath); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if o.ConfigPath == "" || f.Changed("algorithm") {
		cfg.SetAlgorithm(o.Algorithm)
	}
	if o.ConfigPath == "" || f.Changed("page-size") {
		cfg.SetPageSize(o.PageSize)
	}
	if o.ConfigPath == "" || f.Changed("concurrency") {
		cfg.SetConcurrency(o.Concurrency)
	}
	if o.ConfigPath == "" || f.Changed("chunk-size") {
		cfg.SetChunkSize(o.ChunkSize)
	}
	return cfg, cfg.Validate()
}

// HashOptions is the set of options for the hash command.
type HashOptions struct {
	HashingFlags
	// Format is hex, json or cbor.
	Format string
	// Out is the table file to write; empty writes to stdout.
	Out string
}

// HashFormats lists the valid --format values.
var HashFormats = []string{"hex", string(manifest.FormatJSON), string(manifest.FormatCBOR)}

var _ FlagAdder = (*HashOptions)(nil)

// AddFlags adds hash flags to the cobra command.
func (o *HashOptions) AddFlags(cmd *cobra.Command) {
	o.HashingFlags.AddFlags(cmd)
	cmd.Flags().StringVarP(&o.Format, "format", "f", "hex", "Output format (hex, json, cbor).")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(HashFormats))
	cmd.Flags().StringVarP(&o.Out, "out", "o", "", "Write the output to this file instead of stdout.")
	_ = cmd.MarkFlagFilename("out")
}

// VerifyOptions is the set of options for the verify command.
type VerifyOptions struct {
	HashingFlags
	// TablePath is the JSON or CBOR table to verify against.
	TablePath string
}

var _ FlagAdder = (*VerifyOptions)(nil)

// AddFlags adds verify flags to the cobra command.
func (o *VerifyOptions) AddFlags(cmd *cobra.Command) {
	o.HashingFlags.AddFlags(cmd)
	cmd.Flags().StringVar(&o.TablePath, "table", "", "Code hashes table (JSON or CBOR) to verify against. [required]")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagFilename("table", "json", "cbor")
}
