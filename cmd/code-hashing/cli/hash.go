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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sigstore/code-hashing/cmd/code-hashing/cli/options"
	"github.com/sigstore/code-hashing/pkg/manifest"
	"github.com/sigstore/code-hashing/pkg/tracing"
	"github.com/sigstore/code-hashing/pkg/utils"
)

// Hash creates the hash subcommand.
func Hash() *cobra.Command {
	o := &options.HashOptions{}

	long := `Compute the code hashes of one or more digestable regions.

Each INPUT is a whole file (PATH) or a byte range of one
(PATH@OFFSET:LENGTH). Every region is split into pages of --page-size
bytes, the last one possibly shorter, and each page is hashed on its own.
The page digests of all regions are listed in INPUT order.

With --format hex one digest is printed per line. With --format json or
--format cbor the full table is written, including the per-region page
counts, so it can later be checked with the verify command.`

	cmd := &cobra.Command{
		Use:   "hash [OPTIONS] INPUT...",
		Short: "Compute page hashes of code regions.",
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, o, args)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func runHash(cmd *cobra.Command, o *options.HashOptions, args []string) error {
	if !slices.Contains(options.HashFormats, o.Format) {
		return fmt.Errorf("invalid --format %q (valid: hex, json, cbor)", o.Format)
	}
	if err := utils.ValidateParentFolder("out", o.Out); err != nil {
		return err
	}

	logger := ro.NewObservability().Logger
	cfg, err := o.HashingConfig(cmd)
	if err != nil {
		return err
	}
	cfg.SetLogger(logger)

	inputs, err := utils.ParseInputs(args)
	if err != nil {
		return err
	}

	attrs := map[string]interface{}{
		"code_hashing.algorithm":   cfg.AlgorithmName(),
		"code_hashing.page_size":   cfg.PageSize(),
		"code_hashing.concurrency": cfg.Concurrency(),
		"code_hashing.inputs":      len(inputs),
		"code_hashing.format":      o.Format,
	}
	return tracing.Run(cmd.Context(), "Hash", attrs, func(ctx context.Context) error {
		sections, closeAll, err := utils.OpenSections(inputs)
		if err != nil {
			return err
		}
		defer closeAll()

		ctx, cancel := context.WithTimeout(ctx, ro.Timeout)
		defer cancel()

		table, err := cfg.Hash(ctx, sections)
		if err != nil {
			return err
		}

		root, err := table.RootDigest()
		if err != nil {
			return err
		}
		logger.WithFields(map[string]interface{}{
			"algorithm": cfg.AlgorithmName(),
			"pageSize":  cfg.PageSize(),
		}).Info("hashed %d regions into %d pages", len(sections), table.Len())
		logger.Debug("root digest %s", root)

		return writeTable(cmd.OutOrStdout(), o, table)
	})
}

func writeTable(stdout io.Writer, o *options.HashOptions, table *manifest.CodeHashes) error {
	var data []byte
	if o.Format == "hex" {
		for _, d := range table.Slots() {
			data = append(data, d.Hex()...)
			data = append(data, '\n')
		}
	} else {
		var err error
		if data, err = manifest.Encode(table, manifest.Format(o.Format)); err != nil {
			return err
		}
	}

	if o.Out != "" {
		if err := os.WriteFile(o.Out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", o.Out, err)
		}
		return nil
	}
	_, err := stdout.Write(data)
	return err
}
