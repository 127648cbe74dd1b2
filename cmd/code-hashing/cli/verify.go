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
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sigstore/code-hashing/cmd/code-hashing/cli/options"
	"github.com/sigstore/code-hashing/pkg/codehash"
	"github.com/sigstore/code-hashing/pkg/config"
	"github.com/sigstore/code-hashing/pkg/logging"
	"github.com/sigstore/code-hashing/pkg/manifest"
	"github.com/sigstore/code-hashing/pkg/tracing"
	"github.com/sigstore/code-hashing/pkg/utils"
)

var okColor = color.New(color.FgGreen, color.Bold)

// Verify creates the verify subcommand.
func Verify() *cobra.Command {
	o := &options.VerifyOptions{}

	long := `Verify code regions against a stored code hashes table.

The INPUTs are given as for the hash command and must be listed in the
same order. The table given via --table may be JSON or CBOR.

By default the algorithm and page size are read from the table. Passing
--algorithm, --page-size or --config pins them instead, so a table made
with other parameters fails verification.

Exits with status 2 when any page differs.`

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS] --table FILE INPUT...",
		Short: "Verify page hashes of code regions.",
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, o, args)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func runVerify(cmd *cobra.Command, o *options.VerifyOptions, args []string) error {
	logger := ro.NewObservability().Logger

	if err := utils.ValidateFileExists("table", o.TablePath); err != nil {
		return err
	}
	expected, err := manifest.ReadFile(o.TablePath)
	if err != nil {
		return err
	}

	verifier := config.NewVerifierConfig().
		SetConcurrency(o.Concurrency).
		SetChunkSize(o.ChunkSize).
		SetLogger(logger)
	if o.HashingFlags.Changed(cmd) {
		cfg, err := o.HashingConfig(cmd)
		if err != nil {
			return err
		}
		verifier.SetHashingConfig(cfg.SetLogger(logger))
	}

	inputs, err := utils.ParseInputs(args)
	if err != nil {
		return err
	}

	attrs := map[string]interface{}{
		"code_hashing.table":     o.TablePath,
		"code_hashing.algorithm": expected.Algorithm().String(),
		"code_hashing.page_size": expected.PageSize(),
		"code_hashing.inputs":    len(inputs),
	}
	return tracing.Run(cmd.Context(), "Verify", attrs, func(ctx context.Context) error {
		sections, closeAll, err := utils.OpenSections(inputs)
		if err != nil {
			return err
		}
		defer closeAll()

		ctx, cancel := context.WithTimeout(ctx, ro.Timeout)
		defer cancel()

		err = verifier.VerifyTable(ctx, sections, expected)
		var mismatch *codehash.MismatchError
		if errors.As(err, &mismatch) {
			for _, m := range mismatch.Diff.Mismatches {
				logger.WithFields(map[string]interface{}{
					"expected": m.ExpectedHash,
					"actual":   m.ActualHash,
				}).Error("slot %d differs", m.Slot)
			}
			return &ExitError{Err: err, Code: ExitMismatch}
		}
		if err != nil {
			return err
		}

		if ro.GetLogLevel() < logging.LevelSilent {
			okColor.Fprint(cmd.OutOrStdout(), "Verification succeeded")
			fmt.Fprintf(cmd.OutOrStdout(), ": %d pages match\n", expected.Len())
		}
		return nil
	})
}
