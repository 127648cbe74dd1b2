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

package codehash

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
	enginesio "github.com/sigstore/code-hashing/pkg/hashing/engines/io"
)

// page is one unit of work. Its bytes come either from data or from the
// [start, end) interval of source.
type page struct {
	rangeIndex int
	pageIndex  int

	data []byte

	source     io.ReaderAt
	start, end int64
}

// run hashes jobs and returns their digests in job order.
func (h *Hasher) run(ctx context.Context, alg algorithm.Algorithm, jobs []page) ([]digests.Digest, error) {
	h.logger.WithFields(map[string]interface{}{
		"algorithm":   alg.String(),
		"concurrency": h.concurrency,
	}).Debug("hashing %d pages", len(jobs))

	out := make([]digests.Digest, len(jobs))
	if len(jobs) == 0 {
		return out, nil
	}

	if h.concurrency < 2 || len(jobs) == 1 {
		if err := h.runSequential(ctx, alg, jobs, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	// Each task writes only its own index of out.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(h.concurrency, len(jobs)))
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			engine, err := h.newEngine(alg)
			if err != nil {
				return err
			}
			d, err := h.hashPage(engine, alg, job)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *Hasher) runSequential(ctx context.Context, alg algorithm.Algorithm, jobs []page, out []digests.Digest) error {
	engine, err := h.newEngine(alg)
	if err != nil {
		return err
	}
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := h.hashPage(engine, alg, job)
		if err != nil {
			return err
		}
		out[i] = d
	}
	return nil
}

func (h *Hasher) newEngine(alg algorithm.Algorithm) (hashengines.StreamingHashEngine, error) {
	engine, err := h.engines.Create(alg)
	if err != nil {
		return nil, &HashingError{Algorithm: alg, Range: -1, Page: -1, Err: err}
	}
	return engine, nil
}

// hashPage hashes one page with engine, which is reset first, so no state
// carries over from a previous page.
func (h *Hasher) hashPage(engine hashengines.StreamingHashEngine, alg algorithm.Algorithm, job page) (digests.Digest, error) {
	fail := func(err error) (digests.Digest, error) {
		return digests.Digest{}, &HashingError{Algorithm: alg, Range: job.rangeIndex, Page: job.pageIndex, Err: err}
	}

	var (
		d   digests.Digest
		err error
	)
	if job.source == nil {
		engine.Reset(job.data)
		d, err = engine.Compute()
	} else {
		var sh *enginesio.SectionHasher
		sh, err = enginesio.NewSectionHasher(job.source, engine, job.start, job.end, h.chunkSize, job.end-job.start)
		if err == nil {
			d, err = sh.Compute()
		}
	}
	if err != nil {
		return fail(err)
	}

	if d.Size() != alg.OutputLength() {
		return fail(fmt.Errorf("engine produced %d bytes, %v digests have %d", d.Size(), alg, alg.OutputLength()))
	}
	return d, nil
}
