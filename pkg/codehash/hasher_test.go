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

package codehash_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/sigstore/code-hashing/pkg/codehash"
	"github.com/sigstore/code-hashing/pkg/hashing/algorithm"
	"github.com/sigstore/code-hashing/pkg/hashing/digests"
	hashengines "github.com/sigstore/code-hashing/pkg/hashing/engines"
	"github.com/sigstore/code-hashing/pkg/hashing/engines/memory"
	"github.com/sigstore/code-hashing/pkg/logging"
)

// pattern returns n deterministic, non-repeating-per-page bytes.
func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*31 + i/251)
	}
	return b
}

func sha256Of(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

// poisonEngine fails Compute whenever the hashed bytes contained 'X'.
type poisonEngine struct {
	*memory.GenericHashEngine
	poisoned bool
}

func (e *poisonEngine) Reset(data []byte) {
	e.poisoned = bytes.IndexByte(data, 'X') >= 0
	e.GenericHashEngine.Reset(data)
}

func (e *poisonEngine) Update(data []byte) {
	e.poisoned = e.poisoned || bytes.IndexByte(data, 'X') >= 0
	e.GenericHashEngine.Update(data)
}

func (e *poisonEngine) Compute() (digests.Digest, error) {
	if e.poisoned {
		return digests.Digest{}, errors.New("primitive rejected input")
	}
	return e.GenericHashEngine.Compute()
}

func poisonSet(t *testing.T) *hashengines.Set {
	t.Helper()
	set, err := hashengines.NewSet(map[algorithm.Algorithm]hashengines.EngineFactory{
		algorithm.SHA256: func() (hashengines.StreamingHashEngine, error) {
			e, err := memory.NewSHA256Engine(nil)
			if err != nil {
				return nil, err
			}
			return &poisonEngine{GenericHashEngine: e}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewSet() error = %v", err)
	}
	return set
}

func hashers() map[string]*codehash.Hasher {
	return map[string]*codehash.Hasher{
		"sequential": codehash.New(),
		"parallel":   codehash.New(codehash.WithConcurrency(4)),
	}
}

func TestPagedHashesCount(t *testing.T) {
	lengths := []int{0, 1, 6, 7, 8, 4095, 4096, 4097, 8192, 10000}
	pageSizes := []int{1, 7, 4096}

	for _, alg := range algorithm.All() {
		for _, n := range lengths {
			for _, ps := range pageSizes {
				if ps == 1 && n > 100 {
					continue
				}
				t.Run(fmt.Sprintf("%v/len=%d/page=%d", alg, n, ps), func(t *testing.T) {
					got, err := codehash.ComputePagedHashes(pattern(n), alg, ps)
					if err != nil {
						t.Fatalf("ComputePagedHashes() error = %v", err)
					}
					want := (n + ps - 1) / ps
					if len(got) != want || codehash.PageCount(n, ps) != want {
						t.Fatalf("got %d digests, PageCount = %d, want %d", len(got), codehash.PageCount(n, ps), want)
					}
					for i, d := range got {
						if d.Size() != alg.OutputLength() {
							t.Errorf("digest %d has %d bytes, want %d", i, d.Size(), alg.OutputLength())
						}
					}
				})
			}
		}
	}
}

func TestEmptyInputYieldsNoDigests(t *testing.T) {
	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			for _, data := range [][]byte{nil, {}} {
				got, err := h.PagedHashes(context.Background(), data, algorithm.SHA256, 4096)
				if err != nil {
					t.Fatalf("PagedHashes() error = %v", err)
				}
				if got == nil || len(got) != 0 {
					t.Errorf("PagedHashes(empty) = %v, want empty non-nil", got)
				}
			}

			got, err := h.RangeHashes(context.Background(), nil, algorithm.SHA256, 4096)
			if err != nil || len(got) != 0 {
				t.Errorf("RangeHashes(nil) = %v, %v", got, err)
			}
		})
	}
}

func TestTenThousandZeroBytes(t *testing.T) {
	data := make([]byte, 10000)
	got, err := codehash.ComputePagedHashes(data, algorithm.SHA256, 4096)
	if err != nil {
		t.Fatalf("ComputePagedHashes() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d digests, want 3", len(got))
	}
	if !got[0].Equal(got[1]) {
		t.Error("digests of two all-zero full pages differ")
	}
	if got[2].Equal(got[0]) {
		t.Error("digest of the 1808-byte tail equals a full-page digest")
	}
	if !bytes.Equal(got[0].Value(), sha256Of(make([]byte, 4096))) {
		t.Errorf("digest 0 = %s", got[0].Hex())
	}
	if !bytes.Equal(got[2].Value(), sha256Of(make([]byte, 1808))) {
		t.Errorf("digest 2 = %s", got[2].Hex())
	}
}

func TestPageBoundaries(t *testing.T) {
	const ps = 64
	tests := []struct {
		name    string
		length  int
		pages   int
		lastLen int
	}{
		{"exact multiple", 3 * ps, 3, ps},
		{"one byte over", 3*ps + 1, 4, 1},
		{"one byte under", 3*ps - 1, 3, ps - 1},
		{"shorter than a page", 10, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pattern(tt.length)
			got, err := codehash.ComputePagedHashes(data, algorithm.SHA256, ps)
			if err != nil {
				t.Fatalf("ComputePagedHashes() error = %v", err)
			}
			if len(got) != tt.pages {
				t.Fatalf("got %d digests, want %d", len(got), tt.pages)
			}
			for i, d := range got {
				start := i * ps
				end := min(start+ps, len(data))
				if !bytes.Equal(d.Value(), sha256Of(data[start:end])) {
					t.Errorf("digest %d does not cover bytes [%d:%d]", i, start, end)
				}
			}
			if tail := tt.length - (tt.pages-1)*ps; tail != tt.lastLen {
				t.Errorf("last page holds %d bytes, want %d", tail, tt.lastLen)
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	data := pattern(5000)
	for _, alg := range algorithm.All() {
		a, err := codehash.ComputePagedHashes(data, alg, 512)
		if err != nil {
			t.Fatalf("%v: error = %v", alg, err)
		}
		b, _ := codehash.ComputePagedHashes(slices.Clone(data), alg, 512)
		if !slices.EqualFunc(a, b, digests.Digest.Equal) {
			t.Errorf("%v: repeated calls differ", alg)
		}
	}
}

func TestChunkIndependence(t *testing.T) {
	const ps = 100
	data := pattern(550)
	base, err := codehash.ComputePagedHashes(data, algorithm.SHA1, ps)
	if err != nil {
		t.Fatalf("ComputePagedHashes() error = %v", err)
	}

	for _, offset := range []int{0, 99, 100, 250, 549} {
		changed := slices.Clone(data)
		changed[offset] ^= 0xff
		got, err := codehash.ComputePagedHashes(changed, algorithm.SHA1, ps)
		if err != nil {
			t.Fatalf("ComputePagedHashes() error = %v", err)
		}
		for i := range got {
			same := got[i].Equal(base[i])
			if i == offset/ps && same {
				t.Errorf("offset %d: page %d unchanged", offset, i)
			}
			if i != offset/ps && !same {
				t.Errorf("offset %d: page %d changed", offset, i)
			}
		}
	}
}

func TestRangeHashesConcatenatesInOrder(t *testing.T) {
	r1, r2, r3 := pattern(300), bytes.Repeat([]byte{7}, 130), pattern(64)

	got, err := codehash.ComputeRangeHashes([][]byte{r1, nil, r2, r3}, algorithm.SHA384, 64)
	if err != nil {
		t.Fatalf("ComputeRangeHashes() error = %v", err)
	}

	var want []digests.Digest
	for _, r := range [][]byte{r1, r2, r3} {
		d, err := codehash.ComputePagedHashes(r, algorithm.SHA384, 64)
		if err != nil {
			t.Fatalf("ComputePagedHashes() error = %v", err)
		}
		want = append(want, d...)
	}
	if !slices.EqualFunc(got, want, digests.Digest.Equal) {
		t.Error("range hashes are not the concatenation of per-range page hashes")
	}
}

func TestFullPageThenPartialPage(t *testing.T) {
	full, partial := pattern(4096), pattern(100)
	got, err := codehash.ComputeRangeHashes([][]byte{full, partial}, algorithm.SHA256, 4096)
	if err != nil {
		t.Fatalf("ComputeRangeHashes() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d digests, want 2", len(got))
	}
	if !bytes.Equal(got[0].Value(), sha256Of(full)) || !bytes.Equal(got[1].Value(), sha256Of(partial)) {
		t.Error("digests are not full page then partial page")
	}
}

func TestTruncatedAlgorithm(t *testing.T) {
	data := pattern(200)
	got, err := codehash.ComputePagedHashes(data, algorithm.SHA256Truncated, 128)
	if err != nil {
		t.Fatalf("ComputePagedHashes() error = %v", err)
	}
	for i, d := range got {
		end := min((i+1)*128, len(data))
		if want := sha256Of(data[i*128 : end])[:20]; !bytes.Equal(d.Value(), want) {
			t.Errorf("digest %d = %s, want %x", i, d.Hex(), want)
		}
	}
}

func TestInvalidPageSize(t *testing.T) {
	for _, ps := range []int{0, -1, -4096} {
		for _, data := range [][]byte{nil, pattern(10)} {
			got, err := codehash.ComputePagedHashes(data, algorithm.SHA256, ps)
			if !errors.Is(err, codehash.ErrInvalidPageSize) {
				t.Errorf("page size %d: error = %v, want ErrInvalidPageSize", ps, err)
			}
			var hashErr *codehash.HashingError
			if errors.As(err, &hashErr) {
				t.Errorf("page size %d: validation error reported as HashingError", ps)
			}
			if got != nil {
				t.Errorf("page size %d: got output %v", ps, got)
			}
		}
	}
}

func TestInvalidAlgorithm(t *testing.T) {
	for _, alg := range []algorithm.Algorithm{algorithm.None, algorithm.Algorithm(200)} {
		_, err := codehash.ComputePagedHashes(pattern(10), alg, 4)
		if !errors.Is(err, codehash.ErrUnsupportedAlgorithm) {
			t.Errorf("%v: error = %v, want ErrUnsupportedAlgorithm", alg, err)
		}
		var hashErr *codehash.HashingError
		if errors.As(err, &hashErr) {
			t.Errorf("%v: validation error reported as HashingError", alg)
		}
	}
}

func TestEngineUnavailable(t *testing.T) {
	set := hashengines.MustNewSet(map[algorithm.Algorithm]hashengines.EngineFactory{
		algorithm.SHA1: func() (hashengines.StreamingHashEngine, error) { return memory.NewSHA1Engine(nil) },
	})
	h := codehash.New(codehash.WithEngines(set))

	got, err := h.PagedHashes(context.Background(), pattern(10), algorithm.SHA256, 4)
	var hashErr *codehash.HashingError
	if !errors.As(err, &hashErr) {
		t.Fatalf("error = %v, want HashingError", err)
	}
	if !errors.Is(err, codehash.ErrUnsupportedAlgorithm) {
		t.Errorf("error = %v, want wrapping ErrUnsupportedAlgorithm", err)
	}
	if hashErr.Range != -1 || hashErr.Algorithm != algorithm.SHA256 {
		t.Errorf("HashingError = %+v", hashErr)
	}
	if got != nil {
		t.Errorf("got output %v", got)
	}
}

func TestFailureOnSecondChunkReturnsNothing(t *testing.T) {
	data := []byte("aaaaXXXXcc")

	for _, conc := range []int{0, 1, 2, 8} {
		t.Run(fmt.Sprintf("concurrency=%d", conc), func(t *testing.T) {
			h := codehash.New(codehash.WithEngines(poisonSet(t)), codehash.WithConcurrency(conc))

			got, err := h.PagedHashes(context.Background(), data, algorithm.SHA256, 4)
			var hashErr *codehash.HashingError
			if !errors.As(err, &hashErr) {
				t.Fatalf("error = %v, want HashingError", err)
			}
			if hashErr.Range != 0 || hashErr.Page != 1 {
				t.Errorf("failure located at range %d page %d, want range 0 page 1", hashErr.Range, hashErr.Page)
			}
			if !strings.Contains(err.Error(), "primitive rejected input") {
				t.Errorf("error = %q", err)
			}
			if got != nil {
				t.Errorf("partial output returned: %v", got)
			}
		})
	}
}

func TestFailingRangeAbortsAggregation(t *testing.T) {
	h := codehash.New(codehash.WithEngines(poisonSet(t)))
	got, err := h.RangeHashes(context.Background(), [][]byte{[]byte("good"), []byte("bXd")}, algorithm.SHA256, 4)
	var hashErr *codehash.HashingError
	if !errors.As(err, &hashErr) || hashErr.Range != 1 || hashErr.Page != 0 {
		t.Fatalf("error = %v, want HashingError at range 1 page 0", err)
	}
	if got != nil {
		t.Errorf("partial output returned: %v", got)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	ranges := [][]byte{pattern(10000), pattern(1), nil, pattern(4096 * 3)}
	seq := codehash.New()

	for _, conc := range []int{2, 3, 16, 1000} {
		par := codehash.New(codehash.WithConcurrency(conc))
		for _, alg := range algorithm.All() {
			want, err := seq.RangeHashes(context.Background(), ranges, alg, 1024)
			if err != nil {
				t.Fatalf("sequential error = %v", err)
			}
			got, err := par.RangeHashes(context.Background(), ranges, alg, 1024)
			if err != nil {
				t.Fatalf("parallel error = %v", err)
			}
			if !slices.EqualFunc(got, want, digests.Digest.Equal) {
				t.Errorf("concurrency %d, %v: parallel output differs from sequential", conc, alg)
			}
		}
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, h := range hashers() {
		t.Run(name, func(t *testing.T) {
			got, err := h.PagedHashes(ctx, pattern(1000), algorithm.SHA256, 10)
			if !errors.Is(err, context.Canceled) {
				t.Errorf("error = %v, want context.Canceled", err)
			}
			if got != nil {
				t.Errorf("got output %v", got)
			}
		})
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithOptions(logging.LoggerOptions{Level: logging.LevelDebug, Output: &buf})
	h := codehash.New(codehash.WithLogger(logger))

	if _, err := h.PagedHashes(context.Background(), pattern(10), algorithm.SHA1, 4); err != nil {
		t.Fatalf("PagedHashes() error = %v", err)
	}
	if !strings.Contains(buf.String(), "hashing 3 pages") {
		t.Errorf("log output = %q", buf.String())
	}
}
