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

package tracing

import (
	"context"
	"errors"
	"testing"
)

type recordingSpan struct {
	attrs map[string]interface{}
	err   error
	ended bool
}

func (s *recordingSpan) SetAttribute(key string, value interface{}) { s.attrs[key] = value }
func (s *recordingSpan) RecordError(err error)                      { s.err = err }
func (s *recordingSpan) End()                                       { s.ended = true }

type recordingTracer struct {
	names []string
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	s := &recordingSpan{attrs: map[string]interface{}{}}
	t.names = append(t.names, name)
	t.spans = append(t.spans, s)
	return ctx, s
}

func TestRunWithoutTracer(t *testing.T) {
	SetTracer(nil)
	if Enabled() {
		t.Fatal("Enabled() = true with no-op tracer")
	}
	called := false
	err := Run(context.Background(), "noop", nil, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("Run() = %v, called = %v", err, called)
	}
}

func TestRunRecordsSpan(t *testing.T) {
	rt := &recordingTracer{}
	SetTracer(rt)
	t.Cleanup(func() { SetTracer(nil) })

	boom := errors.New("boom")
	err := Run(context.Background(), "hash.ranges", map[string]interface{}{"ranges": 2}, func(context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if len(rt.spans) != 1 || rt.names[0] != "hash.ranges" {
		t.Fatalf("spans = %v", rt.names)
	}
	s := rt.spans[0]
	if !s.ended || s.err != boom || s.attrs["ranges"] != 2 {
		t.Errorf("span = %+v", s)
	}
}
