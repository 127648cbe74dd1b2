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

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func newBufferLogger(level LogLevel, format LogFormat) (*DefaultLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLoggerWithOptions(LoggerOptions{Level: level, Format: format, Output: &buf}), &buf
}

func TestDefaultWritesToStderr(t *testing.T) {
	l, ok := Default().(*DefaultLogger)
	if !ok {
		t.Fatal("Default() did not return *DefaultLogger")
	}
	if l.out != os.Stderr {
		t.Error("Default() should write to os.Stderr")
	}
	if l.GetLevel() != LevelInfo {
		t.Errorf("GetLevel() = %v, want info", l.GetLevel())
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		want  []string
	}{
		{"debug", LevelDebug, []string{"d", "i", "w", "e"}},
		{"info", LevelInfo, []string{"i", "w", "e"}},
		{"warn", LevelWarn, []string{"w", "e"}},
		{"error", LevelError, []string{"e"}},
		{"silent", LevelSilent, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferLogger(tt.level, FormatText)
			l.Debug("d")
			l.Info("i")
			l.Warn("w")
			l.Error("e")

			got := strings.Fields(buf.String())
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"off":     LevelSilent,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if LogLevel(42).String() != "unknown" {
		t.Errorf("LogLevel(42).String() = %q", LogLevel(42).String())
	}
}

func TestParseLogFormat(t *testing.T) {
	if ParseLogFormat("JSON") != FormatJSON {
		t.Error("ParseLogFormat(JSON) != FormatJSON")
	}
	if ParseLogFormat("plain") != FormatText {
		t.Error("ParseLogFormat(plain) != FormatText")
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	l, buf := newBufferLogger(LevelInfo, FormatText)
	l.WithFields(map[string]interface{}{"zeta": 1, "alpha": "x"}).Info("hashed %d pages", 3)

	want := "hashed 3 pages {alpha=x, zeta=1}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatterShowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOptions(LoggerOptions{Level: LevelInfo, Output: &buf, ShowLevel: true})
	l.Warn("careful")
	if buf.String() != "[WARN] careful\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	l, buf := newBufferLogger(LevelDebug, FormatJSON)
	l.WithField("range", 2).Debug("page %d", 7)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "debug" || entry["message"] != "page 7" {
		t.Errorf("entry = %v", entry)
	}
	fields, _ := entry["fields"].(map[string]interface{})
	if fields["range"] != float64(2) {
		t.Errorf("fields = %v", fields)
	}
	if entry["timestamp"] == "" {
		t.Error("timestamp missing")
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(LevelInfo, FormatText)
	child := l.WithField("k", "v")
	_ = child.WithField("other", 1)

	l.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "parent" || lines[1] != "child {k=v}" {
		t.Errorf("lines = %q", lines)
	}
}

func TestSetLevelAndIsLevelEnabled(t *testing.T) {
	l, _ := newBufferLogger(LevelInfo, FormatText)
	if l.IsLevelEnabled(LevelDebug) {
		t.Error("debug enabled at info level")
	}
	l.SetLevel(LevelDebug)
	if !l.IsLevelEnabled(LevelDebug) {
		t.Error("debug disabled after SetLevel(LevelDebug)")
	}
	if l.IsLevelEnabled(LevelSilent) {
		t.Error("silent should never be an enabled output level")
	}
}

func TestDiscardAndEnsureLogger(t *testing.T) {
	if Discard().IsLevelEnabled(LevelError) {
		t.Error("Discard() logger emits errors")
	}
	if EnsureLogger(nil) == nil {
		t.Error("EnsureLogger(nil) returned nil")
	}
	l := Discard()
	if EnsureLogger(l) != l {
		t.Error("EnsureLogger() replaced a non-nil logger")
	}
}
