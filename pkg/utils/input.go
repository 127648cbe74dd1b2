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

package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sigstore/code-hashing/pkg/codehash"
)

// Input is one digestable region named on the command line: a whole file,
// or a byte range of it written as PATH@OFFSET:LENGTH.
type Input struct {
	Path     string
	Offset   int64
	Length   int64
	HasRange bool
}

// ParseInput parses PATH or PATH@OFFSET:LENGTH. Only the last '@' is
// considered, and only when it is followed by two decimal numbers, so
// paths containing '@' still work.
func ParseInput(s string) (Input, error) {
	if s == "" {
		return Input{}, errors.New("empty input")
	}

	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return Input{Path: s}, nil
	}
	offStr, lenStr, ok := strings.Cut(s[at+1:], ":")
	if !ok || !isDigits(offStr) || !isDigits(lenStr) {
		return Input{Path: s}, nil
	}
	if at == 0 {
		return Input{}, fmt.Errorf("input %q has a range but no path", s)
	}

	offset, err := strconv.ParseInt(offStr, 10, 64)
	if err != nil {
		return Input{}, fmt.Errorf("input %q: offset: %w", s, err)
	}
	length, err := strconv.ParseInt(lenStr, 10, 64)
	if err != nil {
		return Input{}, fmt.Errorf("input %q: length: %w", s, err)
	}
	return Input{Path: s[:at], Offset: offset, Length: length, HasRange: true}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats the input the way ParseInput accepts it.
func (in Input) String() string {
	if !in.HasRange {
		return in.Path
	}
	return fmt.Sprintf("%s@%d:%d", in.Path, in.Offset, in.Length)
}

// ParseInputs parses every argument in order.
func ParseInputs(args []string) ([]Input, error) {
	inputs := make([]Input, 0, len(args))
	for _, a := range args {
		in, err := ParseInput(a)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// OpenSections opens the file behind every input and returns one section
// per input, in input order. Ranges must lie inside their file. The
// returned function closes every file.
func OpenSections(inputs []Input) ([]codehash.Section, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}

	sections := make([]codehash.Section, 0, len(inputs))
	for i, in := range inputs {
		info, err := NewPathValidator(fmt.Sprintf("input[%d]", i), in.Path, PathTypeFile).Validate()
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}

		offset, length := int64(0), info.Size()
		if in.HasRange {
			if in.Offset > info.Size() || in.Length > info.Size()-in.Offset {
				_ = closeAll()
				return nil, nil, fmt.Errorf("input %s: range exceeds file size %d", in, info.Size())
			}
			offset, length = in.Offset, in.Length
		}

		f, err := os.Open(in.Path)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("failed to open %s: %w", in.Path, err)
		}
		files = append(files, f)
		sections = append(sections, codehash.NewSection(f, offset, length))
	}
	return sections, closeAll, nil
}
