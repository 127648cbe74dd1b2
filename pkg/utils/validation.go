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

// Package utils holds helpers for the command line: path validation and
// parsing of hashing inputs.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathType represents the type of path to validate.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
)

// PathValidator provides path validation utilities.
type PathValidator struct {
	fieldName string
	path      string
	pathType  PathType
}

// NewPathValidator creates a new path validator with the specified field name, path, and expected type.
func NewPathValidator(fieldName, path string, pathType PathType) *PathValidator {
	return &PathValidator{
		fieldName: fieldName,
		path:      path,
		pathType:  pathType,
	}
}

// Validate checks that the path is not empty, exists, and matches the
// expected type. On success it returns the file info.
func (v *PathValidator) Validate() (os.FileInfo, error) {
	if v.path == "" {
		return nil, fmt.Errorf("%s is required", v.fieldName)
	}

	info, err := os.Stat(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s %q does not exist", v.fieldName, v.path)
		}
		return nil, fmt.Errorf("checking %s %q: %w", v.fieldName, v.path, err)
	}

	switch v.pathType {
	case PathTypeFile:
		if info.IsDir() {
			return nil, fmt.Errorf("%s %q is a directory, expected file", v.fieldName, v.path)
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return nil, fmt.Errorf("%s %q is a file, expected directory", v.fieldName, v.path)
		}
	}

	return info, nil
}

// ValidateFileExists validates that a path exists and is a file.
func ValidateFileExists(fieldName, path string) error {
	_, err := NewPathValidator(fieldName, path, PathTypeFile).Validate()
	return err
}

// ValidateOptionalFile validates a file path only if it's not empty.
// Useful for optional configuration files.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}

// ValidateParentFolder validates that the directory a file would be
// written to exists.
func ValidateParentFolder(fieldName, path string) error {
	if path == "" {
		return nil
	}
	_, err := NewPathValidator(fieldName+" directory", filepath.Dir(path), PathTypeFolder).Validate()
	return err
}
