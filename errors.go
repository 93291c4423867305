// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import (
	"errors"
	"fmt"
)

// CrackError represents an error that occurred during password recovery.
// It includes contextual information about where the error occurred.
type CrackError struct {
	Op   string // Operation that failed (e.g., "parse encrypt dictionary", "open wordlist")
	Path string // File path if applicable
	Err  error  // Underlying error
}

func (e *CrackError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("pdfcrack: %s (%s): %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("pdfcrack: %s: %v", e.Op, e.Err)
}

func (e *CrackError) Unwrap() error {
	return e.Err
}

// Common errors
var (
	// ErrNotAPDF indicates the input does not begin with a %PDF- header
	ErrNotAPDF = errors.New("not a PDF file")

	// ErrMalformedEncryptDict indicates the encryption dictionary could not be parsed
	ErrMalformedEncryptDict = errors.New("malformed encryption dictionary")

	// ErrUnsupportedProtection indicates no handler recognizes the document's protection
	ErrUnsupportedProtection = errors.New("unsupported protection")

	// ErrEmptyCandidateSource indicates a candidate source contains no candidates
	ErrEmptyCandidateSource = errors.New("candidate source is empty")

	// ErrInvalidBruteForceRange indicates a bad alphabet or length range
	ErrInvalidBruteForceRange = errors.New("invalid brute-force range")

	// ErrCryptoShapeViolation indicates a key, IV or buffer length mismatch
	// at a primitive boundary
	ErrCryptoShapeViolation = errors.New("crypto input has unexpected shape")
)

// wrapError wraps an error with operation context
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CrackError{Op: op, Err: err}
}

// wrapPathError wraps an error with operation and file path context
func wrapPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &CrackError{Op: op, Path: path, Err: err}
}
