package errors

import (
	"strings"
	"unicode"
)

// MaxGraphNameLength bounds graph names accepted from API requests.
const MaxGraphNameLength = 256

// ValidateGraphName validates a graph name supplied by a client.
// Graph names end up in log lines and reports, so control characters and
// path separators are rejected.
func ValidateGraphName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "graph name cannot be empty")
	}
	if len(name) > MaxGraphNameLength {
		return New(ErrCodeInvalidInput, "graph name too long (max %d characters)", MaxGraphNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "graph name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "graph name cannot contain path separators")
	}
	return nil
}

// ValidateLength validates a requested path length.
func ValidateLength(k int) error {
	if k < 0 {
		return New(ErrCodeInvalidInput, "path length must be non-negative, got %d", k)
	}
	return nil
}

// ValidateOutputDir validates a solution output directory.
//
// Validation rules:
//   - Directory cannot be empty
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidInput, "output directory cannot be empty")
	}
	for _, r := range dir {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output directory contains invalid characters")
		}
	}
	for _, part := range strings.Split(dir, "/") {
		if part == ".." {
			return New(ErrCodeInvalidInput, "output directory cannot contain path traversal sequences (..)")
		}
	}
	return nil
}
