package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID validates a node identifier for safety and correctness.
// Node IDs come from untrusted graph documents and API requests, so the
// rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path traversal sequences (.., //)
//   - No backslashes
//   - Maximum length of 256 characters
//
// Synthetic group IDs (parent::prefix) pass these rules unchanged.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNode, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidNode, "node id too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNode, "node id contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidNode, "node id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateGraphFilename validates a graph document filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateGraphFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidGraph, "graph filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidGraph, "graph filename cannot contain path separators")
	}

	// No hidden files (starting with .)
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidGraph, "graph filename cannot be a hidden file")
	}

	return nil
}

// ValidatePath validates a file path within a workspace for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateViewport validates viewport dimensions from API requests.
func ValidateViewport(w, h float64) error {
	const maxDimension = 100000
	if w <= 0 || h <= 0 {
		return New(ErrCodeInvalidInput, "viewport dimensions must be positive")
	}
	if w > maxDimension || h > maxDimension {
		return New(ErrCodeInvalidInput, "viewport dimensions too large (max %d)", maxDimension)
	}
	return nil
}

// ValidateThreshold validates a grouping threshold. Zero selects the
// built-in default, so only negatives and absurd values are rejected.
func ValidateThreshold(threshold int) error {
	if threshold < 0 {
		return New(ErrCodeInvalidInput, "grouping threshold cannot be negative")
	}
	if threshold > 10000 {
		return New(ErrCodeInvalidInput, "grouping threshold too large (max 10000)")
	}
	return nil
}
