package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "manifest filename cannot be a hidden file")
	}

	return nil
}

// ValidateRoot validates a project root directory supplied by a caller.
//
// Validation rules:
//   - Root cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) once cleaned
//
// When requireAbs is set the root must also be absolute; the HTTP server
// uses this since it has no meaningful working directory.
func ValidateRoot(root string, requireAbs bool) error {
	if root == "" {
		return New(ErrCodeInvalidPath, "root directory cannot be empty")
	}

	const maxRootLength = 4096
	if len(root) > maxRootLength {
		return New(ErrCodeInvalidPath, "root directory too long (max %d characters)", maxRootLength)
	}

	for _, r := range root {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "root directory contains invalid characters")
		}
	}

	if requireAbs && !filepath.IsAbs(root) {
		return New(ErrCodeInvalidPath, "root directory must be absolute: %s", root)
	}

	for _, seg := range strings.Split(filepath.ToSlash(filepath.Clean(root)), "/") {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "root directory cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
