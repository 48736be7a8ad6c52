package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// assetNameRegex matches names that are safe to use as output file stems.
var assetNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateAssetName validates a sheet, split or tile base name.
// Asset names become file names, so the rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No ".." sequences
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "asset name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "asset name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "asset name cannot contain '..': %q", name)
	}
	if !assetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid asset name: %q", name)
	}
	return nil
}

// ValidatePath validates a file path referenced from a manifest.
// It prevents a manifest from reading or writing outside its own directory.
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

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
