package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// MaxDimension is the largest accepted chart width or height in pixels.
const MaxDimension = 20000

// ValidateChartName validates a chart or series name for safety and correctness.
// Names end up in SVG ids, cache keys and file names, so the rules are
// conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateChartName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidChart, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidChart, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidChart, "name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidChart, "name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDimensions checks that a chart frame is finite, positive and not
// absurdly large.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidDimensions, "dimensions must be finite numbers")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidDimensions, "dimensions must be positive (got %gx%g)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "dimensions too large (max %d)", MaxDimension)
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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

	return nil
}

// colorRegex matches #rgb, #rrggbb and plain CSS color keywords.
var colorRegex = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-zA-Z]{3,20})$`)

// ValidateColor validates a series fill color. Empty means "use the palette".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !colorRegex.MatchString(color) {
		return New(ErrCodeInvalidChart, "invalid color: %q", color)
	}
	return nil
}
