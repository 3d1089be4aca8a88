// Package utils holds the small path helpers shared by the command-line
// tools.
package utils

import (
	"path/filepath"
	"strings"
)

// ResolvePath turns a possibly-relative path into a cleaned absolute one.
func ResolvePath(relPath string) (string, error) {
	return filepath.Abs(relPath)
}

// OutputPath swaps the extension of inPath for ext (which should include
// the leading dot). A path with no extension just gains ext.
func OutputPath(inPath, ext string) string {
	base := strings.TrimSuffix(inPath, filepath.Ext(inPath))
	return base + ext
}
