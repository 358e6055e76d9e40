// Package classify maps uploaded file names to semantic categories
// from a fixed extension table.
package classify

import (
	"mime"
	"path/filepath"
	"strings"

	"gengallery/internal/model"
)

// The upload boundary check (IsAllowed) and the category lookup
// (Classify) iterate this same table independently. Keep them as two
// gates: collapsing them would silently change the accepted file types
// if the table ever diverged.
var categoryExtensions = []struct {
	category   model.Category
	extensions []string
}{
	{model.CategoryText, []string{".txt", ".md", ".csv", ".json", ".xml"}},
	{model.CategoryImage, []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".svg"}},
	{model.CategoryVideo, []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".flv"}},
}

// Classify returns the category for a file name. Matching is on the
// extension, case-insensitive. Unmatched extensions yield
// CategoryUnknown.
func Classify(filename string) model.Category {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, group := range categoryExtensions {
		for _, e := range group.extensions {
			if ext == e {
				return group.category
			}
		}
	}
	return model.CategoryUnknown
}

// IsAllowed reports whether the file's extension appears in any
// category. Files failing this check are rejected before any write.
func IsAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, group := range categoryExtensions {
		for _, e := range group.extensions {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// MimeType guesses the MIME type from the file extension, falling back
// to application/octet-stream.
func MimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
