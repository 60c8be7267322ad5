package filestorage

import (
	"strings"

	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

// ContentTypeResolver maps a file extension to its MIME type
type ContentTypeResolver interface {
	Resolve(extension string) (string, error)
}

// StaticContentTypes resolves MIME types from a fixed table
type StaticContentTypes map[string]string

// DefaultContentTypes covers the document and image formats the platform accepts
func DefaultContentTypes() StaticContentTypes {
	return StaticContentTypes{
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".gif":  "image/gif",
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".bmp":  "image/bmp",
		".ico":  "image/x-icon",
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".json": "application/json",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".zip":  "application/zip",
		".mp3":  "audio/mpeg",
		".mp4":  "video/mp4",
	}
}

// Resolve returns ErrUnsupportedContentType for unmapped extensions
func (m StaticContentTypes) Resolve(extension string) (string, error) {
	if ct, ok := m[NormalizeExtension(extension)]; ok {
		return ct, nil
	}
	return "", apperrors.ErrUnsupportedContentType
}

// NormalizeExtension lowercases ext and makes sure it starts with a dot.
// An empty input stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
