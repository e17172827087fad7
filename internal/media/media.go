// Package media stores offer pictures. Each offer's files live under a folder
// named after the offer, so they can be removed together by prefix.
package media

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// File is an uploaded payload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// contentType returns the declared content type, sniffing the payload when
// the client did not send a usable one.
func (f File) contentType() string {
	ct := f.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(f.Data)
	}
	return ct
}

// extension returns the lowercased file extension including the dot.
func (f File) extension(contentType string) string {
	ext := strings.ToLower(filepath.Ext(f.Name))
	if ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
