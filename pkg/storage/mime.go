package storage

import (
	"mime"
	"net/http"
	"path"
	"strings"
)

// MIME type constants.
const (
	MIMEOctetStream    = "application/octet-stream"
	mimeDetectionBytes = 512 // http.DetectContentType looks at most at 512 bytes
)

// extensionTypes covers common attachment types that the platform MIME table
// may lack (minimal containers ship without /etc/mime.types).
var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".ics":  "text/calendar",
	".zip":  "application/zip",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// DetectContentType returns the MIME type for an attachment.
// The file extension wins; content sniffing is the fallback.
func DetectContentType(name string, content []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return normalizeMIME(ct)
	}
	if len(content) == 0 {
		return MIMEOctetStream
	}
	if len(content) > mimeDetectionBytes {
		content = content[:mimeDetectionBytes]
	}
	return normalizeMIME(http.DetectContentType(content))
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}
