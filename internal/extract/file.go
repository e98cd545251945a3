package extract

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/common"
)

// supportedMIMETypes are the document formats the extraction collaborator
// accepts. Anything else is rejected before a network call is made.
var supportedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
	"application/pdf": true,
}

// extensionMIMETypes covers formats http.DetectContentType cannot sniff.
var extensionMIMETypes = map[string]string{
	".pdf":  "application/pdf",
	".heic": "image/heic",
	".heif": "image/heif",
}

// DetectMIMEType determines a file's MIME type from its content, falling
// back to the extension for formats content sniffing cannot identify.
func DetectMIMEType(name string, data []byte) string {
	detected := http.DetectContentType(data)
	if supportedMIMETypes[detected] {
		return detected
	}

	ext := strings.ToLower(filepath.Ext(name))
	if mime, ok := extensionMIMETypes[ext]; ok {
		return mime
	}

	return detected
}

// ValidateFileType rejects files the collaborator cannot process. The check
// happens at selection time so invalid files never enter the pipeline.
func ValidateFileType(name, mimeType string) error {
	if supportedMIMETypes[mimeType] {
		return nil
	}
	return fmt.Errorf("%w: %s (%s)", common.ErrInvalidFile, name, mimeType)
}
