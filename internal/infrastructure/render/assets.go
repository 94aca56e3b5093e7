package render

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// LoadDataURI reads an image file into a data URI; an empty path gives ""
func LoadDataURI(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read asset %s: %w", path, err)
	}
	return DataURI(http.DetectContentType(data), data), nil
}

// DataURI encodes data as a base64 data URI of the given MIME type
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FontFileName is the name a font is staged under next to each page; the
// layout references it by this name.
func FontFileName(path string) string {
	return filepath.Base(path)
}
