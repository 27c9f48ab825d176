package util

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMimeType sniffs the content type of r and returns a reader that still
// yields the full content.
func DetectMimeType(r io.Reader, filename string) (string, io.Reader, error) {
	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	header = header[:n]

	mt := mimetype.Detect(header)
	mime := mt.String()
	// plain text sniffing is weak for source files; trust the extension there
	if mt.Is(MimeTextPlain) {
		if byExt := mimeFromExtension(filename); byExt != "" {
			mime = byExt
		}
	}
	return mime, io.MultiReader(bytes.NewReader(header), r), nil
}

func mimeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".py":
		return "text/x-python"
	case ".go":
		return "text/x-go"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	}
	return ""
}

func IsText(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || mimeType == "application/json"
}
