package security

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidCVFile is wrapped by every rejection from ValidateCVFile.
var ErrInvalidCVFile = errors.New("invalid CV file")

// Magic byte signatures per allowed extension. Text files have none and are checked for UTF-8.
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
	".docx": {{0x50, 0x4B, 0x03, 0x04}}, // ZIP (PK..)
	".txt":  {},
}

// Strict MIME types - DO NOT include application/octet-stream
var strictMIMETypes = map[string]map[string]bool{
	".pdf": {"application/pdf": true},
	".docx": {
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		// http.DetectContentType reports DOCX as a plain ZIP.
		"application/zip": true,
	},
	".txt": {"text/plain": true},
}

// CVFileInfo describes an accepted upload.
type CVFileInfo struct {
	Extension   string
	ContentType string
}

// ValidateCVFile performs 3-layer validation of an uploaded CV:
// 1. Extension whitelist (pdf, docx, txt)
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type whitelist for that extension
func ValidateCVFile(filename string, data []byte, maxBytes int64) (CVFileInfo, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return CVFileInfo{}, fmt.Errorf("%w: file has no extension", ErrInvalidCVFile)
	}
	signatures, ok := magicBytes[ext]
	if !ok {
		return CVFileInfo{}, fmt.Errorf("%w: extension %s not allowed, use one of %s",
			ErrInvalidCVFile, ext, strings.Join(AllowedCVExtensions(), ", "))
	}
	if len(data) == 0 {
		return CVFileInfo{}, fmt.Errorf("%w: file is empty", ErrInvalidCVFile)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return CVFileInfo{}, fmt.Errorf("%w: file exceeds %d MB", ErrInvalidCVFile, maxBytes>>20)
	}

	if len(signatures) > 0 && !hasSignature(data, signatures) {
		return CVFileInfo{}, fmt.Errorf("%w: file content does not match extension", ErrInvalidCVFile)
	}
	if ext == ".txt" && !utf8.Valid(data) {
		return CVFileInfo{}, fmt.Errorf("%w: text file is not UTF-8", ErrInvalidCVFile)
	}

	detected := http.DetectContentType(data)
	mime := strings.TrimSpace(strings.SplitN(detected, ";", 2)[0])
	if !strictMIMETypes[ext][mime] {
		return CVFileInfo{}, fmt.Errorf("%w: MIME type %s not allowed for %s", ErrInvalidCVFile, mime, ext)
	}

	return CVFileInfo{Extension: ext, ContentType: canonicalContentType(ext, mime)}, nil
}

func hasSignature(data []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func canonicalContentType(ext, detected string) string {
	if ext == ".docx" {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if ext == ".txt" {
		return "text/plain; charset=utf-8"
	}
	return detected
}

// AllowedCVExtensions returns the accepted extensions, sorted, for error messages.
func AllowedCVExtensions() []string {
	extensions := make([]string, 0, len(magicBytes))
	for ext := range magicBytes {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
