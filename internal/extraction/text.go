// Package extraction turns an uploaded CV document into a structured CVExtraction using an LLM.
package extraction

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"talent-hub-backend/internal/domain"

	"github.com/ledongthuc/pdf"
	"github.com/lu4p/cat"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported CV format")
	ErrNoText            = errors.New("no text content found in CV")
)

// TextFromFile returns the plain text of a PDF, DOCX or TXT document.
func TextFromFile(file domain.CVFile) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".pdf":
		text, err = pdfText(file.Data)
	case ".docx":
		text, err = docxText(file.Data)
	case ".txt":
		if !utf8.Valid(file.Data) {
			return "", fmt.Errorf("%w: text file is not UTF-8", ErrUnsupportedFormat)
		}
		text = string(file.Data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, file.Name)
	}
	if err != nil {
		return "", err
	}
	text = CleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken page should not lose the rest of the document.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

var zipMagic = []byte("PK\x03\x04")

// docxText reads the document body through cat, which sniffs the content itself, so the
// archive signature is checked first.
func docxText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return "", fmt.Errorf("%w: DOCX is not a zip archive", ErrUnsupportedFormat)
	}
	text, err := cat.FromBytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX: %w", err)
	}
	return text, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
