// Package ingestion extracts plain text from uploaded resume files.
package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported resume content types.
const (
	MIMEPlainText = "text/plain"
	MIMEPDF       = "application/pdf"
	MIMEDocx      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// SupportedType reports whether contentType can be extracted.
func SupportedType(contentType string) bool {
	switch normalizeMIME(contentType) {
	case MIMEPlainText, MIMEPDF, MIMEDocx:
		return true
	}
	return false
}

// ExtensionFor returns the canonical file extension for a supported
// content type, empty for unknown types.
func ExtensionFor(contentType string) string {
	switch normalizeMIME(contentType) {
	case MIMEPlainText:
		return ".txt"
	case MIMEPDF:
		return ".pdf"
	case MIMEDocx:
		return ".docx"
	}
	return ""
}

// ExtractText extracts plain text from resume file bytes based on content type.
func ExtractText(contentType string, data []byte) (string, error) {
	switch normalizeMIME(contentType) {
	case MIMEPlainText:
		return string(data), nil
	case MIMEPDF:
		return extractPDFText(data)
	case MIMEDocx:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", contentType)
	}
}

// normalizeMIME strips parameters like "; charset=utf-8".
func normalizeMIME(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page shouldn't lose the rest
			continue
		}
		textBuilder.WriteString(text)
	}
	return textBuilder.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	return doc.Editable().GetContent(), nil
}

// ReadLimited reads at most maxBytes+1 from r, erroring when the source
// exceeds maxBytes. Used to cap resume upload size before buffering.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxBytes)
	}
	return data, nil
}
