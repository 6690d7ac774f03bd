package ingestion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/plain", true},
		{"text/plain; charset=utf-8", true},
		{"TEXT/PLAIN", true},
		{"application/pdf", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"application/msword", false},
		{"image/png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, SupportedType(tt.contentType))
		})
	}
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".txt", ExtensionFor("text/plain; charset=utf-8"))
	assert.Equal(t, ".pdf", ExtensionFor("application/pdf"))
	assert.Equal(t, ".docx", ExtensionFor(MIMEDocx))
	assert.Empty(t, ExtensionFor("image/png"))
}

func TestExtractText_PlainText(t *testing.T) {
	data := []byte("Jane Doe\nSenior Engineer\n")

	text, err := ExtractText("text/plain; charset=utf-8", data)
	require.NoError(t, err)
	assert.Equal(t, string(data), text)
}

func TestExtractText_UnsupportedType(t *testing.T) {
	_, err := ExtractText("image/png", []byte{0x89, 0x50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText("application/pdf", []byte("not a pdf"))
	assert.Error(t, err)
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestReadLimited_ExactLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 10)

	data, err := ReadLimited(bytes.NewReader(payload), 10)
	require.NoError(t, err)
	assert.Len(t, data, 10)
}

func TestReadLimited_OverLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 11)

	_, err := ReadLimited(bytes.NewReader(payload), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum size")
}
