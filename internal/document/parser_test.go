package document

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempFile(t *testing.T, content, ext string) string {
	tmpFile, err := ioutil.TempFile("", "steptrans-test-*"+ext)
	require.NoError(t, err, "Failed to create temp file")
	_, err = tmpFile.Write([]byte(content))
	require.NoError(t, err, "Failed to write temp file")
	tmpFile.Close()
	return tmpFile.Name()
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		expected    FileType
		ok          bool
	}{
		{"pdf extension mixed case", "report.PDF", "", PDF, true},
		{"txt extension", "notes.txt", "", TXT, true},
		{"text extension", "notes.text", "", TXT, true},
		{"docx extension", "paper.docx", "", DOCX, true},
		{"extension wins over content type", "report.pdf", "text/plain", PDF, true},
		{"content type fallback", "data.bin", "text/plain", TXT, true},
		{"pdf content type", "data.bin", "application/pdf", PDF, true},
		{"x-pdf content type", "data.bin", "application/x-pdf", PDF, true},
		{"docx content type", "data.bin", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", DOCX, true},
		{"unknown extension no content type", "data.bin", "", "", false},
		{"unknown extension unknown content type", "data.bin", "application/octet-stream", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, ok := DetectFileType(tt.filename, tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, ft)
		})
	}
}

func TestExtractorFactory(t *testing.T) {
	for _, ft := range []FileType{PDF, TXT, DOCX} {
		extractor, err := ExtractorFactory(ft)
		require.NoError(t, err, "ExtractorFactory failed for %s", ft)
		assert.NotNil(t, extractor)
	}

	_, err := ExtractorFactory("csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseDispatch(t *testing.T) {
	file := createTempFile(t, "First paragraph with enough text.\n\nSecond paragraph with enough text.", ".txt")
	defer os.Remove(file)

	passages, err := Parse(file, TXT)
	require.NoError(t, err)
	assert.Len(t, passages, 2)

	_, err = Parse(file, "csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
