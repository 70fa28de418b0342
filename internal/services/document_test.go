package services

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcjkurz/step-translate/internal/document"
	"github.com/mcjkurz/step-translate/pkg/storage"
)

func newTestDocumentService(t *testing.T, opts ...DocumentOption) (*DocumentService, storage.Storage) {
	t.Helper()

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	return NewDocumentService(store, opts...), store
}

func TestUploadPlainText(t *testing.T) {
	svc, store := newTestDocumentService(t)

	content := []byte("Short Title\n\nJohn Doe\n\nThis is the body text of the document which is reasonably long.")
	result, err := svc.Upload("book.txt", "text/plain", content)
	require.NoError(t, err)

	assert.NotEmpty(t, result.FileID)
	assert.Equal(t, "book.txt", result.FileName)
	assert.Equal(t, document.TXT, result.FileType)
	assert.Equal(t, ".txt", result.StoredExt)
	assert.Equal(t, 0, result.PageCount)
	require.Len(t, result.Passages, 3)
	assert.Equal(t, document.StyleTitle, result.Passages[0].Style)
	assert.Equal(t, document.StyleAuthor, result.Passages[1].Style)
	assert.Equal(t, document.StyleParagraph, result.Passages[2].Style)

	exists, err := store.Exists(result.FileID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadPDF(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, "This is a reasonably long paragraph of body text for the upload test.", "", "L", false)
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	result, err := svc.Upload("report.pdf", "application/pdf", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, document.PDF, result.FileType)
	assert.Equal(t, 1, result.PageCount)
	assert.NotEmpty(t, result.Passages)
}

func TestUploadMissingFilename(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	_, err := svc.Upload("", "text/plain", []byte("hello"))
	require.Error(t, err)
	assert.True(t, IsUploadError(err))
	assert.Equal(t, "Missing filename.", err.Error())
}

func TestUploadUnsupportedType(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	_, err := svc.Upload("data.csv", "text/csv", []byte("a,b,c"))
	require.Error(t, err)
	assert.True(t, IsUploadError(err))
	assert.Contains(t, err.Error(), "Unsupported file type")
}

func TestUploadEmptyFile(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	_, err := svc.Upload("empty.txt", "text/plain", nil)
	require.Error(t, err)
	assert.Equal(t, "Empty file.", err.Error())
}

func TestUploadFileTooLarge(t *testing.T) {
	svc, _ := newTestDocumentService(t, WithMaxUploadMB(1))

	big := make([]byte, 1<<20+1)
	_, err := svc.Upload("big.txt", "text/plain", big)
	require.Error(t, err)
	assert.Equal(t, "File too large (max 1MB).", err.Error())
}

func TestUploadInvalidPDFMagic(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	_, err := svc.Upload("fake.pdf", "application/pdf", []byte("not a pdf at all"))
	require.Error(t, err)
	assert.Equal(t, "Invalid PDF file.", err.Error())
}

func TestUploadParseFailureRollsBack(t *testing.T) {
	svc, store := newTestDocumentService(t)

	// 魔数正确但内容无法解析
	_, err := svc.Upload("broken.pdf", "application/pdf", []byte("%PDF-1.7 garbage"))
	require.Error(t, err)
	assert.True(t, IsUploadError(err))

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files, "saved file should be removed after parse failure")
}

func TestUploadNoTextContent(t *testing.T) {
	svc, store := newTestDocumentService(t)

	// 所有段落都低于最小长度
	_, err := svc.Upload("tiny.txt", "text/plain", []byte("ab\n\ncd"))
	require.Error(t, err)
	assert.Equal(t, "No text content found in document.", err.Error())

	files, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGetFile(t *testing.T) {
	svc, _ := newTestDocumentService(t)

	content := []byte("Some sufficiently long paragraph for the passage extractor to keep.")
	result, err := svc.Upload("notes.txt", "text/plain", content)
	require.NoError(t, err)

	info, data, err := svc.GetFile(result.FileID)
	require.NoError(t, err)
	assert.Equal(t, result.FileID, info.ID)
	assert.Equal(t, content, data)

	_, _, err = svc.GetFile("no-such-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
