package document

import (
	"archive/zip"
	"bytes"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDocx(t *testing.T, documentXML string) string {
	tmpFile, err := ioutil.TempFile("", "steptrans-test-*.docx")
	require.NoError(t, err, "Failed to create temp DOCX file")
	defer tmpFile.Close()

	zw := zip.NewWriter(tmpFile)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return tmpFile.Name()
}

func docxXML(paragraphs ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(paragraphs, "") +
		`</w:body></w:document>`
}

func docxPara(style, text string) string {
	pPr := ""
	if style != "" {
		pPr = `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return `<w:p>` + pPr + `<w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestDocxStyleMapping(t *testing.T) {
	file := createTempDocx(t, docxXML(
		docxPara("Title", "My Document"),
		docxPara("Heading1", "Chapter One"),
		docxPara("", "A long enough body paragraph that carries the actual document content."),
	))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Equal(t, StyleTitle, passages[0].Style)
	assert.Equal(t, "My Document", passages[0].Text)
	assert.Equal(t, StyleHeading, passages[1].Style)
	assert.Equal(t, "Chapter One", passages[1].Text)
	assert.Equal(t, StyleParagraph, passages[2].Style)

	for _, p := range passages {
		assert.Nil(t, p.Page, "docx passages should not carry page numbers")
		assert.NotEmpty(t, p.ID)
	}
}

func TestDocxHeadingRegardlessOfPosition(t *testing.T) {
	file := createTempDocx(t, docxXML(
		docxPara("", strings.Repeat("Opening body paragraph long enough to avoid author detection. ", 2)),
		docxPara("Heading1", "Chapter One"),
	))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, StyleHeading, passages[1].Style)
	assert.Equal(t, "Chapter One", passages[1].Text)
}

func TestDocxLeadingShortParagraphIsAuthor(t *testing.T) {
	file := createTempDocx(t, docxXML(
		docxPara("", "John Doe"),
		docxPara("", "Body paragraph with enough text to be retained."),
	))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, StyleAuthor, passages[0].Style)
	assert.Equal(t, StyleParagraph, passages[1].Style)
}

func TestDocxSubtitleAfterTitle(t *testing.T) {
	file := createTempDocx(t, docxXML(
		docxPara("Title", "My Document"),
		docxPara("Subtitle", "A closer look"),
	))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 2)

	// 已有段落输出后Subtitle判为小节标题
	assert.Equal(t, StyleHeading, passages[1].Style)
}

func TestDocxShortParagraphFiltered(t *testing.T) {
	file := createTempDocx(t, docxXML(
		docxPara("Title", "My Document"),
		docxPara("", "Body paragraph with enough text to be retained."),
		docxPara("", "Hi"),
		docxPara("Heading2", "1.1"),
	))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 3)

	// 短正文段落是噪声，但短标题样式段落保留
	for _, p := range passages {
		assert.NotEqual(t, "Hi", p.Text)
	}
	assert.Equal(t, StyleHeading, passages[2].Style)
	assert.Equal(t, "1.1", passages[2].Text)
}

func TestDocxMultipleRunsJoined(t *testing.T) {
	para := `<w:p><w:r><w:t>Split </w:t></w:r><w:r><w:t>across </w:t></w:r><w:r><w:t>several runs of text.</w:t></w:r></w:p>`
	file := createTempDocx(t, docxXML(para))
	defer os.Remove(file)

	passages, err := NewDocxExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "Split across several runs of text.", passages[0].Text)
}

func TestDocxMissingDocumentXML(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "steptrans-test-*.docx")
	require.NoError(t, err)
	zw := zip.NewWriter(tmpFile)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = NewDocxExtractor().Extract(tmpFile.Name())
	require.Error(t, err)
}

func TestDocxInvalidArchive(t *testing.T) {
	_, err := NewDocxExtractor().ExtractReader(bytes.NewReader([]byte("not a zip archive")))
	require.Error(t, err)
}
