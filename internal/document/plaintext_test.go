package document

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainTextTitleAndAuthor(t *testing.T) {
	content := "Short Title\n\nJohn Doe\n\nThis is the body text of the document which is reasonably long."

	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Equal(t, StyleTitle, passages[0].Style)
	assert.Equal(t, "Short Title", passages[0].Text)
	assert.Equal(t, StyleAuthor, passages[1].Style)
	assert.Equal(t, "John Doe", passages[1].Text)
	assert.Equal(t, StyleParagraph, passages[2].Style)

	for _, p := range passages {
		assert.NotEmpty(t, p.ID)
		assert.Nil(t, p.Page, "txt passages should not carry page numbers")
	}
}

func TestPlainTextLongFirstParagraph(t *testing.T) {
	long := strings.Repeat("word ", 25) // well over 100 chars
	content := long + "\n\nJohn Doe\n\nBody paragraph text."

	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, passages, 3)

	assert.Equal(t, StyleParagraph, passages[0].Style)
	// 第一段不是标题时，第二段不再判为作者
	assert.Equal(t, StyleParagraph, passages[1].Style)
}

func TestPlainTextShortParagraphDropped(t *testing.T) {
	content := "First paragraph with enough text.\n\nabc\n\nLast paragraph with enough text."

	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, passages, 2)

	for _, p := range passages {
		assert.NotEqual(t, "abc", p.Text)
	}
}

func TestPlainTextWhitespaceCollapsed(t *testing.T) {
	content := "Line one\nline two   with \t spaces\n\nSecond paragraph here."

	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, passages, 2)

	assert.Equal(t, "Line one line two with spaces", passages[0].Text)
}

func TestPlainTextInvalidUTF8(t *testing.T) {
	content := append([]byte("Valid text before "), 0xff, 0xfe)
	content = append(content, []byte(" and after the bad bytes.")...)

	passages, err := NewPlainTextExtractor().ExtractReader(bytes.NewReader(content))
	require.NoError(t, err, "malformed encoding should not fail extraction")
	require.NotEmpty(t, passages)
	assert.NotEmpty(t, passages[0].Text)
}

func TestPlainTextEmptyInput(t *testing.T) {
	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader("   \n\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestPlainTextFromFile(t *testing.T) {
	file := createTempFile(t, "A Tale of Two Files\n\nBody text that is long enough to keep.", ".txt")
	defer os.Remove(file)

	passages, err := NewPlainTextExtractor().Extract(file)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, StyleTitle, passages[0].Style)
}

func TestPlainTextIdempotent(t *testing.T) {
	content := "Short Title\n\nJohn Doe\n\nBody paragraph text here."
	extractor := NewPlainTextExtractor()

	first, err := extractor.ExtractReader(strings.NewReader(content))
	require.NoError(t, err)
	second, err := extractor.ExtractReader(strings.NewReader(content))
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Text, second[i].Text)
		assert.Equal(t, first[i].Style, second[i].Style)
		assert.NotEqual(t, first[i].ID, second[i].ID, "ids are generated fresh per extraction")
	}
}

func TestPlainTextStyleSetClosed(t *testing.T) {
	content := "Title Here\n\nAuthor Name\n\nFirst body paragraph.\n\n" + strings.Repeat("Long paragraph text. ", 10)

	passages, err := NewPlainTextExtractor().ExtractReader(strings.NewReader(content))
	require.NoError(t, err)

	valid := map[Style]bool{StyleTitle: true, StyleHeading: true, StyleAuthor: true, StyleParagraph: true}
	for _, p := range passages {
		assert.True(t, valid[p.Style], "unexpected style %q", p.Style)
	}
}
