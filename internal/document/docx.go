package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// DocxExtractor DOCX段落提取器
// DOCX本质是ZIP包，正文位于word/document.xml，
// 段落样式由 w:pPr/w:pStyle 的 w:val 属性给出
type DocxExtractor struct{}

// NewDocxExtractor 创建DOCX提取器
func NewDocxExtractor() Extractor {
	return &DocxExtractor{}
}

// docxDocument word/document.xml 的根节点
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Properties docxParagraphProps `xml:"pPr"`
	Runs       []docxRun          `xml:"r"`
}

type docxParagraphProps struct {
	Style docxStyle `xml:"pStyle"`
}

type docxStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Texts []string `xml:"t"`
}

// Extract 从DOCX文件提取段落
func (e *DocxExtractor) Extract(filePath string) ([]Passage, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return e.ExtractReader(f)
}

// ExtractReader 从Reader提取段落
func (e *DocxExtractor) ExtractReader(reader io.Reader) ([]Passage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read docx content: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}

	var doc docxDocument
	found := false
	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to parse docx: %w", err)
		}
		err = xml.NewDecoder(rc).Decode(&doc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse docx: %w", err)
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("failed to parse docx: missing word/document.xml")
	}

	var passages []Passage
	ctx := classifyContext{}
	for _, para := range doc.Body.Paragraphs {
		text := collapseWhitespace(paragraphText(para))
		if text == "" {
			continue
		}

		style := classifyDocxParagraph(para.Properties.Style.Val, textLen(text), &ctx)
		if textLen(text) <= minParagraphLen && style == StyleParagraph {
			continue
		}

		passages = append(passages, newPassage(text, nil, style))
		ctx.emit(style)
	}

	return passages, nil
}

// paragraphText 合并段落内所有run的文本
func paragraphText(para docxParagraph) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for _, t := range run.Texts {
			b.WriteString(t)
		}
	}
	return b.String()
}

// classifyDocxParagraph 按段落样式名分类
// Title判为标题；Heading前缀判为小节标题；
// Subtitle或文档开头的短段落在尚未产出任何段落时判为作者
func classifyDocxParagraph(styleID string, length int, ctx *classifyContext) Style {
	switch {
	case styleID == "Title":
		return StyleTitle
	case strings.HasPrefix(styleID, "Heading"):
		return StyleHeading
	case styleID == "Subtitle" || (ctx.count == 0 && length < authorMaxLen):
		if ctx.count == 0 {
			return StyleAuthor
		}
		return StyleHeading
	default:
		return StyleParagraph
	}
}
