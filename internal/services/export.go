package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// 导出相关的错误，消息直接面向客户端返回
var (
	// ErrNoTextToExport 待导出文本为空
	ErrNoTextToExport = errors.New("No text to export.")

	// ErrUnsupportedExportFormat 不支持的导出格式
	ErrUnsupportedExportFormat = errors.New("Unsupported format. Use txt, docx, or pdf.")
)

const (
	// maxExportFilenameLen 导出文件名长度上限
	maxExportFilenameLen = 100

	// exportFontSize 导出正文字号(磅)
	exportFontSize = 11
)

// unsafeFilenameChars 文件名中需要替换的字符
var unsafeFilenameChars = regexp.MustCompile(`[^\w\-.]`)

// sanitizeFilename 清理用户提供的文件名，防止路径注入
func sanitizeFilename(name string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	if runes := []rune(safe); len(runes) > maxExportFilenameLen {
		safe = string(runes[:maxExportFilenameLen])
	}
	return safe
}

// ExportResult 导出结果
type ExportResult struct {
	Data        []byte // 文件内容
	ContentType string // HTTP Content-Type
	FileName    string // 下载文件名(含扩展名)
}

// ExportService 译文导出服务
// 将翻译结果渲染为txt、docx或pdf文件
type ExportService struct {
	logger   *logrus.Logger
	fontPath string // 可选的TTF字体路径，用于PDF中的CJK文本
}

// ExportOption 导出服务配置选项
type ExportOption func(*ExportService)

// WithExportLogger 设置日志记录器
func WithExportLogger(logger *logrus.Logger) ExportOption {
	return func(s *ExportService) {
		s.logger = logger
	}
}

// WithExportFont 设置PDF导出使用的TTF字体文件
// 不设置时使用内置Helvetica，CJK字符可能无法正确渲染
func WithExportFont(path string) ExportOption {
	return func(s *ExportService) {
		s.fontPath = path
	}
}

// NewExportService 创建导出服务
func NewExportService(opts ...ExportOption) *ExportService {
	s := &ExportService{
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export 将文本渲染为指定格式的文件
func (s *ExportService) Export(text, format, filename string) (*ExportResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoTextToExport
	}

	if filename == "" {
		filename = "translation"
	}
	safeName := sanitizeFilename(filename)

	var result *ExportResult
	var err error

	switch format {
	case "txt":
		result = &ExportResult{
			Data:        []byte(text),
			ContentType: "text/plain; charset=utf-8",
			FileName:    safeName + ".txt",
		}
	case "docx":
		result, err = s.exportDocx(text, safeName)
	case "pdf":
		result, err = s.exportPDF(text, safeName)
	default:
		return nil, ErrUnsupportedExportFormat
	}

	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"format":   format,
		"filename": result.FileName,
		"size":     len(result.Data),
	}).Info("Translation exported")

	return result, nil
}

// splitExportParagraphs 按空行拆分导出文本
func splitExportParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// exportDocx 生成OOXML格式的Word文档
// 文档包只包含最小必需的三个部件
func (s *ExportService) exportDocx(text, safeName string) (*ExportResult, error) {
	var doc bytes.Buffer
	doc.WriteString(xml.Header)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	// OOXML字号单位是半磅
	sizeVal := fmt.Sprintf("%d", exportFontSize*2)
	for _, para := range splitExportParagraphs(text) {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(para)); err != nil {
			return nil, fmt.Errorf("failed to encode paragraph: %w", err)
		}
		doc.WriteString(`<w:p><w:r><w:rPr><w:sz w:val="` + sizeVal + `"/></w:rPr>`)
		doc.WriteString(`<w:t xml:space="preserve">` + escaped.String() + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", doc.String()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create docx part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("failed to write docx part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx: %w", err)
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		FileName:    safeName + ".docx",
	}, nil
}

// exportPDF 生成PDF文档
func (s *ExportService) exportPDF(text, safeName string) (*ExportResult, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(25.4, 25.4, 25.4)
	pdf.SetAutoPageBreak(true, 25.4)
	pdf.AddPage()

	write := func(para string) {
		pdf.MultiCell(0, 7, para, "", "L", false)
	}
	if s.fontPath != "" {
		pdf.AddUTF8Font("body", "", s.fontPath)
		pdf.SetFont("body", "", exportFontSize)
	} else {
		pdf.SetFont("Helvetica", "", exportFontSize)
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		write = func(para string) {
			pdf.MultiCell(0, 7, tr(para), "", "L", false)
		}
	}

	for _, para := range splitExportParagraphs(text) {
		write(para)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return &ExportResult{
		Data:        buf.Bytes(),
		ContentType: "application/pdf",
		FileName:    safeName + ".pdf",
	}, nil
}
