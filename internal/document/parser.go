package document

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FileType 支持的文档格式
type FileType string

const (
	// PDF 文档类型
	PDF FileType = "pdf"
	// TXT 纯文本类型
	TXT FileType = "txt"
	// DOCX Word文档类型
	DOCX FileType = "docx"
)

var (
	// ErrUnsupportedFormat 不支持的文档格式
	// 属于可报告错误，调用方应拒绝请求而非崩溃
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmptyResult 解析成功但没有提取到任何段落
	// 调用方与解析失败同等处理（向用户报告"未找到文本内容"）
	ErrEmptyResult = errors.New("no text content found in document")
)

// Extractor 段落提取器接口
// 负责将某一格式的文档解析为有序的段落序列
// 提取器无共享可变状态，同一实例可安全地并发使用
type Extractor interface {
	// Extract 从文件路径提取段落
	Extract(filePath string) ([]Passage, error)

	// ExtractReader 从Reader提取段落
	ExtractReader(r io.Reader) ([]Passage, error)
}

// 文件扩展名到格式的映射
var extTypes = map[string]FileType{
	".pdf":  PDF,
	".txt":  TXT,
	".text": TXT,
	".docx": DOCX,
}

// Content-Type到格式的映射（精确匹配）
var contentTypes = map[string]FileType{
	"application/pdf":   PDF,
	"application/x-pdf": PDF,
	"text/plain":        TXT,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
}

// DetectFileType 根据文件名和Content-Type检测文档格式
// 优先匹配扩展名（不区分大小写），其次精确匹配Content-Type，
// 都不匹配时返回false表示格式不受支持
func DetectFileType(filename string, contentType string) (FileType, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ft, ok := extTypes[ext]; ok {
		return ft, true
	}

	if contentType != "" {
		if ft, ok := contentTypes[contentType]; ok {
			return ft, true
		}
	}

	return "", false
}

// ExtractorFactory 根据文档格式创建对应的提取器
func ExtractorFactory(fileType FileType) (Extractor, error) {
	switch fileType {
	case PDF:
		return NewPDFExtractor(), nil
	case TXT:
		return NewPlainTextExtractor(), nil
	case DOCX:
		return NewDocxExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

// Parse 解析文档并返回段落序列
// 这是提取层的统一入口：按格式分发到对应的提取策略
func Parse(filePath string, fileType FileType) ([]Passage, error) {
	extractor, err := ExtractorFactory(fileType)
	if err != nil {
		return nil, err
	}
	return extractor.Extract(filePath)
}

// ParseReader 从Reader解析文档并返回段落序列
func ParseReader(r io.Reader, fileType FileType) ([]Passage, error) {
	extractor, err := ExtractorFactory(fileType)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractReader(r)
}
