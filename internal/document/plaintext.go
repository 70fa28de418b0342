package document

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// 段落分隔符：一个换行后跟任意空白再跟一个换行（即至少一个空行）
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// PlainTextExtractor 纯文本段落提取器
type PlainTextExtractor struct{}

// NewPlainTextExtractor 创建纯文本提取器
func NewPlainTextExtractor() Extractor {
	return &PlainTextExtractor{}
}

// Extract 从纯文本文件提取段落
func (e *PlainTextExtractor) Extract(filePath string) ([]Passage, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open text file: %w", err)
	}
	defer file.Close()

	return e.ExtractReader(file)
}

// ExtractReader 从Reader提取段落
// 非法字节序列替换为U+FFFD，解码永不失败
func (e *PlainTextExtractor) ExtractReader(r io.Reader) ([]Passage, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text content: %w", err)
	}

	text := strings.ToValidUTF8(string(content), "�")
	paragraphs := splitParagraphs(text)

	passages := make([]Passage, 0, len(paragraphs))
	ctx := classifyContext{}
	for i, p := range paragraphs {
		style := classifyTextParagraph(i, p, &ctx)
		passages = append(passages, newPassage(p, nil, style))
		ctx.emit(style)
	}

	return passages, nil
}

// splitParagraphs 按空行切分文本并规范化
// 规范化后不足最小长度的段落视为噪声丢弃
func splitParagraphs(text string) []string {
	var result []string
	for _, p := range paragraphBreak.Split(text, -1) {
		cleaned := collapseWhitespace(p)
		if cleaned != "" && textLen(cleaned) >= minParagraphLen {
			result = append(result, cleaned)
		}
	}
	return result
}

// classifyTextParagraph 纯文本段落的样式分类
// 仅对文档前两个保留段落应用标题/作者启发式，且只评估一次：
// 第一段较短判为标题；第二段较短且第一段是标题时判为作者
func classifyTextParagraph(index int, text string, ctx *classifyContext) Style {
	switch {
	case index == 0 && textLen(text) < titleMaxLen:
		return StyleTitle
	case index == 1 && textLen(text) < authorMaxLen && ctx.lastStyle == StyleTitle:
		return StyleAuthor
	default:
		return StyleParagraph
	}
}
