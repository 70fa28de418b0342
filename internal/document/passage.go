package document

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Style 段落样式标签
// 由启发式分类器给出，不代表文档的权威语义结构
type Style string

const (
	// StyleTitle 标题
	StyleTitle Style = "title"
	// StyleHeading 小节标题
	StyleHeading Style = "heading"
	// StyleAuthor 作者
	StyleAuthor Style = "author"
	// StyleParagraph 正文段落
	StyleParagraph Style = "paragraph"
)

// Passage 从文档中提取的一个文本段落
// Page为1起始的页码，仅对有页面概念的格式(PDF)有效
type Passage struct {
	ID    string `json:"id"`             // 段落唯一标识符
	Text  string `json:"text"`           // 规范化后的文本内容
	Page  *int   `json:"page,omitempty"` // 页码（可选）
	Style Style  `json:"style"`          // 样式标签
}

// 分类启发式的经验阈值，调整会改变分类结果
const (
	// titleSizeRatio 字号达到正文字号该倍数的文本块判为标题
	titleSizeRatio = 1.5
	// headingSizeRatio 字号达到正文字号该倍数(或加粗)的文本块判为小节标题
	headingSizeRatio = 1.2
	// titleMaxLen 首段判为标题的最大字符数
	titleMaxLen = 100
	// headingMaxLen 判为小节标题/作者的最大字符数，超过则回落为正文
	headingMaxLen = 100
	// authorMaxLen 判为作者的最大字符数
	authorMaxLen = 80
	// minParagraphLen 纯文本段落的最小保留长度
	minParagraphLen = 5
	// minBlockLen PDF文本块的最小保留长度
	minBlockLen = 3
	// defaultFontSize 文档中没有任何文本时使用的默认字号
	defaultFontSize = 12.0
)

// classifyContext 分类上下文
// 分类规则依赖已输出的段落数量和上一个段落的样式，
// 显式传递该上下文，避免提取器持有共享可变状态
type classifyContext struct {
	count     int   // 已输出的段落数量
	lastStyle Style // 上一个输出段落的样式
}

// emit 记录一次段落输出
func (c *classifyContext) emit(style Style) {
	c.count++
	c.lastStyle = style
}

// newPassage 创建一个新段落，ID在创建时生成且不复用
func newPassage(text string, page *int, style Style) Passage {
	return Passage{
		ID:    uuid.New().String(),
		Text:  text,
		Page:  page,
		Style: style,
	}
}

// collapseWhitespace 将文本内的所有空白串(含换行)压缩为单个空格并去除首尾空白
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textLen 返回文本的字符数（按Unicode字符计，而非字节数）
func textLen(s string) int {
	return utf8.RuneCountInString(s)
}
