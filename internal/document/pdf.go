package document

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// 版面重组参数：底层库返回的是零散文本片段，
// 需要按坐标重组为 行 -> 文本块 的结构
const (
	// lineMergeFactor 基线Y差在字号该倍数内的片段视为同一行
	lineMergeFactor = 0.3
	// lineMergeMinTol 行合并容差的下限（PDF坐标单位）
	lineMergeMinTol = 2.0
	// blockGapFactor 相邻两行垂直间距超过字号该倍数时切分为新文本块
	blockGapFactor = 1.8
	// spanGapFactor 同一行内片段水平间距超过字号该倍数时补一个空格
	spanGapFactor = 0.3
)

// PDFExtractor PDF段落提取器
// 基于两遍扫描：先统计全文档的正文字号基线，再按字号比例分类文本块
type PDFExtractor struct{}

// NewPDFExtractor 创建PDF提取器
func NewPDFExtractor() Extractor {
	return &PDFExtractor{}
}

// Extract 从PDF文件提取段落
func (e *PDFExtractor) Extract(filePath string) ([]Passage, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}
	defer f.Close()

	return extractPDF(r)
}

// ExtractReader 从Reader提取段落
func (e *PDFExtractor) ExtractReader(reader io.Reader) ([]Passage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf content: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}

	return extractPDF(r)
}

// span 一个文本片段及其字体信息
type span struct {
	text string
	size float64
	bold bool
	x    float64
	y    float64
	w    float64
}

// textLine 同一基线上的一组片段
type textLine struct {
	y       float64
	maxSize float64
	spans   []span
}

// textBlock 垂直方向相邻的一组行
type textBlock struct {
	lines []textLine
}

// extractPDF 执行两遍扫描提取
// 底层库在部分损坏文件上会panic，这里统一转换为解析错误
func extractPDF(r *pdf.Reader) (passages []Passage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("failed to parse pdf: %v", rec)
		}
	}()

	// 按页收集片段，作为两遍扫描共同的不可变输入
	pageSpans := make([][]span, 0, r.NumPage())
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			pageSpans = append(pageSpans, nil)
			continue
		}
		pageSpans = append(pageSpans, collectSpans(page))
	}

	// 第一遍：确定正文字号基线
	normalSize := computeBaseline(pageSpans)

	// 第二遍：重组文本块并分类
	ctx := classifyContext{}
	for i, spans := range pageSpans {
		pageNum := i + 1
		for _, block := range groupBlocks(groupLines(spans)) {
			text := block.cleanedText()
			if text == "" || textLen(text) < minBlockLen {
				continue
			}

			ratio := 1.0
			if normalSize > 0 {
				ratio = block.maxFontSize() / normalSize
			}

			style := classifyPDFBlock(ratio, block.hasBold(), textLen(text), pageNum, &ctx)
			p := pageNum
			passages = append(passages, newPassage(text, &p, style))
			ctx.emit(style)
		}
	}

	return passages, nil
}

// collectSpans 收集一页内的所有文本片段
func collectSpans(page pdf.Page) []span {
	content := page.Content()
	spans := make([]span, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		spans = append(spans, span{
			text: t.S,
			size: t.FontSize,
			bold: isBoldFont(t.Font),
			x:    t.X,
			y:    t.Y,
			w:    t.W,
		})
	}
	return spans
}

// computeBaseline 计算全文档的正文字号
// 字号按字符数加权取众数；权重相同时取较大字号；无文本时取默认字号
func computeBaseline(pageSpans [][]span) float64 {
	weights := make(map[float64]int)
	for _, spans := range pageSpans {
		for _, s := range spans {
			trimmed := strings.TrimSpace(s.text)
			if trimmed == "" {
				continue
			}
			weights[s.size] += textLen(trimmed)
		}
	}

	if len(weights) == 0 {
		return defaultFontSize
	}

	var modal float64
	bestWeight := -1
	for size, weight := range weights {
		if weight > bestWeight || (weight == bestWeight && size > modal) {
			modal = size
			bestWeight = weight
		}
	}
	return modal
}

// groupLines 将片段按阅读顺序（自上而下、从左到右）重组为行
func groupLines(spans []span) []textLine {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y // PDF坐标原点在左下角
		}
		return sorted[i].x < sorted[j].x
	})

	var lines []textLine
	for _, s := range sorted {
		tol := s.size * lineMergeFactor
		if tol < lineMergeMinTol {
			tol = lineMergeMinTol
		}

		if len(lines) > 0 && math.Abs(lines[len(lines)-1].y-s.y) <= tol {
			last := &lines[len(lines)-1]
			last.spans = append(last.spans, s)
			if s.size > last.maxSize {
				last.maxSize = s.size
			}
			continue
		}

		lines = append(lines, textLine{y: s.y, maxSize: s.size, spans: []span{s}})
	}

	for i := range lines {
		ln := lines[i].spans
		sort.SliceStable(ln, func(a, b int) bool { return ln[a].x < ln[b].x })
	}

	return lines
}

// groupBlocks 按行间垂直间距将行聚合为文本块
func groupBlocks(lines []textLine) []textBlock {
	var blocks []textBlock
	for i, line := range lines {
		if i > 0 {
			prev := lines[i-1]
			ref := prev.maxSize
			if line.maxSize > ref {
				ref = line.maxSize
			}
			if prev.y-line.y <= ref*blockGapFactor {
				last := &blocks[len(blocks)-1]
				last.lines = append(last.lines, line)
				continue
			}
		}
		blocks = append(blocks, textBlock{lines: []textLine{line}})
	}
	return blocks
}

// text 拼接一行内的片段文本，片段间水平间距较大时补空格
func (l textLine) text() string {
	var b strings.Builder
	var prevEnd float64
	for i, s := range l.spans {
		if i > 0 && s.x-prevEnd > s.size*spanGapFactor {
			b.WriteByte(' ')
		}
		b.WriteString(s.text)
		prevEnd = s.x + s.w
	}
	return b.String()
}

// cleanedText 块内各行以空格连接并规范化空白
func (b textBlock) cleanedText() string {
	parts := make([]string, 0, len(b.lines))
	for _, line := range b.lines {
		parts = append(parts, line.text())
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

// maxFontSize 块内所有片段的最大字号
func (b textBlock) maxFontSize() float64 {
	var max float64
	for _, line := range b.lines {
		for _, s := range line.spans {
			if s.size > max {
				max = s.size
			}
		}
	}
	return max
}

// hasBold 块内是否存在加粗片段
func (b textBlock) hasBold() bool {
	for _, line := range b.lines {
		for _, s := range line.spans {
			if s.bold {
				return true
			}
		}
	}
	return false
}

// classifyPDFBlock PDF文本块的样式分类
// 字号比例优先；标题样字号(或加粗)的长文本回落为正文；
// 第一页中紧跟标题的短文本判为作者，其余判为小节标题
func classifyPDFBlock(ratio float64, bold bool, length int, pageNum int, ctx *classifyContext) Style {
	switch {
	case ratio >= titleSizeRatio:
		return StyleTitle
	case ratio >= headingSizeRatio || bold:
		if length >= headingMaxLen {
			return StyleParagraph
		}
		// 已知边界情形：标题出现在非首页时，后续短文本不会判为作者
		if pageNum == 1 && ctx.count > 0 && ctx.lastStyle == StyleTitle {
			return StyleAuthor
		}
		return StyleHeading
	default:
		return StyleParagraph
	}
}

// isBoldFont 从字体名判断是否加粗（如 Helvetica-Bold、Arial,Bold）
func isBoldFont(fontName string) bool {
	return strings.Contains(strings.ToLower(fontName), "bold")
}
