package services

import (
	"encoding/json"
	"os"
	"strings"
)

// Prompts 翻译提示词模板配置
// 模板中的{target_language}和{text}占位符在请求时替换
type Prompts struct {
	System          []string `json:"system"`            // 翻译系统提示词，按行拼接
	ContextHeader   string   `json:"context_header"`    // 上下文段落的标题行
	ContextEntry    string   `json:"context_entry"`     // 上下文条目模板(仅配置展示用)
	UserPrompt      string   `json:"user_prompt"`       // 翻译用户提示词模板
	AdaptSystem     []string `json:"adapt_system"`      // 润色系统提示词，按行拼接
	AdaptUserPrompt string   `json:"adapt_user_prompt"` // 润色用户提示词模板
	Temperature     float32  `json:"temperature"`       // 默认采样温度
}

// DefaultPrompts 返回内置的默认提示词配置
func DefaultPrompts() *Prompts {
	return &Prompts{
		System: []string{
			"You are a precise translation engine.",
			"Translate the given text into {target_language}.",
			"Output ONLY the translation text.",
			"Do not include explanations, quotes, commentary, prefixes, or extra lines.",
			"Maintain consistent terminology and style with the prior translated passages provided.",
		},
		ContextHeader: "=== PREVIOUSLY TRANSLATED PASSAGES (for context and consistency) ===",
		ContextEntry:  `{index}. "{original}" → "{translation}"`,
		UserPrompt:    "=== NEW TEXT TO TRANSLATE ===\n{text}",
		AdaptSystem: []string{
			"You are a skilled editor for {target_language} text.",
			"Rewrite the following translated passage so it reads naturally in {target_language}.",
			"Preserve the original meaning but improve fluency and idiom.",
			"Output ONLY the adapted text.",
		},
		AdaptUserPrompt: "=== TEXT TO ADAPT ===\n{text}",
		Temperature:     0.1,
	}
}

// LoadPrompts 从JSON文件加载提示词配置
// 文件中出现的键覆盖默认值，缺失的键保留默认值
// 文件不存在或解析失败时返回默认配置
func LoadPrompts(path string) (*Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prompts, nil
		}
		return DefaultPrompts(), err
	}

	if err := json.Unmarshal(data, prompts); err != nil {
		return DefaultPrompts(), err
	}

	return prompts, nil
}

// SystemPrompt 生成翻译系统提示词
func (p *Prompts) SystemPrompt(targetLanguage string) string {
	return renderLines(p.System, targetLanguage)
}

// AdaptSystemPrompt 生成润色系统提示词
func (p *Prompts) AdaptSystemPrompt(targetLanguage string) string {
	return renderLines(p.AdaptSystem, targetLanguage)
}

func renderLines(lines []string, targetLanguage string) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = strings.ReplaceAll(line, "{target_language}", targetLanguage)
	}
	return strings.Join(rendered, "\n")
}
