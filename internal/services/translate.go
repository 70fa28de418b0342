package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/internal/cache"
	"github.com/mcjkurz/step-translate/internal/llm"
)

// 翻译请求相关的错误，消息直接面向客户端返回
var (
	// ErrMissingAPIKey 请求和环境中都没有可用的API密钥
	ErrMissingAPIKey = errors.New("API key is required. Configure it in Settings or set API_KEY environment variable.")

	// ErrNoTextToTranslate 待翻译文本规范化后为空
	ErrNoTextToTranslate = errors.New("No text to translate.")

	// ErrNoTextToAdapt 待润色文本规范化后为空
	ErrNoTextToAdapt = errors.New("No text to adapt.")

	// ErrEmptyTranslation 模型返回了空翻译
	ErrEmptyTranslation = errors.New("Empty translation response.")

	// ErrEmptyAdaptation 模型返回了空润色结果
	ErrEmptyAdaptation = errors.New("Empty adaptation response.")
)

const (
	// maxContextEntries 上下文中保留的历史译文条数上限
	maxContextEntries = 5

	// maxContextEntryLen 单条历史译文的字符数上限
	maxContextEntryLen = 400

	// requestTimeout 单次模型调用的超时时间
	requestTimeout = 60 * time.Second
)

// paragraphBreak 段落分隔符，连续空行视为段落边界
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// languageLabels 语言缩写到完整语言名称的映射
var languageLabels = map[string]string{
	"en":      "English",
	"zh":      "Chinese (Simplified)",
	"es":      "Spanish",
	"fr":      "French",
	"de":      "German",
	"ja":      "Japanese",
	"ko":      "Korean",
	"ru":      "Russian",
	"pt":      "Portuguese",
	"it":      "Italian",
	"zh-cn":   "Chinese (Simplified)",
	"zh-hans": "Chinese (Simplified)",
	"zh-hant": "Chinese (Traditional)",
}

// TargetLanguageLabel 将语言代码规范化为完整语言名称
// 空值回退到English，未知值原样透传
func TargetLanguageLabel(lang string) string {
	norm := strings.TrimSpace(lang)
	if norm == "" {
		return "English"
	}
	if label, ok := languageLabels[strings.ToLower(norm)]; ok {
		return label
	}
	return norm
}

// normalizeWhitespace 将连续空白压缩为单个空格
// preserveParagraphs为true时保留段落边界(双换行)
func normalizeWhitespace(s string, preserveParagraphs bool) string {
	if !preserveParagraphs {
		return strings.Join(strings.Fields(s), " ")
	}

	paragraphs := paragraphBreak.Split(s, -1)
	normalized := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if collapsed := strings.Join(strings.Fields(p), " "); collapsed != "" {
			normalized = append(normalized, collapsed)
		}
	}
	return strings.Join(normalized, "\n\n")
}

// TranslateService 翻译服务
// 负责组装提示词、调用大模型并缓存翻译结果
type TranslateService struct {
	client   llm.Client  // 默认客户端，使用环境配置的密钥
	cache    cache.Cache // 翻译缓存，可为nil
	prompts  *Prompts
	logger   *logrus.Logger
	apiKey   string // 环境默认API密钥
	endpoint string // 环境默认API端点
	model    string // 环境默认模型
}

// TranslateOption 翻译服务配置选项
type TranslateOption func(*TranslateService)

// WithTranslateCache 设置翻译缓存
func WithTranslateCache(c cache.Cache) TranslateOption {
	return func(s *TranslateService) {
		s.cache = c
	}
}

// WithTranslateLogger 设置日志记录器
func WithTranslateLogger(logger *logrus.Logger) TranslateOption {
	return func(s *TranslateService) {
		s.logger = logger
	}
}

// WithPrompts 设置提示词配置
func WithPrompts(p *Prompts) TranslateOption {
	return func(s *TranslateService) {
		s.prompts = p
	}
}

// WithDefaultClient 设置环境默认客户端及其凭据
// 请求未携带覆盖参数时使用该客户端
func WithDefaultClient(client llm.Client, apiKey, endpoint, model string) TranslateOption {
	return func(s *TranslateService) {
		s.client = client
		s.apiKey = apiKey
		s.endpoint = chatCompletionsURL(endpoint)
		s.model = model
	}
}

// chatCompletionsURL 将API端点规范化为完整的chat completions URL
// 配置中通常只给出基础端点(如 https://api.openai.com/v1)
func chatCompletionsURL(endpoint string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if trimmed == "" {
		return llm.DefaultConfig().BaseURL
	}
	if strings.HasSuffix(trimmed, "/chat/completions") {
		return trimmed
	}
	return trimmed + "/chat/completions"
}

// NewTranslateService 创建翻译服务
func NewTranslateService(opts ...TranslateOption) *TranslateService {
	s := &TranslateService{
		prompts:  DefaultPrompts(),
		logger:   logrus.New(),
		endpoint: llm.DefaultConfig().BaseURL,
		model:    llm.DefaultConfig().Model,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TranslateInput 翻译请求参数
// APIKey等字段为请求级覆盖，为空则回退到服务默认值
type TranslateInput struct {
	SelectedText      string   // 待翻译文本
	TargetLanguage    string   // 目标语言(代码或名称)
	PriorTranslations []string // 之前的译文，用于保持风格一致
	APIKey            string
	APIEndpoint       string
	Model             string
	Temperature       *float32
	SystemPrompt      string // 系统提示词覆盖，支持{target_language}占位符
	UserPrompt        string // 用户提示词覆盖，支持{text}占位符
}

// AdaptInput 润色请求参数
type AdaptInput struct {
	SelectedText           string // 待润色的译文
	TargetLanguage         string
	AdditionalInstructions string // 附加润色要求，可为空
	APIKey                 string
	APIEndpoint            string
	Model                  string
	Temperature            *float32
	SystemPrompt           string
	UserPrompt             string
}

// Translate 翻译选中文本
// 携带最近的译文作为上下文，保证术语和风格连贯
func (s *TranslateService) Translate(ctx context.Context, in TranslateInput) (string, error) {
	apiKey, endpoint, model, err := s.resolveCredentials(in.APIKey, in.APIEndpoint, in.Model)
	if err != nil {
		return "", err
	}

	target := TargetLanguageLabel(in.TargetLanguage)
	selected := normalizeWhitespace(in.SelectedText, true)
	if selected == "" {
		return "", ErrNoTextToTranslate
	}

	system := s.prompts.SystemPrompt(target)
	if in.SystemPrompt != "" {
		system = strings.ReplaceAll(in.SystemPrompt, "{target_language}", target)
	}

	user := s.buildUserPrompt(selected, in.UserPrompt, in.PriorTranslations)

	cacheKey := cache.TranslationKey(selected, target, model, system, user)
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(cacheKey); err == nil && ok {
			s.logger.WithField("target_language", target).Debug("Translation cache hit")
			return cached, nil
		}
	}

	text, err := s.complete(ctx, apiKey, endpoint, model, system, user, in.Temperature)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyTranslation
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, text, 0); err != nil {
			s.logger.WithError(err).Warn("Failed to cache translation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"target_language": target,
		"input_length":    len(selected),
		"output_length":   len(text),
	}).Info("Translation completed")

	return text, nil
}

// Adapt 润色译文，使其在目标语言中读起来更自然
func (s *TranslateService) Adapt(ctx context.Context, in AdaptInput) (string, error) {
	apiKey, endpoint, model, err := s.resolveCredentials(in.APIKey, in.APIEndpoint, in.Model)
	if err != nil {
		return "", err
	}

	target := TargetLanguageLabel(in.TargetLanguage)
	selected := normalizeWhitespace(in.SelectedText, true)
	if selected == "" {
		return "", ErrNoTextToAdapt
	}

	system := s.prompts.AdaptSystemPrompt(target)
	if in.SystemPrompt != "" {
		system = strings.ReplaceAll(in.SystemPrompt, "{target_language}", target)
	}

	template := s.prompts.AdaptUserPrompt
	if in.UserPrompt != "" {
		template = in.UserPrompt
	}
	user := strings.ReplaceAll(template, "{text}", selected)

	if extra := strings.TrimSpace(in.AdditionalInstructions); extra != "" {
		user += "\n\n=== ADDITIONAL INSTRUCTIONS ===\n" + extra
	}

	text, err := s.complete(ctx, apiKey, endpoint, model, system, user, in.Temperature)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyAdaptation
	}

	s.logger.WithFields(logrus.Fields{
		"target_language": target,
		"input_length":    len(selected),
		"output_length":   len(text),
	}).Info("Adaptation completed")

	return text, nil
}

// buildUserPrompt 组装用户消息
// 历史译文只保留最近几条，每条截断后编号列出
func (s *TranslateService) buildUserPrompt(selected, override string, priorTranslations []string) string {
	var parts []string

	if len(priorTranslations) > 0 {
		recent := priorTranslations
		if len(recent) > maxContextEntries {
			recent = recent[len(recent)-maxContextEntries:]
		}

		parts = append(parts, s.prompts.ContextHeader)
		for i, prior := range recent {
			entry := normalizeWhitespace(prior, false)
			if runes := []rune(entry); len(runes) > maxContextEntryLen {
				entry = string(runes[:maxContextEntryLen])
			}
			parts = append(parts, "["+strconv.Itoa(i+1)+"] "+entry)
		}
		parts = append(parts, "")
	}

	template := s.prompts.UserPrompt
	if override != "" {
		template = override
	}
	parts = append(parts, strings.ReplaceAll(template, "{text}", selected))

	return strings.Join(parts, "\n")
}

// resolveCredentials 按请求覆盖优先、环境默认兜底的顺序解析凭据
func (s *TranslateService) resolveCredentials(apiKey, endpoint, model string) (string, string, string, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = s.apiKey
	}
	if key == "" {
		return "", "", "", ErrMissingAPIKey
	}

	ep := s.endpoint
	if strings.TrimSpace(endpoint) != "" {
		ep = chatCompletionsURL(endpoint)
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = s.model
	}

	return key, ep, m, nil
}

// complete 执行一次对话补全
// 凭据与服务默认值一致时复用默认客户端，否则为本次请求新建客户端
func (s *TranslateService) complete(ctx context.Context, apiKey, endpoint, model, system, user string, temperature *float32) (string, error) {
	client := s.client
	if client == nil || apiKey != s.apiKey || endpoint != s.endpoint || model != s.model {
		var err error
		client, err = llm.NewClient("openai",
			llm.WithAPIKey(apiKey),
			llm.WithBaseURL(endpoint),
			llm.WithModel(model),
			llm.WithTimeout(requestTimeout),
		)
		if err != nil {
			return "", err
		}
	}

	temp := s.prompts.Temperature
	if temperature != nil {
		temp = *temperature
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	}

	resp, err := client.Chat(ctx, messages, llm.WithChatTemperature(temp))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}
