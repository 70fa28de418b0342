package llm

import "time"

// MessageRole 消息角色类型
type MessageRole string

const (
	// RoleSystem 系统角色
	RoleSystem MessageRole = "system"
	// RoleUser 用户角色
	RoleUser MessageRole = "user"
	// RoleAssistant 助手角色
	RoleAssistant MessageRole = "assistant"
)

// Message 对话消息结构
type Message struct {
	Role    MessageRole `json:"role"`    // 角色
	Content string      `json:"content"` // 内容
}

// ChatCompletionRequest OpenAI兼容的聊天补全请求结构
type ChatCompletionRequest struct {
	Model       string    `json:"model"`                 // 模型名称
	Messages    []Message `json:"messages"`              // 消息列表
	Temperature *float32  `json:"temperature,omitempty"` // 采样温度
	TopP        *float32  `json:"top_p,omitempty"`       // 核采样概率阈值
	MaxTokens   *int      `json:"max_tokens,omitempty"`  // 最大生成Token数
	Stream      bool      `json:"stream,omitempty"`      // 是否流式输出
}

// ChatCompletionResponse OpenAI兼容的聊天补全响应结构
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`              // 响应ID
	Object  string                 `json:"object"`          // 对象类型
	Created int64                  `json:"created"`         // 创建时间戳
	Model   string                 `json:"model"`           // 实际使用的模型
	Choices []ChatCompletionChoice `json:"choices"`         // 候选结果列表
	Usage   ChatCompletionUsage    `json:"usage"`           // 资源使用情况
	Error   *APIError              `json:"error,omitempty"` // 错误信息(如果有)
}

// ChatCompletionChoice 候选结果
type ChatCompletionChoice struct {
	Index        int     `json:"index"`         // 序号
	Message      Message `json:"message"`       // 消息内容
	FinishReason string  `json:"finish_reason"` // 结束原因
}

// ChatCompletionUsage 资源使用情况
type ChatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`     // 输入token数
	CompletionTokens int `json:"completion_tokens"` // 输出token数
	TotalTokens      int `json:"total_tokens"`      // 总token数
}

// APIError API返回的错误结构
type APIError struct {
	Message string `json:"message"` // 错误消息
	Type    string `json:"type"`    // 错误类型
	Code    any    `json:"code"`    // 错误码
}

// Response 统一的响应结构
type Response struct {
	Text       string    // 生成的文本
	Messages   []Message // 消息列表（如果是对话）
	TokenCount int       // 使用的token数
	ModelName  string    // 使用的模型名称
	FinishTime time.Time // 完成时间
}

// Model 常用模型名称
const (
	ModelGPT4oMini    = "gpt-4o-mini"   // GPT-4o mini（较快，成本低）
	ModelGPT4o        = "gpt-4o"        // GPT-4o（平衡速度和性能）
	ModelGPT4Turbo    = "gpt-4-turbo"   // GPT-4 Turbo
	ModelDeepSeekChat = "deepseek-chat" // DeepSeek对话模型（兼容端点）
)
