package taskqueue

import (
	"encoding/json"
	"time"
)

// TaskType 任务类型
type TaskType string

const (
	// TaskTranslateDocument 整篇文档的批量翻译任务
	TaskTranslateDocument TaskType = "document_translate"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	// StatusPending 等待处理
	StatusPending TaskStatus = "pending"
	// StatusProcessing 处理中
	StatusProcessing TaskStatus = "processing"
	// StatusCompleted 已完成
	StatusCompleted TaskStatus = "completed"
	// StatusFailed 处理失败
	StatusFailed TaskStatus = "failed"
)

// Task 任务基础结构
type Task struct {
	ID          string          `json:"id"`           // 任务唯一标识符
	Type        TaskType        `json:"type"`         // 任务类型
	JobID       string          `json:"job_id"`       // 关联的翻译任务ID
	Status      TaskStatus      `json:"status"`       // 任务状态
	Payload     json.RawMessage `json:"payload"`      // 任务载荷数据，不同任务类型对应不同结构
	Result      json.RawMessage `json:"result"`       // 任务结果数据
	Error       string          `json:"error"`        // 错误信息（如果处理失败）
	CreatedAt   time.Time       `json:"created_at"`   // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`   // 更新时间
	StartedAt   *time.Time      `json:"started_at"`   // 开始处理时间
	CompletedAt *time.Time      `json:"completed_at"` // 完成时间
	Attempts    int             `json:"attempts"`     // 尝试次数
	MaxRetries  int             `json:"max_retries"`  // 最大重试次数
}

// TranslateDocumentPayload 批量翻译任务载荷
type TranslateDocumentPayload struct {
	JobID          string `json:"job_id"`          // 翻译任务ID
	FileID         string `json:"file_id"`         // 上传文件ID
	FileName       string `json:"file_name"`       // 原始文件名
	FileType       string `json:"file_type"`       // 文档格式
	TargetLanguage string `json:"target_language"` // 目标语言
	Model          string `json:"model"`           // 模型名称（可选）
}

// TranslateDocumentResult 批量翻译任务结果摘要
// 逐段译文存储在数据库中，这里只记录统计信息
type TranslateDocumentResult struct {
	JobID        string `json:"job_id"`        // 翻译任务ID
	PassageCount int    `json:"passage_count"` // 翻译的段落数量
	Error        string `json:"error"`         // 错误信息（如果有）
}
