package model

import (
	"time"

	"github.com/mcjkurz/step-translate/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// PassageResponse 提取出的单个段落
type PassageResponse struct {
	ID    string `json:"id"`             // 段落ID
	Text  string `json:"text"`           // 段落文本
	Page  *int   `json:"page,omitempty"` // 页码(仅PDF)
	Style string `json:"style"`          // 样式：title/heading/author/paragraph
}

// UploadResponse 文档上传响应
type UploadResponse struct {
	FileID    string            `json:"file_id"`              // 文件ID
	FileName  string            `json:"filename"`             // 原始文件名
	FileType  string            `json:"file_type"`            // 文档格式
	Passages  []PassageResponse `json:"passages"`             // 提取出的段落
	PageCount int               `json:"page_count,omitempty"` // PDF页数
	PDFURL    string            `json:"pdf_url,omitempty"`    // PDF原文件URL，供前端渲染
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Translation string `json:"translation"` // 译文
}

// AdaptResponse 润色响应
type AdaptResponse struct {
	AdaptedText string `json:"adapted_text"` // 润色后的文本
}

// JobResponse 批量翻译任务详情
type JobResponse struct {
	JobID          string                 `json:"job_id"`                 // 任务ID
	FileID         string                 `json:"file_id"`                // 关联文件ID
	FileName       string                 `json:"filename"`               // 原始文件名
	FileType       string                 `json:"file_type"`              // 文档格式
	TargetLanguage string                 `json:"target_language"`        // 目标语言
	Model          string                 `json:"model,omitempty"`        // 模型名称
	Status         string                 `json:"status"`                 // 任务状态
	Progress       int                    `json:"progress"`               // 进度(0-100)
	PassageCount   int                    `json:"passage_count"`          // 段落总数
	Error          string                 `json:"error,omitempty"`        // 错误信息
	Results        []models.PassageResult `json:"results,omitempty"`      // 逐段翻译结果
	CreatedAt      time.Time              `json:"created_at"`             // 创建时间
	UpdatedAt      time.Time              `json:"updated_at"`             // 更新时间
	CompletedAt    *time.Time             `json:"completed_at,omitempty"` // 完成时间
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Total    int64         `json:"total"`     // 总数量
	Page     int           `json:"page"`      // 当前页码
	PageSize int           `json:"page_size"` // 每页大小
	Jobs     []JobResponse `json:"jobs"`      // 任务列表
}
