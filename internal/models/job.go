package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobStatus 批量翻译任务状态类型
type JobStatus string

const (
	// JobStatusPending 任务已创建，等待处理
	JobStatusPending JobStatus = "pending"
	// JobStatusProcessing 任务处理中
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted 任务处理完成
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed 任务处理失败
	JobStatusFailed JobStatus = "failed"
)

// IsValid 判断是否为已知的任务状态
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// TranslationJob 批量翻译任务数据模型
// 整篇文档的后台翻译任务，记录进度和逐段结果
type TranslationJob struct {
	ID             string         `gorm:"primaryKey"`         // 任务ID，主键
	FileID         string         `gorm:"not null;index"`     // 关联的上传文件ID
	FileName       string         `gorm:"not null"`           // 原始文件名
	FileType       string         `gorm:"size:10;not null"`   // 文档格式
	TargetLanguage string         `gorm:"size:50;not null"`   // 目标语言
	Model          string         `gorm:"size:100"`           // 使用的模型名称
	Status         JobStatus      `gorm:"not null;index"`     // 任务状态
	Progress       int            `gorm:"not null;default:0"` // 进度（0-100）
	PassageCount   int            `gorm:"not null;default:0"` // 段落总数
	Error          string         `gorm:"type:text"`          // 错误信息
	Results        datatypes.JSON `gorm:"type:json"`          // 逐段翻译结果，JSON格式
	CreatedAt      time.Time      `gorm:"not null;index"`     // 创建时间
	UpdatedAt      time.Time      `gorm:"not null"`           // 更新时间
	CompletedAt    *time.Time     `gorm:"index"`              // 完成时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (j *TranslationJob) BeforeCreate(tx *gorm.DB) (err error) {
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	j.UpdatedAt = time.Now()
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (j *TranslationJob) BeforeUpdate(tx *gorm.DB) (err error) {
	j.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (TranslationJob) TableName() string {
	return "translation_jobs"
}

// PassageResult 单个段落的翻译结果，序列化后存入Results字段
type PassageResult struct {
	PassageID   string `json:"passage_id"`     // 段落ID
	SourceText  string `json:"source_text"`    // 原文
	Translation string `json:"translation"`    // 译文
	Page        *int   `json:"page,omitempty"` // 页码（可选）
	Style       string `json:"style"`          // 段落样式
}
