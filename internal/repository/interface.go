package repository

import (
	"github.com/mcjkurz/step-translate/internal/models"
	"gorm.io/datatypes"
)

// JobRepository 翻译任务仓储接口
// 负责批量翻译任务元数据的存储和检索
type JobRepository interface {
	// Create 创建任务记录
	Create(job *models.TranslationJob) error

	// Update 更新任务记录
	Update(job *models.TranslationJob) error

	// GetByID 根据ID获取任务
	GetByID(id string) (*models.TranslationJob, error)

	// List 列出任务，按创建时间倒序，支持分页
	List(offset, limit int) ([]*models.TranslationJob, int64, error)

	// Delete 删除任务
	Delete(id string) error

	// UpdateStatus 更新任务状态
	UpdateStatus(id string, status models.JobStatus, errorMsg string) error

	// UpdateProgress 更新任务进度
	UpdateProgress(id string, progress int) error

	// SaveResults 保存翻译结果并标记任务完成
	SaveResults(id string, results datatypes.JSON, passageCount int) error
}
