package repository

import (
	"errors"
	"time"

	"github.com/mcjkurz/step-translate/internal/database"
	"github.com/mcjkurz/step-translate/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// jobRepository 翻译任务仓储实现
type jobRepository struct {
	db *gorm.DB // 数据库连接
}

// NewJobRepository 创建翻译任务仓储实例
func NewJobRepository() JobRepository {
	return &jobRepository{db: database.MustDB()}
}

// NewJobRepositoryWithDB 使用指定的数据库连接创建翻译任务仓储实例
func NewJobRepositoryWithDB(db *gorm.DB) JobRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &jobRepository{db: db}
}

// Create 创建任务记录
func (r *jobRepository) Create(job *models.TranslationJob) error {
	return r.db.Create(job).Error
}

// Update 更新任务记录
func (r *jobRepository) Update(job *models.TranslationJob) error {
	return r.db.Save(job).Error
}

// GetByID 根据ID获取任务
func (r *jobRepository) GetByID(id string) (*models.TranslationJob, error) {
	var job models.TranslationJob
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// List 列出任务，按创建时间倒序，支持分页
func (r *jobRepository) List(offset, limit int) ([]*models.TranslationJob, int64, error) {
	var jobs []*models.TranslationJob
	var total int64

	if err := r.db.Model(&models.TranslationJob{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Order("created_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// Delete 删除任务
func (r *jobRepository) Delete(id string) error {
	result := r.db.Delete(&models.TranslationJob{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// UpdateStatus 更新任务状态
// 进入失败状态时记录错误信息，进入完成或失败状态时记录完成时间
func (r *jobRepository) UpdateStatus(id string, status models.JobStatus, errorMsg string) error {
	if !status.IsValid() {
		return models.ErrInvalidJobStatus
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}

	if errorMsg != "" {
		updates["error"] = errorMsg
	}

	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	result := r.db.Model(&models.TranslationJob{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// UpdateProgress 更新任务进度
func (r *jobRepository) UpdateProgress(id string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	result := r.db.Model(&models.TranslationJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// SaveResults 保存翻译结果并标记任务完成
func (r *jobRepository) SaveResults(id string, results datatypes.JSON, passageCount int) error {
	now := time.Now()
	result := r.db.Model(&models.TranslationJob{}).Where("id = ?", id).Updates(map[string]interface{}{
		"results":       results,
		"passage_count": passageCount,
		"progress":      100,
		"status":        models.JobStatusCompleted,
		"completed_at":  &now,
		"updated_at":    now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}
