package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/mcjkurz/step-translate/internal/document"
	"github.com/mcjkurz/step-translate/internal/models"
	"github.com/mcjkurz/step-translate/internal/repository"
	"github.com/mcjkurz/step-translate/pkg/storage"
	"github.com/mcjkurz/step-translate/pkg/taskqueue"
)

// JobService 批量翻译任务服务
// 负责创建后台翻译任务并查询其进度和结果
type JobService struct {
	repo   repository.JobRepository
	queue  taskqueue.Queue
	logger *logrus.Logger
}

// JobOption 任务服务配置选项
type JobOption func(*JobService)

// WithJobLogger 设置日志记录器
func WithJobLogger(logger *logrus.Logger) JobOption {
	return func(s *JobService) {
		s.logger = logger
	}
}

// NewJobService 创建任务服务
func NewJobService(repo repository.JobRepository, queue taskqueue.Queue, opts ...JobOption) *JobService {
	s := &JobService{
		repo:   repo,
		queue:  queue,
		logger: logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJobInput 创建批量翻译任务的参数
type CreateJobInput struct {
	FileID         string
	FileName       string
	FileType       string
	TargetLanguage string
	Model          string // 可选，为空时使用环境默认模型
}

// ErrQueueDisabled 任务队列未启用
var ErrQueueDisabled = errors.New("task queue is not enabled")

// CreateJob 创建批量翻译任务并将其加入队列
func (s *JobService) CreateJob(ctx context.Context, in CreateJobInput) (*models.TranslationJob, error) {
	if s.queue == nil {
		return nil, ErrQueueDisabled
	}

	job := &models.TranslationJob{
		ID:             uuid.New().String(),
		FileID:         in.FileID,
		FileName:       in.FileName,
		FileType:       in.FileType,
		TargetLanguage: in.TargetLanguage,
		Model:          in.Model,
		Status:         models.JobStatusPending,
	}

	if err := s.repo.Create(job); err != nil {
		return nil, fmt.Errorf("failed to create translation job: %w", err)
	}

	payload := &taskqueue.TranslateDocumentPayload{
		JobID:          job.ID,
		FileID:         in.FileID,
		FileName:       in.FileName,
		FileType:       in.FileType,
		TargetLanguage: in.TargetLanguage,
		Model:          in.Model,
	}

	taskID, err := s.queue.Enqueue(ctx, taskqueue.TaskTranslateDocument, job.ID, payload)
	if err != nil {
		// 入队失败时任务记录标记为失败，避免永远停在pending
		if updateErr := s.repo.UpdateStatus(job.ID, models.JobStatusFailed, err.Error()); updateErr != nil {
			s.logger.WithError(updateErr).WithField("job_id", job.ID).Error("Failed to mark job as failed")
		}
		return nil, fmt.Errorf("failed to enqueue translation task: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"job_id":          job.ID,
		"task_id":         taskID,
		"file_id":         in.FileID,
		"target_language": in.TargetLanguage,
	}).Info("Translation job created")

	return job, nil
}

// GetJob 查询任务详情
func (s *JobService) GetJob(ctx context.Context, id string) (*models.TranslationJob, error) {
	return s.repo.GetByID(id)
}

// ListJobs 分页列出任务
func (s *JobService) ListJobs(ctx context.Context, offset, limit int) ([]*models.TranslationJob, int64, error) {
	return s.repo.List(offset, limit)
}

// DeleteJob 删除任务及其队列记录
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	if s.queue == nil {
		return s.repo.Delete(id)
	}

	tasks, err := s.queue.GetTasksByJob(ctx, id)
	if err == nil {
		for _, task := range tasks {
			if err := s.queue.DeleteTask(ctx, task.ID); err != nil {
				s.logger.WithError(err).WithField("task_id", task.ID).Warn("Failed to delete queue task")
			}
		}
	}

	return s.repo.Delete(id)
}

// TranslateDocumentHandler 批量翻译任务处理器
// 从存储中重新解析文档，逐段翻译并写回任务进度和结果
type TranslateDocumentHandler struct {
	repo       repository.JobRepository
	storage    storage.Storage
	translator *TranslateService
	logger     *logrus.Logger
}

// NewTranslateDocumentHandler 创建批量翻译任务处理器
func NewTranslateDocumentHandler(repo repository.JobRepository, store storage.Storage, translator *TranslateService, logger *logrus.Logger) *TranslateDocumentHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &TranslateDocumentHandler{
		repo:       repo,
		storage:    store,
		translator: translator,
		logger:     logger,
	}
}

// GetTaskTypes 返回此处理器支持的任务类型
func (h *TranslateDocumentHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{taskqueue.TaskTranslateDocument}
}

// ProcessTask 处理批量翻译任务
func (h *TranslateDocumentHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	var payload taskqueue.TranslateDocumentPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %v", taskqueue.ErrInvalidPayload, err)
	}

	h.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"job_id":  payload.JobID,
		"file_id": payload.FileID,
	}).Info("Processing document translation task")

	if err := h.repo.UpdateStatus(payload.JobID, models.JobStatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark job as processing: %w", err)
	}

	results, err := h.translateDocument(ctx, &payload)
	if err != nil {
		h.failJob(payload.JobID, err)
		return err
	}

	data, err := json.Marshal(results)
	if err != nil {
		h.failJob(payload.JobID, err)
		return fmt.Errorf("failed to marshal translation results: %w", err)
	}

	if err := h.repo.SaveResults(payload.JobID, datatypes.JSON(data), len(results)); err != nil {
		return fmt.Errorf("failed to save translation results: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"job_id":   payload.JobID,
		"passages": len(results),
	}).Info("Document translation task completed")

	return nil
}

// translateDocument 重新解析文档并逐段翻译
// 每个段落携带之前的译文作为上下文，翻译顺序与文档顺序一致
func (h *TranslateDocumentHandler) translateDocument(ctx context.Context, payload *taskqueue.TranslateDocumentPayload) ([]models.PassageResult, error) {
	reader, err := h.storage.Get(payload.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document from storage: %w", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	passages, err := document.ParseReader(bytes.NewReader(data), document.FileType(payload.FileType))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if len(passages) == 0 {
		return nil, document.ErrEmptyResult
	}

	results := make([]models.PassageResult, 0, len(passages))
	var priorTranslations []string

	for i, passage := range passages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		translation, err := h.translator.Translate(ctx, TranslateInput{
			SelectedText:      passage.Text,
			TargetLanguage:    payload.TargetLanguage,
			PriorTranslations: priorTranslations,
			Model:             payload.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to translate passage %d: %w", i+1, err)
		}

		results = append(results, models.PassageResult{
			PassageID:   passage.ID,
			SourceText:  passage.Text,
			Translation: translation,
			Page:        passage.Page,
			Style:       string(passage.Style),
		})

		priorTranslations = append(priorTranslations, translation)
		if len(priorTranslations) > maxContextEntries {
			priorTranslations = priorTranslations[1:]
		}

		progress := (i + 1) * 100 / len(passages)
		if err := h.repo.UpdateProgress(payload.JobID, progress); err != nil {
			h.logger.WithError(err).WithField("job_id", payload.JobID).Warn("Failed to update job progress")
		}
	}

	return results, nil
}

// failJob 将任务标记为失败
func (h *TranslateDocumentHandler) failJob(jobID string, cause error) {
	if err := h.repo.UpdateStatus(jobID, models.JobStatusFailed, cause.Error()); err != nil {
		h.logger.WithError(err).WithField("job_id", jobID).Error("Failed to mark job as failed")
	}
}
