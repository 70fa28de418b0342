package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/api/middleware"
	"github.com/mcjkurz/step-translate/api/model"
	"github.com/mcjkurz/step-translate/internal/models"
	"github.com/mcjkurz/step-translate/internal/services"
)

// JobHandler 处理批量翻译任务的API请求
type JobHandler struct {
	jobService *services.JobService // 任务服务
	logger     *logrus.Logger       // 日志记录器
}

// NewJobHandler 创建新的任务处理器
func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     middleware.GetLogger(),
	}
}

// CreateJob 创建批量翻译任务
// POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req model.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid job request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			model.BindErrorMessage(err),
		))
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), services.CreateJobInput{
		FileID:         req.FileID,
		FileName:       req.FileName,
		FileType:       req.FileType,
		TargetLanguage: req.TargetLanguage,
		Model:          req.Model,
	})
	if err != nil {
		if errors.Is(err, services.ErrQueueDisabled) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				"Background translation jobs are not enabled on this server.",
			))
			return
		}

		h.logger.WithError(err).Error("Failed to create translation job")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to create translation job.",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(h.toJobResponse(job, false)))
}

// GetJob 查询任务详情和翻译结果
// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobService.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"Job not found.",
			))
			return
		}

		h.logger.WithError(err).WithField("job_id", id).Error("Failed to load translation job")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to load translation job.",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(h.toJobResponse(job, true)))
}

// ListJobs 分页列出任务
// GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req model.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"Invalid query parameters.",
		))
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	jobs, total, err := h.jobService.ListJobs(c.Request.Context(), (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list translation jobs")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to list translation jobs.",
		))
		return
	}

	resp := model.JobListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Jobs:     make([]model.JobResponse, len(jobs)),
	}
	for i, job := range jobs {
		resp.Jobs[i] = h.toJobResponse(job, false)
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// DeleteJob 删除任务
// DELETE /api/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	id := c.Param("id")

	if err := h.jobService.DeleteJob(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"Job not found.",
			))
			return
		}

		h.logger.WithError(err).WithField("job_id", id).Error("Failed to delete translation job")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to delete translation job.",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(gin.H{"job_id": id}))
}

// toJobResponse 将任务数据模型转换为API响应
// includeResults为true时附带逐段翻译结果
func (h *JobHandler) toJobResponse(job *models.TranslationJob, includeResults bool) model.JobResponse {
	resp := model.JobResponse{
		JobID:          job.ID,
		FileID:         job.FileID,
		FileName:       job.FileName,
		FileType:       job.FileType,
		TargetLanguage: job.TargetLanguage,
		Model:          job.Model,
		Status:         string(job.Status),
		Progress:       job.Progress,
		PassageCount:   job.PassageCount,
		Error:          job.Error,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
		CompletedAt:    job.CompletedAt,
	}

	if includeResults && len(job.Results) > 0 {
		var results []models.PassageResult
		if err := json.Unmarshal(job.Results, &results); err != nil {
			h.logger.WithError(err).WithField("job_id", job.ID).Warn("Failed to decode job results")
		} else {
			resp.Results = results
		}
	}

	return resp
}
