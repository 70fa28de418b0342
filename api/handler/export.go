package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/api/middleware"
	"github.com/mcjkurz/step-translate/api/model"
	"github.com/mcjkurz/step-translate/internal/services"
)

// ExportHandler 处理译文导出的API请求
type ExportHandler struct {
	exportService *services.ExportService // 导出服务
	logger        *logrus.Logger          // 日志记录器
}

// NewExportHandler 创建新的导出处理器
func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		logger:        middleware.GetLogger(),
	}
}

// Export 将译文导出为文件下载
// POST /api/export
func (h *ExportHandler) Export(c *gin.Context) {
	var req model.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid export request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"Unsupported format. Use txt, docx, or pdf.",
		))
		return
	}

	result, err := h.exportService.Export(req.Text, req.Format, req.Filename)
	if err != nil {
		if errors.Is(err, services.ErrNoTextToExport) || errors.Is(err, services.ErrUnsupportedExportFormat) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				err.Error(),
			))
			return
		}

		h.logger.WithError(err).WithField("format", req.Format).Error("Failed to export translation")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to export translation.",
		))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
