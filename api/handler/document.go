package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/api/middleware"
	"github.com/mcjkurz/step-translate/api/model"
	"github.com/mcjkurz/step-translate/internal/document"
	"github.com/mcjkurz/step-translate/internal/services"
	"github.com/mcjkurz/step-translate/pkg/storage"
)

// DocumentHandler 处理文档上传和原文件下载的API请求
type DocumentHandler struct {
	documentService *services.DocumentService // 文档服务
	logger          *logrus.Logger            // 日志记录器
}

// NewDocumentHandler 创建新的文档处理器
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          middleware.GetLogger(),
	}
}

// UploadDocument 处理文档上传请求
// POST /api/upload
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"Missing file field.",
		))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": fileHeader.Filename,
		}).Error("Failed to open uploaded file")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to read uploaded file.",
		))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to read uploaded file.",
		))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.documentService.Upload(fileHeader.Filename, contentType, data)
	if err != nil {
		if services.IsUploadError(err) {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse(
				http.StatusBadRequest,
				err.Error(),
			))
			return
		}

		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": fileHeader.Filename,
		}).Error("Failed to process uploaded document")

		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to process uploaded document.",
		))
		return
	}

	passages := make([]model.PassageResponse, len(result.Passages))
	for i, p := range result.Passages {
		passages[i] = model.PassageResponse{
			ID:    p.ID,
			Text:  p.Text,
			Page:  p.Page,
			Style: string(p.Style),
		}
	}

	resp := model.UploadResponse{
		FileID:    result.FileID,
		FileName:  result.FileName,
		FileType:  string(result.FileType),
		Passages:  passages,
		PageCount: result.PageCount,
	}
	// PDF原文件交给前端渲染，其他格式不需要
	if result.FileType == document.PDF {
		resp.PDFURL = "/uploads/" + result.FileID + result.StoredExt
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// ServeUpload 返回已上传的原始文件
// GET /uploads/:name
func (h *DocumentHandler) ServeUpload(c *gin.Context) {
	name := c.Param("name")
	// URL中的文件名带扩展名，存储按ID查找
	id := strings.TrimSuffix(name, filepath.Ext(name))

	info, data, err := h.documentService.GetFile(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"File not found.",
			))
			return
		}

		h.logger.WithError(err).WithField("file_id", id).Error("Failed to load uploaded file")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"Failed to load file.",
		))
		return
	}

	c.Data(http.StatusOK, info.MimeType, data)
}
