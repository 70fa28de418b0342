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

// TranslateHandler 处理翻译和润色的API请求
type TranslateHandler struct {
	translateService *services.TranslateService // 翻译服务
	logger           *logrus.Logger             // 日志记录器
}

// NewTranslateHandler 创建新的翻译处理器
func NewTranslateHandler(translateService *services.TranslateService) *TranslateHandler {
	return &TranslateHandler{
		translateService: translateService,
		logger:           middleware.GetLogger(),
	}
}

// Translate 翻译选中文本
// POST /api/translate
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req model.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid translate request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			model.BindErrorMessage(err),
		))
		return
	}

	prior := make([]string, len(req.PriorTranslations))
	for i, pt := range req.PriorTranslations {
		prior[i] = pt.Translation
	}

	translation, err := h.translateService.Translate(c.Request.Context(), services.TranslateInput{
		SelectedText:      req.SelectedText,
		TargetLanguage:    req.TargetLanguage,
		PriorTranslations: prior,
		APIKey:            req.APIKey,
		APIEndpoint:       req.APIEndpoint,
		Model:             req.Model,
		Temperature:       req.Temperature,
		SystemPrompt:      req.SystemPrompt,
		UserPrompt:        req.UserPrompt,
	})
	if err != nil {
		h.respondTranslateError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.TranslateResponse{
		Translation: translation,
	}))
}

// Adapt 润色译文
// POST /api/adapt
func (h *TranslateHandler) Adapt(c *gin.Context) {
	var req model.AdaptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid adapt request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			model.BindErrorMessage(err),
		))
		return
	}

	adapted, err := h.translateService.Adapt(c.Request.Context(), services.AdaptInput{
		SelectedText:           req.SelectedText,
		TargetLanguage:         req.TargetLanguage,
		AdditionalInstructions: req.AdditionalInstructions,
		APIKey:                 req.APIKey,
		APIEndpoint:            req.APIEndpoint,
		Model:                  req.Model,
		Temperature:            req.Temperature,
		SystemPrompt:           req.AdaptSystemPrompt,
		UserPrompt:             req.AdaptUserPrompt,
	})
	if err != nil {
		h.respondTranslateError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.AdaptResponse{
		AdaptedText: adapted,
	}))
}

// respondTranslateError 将翻译服务错误映射为HTTP响应
// 参数问题返回400，模型侧失败返回502
func (h *TranslateHandler) respondTranslateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingAPIKey),
		errors.Is(err, services.ErrNoTextToTranslate),
		errors.Is(err, services.ErrNoTextToAdapt):
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			err.Error(),
		))
	case errors.Is(err, services.ErrEmptyTranslation),
		errors.Is(err, services.ErrEmptyAdaptation):
		c.JSON(http.StatusBadGateway, model.NewErrorResponse(
			http.StatusBadGateway,
			err.Error(),
		))
	default:
		h.logger.WithError(err).Error("Translation API error")
		c.JSON(http.StatusBadGateway, model.NewErrorResponse(
			http.StatusBadGateway,
			"Translation API error: "+err.Error(),
		))
	}
}
