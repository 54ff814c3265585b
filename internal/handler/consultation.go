package handler

import (
	"errors"
	"net/http"

	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ConsultationHandler 问诊视图Handler
type ConsultationHandler struct {
	service *service.ConsultationService
}

// NewConsultationHandler 创建Handler
func NewConsultationHandler(service *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{
		service: service,
	}
}

// GetView 获取当前语言下的问诊视图
// GET /api/consultation
func (h *ConsultationHandler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.View())
}

type setSectionRequest struct {
	Text string `json:"text"`
}

// SetSection 更新段落录入文本
// PUT /api/consultation/sections/:key
func (h *ConsultationHandler) SetSection(c *gin.Context) {
	var req setSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := consultation.SectionKey(c.Param("key"))
	if err := h.service.SetSectionText(key, req.Text); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrReadOnlyView) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.service.View())
}

// Suggest 请求单个段落的 AI 建议
// POST /api/consultation/sections/:key/suggest
func (h *ConsultationHandler) Suggest(c *gin.Context) {
	key := consultation.SectionKey(c.Param("key"))
	if err := h.service.Suggest(c.Request.Context(), key); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

// SuggestAll 请求整单建议并应用
// POST /api/consultation/suggestions/apply-all
func (h *ConsultationHandler) SuggestAll(c *gin.Context) {
	if err := h.service.SuggestAll(c.Request.Context()); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

// Analyze 请求整单分析报告
// POST /api/consultation/analysis
func (h *ConsultationHandler) Analyze(c *gin.Context) {
	if err := h.service.Analyze(c.Request.Context()); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

type changeLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// ChangeLanguage 切换展示语言
// POST /api/consultation/language
func (h *ConsultationHandler) ChangeLanguage(c *gin.Context) {
	var req changeLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ChangeLanguage(c.Request.Context(), req.Language); err != nil {
		if errors.Is(err, consultation.ErrInvalidLanguage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

// TogglePrecheck 勾选/取消问诊前检查项
// POST /api/consultation/precheck/:id/toggle
func (h *ConsultationHandler) TogglePrecheck(c *gin.Context) {
	if err := h.service.TogglePrecheckTask(c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

// VoiceInput 语音输入转写并追加到段落
// POST /api/consultation/sections/:key/voice
func (h *ConsultationHandler) VoiceInput(c *gin.Context) {
	key := consultation.SectionKey(c.Param("key"))
	if err := h.service.VoiceInput(c.Request.Context(), key); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrReadOnlyView) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.View())
}

// Speak 朗读段落展示文本
// POST /api/consultation/sections/:key/speak
func (h *ConsultationHandler) Speak(c *gin.Context) {
	key := consultation.SectionKey(c.Param("key"))
	if err := h.service.Speak(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// respondTaskError 把协调器的结构化失败映射为 HTTP 响应
func respondTaskError(c *gin.Context, err error) {
	var f *consultation.Failure
	if errors.As(err, &f) {
		status := http.StatusBadGateway
		if f.Reason == consultation.ReasonAIDisabled {
			status = http.StatusPreconditionFailed
		}
		c.JSON(status, gin.H{"error": f.Message, "reason": string(f.Reason)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
