package handler

import (
	"net/http"

	"github.com/elikita/backend/config"
	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ConfigHandler 运行时配置Handler
type ConfigHandler struct {
	cfg          *config.Config
	consultation *service.ConsultationService
}

// NewConfigHandler 创建Handler
func NewConfigHandler(cfg *config.Config, consultation *service.ConsultationService) *ConfigHandler {
	return &ConfigHandler{
		cfg:          cfg,
		consultation: consultation,
	}
}

// Get 获取前端需要的配置
// GET /api/config
func (h *ConfigHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ai_enabled": h.consultation.AIEnabled(),
		"model":      h.cfg.LLM.Model,
		"languages":  consultation.Languages(),
	})
}

type setAIRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetAI 切换 AI 辅助开关
// POST /api/config/ai
func (h *ConfigHandler) SetAI(c *gin.Context) {
	var req setAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.consultation.SetAIEnabled(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"ai_enabled": h.consultation.AIEnabled()})
}
