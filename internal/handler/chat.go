package handler

import (
	"errors"
	"net/http"

	"github.com/elikita/backend/internal/chat"
	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天会话Handler
type ChatHandler struct {
	manager *chat.Manager
}

// NewChatHandler 创建Handler
func NewChatHandler(manager *chat.Manager) *ChatHandler {
	return &ChatHandler{
		manager: manager,
	}
}

// NewSession 开启新会话
// POST /api/chat/sessions
func (h *ChatHandler) NewSession(c *gin.Context) {
	id := h.manager.StartNewSession()
	c.JSON(http.StatusOK, gin.H{"session_id": id})
}

// ListSessions 获取去重后的会话列表
// GET /api/chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	if err := h.manager.RefreshSessions(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.manager.ListSessions())
}

// LoadSession 载入会话并返回消息流
// GET /api/chat/sessions/:id/messages
func (h *ChatHandler) LoadSession(c *gin.Context) {
	if err := h.manager.LoadSession(c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": h.manager.ActiveSessionID(),
		"messages":   h.manager.Messages(),
	})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage 发送一条用户消息
// POST /api/chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.manager.SendMessage(c.Request.Context(), req.Message); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, chat.ErrPersistence) {
			status = http.StatusInternalServerError
		}
		// 失败时已写入的消息保留，一并返回方便前端展示
		c.JSON(status, gin.H{
			"error":      err.Error(),
			"session_id": h.manager.ActiveSessionID(),
			"messages":   h.manager.Messages(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": h.manager.ActiveSessionID(),
		"messages":   h.manager.Messages(),
	})
}
