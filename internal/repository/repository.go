package repository

import (
	"errors"

	"github.com/elikita/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type ConversationRepository interface {
	Create(conv *model.Conversation) error
	// ListSessions 返回用户最近的会话记录，按创建时间倒序，
	// 同一 session_id 可能出现多行，去重由调用方完成
	ListSessions(userID string) ([]model.Conversation, error)
	// GetBySession 返回某个会话的全部交互，按创建时间升序
	GetBySession(sessionID string) ([]model.Conversation, error)
}
