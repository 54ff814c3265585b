package repository

import (
	"github.com/elikita/backend/internal/model"
	"gorm.io/gorm"
)

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话数据仓库
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 写入一组交互
func (r *conversationRepository) Create(conv *model.Conversation) error {
	return r.db.Create(conv).Error
}

// ListSessions 获取用户的会话记录，按创建时间倒序
func (r *conversationRepository) ListSessions(userID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.Select("session_id", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

// GetBySession 获取会话的全部交互，按创建时间升序
func (r *conversationRepository) GetBySession(sessionID string) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}
