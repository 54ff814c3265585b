package service

import (
	"github.com/elikita/backend/internal/chat"
	"github.com/elikita/backend/internal/model"
	"github.com/elikita/backend/internal/repository"
)

// ConversationStore 把 gorm 数据仓库适配为聊天管理器的持久化协作方
type ConversationStore struct {
	repo repository.ConversationRepository
}

// NewConversationStore 创建持久化适配器
func NewConversationStore(repo repository.ConversationRepository) *ConversationStore {
	return &ConversationStore{repo: repo}
}

// ListSessions 按创建时间倒序返回会话记录，不去重
func (s *ConversationStore) ListSessions(userID string) ([]chat.Session, error) {
	convs, err := s.repo.ListSessions(userID)
	if err != nil {
		return nil, err
	}
	sessions := make([]chat.Session, 0, len(convs))
	for _, c := range convs {
		sessions = append(sessions, chat.Session{
			SessionID: c.SessionID,
			CreatedAt: c.CreatedAt,
		})
	}
	return sessions, nil
}

// History 按创建时间升序返回会话的全部交互
func (s *ConversationStore) History(sessionID string) ([]chat.Exchange, error) {
	convs, err := s.repo.GetBySession(sessionID)
	if err != nil {
		return nil, err
	}
	history := make([]chat.Exchange, 0, len(convs))
	for _, c := range convs {
		history = append(history, chat.Exchange{
			Message:  c.Message,
			Response: c.Response,
		})
	}
	return history, nil
}

// SaveExchange 持久化一组交互
func (s *ConversationStore) SaveExchange(userID, sessionID, message, response string) error {
	return s.repo.Create(&model.Conversation{
		UserID:    userID,
		SessionID: sessionID,
		Message:   message,
		Response:  response,
	})
}
