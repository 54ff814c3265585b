package model

import (
	"time"
)

// Conversation 问诊聊天的一组持久化交互
// 一行保存一组（提问，回复）；同一 session_id 的多行构成一个会话
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:64;index;not null"`
	SessionID string    `json:"session_id" gorm:"size:64;index;not null"`
	Message   string    `json:"message" gorm:"type:text"`
	Response  string    `json:"response" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}
