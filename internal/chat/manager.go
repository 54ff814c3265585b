package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// Role 消息角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message 活动会话里的一条消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session 一个已持久化的会话线索
type Session struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange 持久化的一组（提问，回复）
type Exchange struct {
	Message  string
	Response string
}

// AgentClient 问诊对话智能体
type AgentClient interface {
	Reply(ctx context.Context, sessionID, message string) (string, error)
}

// ConversationStore 会话持久化协作方
// ListSessions 按创建时间倒序返回，允许出现重复的 sessionId；
// History 按创建时间升序返回
type ConversationStore interface {
	ListSessions(userID string) ([]Session, error)
	History(sessionID string) ([]Exchange, error)
	SaveExchange(userID, sessionID, message, response string) error
}

// 会话层错误
var (
	ErrSessionLoad = errors.New("failed to load chat session")
	ErrAgent       = errors.New("agent request failed")
	ErrPersistence = errors.New("failed to persist exchange")
)

// Manager 聊天会话管理器
// 持有某个用户的会话列表、活动会话与活动会话的消息流。
// 每个视图实例只持有一个 Manager，随视图创建与销毁，
// 不存在进程级单例
type Manager struct {
	mu       sync.Mutex
	userID   string
	agent    AgentClient
	store    ConversationStore
	sessions []Session
	activeID string
	live     []Message
}

// NewManager 创建会话管理器
func NewManager(userID string, agent AgentClient, store ConversationStore) *Manager {
	return &Manager{
		userID: userID,
		agent:  agent,
		store:  store,
	}
}

// RefreshSessions 重新拉取会话列表
// 按 sessionId 去重，保留最靠前（最新）的一条，维持倒序
func (m *Manager) RefreshSessions() error {
	sessions, err := m.store.ListSessions(m.userID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionLoad, err)
	}

	seen := make(map[string]bool, len(sessions))
	deduped := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if seen[s.SessionID] {
			continue
		}
		seen[s.SessionID] = true
		deduped = append(deduped, s)
	}

	m.mu.Lock()
	m.sessions = deduped
	m.mu.Unlock()
	return nil
}

// ListSessions 返回去重后的会话列表副本
func (m *Manager) ListSessions() []Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// StartNewSession 开启新会话
// 生成新的 sessionId 并清空消息流；
// 持久化的会话列表在第一次成功交互前不会变化
func (m *Manager) StartNewSession() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.activeID = id
	m.live = nil
	m.mu.Unlock()
	klog.V(6).Infof("新会话开启: session=%s", id)
	return id
}

// LoadSession 载入已持久化的会话
// 消息流被整体替换：每组（提问，回复）按持久化顺序展开为
// 一条用户消息和一条智能体消息
func (m *Manager) LoadSession(sessionID string) error {
	history, err := m.store.History(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionLoad, err)
	}

	messages := make([]Message, 0, 2*len(history))
	for _, e := range history {
		messages = append(messages, Message{Role: RoleUser, Content: e.Message})
		messages = append(messages, Message{Role: RoleAgent, Content: e.Response})
	}

	m.mu.Lock()
	m.activeID = sessionID
	m.live = messages
	m.mu.Unlock()
	klog.V(6).Infof("会话载入完成: session=%s, messages=%d", sessionID, len(messages))
	return nil
}

// Messages 返回活动会话消息流的副本
func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.live))
	copy(out, m.live)
	return out
}

// ActiveSessionID 当前活动会话
func (m *Manager) ActiveSessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// SendMessage 发送一条用户消息
// 空白文本不产生任何状态变化。用户消息先于网络调用写入消息流；
// 智能体或持久化失败时已写入的消息保留，不回滚也不重试，
// 由用户重新发送
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	m.mu.Lock()
	if m.activeID == "" {
		m.activeID = uuid.NewString()
	}
	sessionID := m.activeID
	m.live = append(m.live, Message{Role: RoleUser, Content: text})
	m.mu.Unlock()

	reply, err := m.agent.Reply(ctx, sessionID, text)
	if err != nil {
		klog.Errorf("智能体请求失败: session=%s, err=%v", sessionID, err)
		return fmt.Errorf("%w: %v", ErrAgent, err)
	}

	formatted := FormatReply(reply)
	m.mu.Lock()
	m.live = append(m.live, Message{Role: RoleAgent, Content: formatted})
	m.mu.Unlock()

	if err := m.store.SaveExchange(m.userID, sessionID, text, formatted); err != nil {
		klog.Errorf("会话持久化失败: session=%s, err=%v", sessionID, err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// 列表刷新失败不影响本次交互
	if err := m.RefreshSessions(); err != nil {
		klog.V(6).Infof("会话列表刷新失败: %v", err)
	}
	return nil
}
