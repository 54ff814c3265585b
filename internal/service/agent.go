package service

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/elikita/backend/config"
	"k8s.io/klog/v2"
)

const agentSystemPrompt = "You are e-Likita, a friendly health assistant. " +
	"Answer the user's health questions clearly and remind them to consult " +
	"a practitioner for anything serious."

// AgentService 问诊对话智能体
// 封装 Eino 原生的 OpenAI ChatModel，对外只暴露 Reply
type AgentService struct {
	chatModel model.ToolCallingChatModel
}

// NewAgentService 创建对话智能体
func NewAgentService(cfg *config.Config) (*AgentService, error) {
	klog.V(6).Infof("[AgentService] 创建 OpenAI ChatModel: model=%s, baseURL=%s", cfg.Agent.Model, cfg.Agent.APIURL)

	modelConfig := &openai.ChatModelConfig{
		APIKey: cfg.Agent.APIKey,
		Model:  cfg.Agent.Model,
	}
	if cfg.Agent.APIURL != "" {
		modelConfig.BaseURL = cfg.Agent.APIURL
	}

	chatModel, err := openai.NewChatModel(context.Background(), modelConfig)
	if err != nil {
		klog.Errorf("[AgentService] 创建 ChatModel 失败: %v", err)
		return nil, err
	}

	return &AgentService{chatModel: chatModel}, nil
}

// Reply 生成对用户消息的回复
// sessionID 仅用于日志关联，会话记忆由持久化层承担
func (s *AgentService) Reply(ctx context.Context, sessionID, message string) (string, error) {
	klog.V(6).Infof("[AgentService] Reply 开始: session=%s, contentLength=%d", sessionID, len(message))

	input := []*schema.Message{
		schema.SystemMessage(agentSystemPrompt),
		schema.UserMessage(message),
	}

	resp, err := s.chatModel.Generate(ctx, input)
	if err != nil {
		klog.Errorf("[AgentService] Generate 失败: session=%s, err=%v", sessionID, err)
		return "", err
	}

	klog.V(6).Infof("[AgentService] Reply 完成: session=%s, responseLength=%d", sessionID, len(resp.Content))
	return resp.Content, nil
}
