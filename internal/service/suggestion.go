package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/pkg/llm"
	"github.com/elikita/backend/internal/utils"
	"k8s.io/klog/v2"
)

const suggestionSystemPrompt = "You are a helpful medical assistant."

// SuggestionService 基于 LLM 的段落建议提供方
type SuggestionService struct {
	client *llm.Client
}

// NewSuggestionService 创建建议服务
func NewSuggestionService(client *llm.Client) *SuggestionService {
	return &SuggestionService{client: client}
}

// SectionSuggestion 为单个段落生成建议
// 响应约定为 {"suggestion": "..."}，缺少该字段按畸形响应处理
func (s *SuggestionService) SectionSuggestion(ctx context.Context, section consultation.Section, snap consultation.Snapshot) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the patient's information, provide a suggestion for the %s section.\n\n", section.Label)
	fmt.Fprintf(&b, "%s\n\n", section.Prompt)
	writePatientContext(&b, snap)
	fmt.Fprintf(&b, "\nPatient's input for this section: %s\n", snap.Sections[section.Key])
	b.WriteString("\nOutput the suggestion in JSON format, like this:\n{\"suggestion\": \"...\"}\n")

	content, err := s.chat(ctx, b.String())
	if err != nil {
		return "", err
	}

	var payload struct {
		Suggestion *string `json:"suggestion"`
	}
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &payload); err != nil {
		klog.Errorf("段落建议响应解析失败: section=%s, err=%v", section.Key, err)
		return "", consultation.NewFailure(consultation.ReasonMalformedResponse, err.Error())
	}
	if payload.Suggestion == nil {
		return "", consultation.NewFailure(consultation.ReasonMalformedResponse, "response missing suggestion field")
	}
	return *payload.Suggestion, nil
}

// AllSuggestions 一次请求生成全部段落的建议
// 响应约定为以段落键为键的 JSON 对象
func (s *SuggestionService) AllSuggestions(ctx context.Context, snap consultation.Snapshot) (map[consultation.SectionKey]string, error) {
	var b strings.Builder
	b.WriteString("Based on the patient's information, please provide suggestions for the following sections. For each section, output the suggestion in JSON format with the key being the section name.\n\nSections:\n")
	for _, section := range consultation.Sections() {
		fmt.Fprintf(&b, "- %s (%s): %s\nPatient's input: %s\n\n",
			section.Label, section.Key, section.Prompt, snap.Sections[section.Key])
	}
	writePatientContext(&b, snap)
	b.WriteString("\nPlease output the suggestions in JSON format, like this:\n{\n")
	for i, section := range consultation.Sections() {
		sep := ","
		if i == len(consultation.Sections())-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: \"Suggestion for %s\"%s\n", section.Key, strings.ToLower(section.Label), sep)
	}
	b.WriteString("}\n")

	content, err := s.chat(ctx, b.String())
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &raw); err != nil {
		klog.Errorf("整单建议响应解析失败: %v", err)
		return nil, consultation.NewFailure(consultation.ReasonMalformedResponse, err.Error())
	}

	suggestions := make(map[consultation.SectionKey]string, len(raw))
	for key, text := range raw {
		sectionKey := consultation.SectionKey(key)
		if !consultation.ValidSection(sectionKey) {
			// 模型偶尔会多出无关的键，忽略
			klog.V(6).Infof("忽略未知段落键: %s", key)
			continue
		}
		suggestions[sectionKey] = text
	}
	if len(suggestions) == 0 {
		return nil, consultation.NewFailure(consultation.ReasonMalformedResponse, "no section suggestions in response")
	}
	return suggestions, nil
}

func (s *SuggestionService) chat(ctx context.Context, prompt string) (string, error) {
	content, err := s.client.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: suggestionSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", classifyLLMError(err)
	}
	return content, nil
}
