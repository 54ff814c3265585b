package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/elikita/backend/internal/consultation"
	"k8s.io/klog/v2"
)

// ErrReadOnlyView 非原生语言下段落为只读译文，不接受编辑
var ErrReadOnlyView = errors.New("sections are read-only in translated view")

// SectionView 一个段落在当前语言下的展示状态
type SectionView struct {
	Key        consultation.SectionKey `json:"key"`
	Label      string                  `json:"label"`
	Text       string                  `json:"text"`
	Suggestion string                  `json:"suggestion"`
	Status     string                  `json:"status,omitempty"`
}

// PrecheckView 问诊前检查项的展示状态
type PrecheckView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
}

// ConsultationView 问诊视图整体状态
type ConsultationView struct {
	Patient         consultation.PatientRecord `json:"patient"`
	Language        string                     `json:"language"`
	Editable        bool                       `json:"editable"`
	Sections        []SectionView              `json:"sections"`
	AnalysisReport  string                     `json:"analysis_report"`
	Precheck        []PrecheckView             `json:"precheck"`
	AllPrecheckDone bool                       `json:"all_precheck_done"`
	AIEnabled       bool                       `json:"ai_enabled"`
}

// ConsultationService 问诊视图服务
// 组合 Store、协调器与覆盖层解析器，持有当前展示语言与 AI 开关，
// 并在调用点落实"非原生语言只读"的约定
type ConsultationService struct {
	store       *consultation.Store
	resolver    *consultation.Resolver
	coordinator *consultation.Coordinator

	transcriber consultation.VoiceTranscriber
	synthesizer consultation.SpeechSynthesizer

	mu          sync.Mutex
	language    string
	aiEnabled   bool
	speakingKey consultation.SectionKey
}

// NewConsultationService 创建问诊视图服务
func NewConsultationService(
	store *consultation.Store,
	resolver *consultation.Resolver,
	transcriber consultation.VoiceTranscriber,
	synthesizer consultation.SpeechSynthesizer,
	aiEnabled bool,
) *ConsultationService {
	return &ConsultationService{
		store:       store,
		resolver:    resolver,
		transcriber: transcriber,
		synthesizer: synthesizer,
		language:    consultation.NativeLanguage,
		aiEnabled:   aiEnabled,
	}
}

// SetCoordinator 注入协调器
// 协调器的 AI 开关回调指向本服务，构造上互相依赖，分两步装配
func (s *ConsultationService) SetCoordinator(coordinator *consultation.Coordinator) {
	s.coordinator = coordinator
}

// AIEnabled AI 辅助是否开启
func (s *ConsultationService) AIEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aiEnabled
}

// SetAIEnabled 切换 AI 辅助开关
func (s *ConsultationService) SetAIEnabled(enabled bool) {
	s.mu.Lock()
	s.aiEnabled = enabled
	s.mu.Unlock()
	klog.V(6).Infof("AI 辅助开关: enabled=%v", enabled)
}

// Language 当前展示语言
func (s *ConsultationService) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// ChangeLanguage 切换展示语言并翻译全部可见文本
func (s *ConsultationService) ChangeLanguage(ctx context.Context, lang string) error {
	if !consultation.ValidLanguage(lang) {
		return consultation.ErrInvalidLanguage
	}
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
	return s.coordinator.RequestTranslation(ctx, lang)
}

// SetSectionText 更新段落录入文本
// 只在原生语言下允许，译文视图是只读的
func (s *ConsultationService) SetSectionText(key consultation.SectionKey, text string) error {
	if !s.resolver.Editable(s.Language()) {
		return ErrReadOnlyView
	}
	return s.store.SetSectionText(key, text)
}

// Suggest 请求单个段落的 AI 建议
func (s *ConsultationService) Suggest(ctx context.Context, key consultation.SectionKey) error {
	return s.coordinator.RequestSectionSuggestion(ctx, key)
}

// SuggestAll 请求整单建议并应用到全部段落
func (s *ConsultationService) SuggestAll(ctx context.Context) error {
	return s.coordinator.RequestAllSuggestions(ctx)
}

// Analyze 请求整单分析报告
func (s *ConsultationService) Analyze(ctx context.Context) error {
	return s.coordinator.RequestFullAnalysis(ctx)
}

// TogglePrecheckTask 勾选/取消问诊前检查项
func (s *ConsultationService) TogglePrecheckTask(id string) error {
	return s.store.TogglePrecheckTask(id)
}

// VoiceInput 语音输入转写并追加到段落
func (s *ConsultationService) VoiceInput(ctx context.Context, key consultation.SectionKey) error {
	if !s.resolver.Editable(s.Language()) {
		return ErrReadOnlyView
	}
	if !consultation.ValidSection(key) {
		return consultation.ErrInvalidSection
	}
	transcript, err := s.transcriber.Transcribe(ctx)
	if err != nil {
		return err
	}
	existing := s.store.SectionText(key)
	return s.store.SetSectionText(key, strings.TrimSpace(existing+" "+transcript))
}

// Speak 朗读段落展示文本；再次调用同一段落则停止
func (s *ConsultationService) Speak(ctx context.Context, key consultation.SectionKey) error {
	if !consultation.ValidSection(key) {
		return consultation.ErrInvalidSection
	}

	s.mu.Lock()
	if s.speakingKey == key {
		s.speakingKey = ""
		s.mu.Unlock()
		s.synthesizer.Cancel()
		return nil
	}
	s.speakingKey = key
	lang := s.language
	s.mu.Unlock()

	s.synthesizer.Cancel()
	return s.synthesizer.Speak(ctx, s.resolver.DisplayText(key, lang))
}

// Close 释放能力句柄，视图卸载时调用
func (s *ConsultationService) Close() {
	s.synthesizer.Cancel()
}

// View 当前语言下的视图整体状态
func (s *ConsultationService) View() ConsultationView {
	s.mu.Lock()
	lang := s.language
	aiEnabled := s.aiEnabled
	s.mu.Unlock()

	view := ConsultationView{
		Patient:   s.store.Patient(),
		Language:  lang,
		Editable:  s.resolver.Editable(lang),
		AIEnabled: aiEnabled,
	}

	for _, section := range consultation.Sections() {
		sv := SectionView{
			Key:        section.Key,
			Label:      section.Label,
			Text:       s.resolver.DisplayText(section.Key, lang),
			Suggestion: s.resolver.SuggestionText(section.Key, lang),
		}
		if status, ok := s.coordinator.Status(string(section.Key)); ok {
			sv.Status = string(status.State)
		}
		view.Sections = append(view.Sections, sv)
	}

	view.AnalysisReport = s.resolver.ReportText(lang)

	for _, task := range consultation.PrecheckTasks() {
		view.Precheck = append(view.Precheck, PrecheckView{
			ID:        task.ID,
			Label:     task.Label,
			Completed: s.store.PrecheckCompleted(task.ID),
		})
	}
	view.AllPrecheckDone = s.store.AllPrecheckDone()

	return view
}
