package consultation

import (
	"sync"
)

// Snapshot 构建提示词时用的只读快照
type Snapshot struct {
	Patient  PatientRecord
	Sections map[SectionKey]string
}

// Store 问诊数据的唯一持有者
// 患者档案、每个段落的录入文本与 AI 建议、整单分析报告都在这里
// 不做任何 I/O；语言门控是调用方的约定，Store 本身保持纯数据
type Store struct {
	mu             sync.RWMutex
	patient        PatientRecord
	userText       map[SectionKey]string
	suggestions    map[SectionKey]string
	analysisReport string
	hasReport      bool
	completed      map[string]bool
}

// NewStore 创建问诊存储，视图挂载时调用
func NewStore(patient PatientRecord) *Store {
	userText := make(map[SectionKey]string, len(sections))
	for _, s := range sections {
		userText[s.Key] = ""
	}
	return &Store{
		patient:     patient,
		userText:    userText,
		suggestions: make(map[SectionKey]string),
		completed:   make(map[string]bool),
	}
}

// Patient 返回患者档案副本
func (s *Store) Patient() PatientRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patient
}

// SectionText 返回段落当前录入文本，未知键返回空串
func (s *Store) SectionText(key SectionKey) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userText[key]
}

// SetSectionText 设置段落录入文本
func (s *Store) SetSectionText(key SectionKey, text string) error {
	if !ValidSection(key) {
		return ErrInvalidSection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userText[key] = text
	return nil
}

// Suggestion 返回段落的 AI 建议
func (s *Store) Suggestion(key SectionKey) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.suggestions[key]
	return text, ok
}

// ApplySuggestion 覆盖写入段落的 AI 建议，不动录入文本
func (s *Store) ApplySuggestion(key SectionKey, text string) error {
	if !ValidSection(key) {
		return ErrInvalidSection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[key] = text
	return nil
}

// ApplyAllSuggestions 整单应用 AI 建议
// 只合并调用方显式给出的键，且对这些键的录入文本做整体覆盖，
// 不做"仅填空"式的条件合并
func (s *Store) ApplyAllSuggestions(suggestions map[SectionKey]string) error {
	for key := range suggestions {
		if !ValidSection(key) {
			return ErrInvalidSection
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, text := range suggestions {
		s.suggestions[key] = text
		s.userText[key] = text
	}
	return nil
}

// SetAnalysisReport 写入整单分析报告
func (s *Store) SetAnalysisReport(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisReport = text
	s.hasReport = true
}

// AnalysisReport 返回整单分析报告
func (s *Store) AnalysisReport() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysisReport, s.hasReport
}

// Snapshot 返回患者档案与全部段落文本的快照
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Patient:  s.patient,
		Sections: make(map[SectionKey]string, len(s.userText)),
	}
	for key, text := range s.userText {
		snap.Sections[key] = text
	}
	return snap
}

// TogglePrecheckTask 勾选/取消一个问诊前检查项
func (s *Store) TogglePrecheckTask(id string) error {
	if !ValidPrecheckTask(id) {
		return ErrInvalidPrecheckTask
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed[id] {
		delete(s.completed, id)
	} else {
		s.completed[id] = true
	}
	return nil
}

// PrecheckCompleted 查询检查项是否勾选
func (s *Store) PrecheckCompleted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed[id]
}

// AllPrecheckDone 所有检查项是否都已完成
func (s *Store) AllPrecheckDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range precheckTasks {
		if !s.completed[t.ID] {
			return false
		}
	}
	return true
}
