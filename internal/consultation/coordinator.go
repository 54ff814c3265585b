package consultation

import (
	"context"
	"sync"

	"github.com/elikita/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

// TaskKind 异步请求类别
type TaskKind string

const (
	TaskSectionSuggestion TaskKind = "aiSectionSuggestion"
	TaskAnalysis          TaskKind = "aiAnalysis"
	TaskTranslateBatch    TaskKind = "translateBatch"
)

// 非段落任务的固定键
const (
	AnalysisKey  = "__analysis__"
	TranslateKey = "__translate__"
	// BulkSuggestionKey 整单建议请求的键
	BulkSuggestionKey = "all"
)

// TaskState 任务状态
type TaskState string

const (
	StatePending TaskState = "pending"
	StateDone    TaskState = "done"
	StateFailed  TaskState = "failed"
)

// TaskStatus 每个键最近一次请求的状态
type TaskStatus struct {
	State  TaskState `json:"state"`
	Reason *Failure  `json:"-"`
}

// SuggestionProvider 段落建议的外部提供方
type SuggestionProvider interface {
	SectionSuggestion(ctx context.Context, section Section, snap Snapshot) (string, error)
	AllSuggestions(ctx context.Context, snap Snapshot) (map[SectionKey]string, error)
}

// AnalysisProvider 整单分析报告的外部提供方
type AnalysisProvider interface {
	AnalysisReport(ctx context.Context, snap Snapshot) (string, error)
}

// Translator 翻译服务的外部提供方
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Coordinator 异步任务协调器
// 每个键维护一个单调递增的 generation，新请求令旧请求作废；
// 只有与当前 generation 相符的完成结果才允许写回 Store 或覆盖层，
// 迟到的旧结果静默丢弃。generation 是唯一的并发控制原语，
// 没有显式取消，超时由传输层自行处理
type Coordinator struct {
	mu          sync.Mutex
	store       *Store
	overlay     *Overlay
	suggestions SuggestionProvider
	analysis    AnalysisProvider
	translator  Translator
	bus         *eventbus.Bus
	aiEnabled   func() bool
	generations map[string]uint64
	statuses    map[string]TaskStatus
}

// NewCoordinator 创建协调器
// aiEnabled 为外部提供的 AI 辅助开关
func NewCoordinator(
	store *Store,
	overlay *Overlay,
	suggestions SuggestionProvider,
	analysis AnalysisProvider,
	translator Translator,
	aiEnabled func() bool,
	bus *eventbus.Bus,
) *Coordinator {
	return &Coordinator{
		store:       store,
		overlay:     overlay,
		suggestions: suggestions,
		analysis:    analysis,
		translator:  translator,
		bus:         bus,
		aiEnabled:   aiEnabled,
		generations: make(map[string]uint64),
		statuses:    make(map[string]TaskStatus),
	}
}

// Status 查询某个键最近一次请求的状态
func (c *Coordinator) Status(key string) (TaskStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[key]
	return status, ok
}

// RequestSectionSuggestion 请求单个段落的 AI 建议
// AI 辅助关闭时立即失败，不发出任何网络请求
func (c *Coordinator) RequestSectionSuggestion(ctx context.Context, key SectionKey) error {
	section, ok := SectionByKey(key)
	if !ok {
		return ErrInvalidSection
	}
	if !c.aiEnabled() {
		return c.disabled(ctx, TaskSectionSuggestion, string(key))
	}

	gen := c.begin(string(key))
	snap := c.store.Snapshot()
	klog.V(6).Infof("段落建议请求发出: section=%s, generation=%d", key, gen)

	text, err := c.suggestions.SectionSuggestion(ctx, section, snap)

	c.mu.Lock()
	if c.generations[string(key)] != gen {
		// 已被更新的请求取代，迟到结果丢弃
		c.mu.Unlock()
		klog.V(6).Infof("段落建议结果已过期: section=%s, generation=%d", key, gen)
		return nil
	}
	if err != nil {
		return c.fail(ctx, TaskSectionSuggestion, string(key), err)
	}
	c.store.ApplySuggestion(key, text)
	c.statuses[string(key)] = TaskStatus{State: StateDone}
	c.mu.Unlock()
	c.publish(ctx, eventbus.TaskEventDone, TaskSectionSuggestion, string(key), "")
	return nil
}

// RequestAllSuggestions 请求整单建议并应用到全部段落
// 应用方式是对返回键的录入文本做整体覆盖
func (c *Coordinator) RequestAllSuggestions(ctx context.Context) error {
	if !c.aiEnabled() {
		return c.disabled(ctx, TaskSectionSuggestion, BulkSuggestionKey)
	}

	gen := c.begin(BulkSuggestionKey)
	snap := c.store.Snapshot()
	klog.V(6).Infof("整单建议请求发出: generation=%d", gen)

	suggestions, err := c.suggestions.AllSuggestions(ctx, snap)

	c.mu.Lock()
	if c.generations[BulkSuggestionKey] != gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return c.fail(ctx, TaskSectionSuggestion, BulkSuggestionKey, err)
	}
	if err := c.store.ApplyAllSuggestions(suggestions); err != nil {
		return c.fail(ctx, TaskSectionSuggestion, BulkSuggestionKey,
			NewFailure(ReasonMalformedResponse, err.Error()))
	}
	c.statuses[BulkSuggestionKey] = TaskStatus{State: StateDone}
	c.mu.Unlock()
	c.publish(ctx, eventbus.TaskEventDone, TaskSectionSuggestion, BulkSuggestionKey, "")
	return nil
}

// RequestFullAnalysis 请求整单分析报告
func (c *Coordinator) RequestFullAnalysis(ctx context.Context) error {
	if !c.aiEnabled() {
		return c.disabled(ctx, TaskAnalysis, AnalysisKey)
	}

	gen := c.begin(AnalysisKey)
	snap := c.store.Snapshot()
	klog.V(6).Infof("分析报告请求发出: generation=%d", gen)

	report, err := c.analysis.AnalysisReport(ctx, snap)

	c.mu.Lock()
	if c.generations[AnalysisKey] != gen {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		return c.fail(ctx, TaskAnalysis, AnalysisKey, err)
	}
	c.store.SetAnalysisReport(report)
	c.statuses[AnalysisKey] = TaskStatus{State: StateDone}
	c.mu.Unlock()
	c.publish(ctx, eventbus.TaskEventDone, TaskAnalysis, AnalysisKey, "")
	return nil
}

// translateUnit 一次语言切换中待翻译的一段文本
type translateUnit struct {
	section SectionKey
	kind    ContentKind
	text    string
}

// RequestTranslation 切换目标语言并翻译全部可见文本
// 一次语言切换的所有文本单元共用同一个 generation：
// 用户再次切换语言后，旧语言的所有在途单元到达即丢弃。
// 覆盖层先整体清空，被取代的批次不会留下两种语言混排的条目
func (c *Coordinator) RequestTranslation(ctx context.Context, lang string) error {
	if !ValidLanguage(lang) {
		return ErrInvalidLanguage
	}

	// generation 自增与覆盖层清空必须是同一个临界区，
	// 否则两次快速切换会把旧语言的清空动作排到新语言之后
	c.mu.Lock()
	c.generations[TranslateKey]++
	gen := c.generations[TranslateKey]
	c.statuses[TranslateKey] = TaskStatus{State: StatePending}
	c.overlay.Reset(lang)
	c.mu.Unlock()

	if lang == NativeLanguage {
		// 回到原生语言：清空即完成，不需要任何翻译调用
		c.mu.Lock()
		if c.generations[TranslateKey] == gen {
			c.statuses[TranslateKey] = TaskStatus{State: StateDone}
		}
		c.mu.Unlock()
		return nil
	}

	snap := c.store.Snapshot()
	units := make([]translateUnit, 0, 2*len(sections)+1)
	for _, s := range sections {
		units = append(units, translateUnit{s.Key, KindUser, snap.Sections[s.Key]})
	}
	for _, s := range sections {
		if text, ok := c.store.Suggestion(s.Key); ok {
			units = append(units, translateUnit{s.Key, KindAI, text})
		}
	}
	if report, ok := c.store.AnalysisReport(); ok {
		units = append(units, translateUnit{reportKey, KindReport, report})
	}

	klog.V(6).Infof("翻译批次发出: lang=%s, units=%d, generation=%d", lang, len(units), gen)

	for _, u := range units {
		translated, err := c.translator.Translate(ctx, u.text, lang)

		c.mu.Lock()
		if c.generations[TranslateKey] != gen {
			// 语言又变了，剩余单元全部放弃
			c.mu.Unlock()
			klog.V(6).Infof("翻译批次已过期: lang=%s, generation=%d", lang, gen)
			return nil
		}
		if err != nil {
			return c.fail(ctx, TaskTranslateBatch, TranslateKey, err)
		}
		c.overlay.Put(lang, u.section, u.kind, translated)
		c.mu.Unlock()
	}

	c.mu.Lock()
	if c.generations[TranslateKey] == gen {
		c.statuses[TranslateKey] = TaskStatus{State: StateDone}
	}
	c.mu.Unlock()
	c.publish(ctx, eventbus.TaskEventDone, TaskTranslateBatch, TranslateKey, "")
	return nil
}

// begin 为键开启新一代请求并标记 pending
func (c *Coordinator) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	c.statuses[key] = TaskStatus{State: StatePending}
	return c.generations[key]
}

// disabled AI 辅助关闭时的快速失败，不建立任务
func (c *Coordinator) disabled(ctx context.Context, kind TaskKind, key string) error {
	f := NewFailure(ReasonAIDisabled, "AI assistance is disabled")
	c.publish(ctx, eventbus.TaskEventFailed, kind, key, string(f.Reason))
	return f
}

// fail 记录失败状态并发布事件，调用时必须持有 c.mu
func (c *Coordinator) fail(ctx context.Context, kind TaskKind, key string, err error) error {
	f := ClassifyError(err)
	c.statuses[key] = TaskStatus{State: StateFailed, Reason: f}
	c.mu.Unlock()
	klog.Errorf("异步任务失败: kind=%s, key=%s, reason=%s", kind, key, f.Error())
	c.publish(ctx, eventbus.TaskEventFailed, kind, key, string(f.Reason))
	return f
}

func (c *Coordinator) publish(ctx context.Context, eventType eventbus.TaskEventType, kind TaskKind, key, reason string) {
	if c.bus == nil {
		return
	}
	err := c.bus.Publish(ctx, eventbus.TaskEvent{
		Type:   eventType,
		Kind:   string(kind),
		Key:    key,
		Reason: reason,
	})
	if err != nil {
		klog.V(6).Infof("事件发布失败: %v", err)
	}
}
