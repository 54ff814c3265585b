package consultation

import (
	"sync"
)

// ContentKind 覆盖层内容类别
type ContentKind string

const (
	KindUser   ContentKind = "user"
	KindAI     ContentKind = "ai"
	KindReport ContentKind = "analysisReport"
)

// reportKey 分析报告在覆盖层中的段落占位键
const reportKey SectionKey = "__report__"

type overlayKey struct {
	section SectionKey
	kind    ContentKind
}

// Overlay 当前目标语言的译文覆盖层
// 只保存一种目标语言的译文；语言切换时整体作废，
// 绝不混入两种语言的条目
type Overlay struct {
	mu      sync.RWMutex
	lang    string
	entries map[overlayKey]string
}

// NewOverlay 创建空覆盖层，初始语言为原生语言
func NewOverlay() *Overlay {
	return &Overlay{
		lang:    NativeLanguage,
		entries: make(map[overlayKey]string),
	}
}

// Reset 清空覆盖层并切换到新的目标语言
func (o *Overlay) Reset(lang string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lang = lang
	o.entries = make(map[overlayKey]string)
}

// Put 写入一条译文；目标语言已经变化时静默丢弃
func (o *Overlay) Put(lang string, section SectionKey, kind ContentKind, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lang != lang {
		return
	}
	o.entries[overlayKey{section, kind}] = text
}

// Get 读取一条译文
func (o *Overlay) Get(section SectionKey, kind ContentKind) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	text, ok := o.entries[overlayKey{section, kind}]
	return text, ok
}

// Language 当前覆盖层对应的目标语言
func (o *Overlay) Language() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lang
}

// Len 覆盖层条目数
func (o *Overlay) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}

// Resolver 根据当前语言决定每个段落展示哪份文本
type Resolver struct {
	store   *Store
	overlay *Overlay
}

// NewResolver 创建覆盖层解析器
func NewResolver(store *Store, overlay *Overlay) *Resolver {
	return &Resolver{store: store, overlay: overlay}
}

// DisplayText 段落录入文本的展示值
// 原生语言直接返回录入文本；其它语言只返回译文，
// 译文未就绪时返回空串，不回退到原生文本
func (r *Resolver) DisplayText(key SectionKey, lang string) string {
	if lang == NativeLanguage {
		return r.store.SectionText(key)
	}
	text, _ := r.overlay.Get(key, KindUser)
	return text
}

// SuggestionText 段落 AI 建议的展示值，规则与 DisplayText 一致
func (r *Resolver) SuggestionText(key SectionKey, lang string) string {
	if lang == NativeLanguage {
		text, _ := r.store.Suggestion(key)
		return text
	}
	text, _ := r.overlay.Get(key, KindAI)
	return text
}

// ReportText 分析报告的展示值
func (r *Resolver) ReportText(lang string) string {
	if lang == NativeLanguage {
		text, _ := r.store.AnalysisReport()
		return text
	}
	text, _ := r.overlay.Get(reportKey, KindReport)
	return text
}

// Editable 当前语言下段落是否可编辑
// 非原生语言呈现的是只读译文
func (r *Resolver) Editable(lang string) bool {
	return lang == NativeLanguage
}
