package consultation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 可控的建议提供方：每次调用阻塞到对应的 release 被关闭
type suggestionCall struct {
	section Section
	release chan struct{}
	text    string
	err     error
}

type fakeSuggestionProvider struct {
	mu    sync.Mutex
	calls []*suggestionCall
	bulk  map[SectionKey]string
}

func (f *fakeSuggestionProvider) SectionSuggestion(ctx context.Context, section Section, snap Snapshot) (string, error) {
	call := &suggestionCall{section: section, release: make(chan struct{})}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	<-call.release
	return call.text, call.err
}

func (f *fakeSuggestionProvider) AllSuggestions(ctx context.Context, snap Snapshot) (map[SectionKey]string, error) {
	return f.bulk, nil
}

func (f *fakeSuggestionProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSuggestionProvider) call(i int) *suggestionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type fakeAnalysisProvider struct {
	mu     sync.Mutex
	calls  int
	report string
	err    error
}

func (f *fakeAnalysisProvider) AnalysisReport(ctx context.Context, snap Snapshot) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.report, f.err
}

func (f *fakeAnalysisProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// 可控翻译方：gate 中存在目标语言时，调用阻塞到通道关闭
type translateCall struct {
	text string
	lang string
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls []translateCall
	gate  map[string]chan struct{}
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, translateCall{text: text, lang: target})
	gate := f.gate[target]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return "[" + target + "] " + text, nil
}

func (f *fakeTranslator) countFor(lang string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.lang == lang {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func newTestCoordinator(enabled bool) (*Coordinator, *Store, *Overlay, *fakeSuggestionProvider, *fakeAnalysisProvider, *fakeTranslator) {
	store := NewStore(DefaultPatient())
	overlay := NewOverlay()
	suggestions := &fakeSuggestionProvider{}
	analysis := &fakeAnalysisProvider{report: "analysis report"}
	translator := &fakeTranslator{gate: map[string]chan struct{}{}}
	coordinator := NewCoordinator(store, overlay, suggestions, analysis, translator,
		func() bool { return enabled }, nil)
	return coordinator, store, overlay, suggestions, analysis, translator
}

// 同一段落连续两次请求，第一次的响应后到：只有第二次的结果可见
func TestSecondGenerationWinsRegardlessOfArrivalOrder(t *testing.T) {
	coordinator, store, _, suggestions, _, _ := newTestCoordinator(true)

	var wg sync.WaitGroup
	var err1, err2 error

	wg.Add(1)
	go func() {
		defer wg.Done()
		err1 = coordinator.RequestSectionSuggestion(context.Background(), SectionDiagnosis)
	}()
	waitFor(t, func() bool { return suggestions.callCount() == 1 })

	wg.Add(1)
	go func() {
		defer wg.Done()
		err2 = coordinator.RequestSectionSuggestion(context.Background(), SectionDiagnosis)
	}()
	waitFor(t, func() bool { return suggestions.callCount() == 2 })

	// 第二次请求先完成
	second := suggestions.call(1)
	second.text = "second suggestion"
	close(second.release)
	waitFor(t, func() bool {
		status, ok := coordinator.Status(string(SectionDiagnosis))
		return ok && status.State == StateDone
	})

	// 第一次请求的迟到响应随后才到达
	first := suggestions.call(0)
	first.text = "first suggestion"
	close(first.release)
	wg.Wait()

	assert.NoError(t, err1, "过期请求应静默丢弃而非报错")
	assert.NoError(t, err2)

	text, ok := store.Suggestion(SectionDiagnosis)
	assert.True(t, ok)
	assert.Equal(t, "second suggestion", text, "只有高 generation 的结果允许写入")

	status, ok := coordinator.Status(string(SectionDiagnosis))
	assert.True(t, ok)
	assert.Equal(t, StateDone, status.State)
}

// 过期请求失败也不应污染新请求的状态
func TestStaleFailureDiscarded(t *testing.T) {
	coordinator, store, _, suggestions, _, _ := newTestCoordinator(true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		coordinator.RequestSectionSuggestion(context.Background(), SectionSymptoms)
	}()
	waitFor(t, func() bool { return suggestions.callCount() == 1 })
	go func() {
		defer wg.Done()
		coordinator.RequestSectionSuggestion(context.Background(), SectionSymptoms)
	}()
	waitFor(t, func() bool { return suggestions.callCount() == 2 })

	second := suggestions.call(1)
	second.text = "kept"
	close(second.release)
	waitFor(t, func() bool {
		status, ok := coordinator.Status(string(SectionSymptoms))
		return ok && status.State == StateDone
	})

	first := suggestions.call(0)
	first.err = NewFailure(ReasonNetworkError, "timeout")
	close(first.release)
	wg.Wait()

	status, _ := coordinator.Status(string(SectionSymptoms))
	assert.Equal(t, StateDone, status.State, "过期请求的失败不应覆盖新状态")
	text, _ := store.Suggestion(SectionSymptoms)
	assert.Equal(t, "kept", text)
}

// AI 辅助关闭：立即失败且不发出任何网络请求
func TestAIDisabledFailsFast(t *testing.T) {
	coordinator, store, _, suggestions, analysis, _ := newTestCoordinator(false)

	err := coordinator.RequestFullAnalysis(context.Background())
	var f *Failure
	assert.True(t, errors.As(err, &f), "应返回结构化失败")
	assert.Equal(t, ReasonAIDisabled, f.Reason)
	assert.Equal(t, 0, analysis.callCount(), "不应发出网络请求")
	_, ok := store.AnalysisReport()
	assert.False(t, ok, "报告不应被写入")

	err = coordinator.RequestSectionSuggestion(context.Background(), SectionDiagnosis)
	assert.True(t, errors.As(err, &f))
	assert.Equal(t, ReasonAIDisabled, f.Reason)
	assert.Equal(t, 0, suggestions.callCount())
}

// 提供方失败：状态标记 failed 并携带结构化原因
func TestProviderFailureRecorded(t *testing.T) {
	coordinator, _, _, suggestions, _, _ := newTestCoordinator(true)

	var wg sync.WaitGroup
	var reqErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		reqErr = coordinator.RequestSectionSuggestion(context.Background(), SectionExamination)
	}()
	waitFor(t, func() bool { return suggestions.callCount() == 1 })

	call := suggestions.call(0)
	call.err = NewFailure(ReasonProviderError, "model overloaded")
	close(call.release)
	wg.Wait()

	var f *Failure
	assert.True(t, errors.As(reqErr, &f))
	assert.Equal(t, ReasonProviderError, f.Reason)

	status, ok := coordinator.Status(string(SectionExamination))
	assert.True(t, ok)
	assert.Equal(t, StateFailed, status.State)
	assert.NotNil(t, status.Reason)
	assert.Equal(t, ReasonProviderError, status.Reason.Reason)
}

// 整单分析成功路径
func TestRequestFullAnalysis(t *testing.T) {
	coordinator, store, _, _, analysis, _ := newTestCoordinator(true)

	err := coordinator.RequestFullAnalysis(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, analysis.callCount())

	report, ok := store.AnalysisReport()
	assert.True(t, ok)
	assert.Equal(t, "analysis report", report)
}

// 整单建议：对返回键的录入文本做整体覆盖
func TestRequestAllSuggestionsOverwritesUserText(t *testing.T) {
	coordinator, store, _, suggestions, _, _ := newTestCoordinator(true)
	suggestions.bulk = map[SectionKey]string{
		SectionDiagnosis:     "bulk diagnosis",
		SectionTreatmentPlan: "bulk plan",
	}

	store.SetSectionText(SectionDiagnosis, "user diagnosis")

	err := coordinator.RequestAllSuggestions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "bulk diagnosis", store.SectionText(SectionDiagnosis), "整单应用是整体覆盖")
	assert.Equal(t, "bulk plan", store.SectionText(SectionTreatmentPlan))

	status, ok := coordinator.Status(BulkSuggestionKey)
	assert.True(t, ok)
	assert.Equal(t, StateDone, status.State)
}

// 语言切换被更快的第二次切换取代：旧语言的在途单元全部丢弃，
// 覆盖层只含新语言的条目
func TestTranslationSupersededNeverMixesLanguages(t *testing.T) {
	coordinator, store, overlay, _, _, translator := newTestCoordinator(true)

	for _, section := range Sections() {
		store.SetSectionText(section.Key, "text for "+string(section.Key))
	}
	store.ApplySuggestion(SectionDiagnosis, "suggested diagnosis")
	// 6 个段落文本 + 1 条 AI 建议 = 7 个翻译单元

	esGate := make(chan struct{})
	translator.mu.Lock()
	translator.gate["es"] = esGate
	translator.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		coordinator.RequestTranslation(context.Background(), "es")
	}()
	waitFor(t, func() bool { return translator.countFor("es") == 1 })

	// es 批次的第一个单元还在途时切到 fr
	var frErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		frErr = coordinator.RequestTranslation(context.Background(), "fr")
	}()
	waitFor(t, func() bool {
		status, ok := coordinator.Status(TranslateKey)
		return ok && status.State == StateDone
	})

	// 放行 es 的在途单元，到达后应被整体丢弃
	close(esGate)
	wg.Wait()

	assert.NoError(t, frErr)
	assert.Equal(t, "fr", overlay.Language())
	assert.Equal(t, 7, overlay.Len(), "覆盖层应只包含 fr 批次的条目")
	assert.Equal(t, 1, translator.countFor("es"), "es 批次在首个单元后即放弃")

	text, ok := overlay.Get(SectionDiagnosis, KindUser)
	assert.True(t, ok)
	assert.Equal(t, "[fr] text for diagnosis", text)

	suggestion, ok := overlay.Get(SectionDiagnosis, KindAI)
	assert.True(t, ok)
	assert.Equal(t, "[fr] suggested diagnosis", suggestion)
}

// 切回原生语言：清空覆盖层即完成，不发出任何翻译调用
func TestTranslationToNativeShortCircuits(t *testing.T) {
	coordinator, store, overlay, _, _, translator := newTestCoordinator(true)

	store.SetSectionText(SectionSymptoms, "headache")
	err := coordinator.RequestTranslation(context.Background(), "zh")
	assert.NoError(t, err)
	assert.Equal(t, len(Sections()), overlay.Len(), "每个段落的录入文本都翻译一次")

	before := translator.countFor("zh")
	err = coordinator.RequestTranslation(context.Background(), NativeLanguage)
	assert.NoError(t, err)
	assert.Equal(t, 0, overlay.Len(), "覆盖层应被清空")
	assert.Equal(t, NativeLanguage, overlay.Language())
	assert.Equal(t, before, len(translator.calls), "原生语言不应新增翻译调用")

	status, ok := coordinator.Status(TranslateKey)
	assert.True(t, ok)
	assert.Equal(t, StateDone, status.State)
}

// 未知段落键与未知语言直接拒绝
func TestRequestValidation(t *testing.T) {
	coordinator, _, _, _, _, _ := newTestCoordinator(true)

	err := coordinator.RequestSectionSuggestion(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrInvalidSection)

	err = coordinator.RequestTranslation(context.Background(), "xx")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}
