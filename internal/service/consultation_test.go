package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elikita/backend/internal/consultation"
)

type immediateProviders struct{}

func (immediateProviders) SectionSuggestion(ctx context.Context, section consultation.Section, snap consultation.Snapshot) (string, error) {
	return "suggested " + string(section.Key), nil
}

func (immediateProviders) AllSuggestions(ctx context.Context, snap consultation.Snapshot) (map[consultation.SectionKey]string, error) {
	return map[consultation.SectionKey]string{consultation.SectionDiagnosis: "bulk"}, nil
}

func (immediateProviders) AnalysisReport(ctx context.Context, snap consultation.Snapshot) (string, error) {
	return "report", nil
}

func (immediateProviders) Translate(ctx context.Context, text, target string) (string, error) {
	return "[" + target + "] " + text, nil
}

func newTestConsultationService() (*ConsultationService, *consultation.Store) {
	store := consultation.NewStore(consultation.DefaultPatient())
	overlay := consultation.NewOverlay()
	resolver := consultation.NewResolver(store, overlay)
	service := NewConsultationService(store, resolver,
		&consultation.StaticTranscriber{Transcript: "voice note"},
		&consultation.NoopSynthesizer{}, true)
	providers := immediateProviders{}
	coordinator := consultation.NewCoordinator(store, overlay, providers, providers, providers,
		service.AIEnabled, nil)
	service.SetCoordinator(coordinator)
	return service, store
}

// 译文视图只读：切到非原生语言后拒绝编辑与语音输入
func TestSetSectionTextReadOnlyInTranslatedView(t *testing.T) {
	service, store := newTestConsultationService()

	err := service.SetSectionText(consultation.SectionSymptoms, "fever")
	assert.NoError(t, err)

	assert.NoError(t, service.ChangeLanguage(context.Background(), "es"))

	err = service.SetSectionText(consultation.SectionSymptoms, "cough")
	assert.ErrorIs(t, err, ErrReadOnlyView)
	assert.Equal(t, "fever", store.SectionText(consultation.SectionSymptoms), "原生文本不应被改动")

	err = service.VoiceInput(context.Background(), consultation.SectionSymptoms)
	assert.ErrorIs(t, err, ErrReadOnlyView)

	// 切回原生语言后恢复可编辑
	assert.NoError(t, service.ChangeLanguage(context.Background(), consultation.NativeLanguage))
	assert.NoError(t, service.SetSectionText(consultation.SectionSymptoms, "cough"))
}

func TestChangeLanguageRejectsUnknown(t *testing.T) {
	service, _ := newTestConsultationService()
	err := service.ChangeLanguage(context.Background(), "xx")
	assert.ErrorIs(t, err, consultation.ErrInvalidLanguage)
	assert.Equal(t, consultation.NativeLanguage, service.Language(), "无效语言不应改变当前语言")
}

func TestVoiceInputAppendsTranscript(t *testing.T) {
	service, store := newTestConsultationService()

	assert.NoError(t, service.SetSectionText(consultation.SectionChiefComplaint, "headache"))
	assert.NoError(t, service.VoiceInput(context.Background(), consultation.SectionChiefComplaint))
	assert.Equal(t, "headache voice note", store.SectionText(consultation.SectionChiefComplaint))
}

func TestViewReflectsLanguageAndTranslation(t *testing.T) {
	service, _ := newTestConsultationService()

	assert.NoError(t, service.SetSectionText(consultation.SectionSymptoms, "fever"))
	assert.NoError(t, service.Analyze(context.Background()))

	view := service.View()
	assert.Equal(t, consultation.NativeLanguage, view.Language)
	assert.True(t, view.Editable)
	assert.Equal(t, "report", view.AnalysisReport)

	assert.NoError(t, service.ChangeLanguage(context.Background(), "fr"))
	view = service.View()
	assert.Equal(t, "fr", view.Language)
	assert.False(t, view.Editable)
	assert.Equal(t, "[fr] report", view.AnalysisReport)
	for _, sv := range view.Sections {
		if sv.Key == consultation.SectionSymptoms {
			assert.Equal(t, "[fr] fever", sv.Text)
		}
	}
}

func TestToggleAIEnabled(t *testing.T) {
	service, store := newTestConsultationService()

	service.SetAIEnabled(false)
	err := service.Analyze(context.Background())
	var f *consultation.Failure
	assert.ErrorAs(t, err, &f)
	assert.Equal(t, consultation.ReasonAIDisabled, f.Reason)
	_, ok := store.AnalysisReport()
	assert.False(t, ok)

	service.SetAIEnabled(true)
	assert.NoError(t, service.Analyze(context.Background()))
}
