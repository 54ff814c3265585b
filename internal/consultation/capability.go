package consultation

import "context"

// VoiceTranscriber 语音输入能力句柄
// 浏览器侧能力在后端只是不透明桩，随视图创建注入、随视图销毁释放
type VoiceTranscriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// SpeechSynthesizer 朗读能力句柄
type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// StaticTranscriber 固定文本的语音输入桩
type StaticTranscriber struct {
	Transcript string
}

func (t *StaticTranscriber) Transcribe(ctx context.Context) (string, error) {
	return t.Transcript, nil
}

// NoopSynthesizer 什么都不做的朗读桩
type NoopSynthesizer struct{}

func (s *NoopSynthesizer) Speak(ctx context.Context, text string) error { return nil }

func (s *NoopSynthesizer) Cancel() {}
