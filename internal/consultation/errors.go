package consultation

import (
	"errors"
	"fmt"
)

// ErrInvalidSection 段落键不在固定集合内
var ErrInvalidSection = errors.New("invalid consultation section")

// ErrInvalidLanguage 语言代码不受支持
var ErrInvalidLanguage = errors.New("unsupported language")

// ErrInvalidPrecheckTask 问诊前检查项不存在
var ErrInvalidPrecheckTask = errors.New("unknown precheck task")

// FailureReason 请求失败的结构化原因
type FailureReason string

const (
	ReasonAIDisabled        FailureReason = "AIDisabled"
	ReasonNetworkError      FailureReason = "NetworkError"
	ReasonMalformedResponse FailureReason = "MalformedResponse"
	ReasonProviderError     FailureReason = "ProviderError"
)

// Failure 携带结构化原因的请求失败
// 提供方在边界处完成归类，协调器只透传
type Failure struct {
	Reason  FailureReason
	Message string
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return string(f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// NewFailure 构造失败原因
func NewFailure(reason FailureReason, message string) *Failure {
	return &Failure{Reason: reason, Message: message}
}

// ClassifyError 把任意错误归类为结构化失败
// 已经是 Failure 的保持原样，其余按传输层错误处理
func ClassifyError(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Reason: ReasonNetworkError, Message: err.Error()}
}
