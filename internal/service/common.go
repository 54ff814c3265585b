package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/pkg/llm"
)

// classifyLLMError 在边界处把 LLM 客户端错误归为结构化失败
// 服务端错误体 → ProviderError；空响应 → MalformedResponse；
// 其余（连接失败、超时）→ NetworkError
func classifyLLMError(err error) *consultation.Failure {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return consultation.NewFailure(consultation.ReasonProviderError, apiErr.Message)
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		return consultation.NewFailure(consultation.ReasonMalformedResponse, err.Error())
	}
	return consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
}

// writePatientContext 把患者档案写进提示词
func writePatientContext(b *strings.Builder, snap consultation.Snapshot) {
	p := snap.Patient
	fmt.Fprintf(b, "Patient Information:\nName: %s\nAge: %d\nGender: %s\n", p.Name, p.Age, p.Gender)
	fmt.Fprintf(b, "Allergies: %s\n", strings.Join(p.Allergies, ", "))
	fmt.Fprintf(b, "Medications: %s\n", strings.Join(p.Medications, ", "))
	b.WriteString("\nMedical History:\n")
	for _, h := range p.MedicalHistory {
		fmt.Fprintf(b, "%s: %s - %s\n", h.Date, h.Diagnosis, h.Treatment)
	}
}
