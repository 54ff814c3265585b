package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elikita/backend/config"
	"github.com/elikita/backend/internal/consultation"
	"k8s.io/klog/v2"
)

// TranslatorService 翻译服务客户端
// 每个文本单元一次调用，请求 {text, target}，响应 {translated}
type TranslatorService struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewTranslatorService 创建翻译服务客户端
func NewTranslatorService(cfg *config.Config) *TranslatorService {
	return &TranslatorService{
		endpoint: cfg.Translator.Endpoint,
		apiKey:   cfg.Translator.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Translate 翻译一段文本
func (s *TranslatorService) Translate(ctx context.Context, text, target string) (string, error) {
	reqBody := map[string]string{
		"text":   text,
		"target": target,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		klog.Errorf("翻译请求失败: target=%s, err=%v", target, err)
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", consultation.NewFailure(consultation.ReasonProviderError,
			fmt.Sprintf("translator returned status %d", resp.StatusCode))
	}

	var payload struct {
		Translated *string `json:"translated"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", consultation.NewFailure(consultation.ReasonMalformedResponse, err.Error())
	}
	if payload.Translated == nil {
		return "", consultation.NewFailure(consultation.ReasonMalformedResponse, "response missing translated field")
	}
	return *payload.Translated, nil
}
