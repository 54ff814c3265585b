package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elikita/backend/config"
	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/pkg/llm"
	"k8s.io/klog/v2"
)

// AnalysisService 整单分析报告提供方
// 先把问诊文本送文本分析服务做医学信息抽取，再让 LLM 排版成报告。
// 未配置文本分析服务时跳过抽取阶段
type AnalysisService struct {
	cfg        *config.Config
	client     *llm.Client
	httpClient *http.Client
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(cfg *config.Config, client *llm.Client) *AnalysisService {
	return &AnalysisService{
		cfg:    cfg,
		client: client,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// AnalysisReport 生成整单分析报告
func (s *AnalysisService) AnalysisReport(ctx context.Context, snap consultation.Snapshot) (string, error) {
	extracted := ""
	if s.cfg.TextAnalytics.Endpoint != "" {
		info, err := s.extract(ctx, snap)
		if err != nil {
			return "", err
		}
		extracted = info
	} else {
		klog.V(6).Infof("文本分析服务未配置，跳过抽取阶段")
	}

	prompt := s.buildReportPrompt(snap, extracted)
	content, err := s.client.Chat(ctx, []llm.ChatMessage{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", classifyLLMError(err)
	}
	return strings.TrimSpace(content), nil
}

// extract 调用文本分析服务抽取医学信息
func (s *AnalysisService) extract(ctx context.Context, snap consultation.Snapshot) (string, error) {
	texts := make([]string, 0, len(snap.Sections))
	for _, section := range consultation.Sections() {
		texts = append(texts, snap.Sections[section.Key])
	}

	reqBody := map[string]any{
		"documents": []map[string]string{
			{
				"id":       "1",
				"language": "en",
				"text":     strings.Join(texts, " "),
			},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}

	url := strings.TrimSuffix(s.cfg.TextAnalytics.Endpoint, "/") + "/text/analytics/v3.1/analyze"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.cfg.TextAnalytics.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		klog.Errorf("文本分析请求失败: %v", err)
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", consultation.NewFailure(consultation.ReasonNetworkError, err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", consultation.NewFailure(consultation.ReasonProviderError,
			fmt.Sprintf("text analytics returned status %d", resp.StatusCode))
	}

	// 响应是自由形态的 JSON，原样带进报告提示词
	if !json.Valid(body) {
		return "", consultation.NewFailure(consultation.ReasonMalformedResponse, "text analytics response is not valid JSON")
	}
	return string(body), nil
}

func (s *AnalysisService) buildReportPrompt(snap consultation.Snapshot, extracted string) string {
	var b strings.Builder
	b.WriteString("Using the following patient information and extracted medical data, generate a comprehensive report:\n\n")
	writePatientContext(&b, snap)
	b.WriteString("\nCurrent Consultation:\n")
	for _, section := range consultation.Sections() {
		fmt.Fprintf(&b, "%s: %s\n", section.Label, snap.Sections[section.Key])
	}
	if extracted != "" {
		fmt.Fprintf(&b, "\nExtracted Medical Information:\n%s\n", extracted)
	}
	b.WriteString("\nPlease generate a structured report including all the above information in a clear and professional manner.")
	return b.String()
}
