package utils

import (
	"testing"
)

// TestExtractJSONFromCodeBlock 验证从代码块中提取 JSON
func TestExtractJSONFromCodeBlock(t *testing.T) {
	content := "说明文本\n```json\n{\"suggestion\": \"rest and hydration\"}\n```\n结尾文本"
	extracted := ExtractJSON(content)
	if extracted != `{"suggestion": "rest and hydration"}` {
		t.Fatalf("unexpected extraction: %s", extracted)
	}
}

// TestExtractJSONNested 验证嵌套对象按花括号配对截取
func TestExtractJSONNested(t *testing.T) {
	content := `prefix {"a": {"b": 1}} suffix`
	extracted := ExtractJSON(content)
	if extracted != `{"a": {"b": 1}}` {
		t.Fatalf("unexpected extraction: %s", extracted)
	}
}

// TestExtractJSONWithoutBraces 没有 JSON 时原样返回
func TestExtractJSONWithoutBraces(t *testing.T) {
	content := "plain text only"
	if ExtractJSON(content) != content {
		t.Fatalf("expected passthrough for non-JSON content")
	}
}
