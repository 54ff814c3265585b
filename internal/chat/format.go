package chat

import (
	"regexp"
	"strings"
)

var numberedLine = regexp.MustCompile(`^\d+\.`)

// FormatReply 对智能体原始回复做确定性排版
// 规则：以加粗标记结尾的行包装为加粗标题；以连字符开头的行改写为
// 圆点列表项；编号行原样保留；其余行去掉首尾空白。
// 处理后各行之间以空行分隔
func FormatReply(text string) string {
	lines := strings.Split(text, "\n")
	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasSuffix(trimmed, "**"):
			formatted = append(formatted, "**"+trimmed+"**")
		case strings.HasPrefix(trimmed, "-"):
			formatted = append(formatted, "• "+strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
		case numberedLine.MatchString(trimmed):
			formatted = append(formatted, trimmed)
		default:
			formatted = append(formatted, trimmed)
		}
	}
	return strings.Join(formatted, "\n\n")
}
