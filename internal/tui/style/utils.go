package style

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// logEntry zap JSON 日誌的字段
type logEntry struct {
	Level   string `json:"level"`
	Message string `json:"msg"`
	Time    string `json:"ts"`
	Caller  string `json:"caller"`
	Error   string `json:"error"`
}

// ansiRegex 用於去除原有的顏色代碼
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// zapTimeLayout zapcore.ISO8601TimeEncoder 的輸出格式
const zapTimeLayout = "2006-01-02T15:04:05.000Z0700"

// VisualLength 計算字符串在等寬終端中的可視寬度，忽略 ANSI 顏色碼
func VisualLength(s string) int {
	return runewidth.StringWidth(stripANSI(s))
}

// PadRight 按可視寬度補齊空格
func PadRight(s string, width int) string {
	if n := width - VisualLength(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// BuildColoredLogContent 構建帶顏色的日誌字符串
func BuildColoredLogContent(logs []string) string {
	if len(logs) == 0 {
		return ""
	}

	var sb strings.Builder

	// 預定義樣式
	timeStyle := lipgloss.NewStyle().Foreground(Muted)
	msgStyle := lipgloss.NewStyle().Foreground(Text)
	errStyle := lipgloss.NewStyle().Foreground(Error)

	// 級別樣式
	levelError := lipgloss.NewStyle().Foreground(Error)
	levelWarn := lipgloss.NewStyle().Foreground(Warning)
	levelInfo := lipgloss.NewStyle().Foreground(Info)
	levelDebug := lipgloss.NewStyle().Foreground(Muted)

	for _, line := range logs {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry logEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			// 非 JSON 行按關鍵字降級著色
			cleanLine := stripANSI(line)
			switch {
			case strings.Contains(cleanLine, "ERROR"), strings.Contains(cleanLine, "FATAL"):
				sb.WriteString(ErrorText(cleanLine))
			case strings.Contains(cleanLine, "WARN"):
				sb.WriteString(WarningText(cleanLine))
			case strings.Contains(cleanLine, "DEBUG"):
				sb.WriteString(MutedText(cleanLine))
			default:
				sb.WriteString(SnowText(cleanLine))
			}
			sb.WriteString("\n")
			continue
		}

		var renderedLevel string
		switch strings.ToUpper(entry.Level) {
		case "ERROR", "DPANIC", "PANIC", "FATAL":
			renderedLevel = levelError.Render("[ERROR]")
		case "WARN":
			renderedLevel = levelWarn.Render("[WARN] ")
		case "DEBUG":
			renderedLevel = levelDebug.Render("[DEBUG]")
		default:
			renderedLevel = levelInfo.Render("[INFO] ")
		}

		// 拼接: [01-02 15:04:05] [INFO] 消息內容
		sb.WriteString(fmt.Sprintf("%s %s %s",
			timeStyle.Render(formatTime(entry.Time)),
			renderedLevel,
			msgStyle.Render(stripANSI(entry.Message)),
		))
		if entry.Error != "" {
			sb.WriteString(" ")
			sb.WriteString(errStyle.Render(entry.Error))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// stripANSI 去除字符串中的 ANSI 轉義碼
func stripANSI(str string) string {
	return ansiRegex.ReplaceAllString(str, "")
}

// formatTime 嘗試解析並簡化時間字符串
func formatTime(raw string) string {
	for _, layout := range []string{zapTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return fmt.Sprintf("[%s]", t.Format("01-02 15:04:05"))
		}
	}

	if raw == "" {
		return "[Unknown Time]"
	}
	if len(raw) > 19 {
		return fmt.Sprintf("[%s]", raw[:19])
	}
	return fmt.Sprintf("[%s]", raw)
}
