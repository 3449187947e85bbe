package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// 標題樣式
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// 報告面板
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	// 鍵值行
	LabelStyle = lipgloss.NewStyle().
			Foreground(Gray)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// 表格
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Text).
				Background(BgMedium).
				Padding(0, 1)

	TableCellStyle = lipgloss.NewStyle().
			Foreground(Gray).
			Padding(0, 1)

	// 錯誤樣式
	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// 成功樣式
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	// 警告樣式
	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// 信息樣式
	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)
)

// GetStatusColor 根據狀態返回顏色
func GetStatusColor(status string) lipgloss.Color {
	switch status {
	case "valid", "ok", "on":
		return Success
	case "invalid", "failed", "off":
		return Error
	case "pending":
		return Warning
	default:
		return Muted
	}
}
