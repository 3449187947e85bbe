package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row 報告中的一行
type Row struct {
	Label string
	Value string
	// Color 為空時使用 ValueStyle 的前景色
	Color lipgloss.Color
}

// KV 構造默認顏色的一行
func KV(label, value string) Row {
	return Row{Label: label, Value: value}
}

// RenderReport 渲染帶標題的鍵值面板，標籤按最長者對齊
func RenderReport(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		if w := VisualLength(r.Label); w > width {
			width = w
		}
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		value := ValueStyle
		if r.Color != "" {
			value = value.Foreground(r.Color)
		}
		lines = append(lines, LabelStyle.Render(PadRight(r.Label, width))+"  "+value.Render(r.Value))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(title),
		PanelStyle.Render(strings.Join(lines, "\n")),
	)
}

// RenderTable 渲染等寬表格；沒有數據行時輸出 "No entries"
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = VisualLength(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := VisualLength(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	render := func(cells []string, st lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = st.Render(PadRight(cell, widths[i]))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := []string{render(headers, TableHeaderStyle)}
	if len(rows) == 0 {
		lines = append(lines, TableCellStyle.Render(MutedText("No entries")))
	}
	for _, row := range rows {
		lines = append(lines, render(row, TableCellStyle))
	}
	return strings.Join(lines, "\n")
}

// RenderResult 單行結果提示
func RenderResult(ok bool, msg string) string {
	if ok {
		return SuccessStyle.Render("OK ") + msg
	}
	return ErrorStyle.Render("FAILED ") + msg
}
