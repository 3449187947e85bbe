package style

import "github.com/charmbracelet/lipgloss"

// TextColor 返回一個使用指定前景色的 Render 函數。
// 這樣上層可以寫：style.TextColor(style.Info)("Settings saved")
func TextColor(c lipgloss.Color) func(string) string {
	s := lipgloss.NewStyle().Foreground(c)
	return func(str string) string {
		return s.Render(str)
	}
}

// 語義著色快捷函數 --------------------------------------------------

// InfoText 使用 Info 顏色顯示文字。
func InfoText(s string) string {
	return TextColor(Info)(s)
}

// SuccessText 使用 Success 顏色顯示文字。
func SuccessText(s string) string {
	return TextColor(Success)(s)
}

// WarningText 使用 Warning 顏色顯示文字。
func WarningText(s string) string {
	return TextColor(Warning)(s)
}

// ErrorText 使用 Error 顏色顯示文字。
func ErrorText(s string) string {
	return TextColor(Error)(s)
}

// MutedText 使用 Muted 顏色顯示文字。
func MutedText(s string) string {
	return TextColor(Muted)(s)
}

// SnowText 主文字顏色。
func SnowText(s string) string {
	return TextColor(Text)(s)
}
