package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yat-Muk/sdloader/internal/tui/gfx"
)

func TestPalette(t *testing.T) {
	assert.Equal(t, "#00a8a8", string(Palette(gfx.Teal)))
	assert.Equal(t, "#000000", string(Palette(gfx.Color(200))), "越界按黑色")
}

func TestVisualLength(t *testing.T) {
	assert.Equal(t, 5, VisualLength("BOOT0"))
	assert.Equal(t, 4, VisualLength("分區"))
	assert.Equal(t, 2, VisualLength("\x1b[31mOK\x1b[0m"))
	assert.Equal(t, "SD   ", PadRight("SD", 5))
	assert.Equal(t, "BOOT0", PadRight("BOOT0", 3))
}

func TestRenderReport(t *testing.T) {
	out := RenderReport("FW Info", []Row{
		KV("Signature", "0x9cabe959"),
		{Label: "FW Version", Value: "1.99", Color: Success},
	})

	assert.Contains(t, out, "FW Info")
	assert.Contains(t, out, "Signature   0x9cabe959")
	assert.Contains(t, out, "FW Version  1.99")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"#", "Offset"}, [][]string{{"0", "0x00000800"}, {"1", "0x00001800"}})
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Offset")
	assert.Contains(t, lines[2], "0x00001800")

	assert.Contains(t, RenderTable([]string{"#"}, nil), "No entries")
}

func TestBuildColoredLogContent(t *testing.T) {
	out := BuildColoredLogContent([]string{
		`{"level":"error","ts":"2026-01-21T22:40:00.000+0800","msg":"寫入失敗","error":"storage write failed"}`,
		`plain WARN line`,
		``,
	})

	assert.Contains(t, out, "[01-21 22:40:00]")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "寫入失敗")
	assert.Contains(t, out, "storage write failed")
	assert.Contains(t, out, "plain WARN line")
	assert.Equal(t, 2, strings.Count(out, "\n"))
	assert.Empty(t, BuildColoredLogContent(nil))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "[Unknown Time]", formatTime(""))
	assert.Equal(t, "[bogus]", formatTime("bogus"))
}

func TestSemanticText(t *testing.T) {
	for _, render := range []func(string) string{InfoText, SuccessText, WarningText, ErrorText, MutedText, SnowText} {
		out := render("saved")
		assert.Contains(t, out, "saved")
		assert.Equal(t, 5, VisualLength(out))
	}
}
