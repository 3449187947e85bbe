// Package constants 終端按鍵到機身按鍵的映射，兩個終端後端共用。
package constants

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Yat-Muk/sdloader/internal/infra/input"
)

// KeyMap 終端按鍵綁定
//
// 鍵名沿用 bubbletea 的 KeyMsg.String() 形式，tcell 後端先把事件轉成同樣的名字。
type KeyMap struct {
	VolUp   key.Binding
	VolDown key.Binding
	Power   key.Binding
	Stop    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap 默認綁定
func DefaultKeyMap() KeyMap {
	return KeyMap{
		VolUp: key.NewBinding(
			key.WithKeys("up", "k", "+"),
			key.WithHelp("↑/k", "VOL+"),
		),
		VolDown: key.NewBinding(
			key.WithKeys("down", "j", "-"),
			key.WithHelp("↓/j", "VOL-"),
		),
		Power: key.NewBinding(
			key.WithKeys("enter", " ", "p"),
			key.WithHelp("enter", "POWER"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "VOL+ & VOL-"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// buttons 綁定與機身按鍵的對應
func (k KeyMap) buttons() []struct {
	binding key.Binding
	button  input.Button
} {
	return []struct {
		binding key.Binding
		button  input.Button
	}{
		{k.VolUp, input.VolUp},
		{k.VolDown, input.VolDown},
		{k.Power, input.Power},
		{k.Stop, input.StopChord},
	}
}

// Resolve 按鍵名對應的機身按鍵；quit 為真表示退出會話
func (k KeyMap) Resolve(name string) (btn input.Button, quit bool) {
	if bound(k.Quit, name) {
		return 0, true
	}
	for _, b := range k.buttons() {
		if bound(b.binding, name) {
			return b.button, false
		}
	}
	return 0, false
}

// Help 單行按鍵提示
func (k KeyMap) Help() string {
	var parts []string
	for _, b := range []key.Binding{k.VolUp, k.VolDown, k.Power, k.Stop, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

func bound(b key.Binding, name string) bool {
	if !b.Enabled() {
		return false
	}
	for _, k := range b.Keys() {
		if k == name {
			return true
		}
	}
	return false
}
