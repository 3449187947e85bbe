package menu

// Kind 菜單條目類型
type Kind int

const (
	KindMenu Kind = iota
	KindText
	KindAction
	KindActionModifying
	KindBack
)

func (k Kind) String() string {
	switch k {
	case KindMenu:
		return "menu"
	case KindText:
		return "text"
	case KindAction:
		return "action"
	case KindActionModifying:
		return "action-modifying"
	case KindBack:
		return "back"
	default:
		return "unknown"
	}
}

// ModifyFunc 修改型動作回調，可改寫自身或同級條目
type ModifyFunc func(e *Entry, m *Menu)

// Entry 菜單條目
type Entry struct {
	Kind     Kind
	Disabled bool
	// NoBlank 動作執行後不清屏
	NoBlank bool
	// Sub KindMenu 的子菜單
	Sub *Menu

	// X, Y 渲染時記錄的像素位置，僅動作類條目有效
	X, Y int

	title  string
	action func()
	modify ModifyFunc
}

// Submenu 子菜單條目
func Submenu(title string, sub *Menu) *Entry {
	return &Entry{Kind: KindMenu, title: title, Sub: sub}
}

// Text 靜態文本
func Text(title string) *Entry {
	return &Entry{Kind: KindText, title: title}
}

// TextDisabled 以禁用顏色顯示的文本
func TextDisabled(title string) *Entry {
	return &Entry{Kind: KindText, title: title, Disabled: true}
}

// Action 執行後清屏的動作
func Action(title string, fn func()) *Entry {
	return &Entry{Kind: KindAction, title: title, action: fn}
}

// ActionNoBlank 執行後不清屏的動作
func ActionNoBlank(title string, fn func()) *Entry {
	return &Entry{Kind: KindAction, title: title, action: fn, NoBlank: true}
}

// Modifying 執行後清屏的修改型動作
func Modifying(title string, fn ModifyFunc) *Entry {
	return &Entry{Kind: KindActionModifying, title: title, modify: fn}
}

// ModifyingNoBlank 執行後不清屏的修改型動作
func ModifyingNoBlank(title string, fn ModifyFunc) *Entry {
	return &Entry{Kind: KindActionModifying, title: title, modify: fn, NoBlank: true}
}

// Back 返回上一級
func Back() *Entry {
	return &Entry{Kind: KindBack}
}

// WithDisabled 設置初始禁用狀態
func (e *Entry) WithDisabled(disabled bool) *Entry {
	e.Disabled = disabled
	return e
}

// Title 條目標題
func (e *Entry) Title() string {
	return e.title
}

// SetTitle 改寫標題，下一次渲染生效
func (e *Entry) SetTitle(s string) {
	e.title = s
}

// Label 渲染文本；Back 固定顯示 "Back"
func (e *Entry) Label() string {
	if e.Kind == KindBack {
		return "Back"
	}
	return e.title
}

// Selectable 未禁用且不是文本
func (e *Entry) Selectable() bool {
	if e.Disabled {
		return false
	}
	switch e.Kind {
	case KindMenu, KindBack, KindAction, KindActionModifying:
		return true
	default:
		return false
	}
}

// isAction 動作類條目會記錄渲染位置
func (e *Entry) isAction() bool {
	return e.Kind == KindAction || e.Kind == KindActionModifying
}
