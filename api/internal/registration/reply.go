package registration

import "strings"

type Button struct {
	Text string
	Data string
}

type Document struct {
	Name string
	Data []byte
}

// Reply не зависит от транспорта; адаптер чата решает, как его показать.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard [][]Button
	// Replace — заменить сообщение, на кнопку которого нажали.
	Replace bool
	// Alert — всплывающий ответ на нажатие кнопки, без сообщения.
	Alert    bool
	Document *Document
}

func text(s string) Reply { return Reply{Text: s} }
func md(s string) Reply   { return Reply{Text: s, Markdown: true} }

func alert(s string) Reply { return Reply{Text: s, Alert: true} }

func (r Reply) with(kb [][]Button) Reply {
	r.Keyboard = kb
	return r
}

func (r Reply) replacing() Reply {
	r.Replace = true
	return r
}

func row(buttons ...Button) []Button { return buttons }

// esc — лёгкое экранирование пользовательских значений для Markdown.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
