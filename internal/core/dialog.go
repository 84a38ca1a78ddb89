package core

import "github.com/jo-hoe/lensgallery/internal/gallery"

type DialogState int

const (
	DialogClosed DialogState = iota
	DialogOpen
)

func (s DialogState) String() string {
	if s == DialogOpen {
		return "open"
	}
	return "closed"
}

// ClickTarget tells where a click on the open dialog landed.
type ClickTarget int

const (
	ClickBackdrop ClickTarget = iota
	ClickContent
)

// ParseClickTarget maps "backdrop" and "content" to a ClickTarget.
func ParseClickTarget(s string) (ClickTarget, bool) {
	switch s {
	case "backdrop":
		return ClickBackdrop, true
	case "content":
		return ClickContent, true
	}
	return ClickContent, false
}

// EditDialog is the single edit dialog: closed, or open with a primed form.
type EditDialog struct {
	State DialogState
	Form  gallery.EntryForm
}

func (d EditDialog) IsOpen() bool {
	return d.State == DialogOpen
}

func (d *EditDialog) open(form gallery.EntryForm) {
	d.State = DialogOpen
	d.Form = form
}

// close also clears the form.
func (d *EditDialog) close() {
	d.State = DialogClosed
	d.Form = gallery.EntryForm{}
}

// click closes the dialog only for backdrop clicks and reports whether it closed.
func (d *EditDialog) click(target ClickTarget) bool {
	if d.State != DialogOpen || target != ClickBackdrop {
		return false
	}
	d.close()
	return true
}
