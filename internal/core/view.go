package core

import (
	"fmt"
	"sync"

	"github.com/jo-hoe/lensgallery/internal/gallery"
)

// ErrorMarker replaces both stats slots after a failed stats fetch.
const ErrorMarker = "Error"

// StatsBoard holds the two stats display slots.
type StatsBoard struct {
	UniqueVisitors string
	TotalViews     string
}

type PreviewSlotName string

const (
	PreviewBefore PreviewSlotName = "before"
	PreviewAfter  PreviewSlotName = "after"
)

func ParsePreviewSlot(s string) (PreviewSlotName, error) {
	switch PreviewSlotName(s) {
	case PreviewBefore, PreviewAfter:
		return PreviewSlotName(s), nil
	}
	return "", fmt.Errorf("unknown preview slot %q", s)
}

// PreviewSlot is one local image preview.
type PreviewSlot struct {
	Src     string
	Visible bool
}

// View is everything shown to the user. It is safe for concurrent use and
// every setter replaces its part wholesale.
type View struct {
	mu         sync.RWMutex
	projection Projection
	stats      StatsBoard
	upload     gallery.EntryForm
	previews   map[PreviewSlotName]PreviewSlot
	dialog     EditDialog
}

func NewView() *View {
	return &View{
		previews: make(map[PreviewSlotName]PreviewSlot),
	}
}

func (v *View) Projection() Projection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.projection
}

func (v *View) setProjection(p Projection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.projection = p
}

func (v *View) Stats() StatsBoard {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stats
}

func (v *View) setStats(s StatsBoard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = s
}

// UploadForm returns the values currently entered in the upload form.
func (v *View) UploadForm() gallery.EntryForm {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.upload
}

func (v *View) SetUploadForm(form gallery.EntryForm) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.upload = form
}

func (v *View) resetUploadForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.upload = gallery.EntryForm{}
	for name := range v.previews {
		v.previews[name] = PreviewSlot{}
	}
}

func (v *View) Preview(name PreviewSlotName) PreviewSlot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.previews[name]
}

func (v *View) setPreview(name PreviewSlotName, slot PreviewSlot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.previews[name] = slot
}

// Dialog returns a copy of the edit dialog.
func (v *View) Dialog() EditDialog {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dialog
}

func (v *View) openDialog(form gallery.EntryForm) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dialog.open(form)
}

func (v *View) closeDialog() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dialog.close()
}

func (v *View) clickDialog(target ClickTarget) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dialog.click(target)
}
