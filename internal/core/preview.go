package core

import (
	"github.com/jo-hoe/lensgallery/internal/gallery"
	"github.com/jo-hoe/lensgallery/internal/imageprocessing"
)

// PreviewController shows locally selected files before they are submitted.
// It never touches the network.
type PreviewController struct {
	c       *Context
	invoker *imageprocessing.CommandInvoker
}

func NewPreviewController(c *Context, invoker *imageprocessing.CommandInvoker) *PreviewController {
	if invoker == nil {
		invoker = imageprocessing.NewCommandInvoker(nil)
	}
	return &PreviewController{c: c, invoker: invoker}
}

// ShowPreview puts file into the slot as a data URL and makes the slot visible.
// Without a file it does nothing.
func (p *PreviewController) ShowPreview(slot PreviewSlotName, file *gallery.FileUpload) error {
	if _, err := ParsePreviewSlot(string(slot)); err != nil {
		return err
	}
	if file == nil || len(file.Data) == 0 {
		return nil
	}

	data, contentType := file.Data, file.ContentType
	if p.invoker.Len() > 0 {
		processed, err := p.invoker.Execute(file.Data)
		if err != nil {
			p.c.Logger.Debug("showing unprocessed preview", "slot", string(slot), "filename", file.Filename, "error", err)
			contentType = imageprocessing.SniffContentType(file.Data)
		} else {
			data, contentType = processed, "image/png"
		}
	}

	p.c.View.setPreview(slot, PreviewSlot{
		Src:     imageprocessing.DataURL(contentType, data),
		Visible: true,
	})
	return nil
}
