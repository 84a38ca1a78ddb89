package core

import (
	"context"
	"fmt"
	"html/template"
)

const componentGallery = "gallery"

// GalleryRenderer keeps the rendered list in sync with the remote collection.
type GalleryRenderer struct {
	c     *Context
	cards *template.Template
}

// NewGalleryRenderer renders with tmpl, or DefaultCardTemplate when nil.
func NewGalleryRenderer(c *Context, tmpl *template.Template) *GalleryRenderer {
	if tmpl == nil {
		tmpl = DefaultCardTemplate
	}
	return &GalleryRenderer{c: c, cards: tmpl}
}

// Refresh fetches the full collection and replaces the rendered list.
// On failure the previous rendering stays in place.
func (r *GalleryRenderer) Refresh(ctx context.Context) error {
	entries, err := r.c.API.ListEntries(ctx)
	if err != nil {
		r.c.Metrics.ObserveRefresh(componentGallery, err)
		r.c.Logger.Error("failed to fetch gallery entries", "error", err)
		return fmt.Errorf("failed to refresh gallery: %w", err)
	}

	projection, err := RenderProjection(r.cards, BuildCards(entries))
	if err != nil {
		r.c.Metrics.ObserveRefresh(componentGallery, err)
		r.c.Logger.Error("failed to render gallery", "error", err)
		return fmt.Errorf("failed to refresh gallery: %w", err)
	}

	r.c.View.setProjection(projection)
	r.c.Metrics.ObserveRefresh(componentGallery, nil)
	r.c.Logger.Debug("gallery refreshed",
		"entries", len(entries),
		"rendered", len(projection.Cards))
	return nil
}
